package main

import "github.com/noah-isme/spi-admin-api/pkg/database"

var migrateFunc = database.Migrate // mockable

func (cli *commandLine) migrate(args []string) error {
	return migrateFunc(cli.db, cli.logger, args[0], args[1:]...)
}
