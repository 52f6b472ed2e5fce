package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/noah-isme/spi-admin-api/internal/models"
	"github.com/noah-isme/spi-admin-api/internal/validation"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type adminManager interface {
	Create(ctx context.Context, payload validation.Payload, meta models.RequestMeta) (*models.Admin, error)
	ResetPassword(ctx context.Context, username, password string) (*models.Admin, error)
}

type commandLine struct {
	db     *sqlx.DB
	admins adminManager
	logger *zap.Logger
	out    io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                                  - run a goose command (up, down, status, redo, reset, version, up-to, down-to)")
	fmt.Fprintln(cli.out, "  createadmin -username USERNAME -fullname NAME [-role R] - create an account, the password is prompted next")
	fmt.Fprintln(cli.out, "  resetpassword -username USERNAME                        - reset an account's password")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createCmd := flag.NewFlagSet("createadmin", flag.ContinueOnError)
	createCmd.SetOutput(cli.out)
	createUname := createCmd.String("username", "", "The account's username.")
	createName := createCmd.String("fullname", "", "The account holder's full name.")
	createRole := createCmd.String("role", string(models.RoleAdmin), "admin or staff.")

	resetCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetCmd.SetOutput(cli.out)
	resetUname := resetCmd.String("username", "", "The account's username. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "createadmin":
		if err := createCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createUname == "" || *createName == "" {
			createCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			createCmd.Usage()
			return errHelp
		}
		return cli.createAdmin(*createUname, *createName, *createRole, pwd)
	case "resetpassword":
		if err := resetCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetUname == "" {
			resetCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetUname, pwd)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
