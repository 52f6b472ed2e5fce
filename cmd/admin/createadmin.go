package main

import (
	"context"
	"fmt"

	"github.com/noah-isme/spi-admin-api/internal/models"
	"github.com/noah-isme/spi-admin-api/internal/validation"
)

func (cli *commandLine) createAdmin(uname, fullName, role, pwd string) error {
	payload, err := validation.FromMap(map[string]interface{}{
		"username":  uname,
		"password":  pwd,
		"full_name": fullName,
		"role":      role,
	})
	if err != nil {
		return err
	}
	admin, err := cli.admins.Create(context.Background(), payload, models.RequestMeta{})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "created %s %q (id %d)\n", admin.Role, admin.Username, admin.ID)
	return nil
}
