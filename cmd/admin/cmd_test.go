package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/spi-admin-api/internal/models"
	"github.com/noah-isme/spi-admin-api/internal/validation"
	appErrors "github.com/noah-isme/spi-admin-api/pkg/errors"
)

type fakeAdmins struct {
	created *validation.Payload
	resets  map[string]string
}

func (f *fakeAdmins) Create(ctx context.Context, payload validation.Payload, meta models.RequestMeta) (*models.Admin, error) {
	f.created = &payload
	return &models.Admin{ID: 7, Username: payload.String("username"), Role: models.Role(payload.String("role"))}, nil
}

func (f *fakeAdmins) ResetPassword(ctx context.Context, username, password string) (*models.Admin, error) {
	if username == "ghost" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Admin not found")
	}
	f.resets[username] = password
	return &models.Admin{Username: username}, nil
}

func setup(t *testing.T, password string) (*commandLine, *fakeAdmins, *bytes.Buffer) {
	t.Helper()
	prev := readPasswordFunc
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(password), nil }
	t.Cleanup(func() { readPasswordFunc = prev })

	out := &bytes.Buffer{}
	admins := &fakeAdmins{resets: map[string]string{}}
	return &commandLine{admins: admins, logger: zap.NewNop(), out: out}, admins, out
}

func TestRunWithoutCommandPrintsUsage(t *testing.T) {
	cli, _, out := setup(t, "")

	assert.ErrorIs(t, cli.run([]string{"admin"}), errHelp)
	assert.ErrorIs(t, cli.run([]string{"admin", "lol"}), errHelp)
	assert.Contains(t, out.String(), "Usage:")
}

func TestMigrate(t *testing.T) {
	cli, _, _ := setup(t, "")

	var gotCommand string
	var gotArgs []string
	prev := migrateFunc
	migrateFunc = func(db *sqlx.DB, logger *zap.Logger, command string, args ...string) error {
		gotCommand, gotArgs = command, args
		if command == "lol" {
			return errors.New(`"lol": no such command`)
		}
		return nil
	}
	t.Cleanup(func() { migrateFunc = prev })

	assert.ErrorIs(t, cli.run([]string{"admin", "migrate"}), errHelp)

	require.NoError(t, cli.run([]string{"admin", "migrate", "up-to", "3"}))
	assert.Equal(t, "up-to", gotCommand)
	assert.Equal(t, []string{"3"}, gotArgs)

	require.NoError(t, cli.run([]string{"admin", "migrate", "status"}))
	assert.Equal(t, "status", gotCommand)
	assert.Empty(t, gotArgs)

	assert.EqualError(t, cli.run([]string{"admin", "migrate", "lol"}), `"lol": no such command`)
}

func TestCreateAdmin(t *testing.T) {
	cli, admins, out := setup(t, "s3cret")

	assert.ErrorIs(t, cli.run([]string{"admin", "createadmin", "-username", "root"}), errHelp)
	assert.Nil(t, admins.created)

	require.NoError(t, cli.run([]string{"admin", "createadmin", "-username", "root", "-fullname", "Root User"}))
	require.NotNil(t, admins.created)
	p := *admins.created
	assert.Equal(t, "root", p.String("username"))
	assert.Equal(t, "s3cret", p.String("password"))
	assert.Equal(t, "Root User", p.String("full_name"))
	assert.Equal(t, "admin", p.String("role"))
	assert.Contains(t, out.String(), `created admin "root" (id 7)`)
}

func TestCreateAdminNeedsPassword(t *testing.T) {
	cli, admins, _ := setup(t, "")

	assert.ErrorIs(t, cli.run([]string{"admin", "createadmin", "-username", "root", "-fullname", "Root"}), errHelp)
	assert.Nil(t, admins.created)
}

func TestResetPassword(t *testing.T) {
	cli, admins, _ := setup(t, "n3w")

	assert.ErrorIs(t, cli.run([]string{"admin", "resetpassword"}), errHelp)

	require.NoError(t, cli.run([]string{"admin", "resetpassword", "-username", "clerk"}))
	assert.Equal(t, "n3w", admins.resets["clerk"])

	err := cli.run([]string{"admin", "resetpassword", "-username", "ghost"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
