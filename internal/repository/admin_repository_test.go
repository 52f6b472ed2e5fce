package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/spi-admin-api/internal/models"
	"github.com/noah-isme/spi-admin-api/internal/query"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func adminRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "password", "full_name", "role", "created_at"})
}

func TestAdminFindByUsername(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, password, full_name, role, created_at FROM admins WHERE username = $1 LIMIT 1")).
		WithArgs("root").
		WillReturnRows(adminRows().AddRow(1, "root", "hash", "Root", "admin", now))

	admin, err := repo.FindByUsername(context.Background(), "root")
	require.NoError(t, err)
	assert.Equal(t, int64(1), admin.ID)
	assert.Equal(t, "hash", admin.PasswordHash)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectQuery("FROM admins WHERE id = \\$1").WithArgs(int64(9)).WillReturnRows(adminRows())

	_, err := repo.FindByID(context.Background(), 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminListSearchesAndCounts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM admins WHERE (username ILIKE $1 OR full_name ILIKE $2)")).
		WithArgs("%ro%", "%ro%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("FROM admins WHERE (username ILIKE $1 OR full_name ILIKE $2) ORDER BY id DESC LIMIT 2 OFFSET 0")).
		WithArgs("%ro%", "%ro%").
		WillReturnRows(adminRows().
			AddRow(3, "rose", "h", "Rose", "staff", now).
			AddRow(1, "root", "h", "Root", "admin", now))

	result, err := repo.List(context.Background(), query.Params{Search: "ro", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	require.Len(t, result.Items, 2)
	assert.Equal(t, int64(3), result.Items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminListOffsetPastTotal(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM admins")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY id DESC LIMIT 10 OFFSET 50")).
		WillReturnRows(adminRows())

	result, err := repo.List(context.Background(), query.Params{Offset: 50})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Empty(t, result.Items)
	assert.NotNil(t, result.Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminCreateReturnsGeneratedFields(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO admins (username,password,full_name,role)")).
		WithArgs("clerk", "hash", "Clerk", models.RoleAdmin).
		WillReturnRows(adminRows().AddRow(7, "clerk", "hash", "Clerk", "admin", now))

	admin := &models.Admin{Username: "clerk", PasswordHash: "hash", FullName: "Clerk"}
	require.NoError(t, repo.Create(context.Background(), admin))
	assert.Equal(t, int64(7), admin.ID)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminCreateDuplicateUsername(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectQuery("INSERT INTO admins").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "admins_username_key"})

	err := repo.Create(context.Background(), &models.Admin{Username: "root", PasswordHash: "h", FullName: "Root"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminUpdateWritesOnlyPatchColumns(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE admins SET full_name = $1 WHERE id = $2 RETURNING id, username, password, full_name, role, created_at")).
		WithArgs("Renamed", int64(4)).
		WillReturnRows(adminRows().AddRow(4, "clerk", "hash", "Renamed", "staff", now))

	admin, err := repo.Update(context.Background(), 4, map[string]interface{}{"full_name": "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", admin.FullName)
	assert.Equal(t, "hash", admin.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminUpdateMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectQuery("UPDATE admins SET").WillReturnRows(adminRows())

	_, err := repo.Update(context.Background(), 99, map[string]interface{}{"full_name": "X"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAdminDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM admins WHERE id = $1")).WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM admins WHERE id = $1")).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminUsernameTakenExcludesSelf(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM admins WHERE username = $1 AND id <> $2")).
		WithArgs("root", int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	taken, err := repo.UsernameTaken(context.Background(), "root", 5)
	require.NoError(t, err)
	assert.False(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}
