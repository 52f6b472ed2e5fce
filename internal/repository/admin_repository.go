package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/spi-admin-api/internal/models"
	"github.com/noah-isme/spi-admin-api/internal/query"
)

var adminColumns = []string{"id", "username", "password", "full_name", "role", "created_at"}

var adminList = query.List{Table: "admins", Columns: adminColumns, Search: query.AdminSearch}

// AdminRepository provides database access for admin accounts.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository creates a new instance of AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// List returns one page of admins matching params together with the total match count.
func (r *AdminRepository) List(ctx context.Context, params query.Params) (query.Result[models.Admin], error) {
	return listPage[models.Admin](ctx, r.db, adminList, params)
}

// FindByID returns an admin by identifier.
func (r *AdminRepository) FindByID(ctx context.Context, id int64) (*models.Admin, error) {
	var admin models.Admin
	q := query.Builder.Select(adminColumns...).From("admins").Where(sq.Eq{"id": id}).Limit(1)
	if err := getOne(ctx, r.db, &admin, q); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find admin by id: %w", err)
	}
	return &admin, nil
}

// FindByUsername returns an admin by username.
func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	q := query.Builder.Select(adminColumns...).From("admins").Where(sq.Eq{"username": username}).Limit(1)
	if err := getOne(ctx, r.db, &admin, q); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find admin by username: %w", err)
	}
	return &admin, nil
}

// UsernameTaken reports whether username belongs to an admin other than excludeID.
func (r *AdminRepository) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	q := query.Builder.Select("COUNT(*)").From("admins").Where(sq.Eq{"username": username})
	if excludeID > 0 {
		q = q.Where(sq.NotEq{"id": excludeID})
	}
	count, err := countRows(ctx, r.db, q)
	if err != nil {
		return false, fmt.Errorf("check admin username: %w", err)
	}
	return count > 0, nil
}

// Count returns the number of admin accounts.
func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	count, err := countRows(ctx, r.db, query.Builder.Select("COUNT(*)").From("admins"))
	if err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return count, nil
}

// Create inserts admin and fills in the generated id, role default and creation time.
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if admin.Role == "" {
		admin.Role = models.RoleAdmin
	}
	q := query.Builder.Insert("admins").
		Columns("username", "password", "full_name", "role").
		Values(admin.Username, admin.PasswordHash, admin.FullName, admin.Role).
		Suffix(returning(adminColumns))
	if err := getOne(ctx, r.db, admin, q); err != nil {
		return translateWriteError(err, "create admin")
	}
	return nil
}

// Update writes the supplied columns and returns the stored record.
func (r *AdminRepository) Update(ctx context.Context, id int64, patch map[string]interface{}) (*models.Admin, error) {
	var admin models.Admin
	q := query.Builder.Update("admins").
		SetMap(patch).
		Where(sq.Eq{"id": id}).
		Suffix(returning(adminColumns))
	if err := getOne(ctx, r.db, &admin, q); err != nil {
		return nil, translateWriteError(err, "update admin")
	}
	return &admin, nil
}

// Delete removes an admin. It reports false when no row matched.
func (r *AdminRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admins WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete admin: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete admin rows affected: %w", err)
	}
	return affected > 0, nil
}
