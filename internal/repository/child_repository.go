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

// ChildColumns lists the student_children table columns in display order.
var ChildColumns = []string{"id", "student_id", "child_name", "child_age", "child_status", "child_school", "child_occupation"}

var childList = query.List{
	Table:   "student_children",
	Columns: ChildColumns,
	Search:  query.ChildSearch,
	AgeCol:  "child_age",
}

// AgeBucket counts children in one age group.
type AgeBucket struct {
	Label string `db:"label"`
	Count int    `db:"count"`
}

// ChildRepository provides database access for student children.
type ChildRepository struct {
	db *sqlx.DB
}

// NewChildRepository creates a new instance of ChildRepository.
func NewChildRepository(db *sqlx.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

// List returns one page of children matching params together with the total match count.
func (r *ChildRepository) List(ctx context.Context, params query.Params) (query.Result[models.Child], error) {
	return listPage[models.Child](ctx, r.db, childList, params)
}

// ListAll returns every child ordered by id.
func (r *ChildRepository) ListAll(ctx context.Context) ([]models.Child, error) {
	children := make([]models.Child, 0)
	q := query.Builder.Select(ChildColumns...).From("student_children").OrderBy("id ASC")
	if err := selectAll(ctx, r.db, &children, q); err != nil {
		return nil, fmt.Errorf("list all children: %w", err)
	}
	return children, nil
}

// ListByStudent returns the children of a student ordered by id.
func (r *ChildRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Child, error) {
	children := make([]models.Child, 0)
	q := query.Builder.Select(ChildColumns...).
		From("student_children").
		Where(sq.Eq{"student_id": studentID}).
		OrderBy("id ASC")
	if err := selectAll(ctx, r.db, &children, q); err != nil {
		return nil, fmt.Errorf("list children by student: %w", err)
	}
	return children, nil
}

// FindByID returns a child by identifier.
func (r *ChildRepository) FindByID(ctx context.Context, id int64) (*models.Child, error) {
	var child models.Child
	q := query.Builder.Select(ChildColumns...).From("student_children").Where(sq.Eq{"id": id}).Limit(1)
	if err := getOne(ctx, r.db, &child, q); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find child by id: %w", err)
	}
	return &child, nil
}

// Count returns the number of children.
func (r *ChildRepository) Count(ctx context.Context) (int, error) {
	count, err := countRows(ctx, r.db, query.Builder.Select("COUNT(*)").From("student_children"))
	if err != nil {
		return 0, fmt.Errorf("count children: %w", err)
	}
	return count, nil
}

// CountByAgeBucket groups children into the age ranges offered by the listing filter.
func (r *ChildRepository) CountByAgeBucket(ctx context.Context) ([]AgeBucket, error) {
	buckets := make([]AgeBucket, 0)
	const q = `SELECT label, COUNT(*) AS count FROM (
	SELECT child_age AS age, CASE
		WHEN child_age IS NULL THEN 'Unknown'
		WHEN child_age BETWEEN 0 AND 5 THEN '0-5'
		WHEN child_age BETWEEN 6 AND 12 THEN '6-12'
		WHEN child_age BETWEEN 13 AND 18 THEN '13-18'
		ELSE '18+'
	END AS label
	FROM student_children
) grouped GROUP BY label ORDER BY MIN(age) NULLS LAST`
	if err := r.db.SelectContext(ctx, &buckets, q); err != nil {
		return nil, fmt.Errorf("count children by age: %w", err)
	}
	return buckets, nil
}

// Create inserts the supplied fields. Columns left null are not sent so they stay NULL.
func (r *ChildRepository) Create(ctx context.Context, fields models.ChildFields) (*models.Child, error) {
	var child models.Child
	q := query.Builder.Insert("student_children").
		SetMap(suppliedColumns(&fields)).
		Suffix(returning(ChildColumns))
	if err := getOne(ctx, r.db, &child, q); err != nil {
		return nil, translateWriteError(err, "create child")
	}
	return &child, nil
}

// Update writes the supplied columns and returns the stored record.
func (r *ChildRepository) Update(ctx context.Context, id int64, patch map[string]interface{}) (*models.Child, error) {
	var child models.Child
	q := query.Builder.Update("student_children").
		SetMap(patch).
		Where(sq.Eq{"id": id}).
		Suffix(returning(ChildColumns))
	if err := getOne(ctx, r.db, &child, q); err != nil {
		return nil, translateWriteError(err, "update child")
	}
	return &child, nil
}

// Delete removes a child. It reports false when no row matched.
func (r *ChildRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM student_children WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete child: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete child rows affected: %w", err)
	}
	return affected > 0, nil
}
