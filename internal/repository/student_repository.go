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

// StudentColumns lists the students table columns in display order.
var StudentColumns = []string{
	"id", "department", "year", "level", "last_name", "first_name", "middle_name", "photo_path",
	"nickname", "birth_date", "birth_place", "gender", "religion", "nationality", "address", "contact_number",
	"father_name", "father_age", "father_education", "father_occupation", "father_employer",
	"father_work_place", "father_citizenship", "father_contact",
	"mother_name", "mother_age", "mother_education", "mother_occupation", "mother_employer",
	"mother_work_place", "mother_citizenship", "mother_contact",
	"guardian_name", "guardian_age", "guardian_education", "guardian_occupation", "guardian_employer",
	"guardian_work_place", "guardian_citizenship", "guardian_contact",
}

var studentList = query.List{Table: "students", Columns: StudentColumns, Search: query.StudentSearch}

// DepartmentCount aggregates students per department.
type DepartmentCount struct {
	Department string `db:"department"`
	Count      int    `db:"count"`
}

// StudentRepository provides database access for student profiles.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new instance of StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns one page of students matching params together with the total match count.
func (r *StudentRepository) List(ctx context.Context, params query.Params) (query.Result[models.Student], error) {
	return listPage[models.Student](ctx, r.db, studentList, params)
}

// ListAll returns every student ordered by id.
func (r *StudentRepository) ListAll(ctx context.Context) ([]models.Student, error) {
	students := make([]models.Student, 0)
	q := query.Builder.Select(StudentColumns...).From("students").OrderBy("id ASC")
	if err := selectAll(ctx, r.db, &students, q); err != nil {
		return nil, fmt.Errorf("list all students: %w", err)
	}
	return students, nil
}

// FindByID returns a student by identifier.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	var student models.Student
	q := query.Builder.Select(StudentColumns...).From("students").Where(sq.Eq{"id": id}).Limit(1)
	if err := getOne(ctx, r.db, &student, q); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student by id: %w", err)
	}
	return &student, nil
}

// Exists reports whether a student with id is stored.
func (r *StudentRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("check student exists: %w", err)
	}
	return exists, nil
}

// Count returns the number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	count, err := countRows(ctx, r.db, query.Builder.Select("COUNT(*)").From("students"))
	if err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}

// CountByDepartment groups students by department, unassigned last.
func (r *StudentRepository) CountByDepartment(ctx context.Context) ([]DepartmentCount, error) {
	rows := make([]DepartmentCount, 0)
	const q = `SELECT COALESCE(NULLIF(department, ''), 'Unassigned') AS department, COUNT(*) AS count
FROM students GROUP BY 1 ORDER BY count DESC, department ASC`
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("count students by department: %w", err)
	}
	return rows, nil
}

// Create inserts the supplied fields. Columns left null are not sent so they stay NULL.
func (r *StudentRepository) Create(ctx context.Context, fields models.StudentFields) (*models.Student, error) {
	var student models.Student
	values := suppliedColumns(&fields)
	var q sq.Sqlizer
	if len(values) == 0 {
		q = sq.Expr("INSERT INTO students DEFAULT VALUES " + returning(StudentColumns))
	} else {
		q = query.Builder.Insert("students").SetMap(values).Suffix(returning(StudentColumns))
	}
	if err := getOne(ctx, r.db, &student, q); err != nil {
		return nil, translateWriteError(err, "create student")
	}
	return &student, nil
}

// Update writes the supplied columns and returns the stored record.
func (r *StudentRepository) Update(ctx context.Context, id int64, patch map[string]interface{}) (*models.Student, error) {
	var student models.Student
	q := query.Builder.Update("students").
		SetMap(patch).
		Where(sq.Eq{"id": id}).
		Suffix(returning(StudentColumns))
	if err := getOne(ctx, r.db, &student, q); err != nil {
		return nil, translateWriteError(err, "update student")
	}
	return &student, nil
}

// Delete removes a student and all of its children in one transaction. It
// reports false, leaving the children untouched, when the student does not exist.
func (r *StudentRepository) Delete(ctx context.Context, id int64) (deleted bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete student: %w", err)
	}
	defer func() {
		if !deleted || err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM student_children WHERE student_id = $1`, id); err != nil {
		return false, fmt.Errorf("delete student children: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete student rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete student: %w", err)
	}
	return true, nil
}
