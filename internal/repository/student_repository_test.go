package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/noah-isme/spi-admin-api/internal/models"
	"github.com/noah-isme/spi-admin-api/internal/query"
)

func studentRow(id int64, first, last string) []driver.Value {
	row := make([]driver.Value, len(StudentColumns))
	row[0] = id
	for i, col := range StudentColumns {
		switch col {
		case "first_name":
			row[i] = first
		case "last_name":
			row[i] = last
		}
	}
	return row
}

func TestStudentCreateSendsOnlySuppliedColumns(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO students (first_name,last_name) VALUES ($1,$2) RETURNING id, department")).
		WithArgs("Ana", "Cruz").
		WillReturnRows(sqlmock.NewRows(StudentColumns).AddRow(studentRow(12, "Ana", "Cruz")...))

	student, err := repo.Create(context.Background(), models.StudentFields{
		FirstName: null.StringFrom("Ana"),
		LastName:  null.StringFrom("Cruz"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), student.ID)
	assert.Equal(t, "Ana Cruz", student.FullName())
	assert.False(t, student.Department.Valid)
	assert.False(t, student.BirthDate.Valid)
	assert.False(t, student.FatherAge.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentListCaseInsensitiveSearch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	pred := regexp.QuoteMeta("WHERE (CONCAT(first_name, ' ', last_name) ILIKE $1 OR department ILIKE $2 OR address ILIKE $3)")
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM students " + pred).
		WithArgs("%ANA CRUZ%", "%ANA CRUZ%", "%ANA CRUZ%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("FROM students " + pred + regexp.QuoteMeta(" ORDER BY id DESC LIMIT 10 OFFSET 0")).
		WillReturnRows(sqlmock.NewRows(StudentColumns).AddRow(studentRow(1, "Ana", "Cruz")...))

	result, err := repo.List(context.Background(), query.Params{Search: "ANA CRUZ"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Ana", result.Items[0].FirstName.String)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentUpdateClearsNullColumns(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE students SET department = $1, middle_name = $2 WHERE id = $3 RETURNING id")).
		WithArgs("Science", nil, int64(1)).
		WillReturnRows(sqlmock.NewRows(StudentColumns).AddRow(studentRow(1, "Ana", "Cruz")...))

	_, err := repo.Update(context.Background(), 1, map[string]interface{}{
		"department":  null.StringFrom("Science"),
		"middle_name": null.String{},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentDeleteCascadesInTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM student_children WHERE student_id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	deleted, err := repo.Delete(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentDeleteMissingRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM student_children").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM students").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	deleted, err := repo.Delete(context.Background(), 404)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentDeleteFailureRollsBackChildren(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM student_children").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM students").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	deleted, err := repo.Delete(context.Background(), 5)
	require.Error(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentExists(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)")).
		WithArgs(int64(77)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.Exists(context.Background(), 77)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
