package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/noah-isme/spi-admin-api/internal/models"
	"github.com/noah-isme/spi-admin-api/internal/query"
	"github.com/noah-isme/spi-admin-api/internal/repository"
	"github.com/noah-isme/spi-admin-api/internal/validation"
	appErrors "github.com/noah-isme/spi-admin-api/pkg/errors"
)

type stubChildRepo struct {
	created   *models.ChildFields
	patch     map[string]interface{}
	child     *models.Child
	createErr error
	byStudent map[int64][]models.Child
}

func (s *stubChildRepo) List(ctx context.Context, params query.Params) (query.Result[models.Child], error) {
	return query.Result[models.Child]{Items: []models.Child{}}, nil
}

func (s *stubChildRepo) ListByStudent(ctx context.Context, studentID int64) ([]models.Child, error) {
	children, ok := s.byStudent[studentID]
	if !ok {
		return []models.Child{}, nil
	}
	return children, nil
}

func (s *stubChildRepo) FindByID(ctx context.Context, id int64) (*models.Child, error) {
	if s.child == nil {
		return nil, sql.ErrNoRows
	}
	return s.child, nil
}

func (s *stubChildRepo) Create(ctx context.Context, fields models.ChildFields) (*models.Child, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = &fields
	return &models.Child{ID: 7, ChildFields: fields}, nil
}

func (s *stubChildRepo) Update(ctx context.Context, id int64, patch map[string]interface{}) (*models.Child, error) {
	s.patch = patch
	if s.child == nil {
		return nil, sql.ErrNoRows
	}
	return s.child, nil
}

func (s *stubChildRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return s.child != nil, nil
}

type knownStudents map[int64]bool

func (k knownStudents) Exists(ctx context.Context, id int64) (bool, error) {
	return k[id], nil
}

func TestChildCreateForExistingStudent(t *testing.T) {
	repo := &stubChildRepo{}
	svc := NewChildService(repo, knownStudents{3: true}, validation.New(), nil, nil)

	child, err := svc.Create(context.Background(), payload(t, `{"student_id":3,"child_name":"Leo","child_age":7,"child_status":"Single"}`), models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), child.ID)
	assert.Equal(t, int64(3), repo.created.StudentID)
	assert.Equal(t, null.IntFrom(7), repo.created.ChildAge)
	assert.False(t, repo.created.ChildSchool.Valid)
}

func TestChildCreateRejectsUnknownStudent(t *testing.T) {
	repo := &stubChildRepo{}
	svc := NewChildService(repo, knownStudents{}, validation.New(), nil, nil)

	_, err := svc.Create(context.Background(), payload(t, `{"student_id":999,"child_name":"Leo"}`), models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
	assert.Nil(t, repo.created)
}

func TestChildCreateForeignKeyViolationIsBadRequest(t *testing.T) {
	repo := &stubChildRepo{createErr: fmt.Errorf("create child: %w", repository.ErrForeignKey)}
	svc := NewChildService(repo, knownStudents{3: true}, validation.New(), nil, nil)

	_, err := svc.Create(context.Background(), payload(t, `{"student_id":3,"child_name":"Leo"}`), models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestChildCreateValidation(t *testing.T) {
	svc := NewChildService(&stubChildRepo{}, knownStudents{3: true}, validation.New(), nil, nil)

	cases := map[string]string{
		`{"child_name":"Leo"}`:                                        "Field 'student_id' is required",
		`{"student_id":3}`:                                            "Field 'child_name' is required",
		`{"student_id":"3","child_name":"Leo"}`:                       "Field 'student_id' has an invalid value",
		`{"student_id":3,"child_name":"Leo","child_age":"seven"}`:     "Field 'child_age' has an invalid value",
		`{"student_id":3,"child_name":"Leo","child_status":"Dating"}`: "",
	}
	for body, message := range cases {
		_, err := svc.Create(context.Background(), payload(t, body), models.RequestMeta{})
		require.Error(t, err, body)
		assert.Equal(t, 400, appErrors.FromError(err).Status, body)
		if message != "" {
			assert.Equal(t, message, appErrors.FromError(err).Message, body)
		}
	}
}

func TestChildUpdateChecksNewStudent(t *testing.T) {
	repo := &stubChildRepo{child: &models.Child{ID: 7}}
	svc := NewChildService(repo, knownStudents{3: true}, validation.New(), nil, nil)

	_, err := svc.Update(context.Background(), 7, payload(t, `{"student_id":4}`), models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Nil(t, repo.patch)

	_, err = svc.Update(context.Background(), 7, payload(t, `{"child_school":null}`), models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"child_school": null.String{}}, repo.patch)
}

func TestChildDeleteMissing(t *testing.T) {
	svc := NewChildService(&stubChildRepo{}, knownStudents{}, validation.New(), nil, nil)
	err := svc.Delete(context.Background(), 7, models.RequestMeta{})
	assert.Equal(t, "Child not found", appErrors.FromError(err).Message)
}

func TestChildListByStudentEmpty(t *testing.T) {
	svc := NewChildService(&stubChildRepo{}, knownStudents{}, validation.New(), nil, nil)
	children, err := svc.ListByStudent(context.Background(), 42)
	require.NoError(t, err)
	assert.NotNil(t, children)
	assert.Empty(t, children)
}
