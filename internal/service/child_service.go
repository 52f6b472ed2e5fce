package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/spi-admin-api/internal/models"
	"github.com/noah-isme/spi-admin-api/internal/query"
	"github.com/noah-isme/spi-admin-api/internal/repository"
	"github.com/noah-isme/spi-admin-api/internal/validation"
	appErrors "github.com/noah-isme/spi-admin-api/pkg/errors"
)

type childRepository interface {
	List(ctx context.Context, params query.Params) (query.Result[models.Child], error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.Child, error)
	FindByID(ctx context.Context, id int64) (*models.Child, error)
	Create(ctx context.Context, fields models.ChildFields) (*models.Child, error)
	Update(ctx context.Context, id int64, patch map[string]interface{}) (*models.Child, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type studentLookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

var errChildNotFound = appErrors.Clone(appErrors.ErrNotFound, "Child not found")

func errUnknownStudent(id int64) error {
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Student %d does not exist", id))
}

// ChildService manages the children recorded on student profiles.
type ChildService struct {
	repo      childRepository
	students  studentLookup
	validator *validation.Validator
	audit     auditRecorder
	logger    *zap.Logger
}

// NewChildService creates an instance of ChildService.
func NewChildService(repo childRepository, students studentLookup, validator *validation.Validator, audit auditRecorder, logger *zap.Logger) *ChildService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = validation.New()
	}
	return &ChildService{repo: repo, students: students, validator: validator, audit: audit, logger: logger}
}

// List returns a page of children matching params, including the age range filter.
func (s *ChildService) List(ctx context.Context, params query.Params) (*models.ChildList, error) {
	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list children")
	}
	return &models.ChildList{Children: result.Items, Total: result.Total}, nil
}

// ListByStudent returns every child of a student ordered by id.
func (s *ChildService) ListByStudent(ctx context.Context, studentID int64) ([]models.Child, error) {
	children, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list student children")
	}
	return children, nil
}

// Get returns a child by ID.
func (s *ChildService) Get(ctx context.Context, id int64) (*models.Child, error) {
	child, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errChildNotFound
		}
		return nil, appErrors.Internal(err, "failed to load child")
	}
	return child, nil
}

// Create records a child for an existing student.
func (s *ChildService) Create(ctx context.Context, payload validation.Payload, meta models.RequestMeta) (*models.Child, error) {
	if err := validation.Required(payload, "student_id", "child_name"); err != nil {
		return nil, err
	}

	var fields models.ChildFields
	if err := s.validator.Decode(payload, &fields); err != nil {
		return nil, err
	}
	if err := s.ensureStudent(ctx, fields.StudentID); err != nil {
		return nil, err
	}

	child, err := s.repo.Create(ctx, fields)
	if err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, errUnknownStudent(fields.StudentID)
		}
		return nil, appErrors.Internal(err, "failed to create child")
	}

	s.record(ctx, meta, models.AuditActionChildCreate, child.ID, map[string]interface{}{
		"student_id": child.StudentID,
	})
	return child, nil
}

// Update writes the supplied child fields. Moving a child to another student
// requires that student to exist.
func (s *ChildService) Update(ctx context.Context, id int64, payload validation.Payload, meta models.RequestMeta) (*models.Child, error) {
	var fields models.ChildFields
	patch, err := s.validator.Patch(payload, &fields)
	if err != nil {
		return nil, err
	}
	if _, ok := patch["student_id"]; ok {
		if err := s.ensureStudent(ctx, fields.StudentID); err != nil {
			return nil, err
		}
	}

	child, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, errChildNotFound
		case errors.Is(err, repository.ErrForeignKey):
			return nil, errUnknownStudent(fields.StudentID)
		}
		return nil, appErrors.Internal(err, "failed to update child")
	}

	s.record(ctx, meta, models.AuditActionChildUpdate, id, map[string]interface{}{
		"fields": patch.Columns(),
	})
	return child, nil
}

// Delete removes a child.
func (s *ChildService) Delete(ctx context.Context, id int64, meta models.RequestMeta) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Internal(err, "failed to delete child")
	}
	if !deleted {
		return errChildNotFound
	}

	s.record(ctx, meta, models.AuditActionChildDelete, id, nil)
	return nil
}

func (s *ChildService) ensureStudent(ctx context.Context, studentID int64) error {
	if s.students == nil {
		return nil
	}
	exists, err := s.students.Exists(ctx, studentID)
	if err != nil {
		return appErrors.Internal(err, "failed to check student")
	}
	if !exists {
		return errUnknownStudent(studentID)
	}
	return nil
}

func (s *ChildService) record(ctx context.Context, meta models.RequestMeta, action string, id int64, details map[string]interface{}) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, models.AuditEntry{
		Meta:       meta,
		Action:     action,
		Resource:   models.AuditResourceChild,
		ResourceID: strconv.FormatInt(id, 10),
		Details:    details,
	})
}
