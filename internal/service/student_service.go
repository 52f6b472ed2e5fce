package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/spi-admin-api/internal/models"
	"github.com/noah-isme/spi-admin-api/internal/query"
	"github.com/noah-isme/spi-admin-api/internal/validation"
	appErrors "github.com/noah-isme/spi-admin-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, params query.Params) (query.Result[models.Student], error)
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	Create(ctx context.Context, fields models.StudentFields) (*models.Student, error)
	Update(ctx context.Context, id int64, patch map[string]interface{}) (*models.Student, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

var errStudentNotFound = appErrors.Clone(appErrors.ErrNotFound, "Student not found")

// StudentService manages student profiles.
type StudentService struct {
	repo      studentRepository
	validator *validation.Validator
	audit     auditRecorder
	logger    *zap.Logger
}

// NewStudentService creates an instance of StudentService.
func NewStudentService(repo studentRepository, validator *validation.Validator, audit auditRecorder, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = validation.New()
	}
	return &StudentService{repo: repo, validator: validator, audit: audit, logger: logger}
}

// List returns a page of students matching params.
func (s *StudentService) List(ctx context.Context, params query.Params) (*models.StudentList, error) {
	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list students")
	}
	return &models.StudentList{Students: result.Items, Total: result.Total}, nil
}

// Get returns a student by ID.
func (s *StudentService) Get(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errStudentNotFound
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	return student, nil
}

// Create stores a new student profile. Only first and last name are required;
// every other column left out stays null.
func (s *StudentService) Create(ctx context.Context, payload validation.Payload, meta models.RequestMeta) (*models.Student, error) {
	if err := validation.Required(payload, "first_name", "last_name"); err != nil {
		return nil, err
	}

	var fields models.StudentFields
	if err := s.validator.Decode(payload, &fields); err != nil {
		return nil, err
	}

	student, err := s.repo.Create(ctx, fields)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create student")
	}

	s.record(ctx, meta, models.AuditActionStudentCreate, student.ID, map[string]interface{}{
		"name": student.FullName(),
	})
	return student, nil
}

// Update writes the supplied student fields. An explicit null clears a column.
// photo_path is ignored; only photo uploads change it.
func (s *StudentService) Update(ctx context.Context, id int64, payload validation.Payload, meta models.RequestMeta) (*models.Student, error) {
	var fields models.StudentFields
	patch, err := s.validator.Patch(payload.Without("photo_path"), &fields)
	if err != nil {
		return nil, err
	}

	student, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errStudentNotFound
		}
		return nil, appErrors.Internal(err, "failed to update student")
	}

	s.record(ctx, meta, models.AuditActionStudentUpdate, id, map[string]interface{}{
		"fields": patch.Columns(),
	})
	return student, nil
}

// Delete removes a student together with its children.
func (s *StudentService) Delete(ctx context.Context, id int64, meta models.RequestMeta) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Internal(err, "failed to delete student")
	}
	if !deleted {
		return errStudentNotFound
	}

	s.record(ctx, meta, models.AuditActionStudentDelete, id, nil)
	return nil
}

func (s *StudentService) record(ctx context.Context, meta models.RequestMeta, action string, id int64, details map[string]interface{}) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, models.AuditEntry{
		Meta:       meta,
		Action:     action,
		Resource:   models.AuditResourceStudent,
		ResourceID: strconv.FormatInt(id, 10),
		Details:    details,
	})
}
