package service

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/spi-admin-api/internal/models"
	appErrors "github.com/noah-isme/spi-admin-api/pkg/errors"
	"github.com/noah-isme/spi-admin-api/pkg/storage"
)

type photoStudents interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	Update(ctx context.Context, id int64, patch map[string]interface{}) (*models.Student, error)
}

type photoStore interface {
	Save(name string, r io.Reader, limit int64) error
	Open(name string) (*os.File, error)
	Delete(name string) error
}

type photoSigner interface {
	Generate(name string) (string, time.Time, error)
	Parse(token string) (string, error)
}

// Accepted photo types and the extension they are stored under.
var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var (
	errPhotoNotFound = appErrors.Clone(appErrors.ErrNotFound, "Photo not found")
	errPhotoType     = appErrors.Clone(appErrors.ErrValidation, "Photo must be a JPEG, PNG, GIF or WebP image")
	errPhotoLink     = appErrors.Clone(appErrors.ErrNotFound, "Link is invalid or has expired")
)

// PhotoLink is a time-limited URL for a student's photo.
type PhotoLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PhotoService stores student photos and issues signed links to them.
type PhotoService struct {
	students photoStudents
	store    photoStore
	signer   photoSigner
	maxBytes int64
	linkBase string
	audit    auditRecorder
	logger   *zap.Logger
}

// PhotoConfig configures PhotoService.
type PhotoConfig struct {
	MaxBytes int64
	LinkBase string
}

// NewPhotoService creates an instance of PhotoService.
func NewPhotoService(students photoStudents, store photoStore, signer photoSigner, audit auditRecorder, logger *zap.Logger, cfg PhotoConfig) *PhotoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 2 << 20
	}
	return &PhotoService{
		students: students,
		store:    store,
		signer:   signer,
		maxBytes: cfg.MaxBytes,
		linkBase: cfg.LinkBase,
		audit:    audit,
		logger:   logger,
	}
}

// MaxBytes is the largest accepted upload.
func (s *PhotoService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload replaces a student's photo with the image read from r.
func (s *PhotoService) Upload(ctx context.Context, studentID int64, r io.Reader, meta models.RequestMeta) (*models.Student, error) {
	student, err := s.student(ctx, studentID)
	if err != nil {
		return nil, err
	}

	buffered := bufio.NewReaderSize(r, 512)
	head, _ := buffered.Peek(512)
	ext, ok := photoExtensions[http.DetectContentType(head)]
	if !ok {
		return nil, errPhotoType
	}

	name := storage.NewFileName(ext)
	if err := s.store.Save(name, buffered, s.maxBytes); err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "Photo must be at most "+strconv.FormatInt(s.maxBytes>>10, 10)+" KB")
		}
		return nil, appErrors.Internal(err, "failed to store photo")
	}

	updated, err := s.students.Update(ctx, studentID, map[string]interface{}{"photo_path": name})
	if err != nil {
		s.discard(name)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errStudentNotFound
		}
		return nil, appErrors.Internal(err, "failed to update student photo")
	}

	if student.PhotoPath.Valid && student.PhotoPath.String != "" {
		s.discard(student.PhotoPath.String)
	}

	if s.audit != nil {
		s.audit.Record(ctx, models.AuditEntry{
			Meta:       meta,
			Action:     models.AuditActionStudentUpdate,
			Resource:   models.AuditResourceStudent,
			ResourceID: strconv.FormatInt(studentID, 10),
			Details:    map[string]interface{}{"fields": []string{"photo_path"}},
		})
	}
	return updated, nil
}

// Open returns the stored photo of a student. The caller closes the file.
func (s *PhotoService) Open(ctx context.Context, studentID int64) (*os.File, error) {
	student, err := s.student(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !student.PhotoPath.Valid || student.PhotoPath.String == "" {
		return nil, errPhotoNotFound
	}
	return s.open(student.PhotoPath.String)
}

// Link issues a signed URL that serves the student's photo without a session.
func (s *PhotoService) Link(ctx context.Context, studentID int64) (*PhotoLink, error) {
	student, err := s.student(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !student.PhotoPath.Valid || student.PhotoPath.String == "" {
		return nil, errPhotoNotFound
	}
	token, expiresAt, err := s.signer.Generate(student.PhotoPath.String)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign photo link")
	}
	return &PhotoLink{URL: s.linkBase + "/" + token, ExpiresAt: expiresAt}, nil
}

// OpenSigned returns the photo a signed link points to.
func (s *PhotoService) OpenSigned(token string) (*os.File, error) {
	name, err := s.signer.Parse(token)
	if err != nil {
		return nil, errPhotoLink
	}
	return s.open(name)
}

func (s *PhotoService) student(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errStudentNotFound
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	return student, nil
}

func (s *PhotoService) open(name string) (*os.File, error) {
	file, err := s.store.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, storage.ErrInvalidName) {
			return nil, errPhotoNotFound
		}
		return nil, appErrors.Internal(err, "failed to open photo")
	}
	return file, nil
}

func (s *PhotoService) discard(name string) {
	if err := s.store.Delete(name); err != nil {
		s.logger.Warn("failed to delete photo", zap.String("file", name), zap.Error(err))
	}
}
