package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/spi-admin-api/internal/credential"
	"github.com/noah-isme/spi-admin-api/internal/models"
	"github.com/noah-isme/spi-admin-api/internal/query"
	"github.com/noah-isme/spi-admin-api/internal/repository"
	"github.com/noah-isme/spi-admin-api/internal/validation"
	appErrors "github.com/noah-isme/spi-admin-api/pkg/errors"
)

type adminRepository interface {
	List(ctx context.Context, params query.Params) (query.Result[models.Admin], error)
	FindByID(ctx context.Context, id int64) (*models.Admin, error)
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	Count(ctx context.Context) (int, error)
	UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error)
	Create(ctx context.Context, admin *models.Admin) error
	Update(ctx context.Context, id int64, patch map[string]interface{}) (*models.Admin, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type sessionRevoker interface {
	RevokeAll(ctx context.Context, adminID int64) error
}

var (
	errAdminNotFound    = appErrors.Clone(appErrors.ErrNotFound, "Admin not found")
	errUsernameTaken    = appErrors.Clone(appErrors.ErrConflict, "Username already exists")
	errCannotDeleteSelf = appErrors.Clone(appErrors.ErrValidation, "Cannot delete your own account")
)

// AdminService manages console accounts.
type AdminService struct {
	repo      adminRepository
	sessions  sessionRevoker
	hasher    *credential.Hasher
	validator *validation.Validator
	audit     auditRecorder
	logger    *zap.Logger
}

// NewAdminService creates an instance of AdminService.
func NewAdminService(repo adminRepository, sessions sessionRevoker, hasher *credential.Hasher, validator *validation.Validator, audit auditRecorder, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = validation.New()
	}
	if hasher == nil {
		hasher = credential.NewHasher(0)
	}
	return &AdminService{repo: repo, sessions: sessions, hasher: hasher, validator: validator, audit: audit, logger: logger}
}

// List returns a page of admins matching params.
func (s *AdminService) List(ctx context.Context, params query.Params) (*models.AdminList, error) {
	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list admins")
	}
	return &models.AdminList{Admins: result.Items, Total: result.Total}, nil
}

// Get returns an admin by ID.
func (s *AdminService) Get(ctx context.Context, id int64) (*models.Admin, error) {
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errAdminNotFound
		}
		return nil, appErrors.Internal(err, "failed to load admin")
	}
	return admin, nil
}

// Create adds a new admin. The password is hashed before it is stored and the
// role defaults to admin.
func (s *AdminService) Create(ctx context.Context, payload validation.Payload, meta models.RequestMeta) (*models.Admin, error) {
	if err := validation.Required(payload, "username", "password", "full_name"); err != nil {
		return nil, err
	}

	input := models.AdminInput{Role: models.RoleAdmin}
	if err := s.validator.Decode(payload, &input); err != nil {
		return nil, err
	}
	input.Username = strings.TrimSpace(input.Username)

	taken, err := s.repo.UsernameTaken(ctx, input.Username, 0)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check username uniqueness")
	}
	if taken {
		return nil, errUsernameTaken
	}

	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	admin := &models.Admin{
		Username:     input.Username,
		PasswordHash: hash,
		FullName:     input.FullName,
		Role:         input.Role,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errUsernameTaken
		}
		return nil, appErrors.Internal(err, "failed to create admin")
	}

	s.record(ctx, meta, models.AuditActionAdminCreate, admin.ID, map[string]interface{}{
		"username": admin.Username,
		"role":     admin.Role,
	})

	return admin, nil
}

// Update writes the supplied admin fields. An absent or empty password keeps
// the stored hash; a new password revokes the admin's open sessions.
func (s *AdminService) Update(ctx context.Context, id int64, payload validation.Payload, meta models.RequestMeta) (*models.Admin, error) {
	payload = withoutEmptyPassword(payload)

	var input models.AdminInput
	patch, err := s.validator.Patch(payload, &input)
	if err != nil {
		return nil, err
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	if _, ok := patch["username"]; ok {
		input.Username = strings.TrimSpace(input.Username)
		patch["username"] = input.Username
		taken, err := s.repo.UsernameTaken(ctx, input.Username, id)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to check username uniqueness")
		}
		if taken {
			return nil, errUsernameTaken
		}
	}

	_, passwordChanged := patch["password"]
	if passwordChanged {
		hash, err := s.hashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		patch["password"] = hash
	}

	admin, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, errAdminNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return nil, errUsernameTaken
		}
		return nil, appErrors.Internal(err, "failed to update admin")
	}

	if passwordChanged {
		s.revokeSessions(ctx, id)
	}

	s.record(ctx, meta, models.AuditActionAdminUpdate, id, map[string]interface{}{
		"fields": patch.Columns(),
	})

	return admin, nil
}

// Delete removes an admin account. Admins cannot delete themselves.
func (s *AdminService) Delete(ctx context.Context, id int64, meta models.RequestMeta) error {
	if meta.ActorID() == id {
		return errCannotDeleteSelf
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Internal(err, "failed to delete admin")
	}
	if !deleted {
		return errAdminNotFound
	}

	s.revokeSessions(ctx, id)
	s.record(ctx, meta, models.AuditActionAdminDelete, id, nil)
	return nil
}

// EnsureBootstrap creates the first admin account when none exists yet. It
// returns nil when accounts are already present.
func (s *AdminService) EnsureBootstrap(ctx context.Context, username, password, fullName string) (*models.Admin, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to count admins")
	}
	if count > 0 {
		return nil, nil
	}

	payload, err := validation.FromMap(map[string]interface{}{
		"username":  username,
		"password":  password,
		"full_name": fullName,
		"role":      models.RoleAdmin,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to build bootstrap admin")
	}
	return s.Create(ctx, payload, models.RequestMeta{})
}

// ResetPassword sets a new password for the named admin and revokes their sessions.
func (s *AdminService) ResetPassword(ctx context.Context, username, password string) (*models.Admin, error) {
	if password == "" {
		return nil, appErrors.Missing("password")
	}
	admin, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errAdminNotFound
		}
		return nil, appErrors.Internal(err, "failed to load admin")
	}

	payload, err := validation.FromMap(map[string]interface{}{"password": password})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to build password update")
	}
	return s.Update(ctx, admin.ID, payload, models.RequestMeta{})
}

func (s *AdminService) hashPassword(plain string) (string, error) {
	hash, err := s.hasher.Hash(plain)
	switch {
	case errors.Is(err, credential.ErrPasswordTooLong):
		return "", appErrors.Clone(appErrors.ErrValidation, err.Error())
	case err != nil:
		return "", appErrors.Internal(err, "failed to hash password")
	}
	return hash, nil
}

func (s *AdminService) revokeSessions(ctx context.Context, id int64) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.RevokeAll(ctx, id); err != nil {
		s.logger.Warn("failed to revoke admin sessions", zap.Int64("admin_id", id), zap.Error(err))
	}
}

func (s *AdminService) record(ctx context.Context, meta models.RequestMeta, action string, id int64, details map[string]interface{}) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, models.AuditEntry{
		Meta:       meta,
		Action:     action,
		Resource:   models.AuditResourceAdmin,
		ResourceID: strconv.FormatInt(id, 10),
		Details:    details,
	})
}

// withoutEmptyPassword drops a "" or null password so the stored hash is kept.
func withoutEmptyPassword(p validation.Payload) validation.Payload {
	raw, ok := p["password"]
	if !ok {
		return p
	}
	if v := string(bytes.TrimSpace(raw)); v != `""` && v != "null" {
		return p
	}
	return p.Without("password")
}
