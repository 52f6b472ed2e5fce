package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/spi-admin-api/internal/credential"
	"github.com/noah-isme/spi-admin-api/internal/models"
	"github.com/noah-isme/spi-admin-api/internal/validation"
	appErrors "github.com/noah-isme/spi-admin-api/pkg/errors"
)

type authAdminRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	FindByID(ctx context.Context, id int64) (*models.Admin, error)
}

type sessionStore interface {
	Store(ctx context.Context, adminID int64, sessionID string, ttl time.Duration) error
	Exists(ctx context.Context, adminID int64, sessionID string) (bool, error)
	Revoke(ctx context.Context, adminID int64, sessionID string) error
}

type loginObserver interface {
	RecordLogin(success bool)
}

// AuthConfig defines configuration for session issuance.
type AuthConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// AuthService authenticates admins and resolves session tokens.
type AuthService struct {
	repo      authAdminRepository
	sessions  sessionStore
	hasher    *credential.Hasher
	validator *validation.Validator
	audit     auditRecorder
	metrics   loginObserver
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authAdminRepository, sessions sessionStore, hasher *credential.Hasher, validator *validation.Validator, audit auditRecorder, metrics loginObserver, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = validation.New()
	}
	if hasher == nil {
		hasher = credential.NewHasher(0)
	}
	if config.TTL <= 0 {
		config.TTL = 24 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		sessions:  sessions,
		hasher:    hasher,
		validator: validator,
		audit:     audit,
		metrics:   metrics,
		logger:    logger,
		config:    config,
	}
}

// TTL returns the lifetime of issued sessions.
func (s *AuthService) TTL() time.Duration {
	return s.config.TTL
}

// Login verifies credentials and issues a session. Unknown usernames and wrong
// passwords fail identically.
func (s *AuthService) Login(ctx context.Context, payload validation.Payload, meta models.RequestMeta) (*models.Session, error) {
	if err := validation.Required(payload, "username", "password"); err != nil {
		return nil, err
	}

	var input models.LoginInput
	if err := s.validator.Decode(payload, &input); err != nil {
		return nil, err
	}

	admin, err := s.repo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.loginFailed(ctx, input.Username, meta)
		}
		return nil, appErrors.Internal(err, "failed to fetch admin")
	}

	if !s.hasher.Verify(input.Password, admin.PasswordHash) {
		return nil, s.loginFailed(ctx, input.Username, meta)
	}

	token, sessionID, err := s.issueToken(admin)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create session token")
	}

	if s.sessions != nil {
		if err := s.sessions.Store(ctx, admin.ID, sessionID, s.config.TTL); err != nil {
			return nil, appErrors.Internal(err, "failed to persist session")
		}
	}

	if s.metrics != nil {
		s.metrics.RecordLogin(true)
	}
	meta.Actor = &models.Identity{AdminID: admin.ID, Username: admin.Username, Role: admin.Role}
	s.record(ctx, meta, models.AuditActionLogin, strconv.FormatInt(admin.ID, 10), map[string]interface{}{"status": "success"})

	return &models.Session{
		Token:  token,
		ID:     sessionID,
		MaxAge: int(s.config.TTL.Seconds()),
		Admin:  *admin,
	}, nil
}

func (s *AuthService) loginFailed(ctx context.Context, username string, meta models.RequestMeta) error {
	if s.metrics != nil {
		s.metrics.RecordLogin(false)
	}
	s.record(ctx, meta, models.AuditActionLoginFailed, "", map[string]interface{}{"username": username})
	return appErrors.ErrInvalidCredentials
}

// Logout revokes the caller's session. It succeeds for anonymous callers.
func (s *AuthService) Logout(ctx context.Context, meta models.RequestMeta) {
	identity := meta.Actor
	if identity == nil {
		return
	}
	if s.sessions != nil && identity.SessionID != "" {
		if err := s.sessions.Revoke(ctx, identity.AdminID, identity.SessionID); err != nil {
			s.logger.Warn("failed to revoke session", zap.Int64("admin_id", identity.AdminID), zap.Error(err))
		}
	}
	s.record(ctx, meta, models.AuditActionLogout, strconv.FormatInt(identity.AdminID, 10), map[string]interface{}{"status": "logout"})
}

// Me returns the admin behind identity.
func (s *AuthService) Me(ctx context.Context, identity *models.Identity) (*models.Admin, error) {
	if identity == nil {
		return nil, appErrors.ErrUnauthorized
	}
	admin, err := s.repo.FindByID(ctx, identity.AdminID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errAdminNotFound
		}
		return nil, appErrors.Internal(err, "failed to load admin")
	}
	return admin, nil
}

// Authenticate resolves a session token into an Identity. The token must be
// valid, its session not revoked, and its admin still present; the role is
// taken from the stored account.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Identity, error) {
	claims, err := s.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	if s.sessions != nil {
		active, err := s.sessions.Exists(ctx, claims.AdminID, claims.ID)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to check session")
		}
		if !active {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "Session expired")
		}
	}

	admin, err := s.repo.FindByID(ctx, claims.AdminID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrUnauthorized
		}
		return nil, appErrors.Internal(err, "failed to load admin")
	}

	return &models.Identity{
		AdminID:   admin.ID,
		Username:  admin.Username,
		Role:      admin.Role,
		SessionID: claims.ID,
	}, nil
}

// ValidateToken parses and validates a session token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, appErrors.ErrUnauthorized.Message)
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid || claims.AdminID <= 0 {
		return nil, appErrors.ErrUnauthorized
	}
	return claims, nil
}

func (s *AuthService) issueToken(admin *models.Admin) (string, string, error) {
	issuedAt := time.Now().UTC()
	sessionID := uuid.NewString()
	claims := &models.SessionClaims{
		AdminID:  admin.ID,
		Username: admin.Username,
		Role:     admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Issuer:    s.config.Issuer,
			Subject:   strconv.FormatInt(admin.ID, 10),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.TTL)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", "", err
	}
	return signed, sessionID, nil
}

func (s *AuthService) record(ctx context.Context, meta models.RequestMeta, action, resourceID string, details map[string]interface{}) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, models.AuditEntry{
		Meta:       meta,
		Action:     action,
		Resource:   models.AuditResourceAuth,
		ResourceID: resourceID,
		Details:    details,
	})
}
