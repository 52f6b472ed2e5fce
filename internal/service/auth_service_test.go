package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/spi-admin-api/internal/credential"
	"github.com/noah-isme/spi-admin-api/internal/models"
	"github.com/noah-isme/spi-admin-api/internal/validation"
	appErrors "github.com/noah-isme/spi-admin-api/pkg/errors"
)

const testSecret = "test-secret"

func newTestAuthService(t *testing.T) (*AuthService, *memoryAdminRepo, *fakeSessions, *recordedAudit, *loginCounter) {
	t.Helper()
	hasher := credential.NewHasher(4)
	hash, err := hasher.Hash("s3cret")
	require.NoError(t, err)

	repo := newMemoryAdminRepo(models.Admin{ID: 1, Username: "root", PasswordHash: hash, FullName: "Root", Role: models.RoleAdmin})
	sessions := newFakeSessions()
	audit := &recordedAudit{}
	counter := &loginCounter{}
	svc := NewAuthService(repo, sessions, hasher, validation.New(), audit, counter, nil, AuthConfig{
		Secret: testSecret,
		TTL:    time.Hour,
		Issuer: "spi-admin-api",
	})
	return svc, repo, sessions, audit, counter
}

func TestAuthLoginIssuesSession(t *testing.T) {
	svc, _, sessions, audit, counter := newTestAuthService(t)

	session, err := svc.Login(context.Background(), payload(t, `{"username":"root","password":"s3cret"}`), models.RequestMeta{IP: "10.0.0.1"})
	require.NoError(t, err)

	assert.NotEmpty(t, session.Token)
	assert.Equal(t, 3600, session.MaxAge)
	assert.Equal(t, int64(1), sessions.stored[session.ID])
	assert.NotContains(t, mustJSON(t, session.Admin), "password")
	assert.Equal(t, 1, counter.success)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionLogin, audit.entries[0].Action)
	assert.Equal(t, int64(1), audit.entries[0].Meta.ActorID())

	identity, err := svc.Authenticate(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), identity.AdminID)
	assert.Equal(t, session.ID, identity.SessionID)
	assert.Equal(t, models.RoleAdmin, identity.Role)
}

func TestAuthLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _, sessions, audit, counter := newTestAuthService(t)

	_, wrongPassword := svc.Login(context.Background(), payload(t, `{"username":"root","password":"nope"}`), models.RequestMeta{})
	_, unknownUser := svc.Login(context.Background(), payload(t, `{"username":"ghost","password":"s3cret"}`), models.RequestMeta{})

	for _, err := range []error{wrongPassword, unknownUser} {
		appErr := appErrors.FromError(err)
		assert.Equal(t, 401, appErr.Status)
		assert.Equal(t, "Invalid credentials", appErr.Message)
	}
	assert.Empty(t, sessions.stored)
	assert.Equal(t, 2, counter.failure)
	assert.Equal(t, []string{models.AuditActionLoginFailed, models.AuditActionLoginFailed}, audit.actions())
}

func TestAuthLoginRequiresCredentials(t *testing.T) {
	svc, _, _, _, _ := newTestAuthService(t)

	_, err := svc.Login(context.Background(), payload(t, `{"username":"root"}`), models.RequestMeta{})
	assert.Equal(t, "Field 'password' is required", appErrors.FromError(err).Message)
}

func TestAuthLoginSessionStoreFailure(t *testing.T) {
	svc, _, sessions, _, _ := newTestAuthService(t)
	sessions.storeErr = errors.New("redis down")

	_, err := svc.Login(context.Background(), payload(t, `{"username":"root","password":"s3cret"}`), models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestAuthLogoutRevokesSession(t *testing.T) {
	svc, _, sessions, audit, _ := newTestAuthService(t)

	session, err := svc.Login(context.Background(), payload(t, `{"username":"root","password":"s3cret"}`), models.RequestMeta{})
	require.NoError(t, err)
	identity, err := svc.Authenticate(context.Background(), session.Token)
	require.NoError(t, err)

	svc.Logout(context.Background(), models.RequestMeta{Actor: identity})
	assert.Equal(t, []string{session.ID}, sessions.revoked)
	assert.Contains(t, audit.actions(), models.AuditActionLogout)

	_, err = svc.Authenticate(context.Background(), session.Token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	svc.Logout(context.Background(), models.RequestMeta{})
}

func TestAuthAuthenticateRejectsBadTokens(t *testing.T) {
	svc, repo, _, _, _ := newTestAuthService(t)

	_, err := svc.Authenticate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.SessionClaims{
		AdminID:          1,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), signed)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.SessionClaims{
		AdminID:          1,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	})
	signed, err = expired.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), signed)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	session, err := svc.Login(context.Background(), payload(t, `{"username":"root","password":"s3cret"}`), models.RequestMeta{})
	require.NoError(t, err)
	delete(repo.admins, 1)
	_, err = svc.Authenticate(context.Background(), session.Token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthMe(t *testing.T) {
	svc, _, _, _, _ := newTestAuthService(t)

	admin, err := svc.Me(context.Background(), &models.Identity{AdminID: 1})
	require.NoError(t, err)
	assert.Equal(t, "root", admin.Username)

	_, err = svc.Me(context.Background(), nil)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	_, err = svc.Me(context.Background(), &models.Identity{AdminID: 9})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
