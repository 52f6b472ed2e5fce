package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/spi-admin-api/internal/models"
	"github.com/noah-isme/spi-admin-api/internal/service"
	appErrors "github.com/noah-isme/spi-admin-api/pkg/errors"
)

type tokenTable map[string]*models.Identity

func (t tokenTable) Authenticate(ctx context.Context, token string) (*models.Identity, error) {
	identity, ok := t[token]
	if !ok {
		return nil, appErrors.ErrUnauthorized
	}
	return identity, nil
}

func newGatedRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	tokens := tokenTable{
		"admin-token": {AdminID: 1, Username: "root", Role: models.RoleAdmin},
		"staff-token": {AdminID: 2, Username: "clerk", Role: models.RoleStaff},
	}
	r.Use(Session(tokens, "spi_session"))
	handlers := append(mw, func(c *gin.Context) {
		identity := IdentityFrom(c)
		if identity == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, identity.Username)
	})
	r.GET("/", handlers...)
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionResolvesCookieAndBearer(t *testing.T) {
	r := newGatedRouter()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "spi_session", Value: "admin-token"})
	assert.Equal(t, "root", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer staff-token")
	assert.Equal(t, "clerk", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "spi_session", Value: "forged"})
	assert.Equal(t, "anonymous", serve(r, req).Body.String())
}

func TestRequireSession(t *testing.T) {
	r := newGatedRouter(RequireSession())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Not authenticated"}`, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer staff-token")
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}

func TestRequireRole(t *testing.T) {
	r := newGatedRouter(RequireRole(models.RoleAdmin))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer staff-token")
	w = serve(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "error"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}

func TestRequestMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("User-Agent", "curl/8")
	c.Set(ContextIdentityKey, &models.Identity{AdminID: 4})

	meta := RequestMeta(c)
	assert.Equal(t, int64(4), meta.ActorID())
	assert.Equal(t, "curl/8", meta.UserAgent)
}

func TestMetricsRecordsRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/students/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	serve(r, httptest.NewRequest(http.MethodGet, "/students/7", nil))

	count, err := testutil.GatherAndCount(metrics.Registry(), "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
