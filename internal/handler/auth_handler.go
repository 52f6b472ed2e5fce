package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/spi-admin-api/internal/middleware"
	"github.com/noah-isme/spi-admin-api/internal/models"
	"github.com/noah-isme/spi-admin-api/internal/validation"
	"github.com/noah-isme/spi-admin-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, payload validation.Payload, meta models.RequestMeta) (*models.Session, error)
	Logout(ctx context.Context, meta models.RequestMeta)
	Me(ctx context.Context, identity *models.Identity) (*models.Admin, error)
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Path   string
	Secure bool
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
	cookie  CookieConfig
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, cookie CookieConfig) *AuthHandler {
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	return &AuthHandler{service: svc, cookie: cookie}
}

// Login godoc
// @Summary Authenticate admin
// @Description Verifies username and password and sets the session cookie
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginInput true "Login payload"
// @Success 200 {object} models.LoginResult
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	payload, err := readPayload(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	session, err := h.service.Login(c.Request.Context(), payload, middleware.RequestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, session.Token, session.MaxAge, h.cookie.Path, "", h.cookie.Secure, true)
	response.JSON(c, http.StatusOK, models.LoginResult{User: session.Admin, Message: "Login successful"})
}

// Logout godoc
// @Summary Log out
// @Description Revokes the current session and clears the cookie
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.MessageBody
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.service.Logout(c.Request.Context(), middleware.RequestMeta(c))

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, h.cookie.Path, "", h.cookie.Secure, true)
	response.Message(c, "Logged out successfully")
}

// Me godoc
// @Summary Current admin
// @Tags Authentication
// @Produce json
// @Success 200 {object} models.Admin
// @Failure 401 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	admin, err := h.service.Me(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admin)
}
