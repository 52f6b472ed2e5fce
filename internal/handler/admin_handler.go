package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/spi-admin-api/internal/middleware"
	"github.com/noah-isme/spi-admin-api/internal/models"
	"github.com/noah-isme/spi-admin-api/internal/query"
	"github.com/noah-isme/spi-admin-api/internal/validation"
	"github.com/noah-isme/spi-admin-api/pkg/response"
)

type adminService interface {
	List(ctx context.Context, params query.Params) (*models.AdminList, error)
	Get(ctx context.Context, id int64) (*models.Admin, error)
	Create(ctx context.Context, payload validation.Payload, meta models.RequestMeta) (*models.Admin, error)
	Update(ctx context.Context, id int64, payload validation.Payload, meta models.RequestMeta) (*models.Admin, error)
	Delete(ctx context.Context, id int64, meta models.RequestMeta) error
}

// AdminHandler handles admin account endpoints.
type AdminHandler struct {
	service adminService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(svc adminService) *AdminHandler {
	return &AdminHandler{service: svc}
}

// List godoc
// @Summary List admins
// @Description Search admins by username or full name
// @Tags Admins
// @Produce json
// @Param search query string false "Search term"
// @Param limit query int false "Page size (default 10, max 100)"
// @Param offset query int false "Rows to skip"
// @Success 200 {object} models.AdminList
// @Failure 401 {object} response.ErrorBody
// @Router /admins [get]
func (h *AdminHandler) List(c *gin.Context) {
	admins, err := h.service.List(c.Request.Context(), listParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admins)
}

// Get godoc
// @Summary Get admin
// @Tags Admins
// @Produce json
// @Param id path int true "Admin ID"
// @Success 200 {object} models.Admin
// @Failure 404 {object} response.ErrorBody
// @Router /admins/{id} [get]
func (h *AdminHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	admin, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admin)
}

// Create godoc
// @Summary Create admin
// @Tags Admins
// @Accept json
// @Produce json
// @Param payload body models.AdminInput true "Admin payload"
// @Success 201 {object} models.Admin
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /admins [post]
func (h *AdminHandler) Create(c *gin.Context) {
	payload, err := readPayload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	admin, err := h.service.Create(c.Request.Context(), payload, middleware.RequestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, admin)
}

// Update godoc
// @Summary Update admin
// @Description Only supplied fields change; an empty password keeps the current one
// @Tags Admins
// @Accept json
// @Produce json
// @Param id path int true "Admin ID"
// @Param payload body models.AdminInput true "Fields to update"
// @Success 200 {object} models.Admin
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /admins/{id} [put]
func (h *AdminHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, err := readPayload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	admin, err := h.service.Update(c.Request.Context(), id, payload, middleware.RequestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admin)
}

// Delete godoc
// @Summary Delete admin
// @Tags Admins
// @Produce json
// @Param id path int true "Admin ID"
// @Success 200 {object} response.MessageBody
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /admins/{id} [delete]
func (h *AdminHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, middleware.RequestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Admin deleted successfully")
}
