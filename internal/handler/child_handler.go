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

type childService interface {
	List(ctx context.Context, params query.Params) (*models.ChildList, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.Child, error)
	Get(ctx context.Context, id int64) (*models.Child, error)
	Create(ctx context.Context, payload validation.Payload, meta models.RequestMeta) (*models.Child, error)
	Update(ctx context.Context, id int64, payload validation.Payload, meta models.RequestMeta) (*models.Child, error)
	Delete(ctx context.Context, id int64, meta models.RequestMeta) error
}

// ChildHandler handles endpoints for students' children.
type ChildHandler struct {
	service childService
}

// NewChildHandler creates a new child handler.
func NewChildHandler(svc childService) *ChildHandler {
	return &ChildHandler{service: svc}
}

// List godoc
// @Summary List children
// @Description Search by name or school and filter by age range ("6-12" or "18+")
// @Tags Children
// @Produce json
// @Param search query string false "Search term"
// @Param ageRange query string false "Age range"
// @Param limit query int false "Page size (default 10, max 100)"
// @Param offset query int false "Rows to skip"
// @Success 200 {object} models.ChildList
// @Router /children [get]
func (h *ChildHandler) List(c *gin.Context) {
	children, err := h.service.List(c.Request.Context(), listParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, children)
}

// ListByStudent godoc
// @Summary List a student's children
// @Tags Children
// @Produce json
// @Param student_id path int true "Student ID"
// @Success 200 {array} models.Child
// @Router /children/student/{student_id} [get]
func (h *ChildHandler) ListByStudent(c *gin.Context) {
	h.listByStudent(c, "student_id")
}

// ListForStudent serves /students/{id}/children.
func (h *ChildHandler) ListForStudent(c *gin.Context) {
	h.listByStudent(c, "id")
}

func (h *ChildHandler) listByStudent(c *gin.Context, param string) {
	studentID, err := pathID(c, param)
	if err != nil {
		response.Error(c, err)
		return
	}
	children, err := h.service.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, children)
}

// Get godoc
// @Summary Get child
// @Tags Children
// @Produce json
// @Param id path int true "Child ID"
// @Success 200 {object} models.Child
// @Failure 404 {object} response.ErrorBody
// @Router /children/{id} [get]
func (h *ChildHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	child, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, child)
}

// Create godoc
// @Summary Create child
// @Tags Children
// @Accept json
// @Produce json
// @Param payload body models.ChildFields true "Child payload"
// @Success 201 {object} models.Child
// @Failure 400 {object} response.ErrorBody
// @Router /children [post]
func (h *ChildHandler) Create(c *gin.Context) {
	payload, err := readPayload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	child, err := h.service.Create(c.Request.Context(), payload, middleware.RequestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, child)
}

// Update godoc
// @Summary Update child
// @Tags Children
// @Accept json
// @Produce json
// @Param id path int true "Child ID"
// @Param payload body models.ChildFields true "Fields to update"
// @Success 200 {object} models.Child
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /children/{id} [put]
func (h *ChildHandler) Update(c *gin.Context) {
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
	child, err := h.service.Update(c.Request.Context(), id, payload, middleware.RequestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, child)
}

// Delete godoc
// @Summary Delete child
// @Tags Children
// @Produce json
// @Param id path int true "Child ID"
// @Success 200 {object} response.MessageBody
// @Failure 404 {object} response.ErrorBody
// @Router /children/{id} [delete]
func (h *ChildHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, middleware.RequestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Child deleted successfully")
}
