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

type studentService interface {
	List(ctx context.Context, params query.Params) (*models.StudentList, error)
	Get(ctx context.Context, id int64) (*models.Student, error)
	Create(ctx context.Context, payload validation.Payload, meta models.RequestMeta) (*models.Student, error)
	Update(ctx context.Context, id int64, payload validation.Payload, meta models.RequestMeta) (*models.Student, error)
	Delete(ctx context.Context, id int64, meta models.RequestMeta) error
}

// StudentHandler handles student profile endpoints.
type StudentHandler struct {
	service studentService
}

// NewStudentHandler creates a new student handler.
func NewStudentHandler(svc studentService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// List godoc
// @Summary List students
// @Description Search by full name, department or address
// @Tags Students
// @Produce json
// @Param search query string false "Search term"
// @Param limit query int false "Page size (default 10, max 100)"
// @Param offset query int false "Rows to skip"
// @Success 200 {object} models.StudentList
// @Failure 401 {object} response.ErrorBody
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.service.List(c.Request.Context(), listParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}

// Get godoc
// @Summary Get student
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} models.Student
// @Failure 404 {object} response.ErrorBody
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Create godoc
// @Summary Create student
// @Description Enroll a student. first_name and last_name are required.
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body models.StudentFields true "Student profile"
// @Success 201 {object} models.Student
// @Failure 400 {object} response.ErrorBody
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	payload, err := readPayload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.service.Create(c.Request.Context(), payload, middleware.RequestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Description Only supplied fields change; null clears a field
// @Tags Students
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body models.StudentFields true "Fields to update"
// @Success 200 {object} models.Student
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
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
	student, err := h.service.Update(c.Request.Context(), id, payload, middleware.RequestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Delete godoc
// @Summary Delete student
// @Description Deletes the student and all of its children
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.MessageBody
// @Failure 404 {object} response.ErrorBody
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, middleware.RequestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Student deleted successfully")
}
