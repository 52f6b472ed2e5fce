package handler

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/spi-admin-api/internal/middleware"
	"github.com/noah-isme/spi-admin-api/internal/models"
	"github.com/noah-isme/spi-admin-api/internal/service"
	appErrors "github.com/noah-isme/spi-admin-api/pkg/errors"
	"github.com/noah-isme/spi-admin-api/pkg/response"
)

type photoService interface {
	MaxBytes() int64
	Upload(ctx context.Context, studentID int64, r io.Reader, meta models.RequestMeta) (*models.Student, error)
	Open(ctx context.Context, studentID int64) (*os.File, error)
	Link(ctx context.Context, studentID int64) (*service.PhotoLink, error)
	OpenSigned(token string) (*os.File, error)
}

// PhotoHandler serves student photo uploads and downloads.
type PhotoHandler struct {
	service photoService
}

// NewPhotoHandler creates a new photo handler.
func NewPhotoHandler(svc photoService) *PhotoHandler {
	return &PhotoHandler{service: svc}
}

// Upload godoc
// @Summary Upload a student's photo
// @Tags Students
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Student ID"
// @Param photo formData file true "JPEG, PNG, GIF or WebP image"
// @Success 200 {object} models.Student
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /students/{id}/photo [post]
func (h *PhotoHandler) Upload(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.service.MaxBytes()+(1<<20))
	header, err := c.FormFile("photo")
	if err != nil {
		response.Error(c, appErrors.Missing("photo"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "Unable to read photo"))
		return
	}
	defer file.Close()

	student, err := h.service.Upload(c.Request.Context(), id, file, middleware.RequestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Download godoc
// @Summary Download a student's photo
// @Tags Students
// @Produce image/*
// @Param id path int true "Student ID"
// @Failure 404 {object} response.ErrorBody
// @Router /students/{id}/photo [get]
func (h *PhotoHandler) Download(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.service.Open(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, file)
}

// Link godoc
// @Summary Issue a signed, time-limited photo URL
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} service.PhotoLink
// @Failure 404 {object} response.ErrorBody
// @Router /students/{id}/photo-link [get]
func (h *PhotoHandler) Link(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	link, err := h.service.Link(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link)
}

// Signed serves a photo through a signed link, without a session.
func (h *PhotoHandler) Signed(c *gin.Context) {
	file, err := h.service.OpenSigned(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, file)
}

func serveFile(c *gin.Context, file *os.File) {
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Internal(err, "failed to stat photo"))
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), file)
}
