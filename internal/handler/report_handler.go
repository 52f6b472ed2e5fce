package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/spi-admin-api/internal/middleware"
	"github.com/noah-isme/spi-admin-api/pkg/response"
)

// Report godoc
// @Summary Download report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param kind path string true "students, children or analytics"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /reports/{kind} [get]
func (h *DashboardHandler) Report(c *gin.Context) {
	report, err := h.reports.Generate(c.Request.Context(), c.Param("kind"), c.Query("format"), middleware.RequestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, report.Filename, report.ContentType, report.Body)
}
