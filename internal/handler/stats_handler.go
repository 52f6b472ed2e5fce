package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/spi-admin-api/internal/models"
	"github.com/noah-isme/spi-admin-api/internal/query"
	"github.com/noah-isme/spi-admin-api/internal/service"
	"github.com/noah-isme/spi-admin-api/pkg/response"
)

type statsService interface {
	Totals(ctx context.Context) (*models.Stats, error)
}

type auditLister interface {
	List(ctx context.Context, params query.Params) (*models.AuditLogList, error)
}

type reportService interface {
	Generate(ctx context.Context, kind, format string, meta models.RequestMeta) (*service.Report, error)
}

// DashboardHandler serves statistics, the audit trail and report downloads.
type DashboardHandler struct {
	stats   statsService
	audit   auditLister
	reports reportService
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(stats statsService, audit auditLister, reports reportService) *DashboardHandler {
	return &DashboardHandler{stats: stats, audit: audit, reports: reports}
}

// Stats godoc
// @Summary Record counts
// @Tags Dashboard
// @Produce json
// @Success 200 {object} models.Stats
// @Failure 401 {object} response.ErrorBody
// @Router /stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.stats.Totals(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}

// AuditLogs godoc
// @Summary Audit trail
// @Tags Dashboard
// @Produce json
// @Param limit query int false "Page size (default 10, max 100)"
// @Param offset query int false "Rows to skip"
// @Success 200 {object} models.AuditLogList
// @Failure 403 {object} response.ErrorBody
// @Router /audit-logs [get]
func (h *DashboardHandler) AuditLogs(c *gin.Context) {
	logs, err := h.audit.List(c.Request.Context(), listParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs)
}
