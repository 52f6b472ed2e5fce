package service

import (
	"context"
	"encoding/json"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"github.com/noah-isme/spi-admin-api/internal/models"
	"github.com/noah-isme/spi-admin-api/internal/query"
	appErrors "github.com/noah-isme/spi-admin-api/pkg/errors"
	"github.com/noah-isme/spi-admin-api/pkg/jobs"
)

type auditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, params query.Params) (query.Result[models.AuditLog], error)
	CountByAction(ctx context.Context) ([]models.AuditActionCount, error)
}

// auditRecorder is implemented by AuditService; services hold it so tests can capture entries.
type auditRecorder interface {
	Record(ctx context.Context, entry models.AuditEntry)
}

// AuditService writes and lists the audit trail.
type AuditService struct {
	repo   auditRepository
	logger *zap.Logger
	queue  *jobs.Queue[*models.AuditLog]
}

// NewAuditService constructs an AuditService.
func NewAuditService(repo auditRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// StartAsync moves audit writes onto a background worker pool so requests do
// not wait for the insert. Close drains the pool.
func (s *AuditService) StartAsync(ctx context.Context, cfg jobs.QueueConfig) {
	if cfg.Logger == nil {
		cfg.Logger = s.logger
	}
	s.queue = jobs.NewQueue("audit", s.write, cfg)
	s.queue.Start(ctx)
}

// Close waits for queued audit writes to finish.
func (s *AuditService) Close() {
	if s != nil && s.queue != nil {
		s.queue.Stop()
	}
}

// Record stores entry. Failures are logged and never returned to the caller.
func (s *AuditService) Record(ctx context.Context, entry models.AuditEntry) {
	if s == nil || s.repo == nil {
		return
	}

	log := &models.AuditLog{
		Action:    entry.Action,
		Resource:  entry.Resource,
		IPAddress: entry.Meta.IP,
		UserAgent: entry.Meta.UserAgent,
	}
	if id := entry.Meta.ActorID(); id > 0 {
		log.AdminID = null.Int64From(id)
	}
	if entry.ResourceID != "" {
		log.ResourceID = null.StringFrom(entry.ResourceID)
	}
	if len(entry.Details) > 0 {
		payload, err := json.Marshal(entry.Details)
		if err != nil {
			s.logger.Warn("failed to encode audit details", zap.String("action", entry.Action), zap.Error(err))
		} else {
			log.Details = null.JSONFrom(payload)
		}
	}

	if s.queue != nil {
		err := s.queue.Enqueue(log)
		if err == nil {
			return
		}
		s.logger.Warn("audit queue unavailable, writing inline", zap.Error(err))
	}

	if err := s.write(ctx, log); err != nil {
		s.logger.Warn("failed to record audit log",
			zap.String("action", entry.Action),
			zap.String("resource", entry.Resource),
			zap.Error(err))
	}
}

func (s *AuditService) write(ctx context.Context, log *models.AuditLog) error {
	return s.repo.Create(ctx, log)
}

// List returns one page of audit logs, newest first.
func (s *AuditService) List(ctx context.Context, params query.Params) (*models.AuditLogList, error) {
	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list audit logs")
	}
	return &models.AuditLogList{Logs: result.Items, Total: result.Total}, nil
}

// CountByAction aggregates the audit trail per action.
func (s *AuditService) CountByAction(ctx context.Context) ([]models.AuditActionCount, error) {
	counts, err := s.repo.CountByAction(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to count audit logs")
	}
	return counts, nil
}
