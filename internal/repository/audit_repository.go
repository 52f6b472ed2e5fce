package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/spi-admin-api/internal/models"
	"github.com/noah-isme/spi-admin-api/internal/query"
)

var auditColumns = []string{"id", "admin_id", "action", "resource", "resource_id", "details", "ip_address", "user_agent", "created_at"}

var auditList = query.List{Table: "audit_logs", Columns: auditColumns}

// AuditRepository stores and lists audit trail records.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new instance of AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create stores an audit log entry and fills in its id and timestamp.
func (r *AuditRepository) Create(ctx context.Context, log *models.AuditLog) error {
	var details interface{}
	if log.Details.Valid {
		details = string(log.Details.JSON)
	}
	q := query.Builder.Insert("audit_logs").
		Columns("admin_id", "action", "resource", "resource_id", "details", "ip_address", "user_agent").
		Values(log.AdminID, log.Action, log.Resource, log.ResourceID, details, log.IPAddress, log.UserAgent).
		Suffix("RETURNING id, created_at")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build audit log insert: %w", err)
	}
	if err := r.db.QueryRowxContext(ctx, sqlStr, args...).Scan(&log.ID, &log.CreatedAt); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

// List returns audit logs newest first.
func (r *AuditRepository) List(ctx context.Context, params query.Params) (query.Result[models.AuditLog], error) {
	params.Search = ""
	params.AgeRange = ""
	return listPage[models.AuditLog](ctx, r.db, auditList, params)
}

// CountByAction aggregates audit logs per action.
func (r *AuditRepository) CountByAction(ctx context.Context) ([]models.AuditActionCount, error) {
	counts := make([]models.AuditActionCount, 0)
	const q = `SELECT action, COUNT(*) AS count FROM audit_logs GROUP BY action ORDER BY count DESC, action ASC`
	if err := r.db.SelectContext(ctx, &counts, q); err != nil {
		return nil, fmt.Errorf("count audit logs by action: %w", err)
	}
	return counts, nil
}
