package models

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin         = "LOGIN"
	AuditActionLoginFailed   = "LOGIN_FAILED"
	AuditActionLogout        = "LOGOUT"
	AuditActionAdminCreate   = "ADMIN_CREATE"
	AuditActionAdminUpdate   = "ADMIN_UPDATE"
	AuditActionAdminDelete   = "ADMIN_DELETE"
	AuditActionStudentCreate = "STUDENT_CREATE"
	AuditActionStudentUpdate = "STUDENT_UPDATE"
	AuditActionStudentDelete = "STUDENT_DELETE"
	AuditActionChildCreate   = "CHILD_CREATE"
	AuditActionChildUpdate   = "CHILD_UPDATE"
	AuditActionChildDelete   = "CHILD_DELETE"
	AuditActionReportExport  = "REPORT_EXPORT"
)

// Audited resources.
const (
	AuditResourceAuth    = "auth"
	AuditResourceAdmin   = "admin"
	AuditResourceStudent = "student"
	AuditResourceChild   = "child"
	AuditResourceReport  = "report"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         int64       `db:"id" json:"id"`
	AdminID    null.Int64  `db:"admin_id" json:"admin_id"`
	Action     string      `db:"action" json:"action"`
	Resource   string      `db:"resource" json:"resource"`
	ResourceID null.String `db:"resource_id" json:"resource_id"`
	Details    null.JSON   `db:"details" json:"details"`
	IPAddress  string      `db:"ip_address" json:"ip_address"`
	UserAgent  string      `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
}

// RequestMeta identifies who issued a request and from where.
type RequestMeta struct {
	Actor     *Identity
	IP        string
	UserAgent string
}

// ActorID returns the acting admin id, or 0 for anonymous requests.
func (m RequestMeta) ActorID() int64 {
	if m.Actor == nil {
		return 0
	}
	return m.Actor.AdminID
}

// AuditEntry is an audit record about to be written.
type AuditEntry struct {
	Meta       RequestMeta
	Action     string
	Resource   string
	ResourceID string
	Details    map[string]interface{}
}

// AuditLogList is the paginated audit listing.
type AuditLogList struct {
	Logs  []AuditLog `json:"logs"`
	Total int        `json:"total"`
}

// AuditActionCount aggregates audit rows per action.
type AuditActionCount struct {
	Action string `db:"action" json:"action"`
	Count  int    `db:"count" json:"count"`
}
