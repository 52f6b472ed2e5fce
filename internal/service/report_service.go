package service

import (
	"context"
	"database/sql/driver"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/reflectx"
	"go.uber.org/zap"

	"github.com/noah-isme/spi-admin-api/internal/models"
	"github.com/noah-isme/spi-admin-api/internal/repository"
	appErrors "github.com/noah-isme/spi-admin-api/pkg/errors"
	"github.com/noah-isme/spi-admin-api/pkg/export"
)

type reportStudentSource interface {
	ListAll(ctx context.Context) ([]models.Student, error)
	CountByDepartment(ctx context.Context) ([]repository.DepartmentCount, error)
}

type reportChildSource interface {
	ListAll(ctx context.Context) ([]models.Child, error)
	CountByAgeBucket(ctx context.Context) ([]repository.AgeBucket, error)
}

type reportStatsSource interface {
	Totals(ctx context.Context) (*models.Stats, error)
}

type reportAuditSource interface {
	CountByAction(ctx context.Context) ([]models.AuditActionCount, error)
}

type reportCounter interface {
	RecordReportExport(report, format string)
}

// Report kinds.
const (
	ReportStudents  = "students"
	ReportChildren  = "children"
	ReportAnalytics = "analytics"
)

// Report is a rendered download.
type Report struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ReportService renders record listings and analytics as CSV or PDF.
type ReportService struct {
	students reportStudentSource
	children reportChildSource
	stats    reportStatsSource
	audits   reportAuditSource
	audit    auditRecorder
	metrics  reportCounter
	logger   *zap.Logger
	mapper   *reflectx.Mapper
	now      func() time.Time
}

// NewReportService creates an instance of ReportService.
func NewReportService(students reportStudentSource, children reportChildSource, stats reportStatsSource, audits reportAuditSource, audit auditRecorder, metrics reportCounter, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		students: students,
		children: children,
		stats:    stats,
		audits:   audits,
		audit:    audit,
		metrics:  metrics,
		logger:   logger,
		mapper:   reflectx.NewMapperFunc("db", strings.ToLower),
		now:      time.Now,
	}
}

// Generate builds the report of kind in the requested format (csv when empty).
func (s *ReportService) Generate(ctx context.Context, kind, rawFormat string, meta models.RequestMeta) (*Report, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Unsupported report format")
	}

	var table export.Table
	switch kind {
	case ReportStudents:
		table, err = s.studentTable(ctx)
	case ReportChildren:
		table, err = s.childTable(ctx)
	case ReportAnalytics:
		table, err = s.analyticsTable(ctx)
	default:
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Unknown report")
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to collect report data")
	}

	body, err := export.RendererFor(format).Render(table)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render report")
	}

	if s.metrics != nil {
		s.metrics.RecordReportExport(kind, string(format))
	}
	if s.audit != nil {
		s.audit.Record(ctx, models.AuditEntry{
			Meta:       meta,
			Action:     models.AuditActionReportExport,
			Resource:   models.AuditResourceReport,
			ResourceID: kind,
			Details:    map[string]interface{}{"format": format, "rows": len(table.Rows)},
		})
	}

	return &Report{
		Filename:    fmt.Sprintf("%s-%s.%s", kind, s.now().UTC().Format("20060102"), format.Extension()),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func (s *ReportService) studentTable(ctx context.Context) (export.Table, error) {
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return export.Table{}, err
	}
	rows := make([][]string, 0, len(students))
	for i := range students {
		rows = append(rows, s.cells(&students[i], repository.StudentColumns))
	}
	return export.Table{Title: "Students", Headers: repository.StudentColumns, Rows: rows}, nil
}

func (s *ReportService) childTable(ctx context.Context) (export.Table, error) {
	children, err := s.children.ListAll(ctx)
	if err != nil {
		return export.Table{}, err
	}
	rows := make([][]string, 0, len(children))
	for i := range children {
		rows = append(rows, s.cells(&children[i], repository.ChildColumns))
	}
	return export.Table{Title: "Children", Headers: repository.ChildColumns, Rows: rows}, nil
}

func (s *ReportService) analyticsTable(ctx context.Context) (export.Table, error) {
	stats, err := s.stats.Totals(ctx)
	if err != nil {
		return export.Table{}, err
	}
	departments, err := s.students.CountByDepartment(ctx)
	if err != nil {
		return export.Table{}, err
	}
	ages, err := s.children.CountByAgeBucket(ctx)
	if err != nil {
		return export.Table{}, err
	}
	actions, err := s.audits.CountByAction(ctx)
	if err != nil {
		return export.Table{}, err
	}

	rows := [][]string{
		{"totals", "students", strconv.Itoa(stats.TotalStudents)},
		{"totals", "active students", strconv.Itoa(stats.TotalStudents)},
		{"totals", "children", strconv.Itoa(stats.TotalChildren)},
		{"totals", "admins", strconv.Itoa(stats.TotalAdmins)},
	}
	for _, d := range departments {
		rows = append(rows, []string{"department", d.Department, strconv.Itoa(d.Count)})
	}
	for _, a := range ages {
		rows = append(rows, []string{"child age", a.Label, strconv.Itoa(a.Count)})
	}
	for _, a := range actions {
		rows = append(rows, []string{"audit action", a.Action, strconv.Itoa(a.Count)})
	}
	return export.Table{Title: "Analytics", Headers: []string{"section", "metric", "value"}, Rows: rows}, nil
}

// cells renders the named db columns of record as text.
func (s *ReportService) cells(record interface{}, columns []string) []string {
	fields := s.mapper.FieldMap(reflect.ValueOf(record))
	out := make([]string, len(columns))
	for i, col := range columns {
		if field, ok := fields[col]; ok {
			out[i] = formatCell(field.Interface())
		}
	}
	return out
}

func formatCell(v interface{}) string {
	if valuer, ok := v.(driver.Valuer); ok {
		dv, err := valuer.Value()
		if err != nil {
			return ""
		}
		v = dv
	}
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}
