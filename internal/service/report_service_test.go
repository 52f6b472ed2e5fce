package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/noah-isme/spi-admin-api/internal/models"
	"github.com/noah-isme/spi-admin-api/internal/repository"
	appErrors "github.com/noah-isme/spi-admin-api/pkg/errors"
)

type reportSources struct {
	students []models.Student
}

func (r *reportSources) ListAll(ctx context.Context) ([]models.Student, error) {
	return r.students, nil
}

func (r *reportSources) CountByDepartment(ctx context.Context) ([]repository.DepartmentCount, error) {
	return []repository.DepartmentCount{{Department: "Science", Count: 1}}, nil
}

type reportChildren struct {
	children []models.Child
}

func (r *reportChildren) ListAll(ctx context.Context) ([]models.Child, error) {
	return r.children, nil
}

func (r *reportChildren) CountByAgeBucket(ctx context.Context) ([]repository.AgeBucket, error) {
	return []repository.AgeBucket{{Label: "6-12", Count: 1}}, nil
}

type exportCounter struct {
	exports []string
}

func (e *exportCounter) RecordReportExport(report, format string) {
	e.exports = append(e.exports, report+"/"+format)
}

func newTestReportService() (*ReportService, *recordedAudit, *exportCounter) {
	birth, _ := models.ParseDate("2010-05-04")
	students := &reportSources{students: []models.Student{{
		ID: 1,
		StudentFields: models.StudentFields{
			FirstName:  null.StringFrom("Ana"),
			LastName:   null.StringFrom("Cruz"),
			Department: null.StringFrom("Science"),
			BirthDate:  birth,
			FatherAge:  null.IntFrom(41),
		},
	}}}
	children := &reportChildren{children: []models.Child{{
		ID:          2,
		ChildFields: models.ChildFields{StudentID: 1, ChildName: null.StringFrom("Leo"), ChildAge: null.IntFrom(7)},
	}}}
	stats := &stubStatsRepo{stats: &models.Stats{TotalStudents: 1, TotalChildren: 1, TotalAdmins: 1}}
	audits := &captureAuditRepo{}
	audit := &recordedAudit{}
	counter := &exportCounter{}

	svc := NewReportService(students, children, stats, audits, audit, counter, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }
	return svc, audit, counter
}

func readCSV(t *testing.T, body []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestReportStudentsCSV(t *testing.T) {
	svc, audit, counter := newTestReportService()

	report, err := svc.Generate(context.Background(), ReportStudents, "", models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "students-20240301.csv", report.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", report.ContentType)

	records := readCSV(t, report.Body)
	require.Len(t, records, 2)
	assert.Equal(t, repository.StudentColumns, records[0])

	row := map[string]string{}
	for i, col := range records[0] {
		row[col] = records[1][i]
	}
	assert.Equal(t, "1", row["id"])
	assert.Equal(t, "Ana", row["first_name"])
	assert.Equal(t, "2010-05-04", row["birth_date"])
	assert.Equal(t, "41", row["father_age"])
	assert.Equal(t, "", row["middle_name"])

	assert.Equal(t, []string{models.AuditActionReportExport}, audit.actions())
	assert.Equal(t, []string{"students/csv"}, counter.exports)
}

func TestReportChildrenPDF(t *testing.T) {
	svc, _, _ := newTestReportService()

	report, err := svc.Generate(context.Background(), ReportChildren, "pdf", models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", report.ContentType)
	assert.True(t, bytes.HasPrefix(report.Body, []byte("%PDF")))
}

func TestReportAnalytics(t *testing.T) {
	svc, _, _ := newTestReportService()

	report, err := svc.Generate(context.Background(), ReportAnalytics, "csv", models.RequestMeta{})
	require.NoError(t, err)

	records := readCSV(t, report.Body)
	assert.Equal(t, []string{"section", "metric", "value"}, records[0])
	assert.Contains(t, records, []string{"totals", "active students", "1"})
	assert.Contains(t, records, []string{"department", "Science", "1"})
	assert.Contains(t, records, []string{"child age", "6-12", "1"})
}

func TestReportRejectsUnknownInputs(t *testing.T) {
	svc, _, _ := newTestReportService()

	_, err := svc.Generate(context.Background(), ReportStudents, "xlsx", models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Generate(context.Background(), "teachers", "csv", models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
