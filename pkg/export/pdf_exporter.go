package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPortraitWidth  = 190.0
	pdfLandscapeWidth = 277.0
	pdfMinColumnWidth = 18.0
)

// PDFExporter renders tables into a basic tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body. Wide
// tables switch to landscape and are split into column groups, one group per
// page run.
func (e *PDFExporter) Render(table Table) ([]byte, error) {
	if len(table.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}

	orientation, width := "P", pdfPortraitWidth
	if float64(len(table.Headers))*pdfMinColumnWidth > pdfPortraitWidth {
		orientation, width = "L", pdfLandscapeWidth
	}
	perPage := int(width / pdfMinColumnWidth)

	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for start := 0; start < len(table.Headers); start += perPage {
		end := start + perPage
		if end > len(table.Headers) {
			end = len(table.Headers)
		}
		pdf.AddPage()

		if table.Title != "" {
			pdf.SetFont("Arial", "B", 14)
			pdf.CellFormat(0, 10, tr(strings.ToUpper(table.Title)), "", 1, "C", false, 0, "")
			pdf.Ln(5)
		}

		colWidth := width / float64(end-start)
		pdf.SetFont("Arial", "B", 8)
		for _, header := range table.Headers[start:end] {
			pdf.CellFormat(colWidth, 8, tr(fit(pdf, header, colWidth)), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 8)
		for _, row := range table.Rows {
			for i := start; i < end; i++ {
				pdf.CellFormat(colWidth, 7, tr(fit(pdf, cell(row, i), colWidth)), "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// fit truncates value so it fits in a cell of width mm.
func fit(pdf *gofpdf.Fpdf, value string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(value) <= limit {
		return value
	}
	runes := []rune(value)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
