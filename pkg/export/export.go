// Package export renders tabular reports as CSV or PDF documents.
package export

import (
	"fmt"
	"strings"
)

// Format identifies a report encoding.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat resolves a format name; an empty name selects CSV.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Extension returns the file extension of the format, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Table is the content of a report.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Renderer encodes a table into a document.
type Renderer interface {
	Render(table Table) ([]byte, error)
}

// RendererFor returns the renderer of format.
func RendererFor(format Format) Renderer {
	if format == FormatPDF {
		return NewPDFExporter()
	}
	return NewCSVExporter()
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
