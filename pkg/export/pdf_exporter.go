package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// SlipField is one labelled line on an approval slip.
type SlipField struct {
	Label string
	Value string
}

// SlipData describes the printable approval slip for a decided request.
type SlipData struct {
	Title     string
	Fields    []SlipField
	Decisions Dataset
	FooterRef string
}

// PDFExporter renders approval slips and tabular datasets.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// RenderSlip creates the outing approval slip: a field block followed by
// the per-stage decision table.
func (e *PDFExporter) RenderSlip(slip SlipData) ([]byte, error) {
	if len(slip.Fields) == 0 {
		return nil, fmt.Errorf("slip requires at least one field")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, strings.ToUpper(slip.Title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, field := range slip.Fields {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(50, 8, field.Label, "", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 8, field.Value, "", 1, "", false, 0, "")
	}

	if len(slip.Decisions.Headers) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, "Decisions", "", 1, "", false, 0, "")
		e.renderTable(pdf, slip.Decisions)
	}

	if slip.FooterRef != "" {
		pdf.Ln(8)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Ref: %s", slip.FooterRef), "", 1, "", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render slip pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	e.renderTable(pdf, data)

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) renderTable(pdf *gofpdf.Fpdf, data Dataset) {
	if len(data.Headers) == 0 {
		return
	}
	pdf.SetFont("Arial", "B", 10)
	colWidth := 180.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
}
