package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat defaults to xlsx when value is empty.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "xlsx", "excel":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, value)
	}
}

// Label is the human name used in activity log details.
func (f Format) Label() string {
	switch f {
	case FormatCSV:
		return "CSV"
	case FormatPDF:
		return "PDF"
	default:
		return "Excel"
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
}

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func Render(format Format, table Table) (*File, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatCSV:
		data, err = BuildCSV(table)
	case FormatXLSX:
		data, err = BuildXLSX(table)
	case FormatPDF:
		data, err = BuildPDF(table, time.Now())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s report: %w", table.Name, err)
	}
	return &File{
		Name:        fmt.Sprintf("%s.%s", table.Name, format),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

func BuildCSV(table Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(table.Headers); err != nil {
		return nil, err
	}
	if err := w.WriteAll(table.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func BuildXLSX(table Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", table.Sheet); err != nil {
		return nil, err
	}

	for col, header := range table.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(table.Sheet, cell, header); err != nil {
			return nil, err
		}
	}
	for i, row := range table.Rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(table.Sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const (
	pdfMargin   = 10.0
	pdfRowH     = 5.0
	pdfFontSize = 6.0
)

// BuildPDF renders the table on landscape A4 pages with the header row
// repeated on every page. Cells wider than their column are truncated.
func BuildPDF(table Table, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	colW := (pageW - 2*pdfMargin) / float64(max(len(table.Headers), 1))

	header := func() {
		pdf.SetFont("Arial", "B", pdfFontSize)
		for _, h := range table.Headers {
			pdf.CellFormat(colW, pdfRowH, fit(pdf, tr(h), colW), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", pdfFontSize)
	}

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, tr(table.Title+" Report"))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 8)
	pdf.Cell(0, 5, fmt.Sprintf("Generated: %s    Rows: %d", generatedAt.Format(time.RFC3339), len(table.Rows)))
	pdf.Ln(8)

	header()
	_, pageH := pdf.GetPageSize()
	for _, row := range table.Rows {
		if pdf.GetY()+pdfRowH > pageH-pdfMargin {
			pdf.AddPage()
			header()
		}
		for _, value := range row {
			pdf.CellFormat(colW, pdfRowH, fit(pdf, tr(value), colW), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fit works on bytes since s is already in the single-byte core font encoding.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	limit := width - 1
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"..") > limit {
		s = s[:len(s)-1]
	}
	return s + ".."
}
