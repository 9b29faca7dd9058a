// Package export renders financial reports as CSV and XLSX downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// Format selects the output encoding for a report download
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a requested format, defaulting to CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", s)
	}
}

// ContentType returns the MIME type for a format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename builds a download filename for a report.
func Filename(base string, f Format, ts time.Time) string {
	return fmt.Sprintf("%s_%s.%s", base, ts.Format("20060102"), f)
}

// Section is one titled block of tabular data within a document.
type Section struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Document is a report flattened into sections ready for encoding.
type Document struct {
	// Name becomes the sheet name in XLSX output
	Name     string
	Sections []Section
}

// WriteCSV encodes the document as CSV. Sections are separated by a
// blank line and introduced by their title.
func WriteCSV(w io.Writer, doc *Document) error {
	// UTF-8 BOM so Excel detects the encoding
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	for i, section := range doc.Sections {
		if i > 0 {
			if err := writer.Write([]string{}); err != nil {
				return err
			}
		}
		if section.Title != "" {
			if err := writer.Write([]string{section.Title}); err != nil {
				return err
			}
		}
		if len(section.Headers) > 0 {
			if err := writer.Write(section.Headers); err != nil {
				return err
			}
		}
		for _, row := range section.Rows {
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteXLSX encodes the document as a single-sheet workbook.
func WriteXLSX(w io.Writer, doc *Document) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := doc.Name
	if sheet == "" {
		sheet = "Report"
	}

	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	// Drop the default sheet created by excelize
	if sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	row := 1
	maxCols := 0
	for _, section := range doc.Sections {
		if section.Title != "" {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetCellValue(sheet, cell, section.Title); err != nil {
				return err
			}
			row++
		}
		if len(section.Headers) > 0 {
			if err := setRow(f, sheet, row, section.Headers); err != nil {
				return err
			}
			row++
		}
		for _, values := range section.Rows {
			if err := setRow(f, sheet, row, values); err != nil {
				return err
			}
			row++
		}
		row++ // blank separator

		if len(section.Headers) > maxCols {
			maxCols = len(section.Headers)
		}
	}

	if maxCols > 0 {
		last, _ := excelize.ColumnNumberToName(maxCols)
		_ = f.SetColWidth(sheet, "A", last, 18)
	}

	return f.Write(w)
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}
