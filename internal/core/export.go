package core

// export.go renders a finalized table as an OOXML workbook.
//
// Layout contract:
//   - A single sheet named "Data"
//   - Row 1 holds the column names in bold
//   - Numbers are written as numbers, text as text, missing cells stay empty
//   - Each column is as wide as its longest value (header included) plus 2

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the only sheet in exported workbooks.
const SheetName = "Data"

// XLSXContentType is the MIME type of exported workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// columnPadding is added to the longest value when sizing a column.
const columnPadding = 2

// maxColumnWidth is the widest column a workbook accepts.
const maxColumnWidth = 255

// ExportFileName returns the download name for a source file name:
// the base name with its extension replaced by ".xlsx".
func ExportFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == "/" || base == "" {
		base = "export"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".xlsx"
}

// ExportXLSX renders t and returns the workbook bytes.
func ExportXLSX(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteXLSX renders t as a workbook into w.
func WriteXLSX(w io.Writer, t *Table) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}

	for ci, col := range t.Columns {
		colName, err := excelize.ColumnNumberToName(ci + 1)
		if err != nil {
			return fmt.Errorf("export: column %d: %w", ci+1, err)
		}

		if err := f.SetCellStr(SheetName, colName+"1", col.Name); err != nil {
			return fmt.Errorf("export: header %q: %w", col.Name, err)
		}

		for ri, cell := range col.Cells {
			if err := writeCell(f, fmt.Sprintf("%s%d", colName, ri+2), cell); err != nil {
				return fmt.Errorf("export: %q row %d: %w", col.Name, ri+1, err)
			}
		}

		if err := f.SetColWidth(SheetName, colName, colName, columnWidth(col)); err != nil {
			return fmt.Errorf("export: width %q: %w", col.Name, err)
		}
	}

	if len(t.Columns) > 0 {
		if err := boldHeader(f, len(t.Columns)); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

// writeCell writes one typed cell. Missing cells are skipped.
func writeCell(f *excelize.File, ref string, cell Cell) error {
	switch cell.Kind {
	case CellNumber:
		return f.SetCellFloat(SheetName, ref, cell.Number, -1, 64)
	case CellText:
		return f.SetCellStr(SheetName, ref, cell.Text)
	default:
		return nil
	}
}

// boldHeader applies a bold font to row 1.
func boldHeader(f *excelize.File, ncols int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(ncols, 1)
	if err != nil {
		return fmt.Errorf("export: header range: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", last, style); err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}
	return nil
}

// columnWidth is the longest stringified value in the column, header
// included, plus padding, capped at maxColumnWidth. Missing cells count as
// zero length.
func columnWidth(col Column) float64 {
	longest := utf8.RuneCountInString(col.Name)
	for _, c := range col.Cells {
		if n := utf8.RuneCountInString(exportText(c)); n > longest {
			longest = n
		}
	}
	return math.Min(float64(longest+columnPadding), maxColumnWidth)
}

// exportText is the text a cell shows once written: numbers in their
// shortest form, text verbatim.
func exportText(c Cell) string {
	if c.Kind == CellNumber {
		return NumberCell(c.Number).Text
	}
	return c.String()
}
