package core

import (
	"strconv"
	"time"
)

// CellKind represents how a parsed CSV cell is typed.
type CellKind int

const (
	CellMissing CellKind = iota
	CellText
	CellNumber
)

// Cell is a single value in a table column.
type Cell struct {
	Kind   CellKind
	Text   string  // Source text (also set for numbers)
	Number float64 // Parsed value when Kind is CellNumber
}

// MissingCell returns an empty cell.
func MissingCell() Cell {
	return Cell{Kind: CellMissing}
}

// TextCell returns a text cell holding s.
func TextCell(s string) Cell {
	return Cell{Kind: CellText, Text: s}
}

// NumberCell returns a numeric cell. The text is the shortest
// representation of f.
func NumberCell(f float64) Cell {
	return Cell{Kind: CellNumber, Text: strconv.FormatFloat(f, 'f', -1, 64), Number: f}
}

// IsMissing reports whether the cell has no value.
func (c Cell) IsMissing() bool {
	return c.Kind == CellMissing
}

// String returns the cell's text form. Numbers keep their source spelling.
func (c Cell) String() string {
	if c.Kind == CellMissing {
		return ""
	}
	return c.Text
}

// Column is a named, ordered sequence of cells.
type Column struct {
	Name  string
	Cells []Cell
}

// Table is an ordered set of equal-length columns.
type Table struct {
	Name    string // Display name, usually the uploaded file name
	Columns []Column
}

// RawFile is an uploaded byte stream plus its display name.
type RawFile struct {
	Name string
	Data []byte
}

// Suggestion is the proposed final name for one column.
type Suggestion struct {
	Column      string `json:"column"`
	Suggested   string `json:"suggested"`
	Label       Label  `json:"label,omitempty"` // Set only for placeholder columns
	Placeholder bool   `json:"placeholder"`
}

// ColumnSummary describes a column for display.
type ColumnSummary struct {
	Name       string     `json:"name"`
	Kind       string     `json:"kind"`
	Missing    int        `json:"missing"`
	Suggestion Suggestion `json:"suggestion"`
}

// TableSummary is the preview of a session's current table.
type TableSummary struct {
	ID       string          `json:"id"`
	FileName string          `json:"file_name"`
	Encoding string          `json:"encoding"`
	Rows     int             `json:"rows"`
	Columns  []ColumnSummary `json:"columns"`
	Preview  [][]string      `json:"preview"`
}

// FileResult is the outcome of reading one file in a batch.
// Exactly one of Table and Error is set.
type FileResult struct {
	FileName string        `json:"file_name"`
	Table    *TableSummary `json:"table,omitempty"`
	Error    string        `json:"error,omitempty"`
	Action   string        `json:"action,omitempty"`
	Code     string        `json:"code,omitempty"`
	Duration time.Duration `json:"-"`
}

// OK reports whether the file was read.
func (r FileResult) OK() bool {
	return r.Table != nil
}

// TransformRequest lists the edits to apply to a session's table.
// Edits run in order: drop, fill missing, rename.
type TransformRequest struct {
	Drop             []string          `json:"drop"`
	FillMissing      bool              `json:"fill_missing"`
	FillValue        string            `json:"fill_value,omitempty"`
	Rename           map[string]string `json:"rename"`
	ApplySuggestions bool              `json:"apply_suggestions"`
}

// ExportResult is a rendered workbook ready for download.
type ExportResult struct {
	FileName string
	Data     []byte
}

func (k CellKind) String() string {
	switch k {
	case CellText:
		return "text"
	case CellNumber:
		return "numeric"
	default:
		return "missing"
	}
}
