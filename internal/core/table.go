package core

// table.go implements the in-memory table and the edits users can apply
// before export: drop columns, fill missing values, rename columns.
//
// Cells are typed when the table is built from CSV records:
//   - Raw values listed in naValues become missing cells
//   - A column whose non-missing values are all numbers holds numeric cells
//   - Anything else is text
//
// All edit methods validate first and mutate second, so a failed edit leaves
// the table untouched.

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrUnknownColumn is returned when an edit names a column the table lacks.
	ErrUnknownColumn = errors.New("column not found")

	// ErrDuplicateColumn is returned when an edit would leave two columns
	// with the same name.
	ErrDuplicateColumn = errors.New("duplicate column name")

	// ErrEmptyColumnName is returned when a rename targets an empty name.
	ErrEmptyColumnName = errors.New("empty column name")
)

// DefaultFillValue replaces missing cells when no fill value is given.
const DefaultFillValue = "-"

// numericRegex validates that a string is a plain decimal number.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// naValues are raw cell texts treated as missing.
var naValues = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// IsNAValue reports whether raw cell text is read as a missing value.
func IsNAValue(s string) bool {
	return naValues[s]
}

// NewTable builds a table from a header row and data records.
// Empty header names become "Unnamed: <index>" and repeated names are
// suffixed ".1", ".2", ... so every column name is unique.
func NewTable(name string, header []string, records [][]string) (*Table, error) {
	names := normalizeHeader(header)

	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Name: n, Cells: make([]Cell, 0, len(records))}
	}

	for r, rec := range records {
		if len(rec) > len(names) {
			return nil, fmt.Errorf("invalid csv: row %d has %d fields, header has %d", r+2, len(rec), len(names))
		}
		for i := range cols {
			raw := ""
			if i < len(rec) {
				raw = rec[i]
			}
			if IsNAValue(raw) {
				cols[i].Cells = append(cols[i].Cells, MissingCell())
			} else {
				cols[i].Cells = append(cols[i].Cells, TextCell(raw))
			}
		}
	}

	for i := range cols {
		inferNumeric(&cols[i])
	}

	return &Table{Name: name, Columns: cols}, nil
}

// normalizeHeader names empty header cells and de-duplicates repeats.
func normalizeHeader(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	counts := make(map[string]int, len(header))

	for i, h := range header {
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		n := h
		for used[n] {
			counts[h]++
			n = fmt.Sprintf("%s.%d", h, counts[h])
		}
		used[n] = true
		names[i] = n
	}
	return names
}

// inferNumeric converts a column to numeric cells when every non-missing
// value is a number. Source text is kept for display and classification.
func inferNumeric(col *Column) {
	seen := false
	for _, c := range col.Cells {
		if c.IsMissing() {
			continue
		}
		if !numericRegex.MatchString(c.Text) {
			return
		}
		seen = true
	}
	if !seen {
		return
	}

	for i, c := range col.Cells {
		if c.IsMissing() {
			continue
		}
		f, err := strconv.ParseFloat(c.Text, 64)
		if err != nil {
			// Out of range values stay text; the column stays mixed.
			continue
		}
		col.Cells[i] = Cell{Kind: CellNumber, Text: c.Text, Number: f}
	}
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// DropColumns removes the named columns. If any name is unknown, nothing
// is removed.
func (t *Table) DropColumns(names ...string) error {
	if len(names) == 0 {
		return nil
	}

	drop := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := t.Column(n); !ok {
			return fmt.Errorf("drop %q: %w", n, ErrUnknownColumn)
		}
		drop[n] = true
	}

	kept := t.Columns[:0]
	for _, c := range t.Columns {
		if !drop[c.Name] {
			kept = append(kept, c)
		}
	}
	t.Columns = kept
	return nil
}

// FillMissing replaces every missing cell with a text cell holding value.
// Returns the number of cells filled.
func (t *Table) FillMissing(value string) int {
	filled := 0
	for ci := range t.Columns {
		cells := t.Columns[ci].Cells
		for ri := range cells {
			if cells[ri].IsMissing() {
				cells[ri] = TextCell(value)
				filled++
			}
		}
	}
	return filled
}

// RenameColumns renames columns using an old -> new mapping. Columns not in
// the mapping keep their names. The table is unchanged if the mapping names
// an unknown column, contains an empty name, or would produce duplicates.
func (t *Table) RenameColumns(mapping map[string]string) error {
	if len(mapping) == 0 {
		return nil
	}

	for old, renamed := range mapping {
		if _, ok := t.Column(old); !ok {
			return fmt.Errorf("rename %q: %w", old, ErrUnknownColumn)
		}
		if strings.TrimSpace(renamed) == "" {
			return fmt.Errorf("rename %q: %w", old, ErrEmptyColumnName)
		}
	}

	final := make([]string, len(t.Columns))
	seen := make(map[string]bool, len(t.Columns))
	for i, c := range t.Columns {
		n := c.Name
		if renamed, ok := mapping[n]; ok {
			n = renamed
		}
		if seen[n] {
			return fmt.Errorf("rename to %q: %w", n, ErrDuplicateColumn)
		}
		seen[n] = true
		final[i] = n
	}

	for i := range t.Columns {
		t.Columns[i].Name = final[i]
	}
	return nil
}

// Head returns a copy of the table limited to the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 || n > t.NumRows() {
		n = t.NumRows()
	}
	out := &Table{Name: t.Name, Columns: make([]Column, len(t.Columns))}
	for i, c := range t.Columns {
		cells := make([]Cell, n)
		copy(cells, c.Cells[:n])
		out.Columns[i] = Column{Name: c.Name, Cells: cells}
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	return t.Head(-1)
}

// Rows returns the table as text rows, without the header.
// Missing cells are empty strings.
func (t *Table) Rows() [][]string {
	rows := make([][]string, t.NumRows())
	for r := range rows {
		row := make([]string, len(t.Columns))
		for c := range t.Columns {
			row[c] = t.Columns[c].Cells[r].String()
		}
		rows[r] = row
	}
	return rows
}

// Validate checks the invariants required before export: column names are
// non-empty and unique, and all columns have the same length.
func (t *Table) Validate() error {
	seen := make(map[string]bool, len(t.Columns))
	rows := t.NumRows()
	for _, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return ErrEmptyColumnName
		}
		if seen[c.Name] {
			return fmt.Errorf("%q: %w", c.Name, ErrDuplicateColumn)
		}
		seen[c.Name] = true
		if len(c.Cells) != rows {
			return fmt.Errorf("invalid csv: column %q has %d rows, want %d", c.Name, len(c.Cells), rows)
		}
	}
	return nil
}

// Sample returns up to n leading non-missing values of the column as text.
func (c *Column) Sample(n int) []string {
	out := make([]string, 0, n)
	for _, cell := range c.Cells {
		if len(out) >= n {
			break
		}
		if cell.IsMissing() {
			continue
		}
		out = append(out, cell.String())
	}
	return out
}

// MissingCount returns the number of missing cells in the column.
func (c *Column) MissingCount() int {
	n := 0
	for _, cell := range c.Cells {
		if cell.IsMissing() {
			n++
		}
	}
	return n
}

// Kind summarizes the column type: "numeric", "text", or "empty".
func (c *Column) Kind() string {
	kind := "empty"
	for _, cell := range c.Cells {
		switch cell.Kind {
		case CellText:
			return CellText.String()
		case CellNumber:
			kind = CellNumber.String()
		}
	}
	return kind
}
