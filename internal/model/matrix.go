package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrColumnOutOfRange is returned when a column index does not address a
// field of the data rows.
var ErrColumnOutOfRange = errors.New("column index out of range")

type SortDirection int

const (
	Ascending SortDirection = iota + 1
	Descending
)

func (d SortDirection) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	}
	return fmt.Sprintf("SortDirection(%d)", int(d))
}

// ParseSortDirection accepts asc/ascending and desc/descending.
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return 0, fmt.Errorf("unknown sort direction %q", s)
}

// Row is one line of the buffer split into fields.
type Row []string

// Matrix is a parsed buffer: every row has the same width. When UseHeader is
// set the first added row is held apart as Header and never sorted.
type Matrix struct {
	Delimiter rune
	UseHeader bool
	Header    Row
	Rows      []Row

	headerSet bool
}

func NewMatrix(delimiter rune, useHeader bool) *Matrix {
	return &Matrix{Delimiter: delimiter, UseHeader: useHeader}
}

// AddRow routes the first row to the header in header mode and every other
// row to the data rows. Callers must add rows in buffer order.
func (m *Matrix) AddRow(row Row) {
	if m.UseHeader && !m.headerSet {
		m.Header = row
		m.headerSet = true
		return
	}
	m.Rows = append(m.Rows, row)
}

// HasHeader reports whether a header row was captured.
func (m *Matrix) HasHeader() bool { return m.UseHeader && m.headerSet }

// Len is the number of data rows.
func (m *Matrix) Len() int { return len(m.Rows) }

// Width is the column count, 0 for an empty matrix.
func (m *Matrix) Width() int {
	if m.HasHeader() {
		return len(m.Header)
	}
	if len(m.Rows) > 0 {
		return len(m.Rows[0])
	}
	return 0
}

// SortColumn stably sorts the data rows by the given column using byte-wise
// string comparison. Descending reverses the comparison, so equal keys keep
// their input order in both directions.
func (m *Matrix) SortColumn(column int, direction SortDirection) error {
	if column < 0 {
		return fmt.Errorf("sort column %d: %w", column, ErrColumnOutOfRange)
	}
	if w := m.Width(); w > 0 && column >= w {
		return fmt.Errorf("sort column %d (width %d): %w", column, w, ErrColumnOutOfRange)
	}
	for i, r := range m.Rows {
		if column >= len(r) {
			return fmt.Errorf("sort column %d (row %d has %d fields): %w", column, i, len(r), ErrColumnOutOfRange)
		}
	}
	switch direction {
	case Ascending:
		sort.SliceStable(m.Rows, func(i, j int) bool { return m.Rows[i][column] < m.Rows[j][column] })
	case Descending:
		sort.SliceStable(m.Rows, func(i, j int) bool { return m.Rows[i][column] > m.Rows[j][column] })
	default:
		return fmt.Errorf("sort: unknown direction %d", int(direction))
	}
	return nil
}

// GetHeader returns column labels: the header in header mode, otherwise the
// first data row. The result is a copy. It is nil when there is no row to use.
func (m *Matrix) GetHeader() Row {
	var src Row
	switch {
	case m.UseHeader:
		src = m.Header
	case len(m.Rows) > 0:
		src = m.Rows[0]
	}
	if src == nil {
		return nil
	}
	out := make(Row, len(src))
	copy(out, src)
	return out
}

// Clone returns a deep copy of the matrix.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{Delimiter: m.Delimiter, UseHeader: m.UseHeader, headerSet: m.headerSet}
	if m.Header != nil {
		c.Header = append(Row(nil), m.Header...)
	}
	c.Rows = make([]Row, len(m.Rows))
	for i, r := range m.Rows {
		c.Rows[i] = append(Row(nil), r...)
	}
	return c
}
