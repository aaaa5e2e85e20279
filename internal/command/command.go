// Package command is the boundary between the tabular core and a host (the
// TUI, the CLI, or an editor plugin). Each call is one parse, transform and
// emit cycle; nothing is written unless the whole cycle succeeds.
package command

import (
	"fmt"

	"tabsense/internal/detect"
	"tabsense/internal/export"
	"tabsense/internal/model"
	"tabsense/internal/parse"
	"tabsense/internal/settings"
	"tabsense/internal/util/logx"
)

var log = logx.Named("command")

// Cancelled is the column index a picker reports when the user backs out.
const Cancelled = -1

type Options struct {
	Candidates     []rune // nil means detect.DefaultDelimiters
	TrimWhitespace bool
}

// Parse validates buffer and builds its matrix. It fails with
// detect.ErrNotTabular when no delimiter fits.
func Parse(buffer string, useHeader bool, opt Options) (*model.Matrix, error) {
	return detect.Run(buffer, detect.Options{
		Candidates:     opt.Candidates,
		UseHeader:      useHeader,
		TrimWhitespace: opt.TrimWhitespace,
	})
}

// SortView sorts m by column and returns the text that replaces the buffer.
// A negative column means the selection was cancelled: ok is false and m is
// left alone.
func SortView(m *model.Matrix, column int, direction model.SortDirection) (output string, ok bool, err error) {
	if column < 0 {
		log.Debugf("sort cancelled")
		return "", false, nil
	}
	if err := m.SortColumn(column, direction); err != nil {
		return "", false, err
	}
	log.Infof("sorted %d rows by column %d %s", m.Len(), column, direction)
	return export.Serialize(m), true, nil
}

// FormatView expands template for every data row. The result is meant for a
// new document, not for the source buffer.
func FormatView(m *model.Matrix, template string) string {
	return export.Format(m, template)
}

// Columns returns picker labels. It is empty, never nil-panicking, for a
// matrix without rows.
func Columns(m *model.Matrix) []string {
	if m == nil {
		return []string{}
	}
	h := m.GetHeader()
	if h == nil {
		return []string{}
	}
	return []string(h)
}

// ColumnFromCursor maps a cursor on a line of the buffer to a column index.
func ColumnFromCursor(m *model.Matrix, line string, offset int) int {
	col := parse.ColumnAt(line, offset, m.Delimiter)
	if w := m.Width(); w > 0 && col >= w {
		col = w - 1
	}
	return col
}

// Actions runs cycles for files known by identity, reading use_header from
// the host's settings.
type Actions struct {
	Settings settings.Reader
	Options  Options
}

func (a Actions) UseHeader(identity string) bool {
	if a.Settings == nil {
		return false
	}
	return a.Settings.GetFileSetting(identity, settings.KeyUseHeader)
}

func (a Actions) Parse(identity, buffer string) (*model.Matrix, error) {
	m, err := Parse(buffer, a.UseHeader(identity), a.Options)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", identity, err)
	}
	return m, nil
}

func (a Actions) Sort(identity, buffer string, column int, direction model.SortDirection) (string, bool, error) {
	m, err := a.Parse(identity, buffer)
	if err != nil {
		return "", false, err
	}
	return SortView(m, column, direction)
}

func (a Actions) Format(identity, buffer, template string) (string, error) {
	m, err := a.Parse(identity, buffer)
	if err != nil {
		return "", err
	}
	return FormatView(m, template), nil
}

func (a Actions) Columns(identity, buffer string) ([]string, error) {
	m, err := a.Parse(identity, buffer)
	if err != nil {
		return nil, err
	}
	return Columns(m), nil
}
