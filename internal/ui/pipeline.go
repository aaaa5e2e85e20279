package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"tabsense/internal/cli"
	"tabsense/internal/command"
	"tabsense/internal/detect"
	"tabsense/internal/export"
	"tabsense/internal/filter"
	"tabsense/internal/ingest"
	"tabsense/internal/model"
	"tabsense/internal/settings"
	"tabsense/internal/util"
	"tabsense/internal/util/logx"
)

var log = logx.Named("ui")

// IO and pipeline orchestration
func (m *Model) loadCmd() tea.Cmd {
	opt := cli.Source(m.cfg)
	return func() tea.Msg {
		buf, err := ingest.ReadAll(m.ctx, opt)
		return loadedMsg{buf: buf, err: err}
	}
}

func (m *Model) useHeader() bool {
	return m.actions.UseHeader(m.identity)
}

// reparse rebuilds the matrix from the current buffer and refreshes the
// table. The previous matrix is dropped even when parsing fails, so that
// nothing acts on stale rows.
func (m *Model) reparse() {
	mx, err := command.Parse(m.buf.Body, m.useHeader(), m.actions.Options)
	m.matrix, m.parseErr = mx, err
	if err != nil {
		m.setError(fmt.Sprintf("%s: %v", m.buf.Source, err))
		m.visible = nil
		m.refreshTable()
		return
	}
	if w := mx.Width(); m.selCol >= w {
		m.selCol = max(0, w-1)
	}
	m.refreshFiltered()
}

// applyBuffer replaces the buffer with body and records the old text for
// undo.
func (m *Model) applyBuffer(body, label string) {
	if body == m.buf.Body {
		return
	}
	m.history.Push(model.Snapshot{Buffer: m.buf.Body, Label: label})
	m.buf.Body = body
	m.dirty = true
	m.reparse()
}

func (m *Model) undo() {
	s, ok := m.history.Pop()
	if !ok {
		m.setStatus("nothing to undo")
		return
	}
	m.buf.Body = s.Buffer
	m.dirty = true
	m.reparse()
	m.setStatus("undid " + s.Label)
}

// sortBy runs the sort action. Cancelled picks (negative columns) do
// nothing.
func (m *Model) sortBy(column int, dir model.SortDirection) {
	if m.matrix == nil {
		m.setError(notTabularMsg(m.parseErr))
		return
	}
	// sort a copy so a failure leaves the view untouched
	work := m.matrix.Clone()
	out, ok, err := command.SortView(work, column, dir)
	if err != nil {
		m.setError(err.Error())
		return
	}
	if !ok {
		return
	}
	label := fmt.Sprintf("sort %s by %s", dir, m.columnLabel(column))
	m.applyBuffer(out, label)
	m.setStatus(label)
}

func (m *Model) toggleHeader() {
	v := !m.useHeader()
	if m.cfg.HeaderOverride != nil {
		m.cfg.HeaderOverride = &v
		m.actions = cli.Actions(m.cfg, m.store)
	}
	if err := m.store.SetFileSetting(m.identity, settings.KeyUseHeader, v); err != nil {
		m.setError("saving setting: " + err.Error())
		return
	}
	m.reparse()
	m.setStatus(fmt.Sprintf("use_header=%v for %s", v, m.identity))
}

func (m *Model) formatRows(template string) {
	if m.matrix == nil {
		m.setError(notTabularMsg(m.parseErr))
		return
	}
	out := command.FormatView(m.matrix, template)
	log.Infof("formatted %d rows with %q", m.matrix.Len(), template)
	m.openModal(modalOutput, "Formatted Output", out)
}

func (m *Model) writeFile() {
	if m.cfg.FilePath == "" {
		m.setError("buffer has no file; run with -file to write")
		return
	}
	if err := export.ToFile(m.cfg.FilePath, m.buf.Text(m.buf.Body)); err != nil {
		m.setError("write: " + err.Error())
		return
	}
	m.dirty = false
	m.setStatus("wrote " + m.cfg.FilePath)
}

func (m *Model) applyFilter(input string) {
	input = strings.TrimSpace(input)
	m.filterIn = input
	if input == "" {
		m.eval = nil
		m.refreshFiltered()
		return
	}
	c := filter.Criteria{Column: -1}
	if expr, ok := strings.CutPrefix(input, "="); ok {
		c.Expr = expr
	} else {
		c.Query, c.UseRegex = filter.ParseQuery(input)
		c.Column = m.selCol
	}
	ev, err := filter.NewEvaluator(c)
	if err != nil {
		m.setError("filter: " + err.Error())
		return
	}
	m.eval = ev
	m.refreshFiltered()
	m.setStatus(fmt.Sprintf("filter %q: %d rows", input, len(m.visible)))
}

func (m *Model) startFollow() tea.Cmd {
	if m.cfg.FilePath == "" {
		m.follow = false
		m.setError("follow needs -file")
		return nil
	}
	m.stopFollow()
	ctx, cancel := context.WithCancel(m.ctx)
	m.followCancel = cancel
	m.followLines, m.followErrs = ingest.Follow(ctx, m.cfg.FilePath)
	m.follow = true
	return m.waitFollow()
}

func (m *Model) stopFollow() {
	if m.followCancel != nil {
		m.followCancel()
		m.followCancel = nil
	}
	m.follow = false
}

func (m *Model) waitFollow() tea.Cmd {
	lines, errs := m.followLines, m.followErrs
	return func() tea.Msg {
		select {
		case l, ok := <-lines:
			if !ok {
				return followStoppedMsg{}
			}
			return followLineMsg{line: l}
		case err, ok := <-errs:
			if !ok {
				return followStoppedMsg{}
			}
			return followErrMsg{err: err}
		}
	}
}

// appendLine adds a row that arrived on disk. Snapshots taken before it no
// longer describe the file, so undo history is dropped instead of letting an
// undo remove the row.
func (m *Model) appendLine(text string) {
	if n := m.history.Len(); n > 0 {
		m.history.Clear()
		m.setStatus(fmt.Sprintf("file grew: %d undo steps cleared", n))
	}
	if m.buf.Body == "" {
		m.buf.Body = text
	} else {
		m.buf.Body += "\n" + text
	}
	log.Debugf("follow: appended %q", util.RedactPII(text))
	m.reparse()
}

func (m *Model) suggestCmd(hint string) tea.Cmd {
	if m.ai == nil {
		m.setError("template suggestions need OPENAI_API_KEY and no -offline")
		return nil
	}
	if m.matrix == nil {
		m.setError(notTabularMsg(m.parseErr))
		return nil
	}
	labels := command.Columns(m.matrix)
	sample := make([][]string, 0, 20)
	for i := 0; i < len(m.matrix.Rows) && i < 20; i++ {
		sample = append(sample, m.matrix.Rows[i])
	}
	m.aiBusy = true
	client, ctx := m.ai, m.ctx
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		s, err := client.SuggestTemplate(ctx, labels, sample, hint)
		return aiDoneMsg{s: s, err: err}
	})
}

func notTabularMsg(err error) string {
	if err == nil || errors.Is(err, detect.ErrNotTabular) {
		return "The buffer doesn't appear to be a CSV file"
	}
	return err.Error()
}
