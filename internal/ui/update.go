package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"tabsense/internal/ai"
	"tabsense/internal/command"
	"tabsense/internal/export"
	"tabsense/internal/model"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth, m.termHeight = msg.Width, msg.Height
		// table header, status and bottom line
		m.tbl.SetHeight(max(msg.Height-3, 1))
		m.tbl.SetWidth(msg.Width)
		m.refreshTable()
		if m.modal != modalNone {
			m.resizeModal()
		}
		return m, nil

	case spinner.TickMsg:
		if m.loaded && !m.aiBusy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case loadedMsg:
		m.loaded = true
		if msg.err != nil {
			m.parseErr = msg.err
			m.setError("load: " + msg.err.Error())
			return m, nil
		}
		m.buf = msg.buf
		m.reparse()
		if m.follow {
			return m, m.startFollow()
		}
		return m, nil

	case followLineMsg:
		m.appendLine(msg.line.Text)
		return m, m.waitFollow()

	case followErrMsg:
		m.setError("follow: " + msg.err.Error())
		return m, m.waitFollow()

	case followStoppedMsg:
		m.follow = false
		return m, nil

	case aiDoneMsg:
		m.aiBusy = false
		if msg.err != nil {
			if errors.Is(msg.err, ai.ErrDisabled) {
				m.setError("template suggestions are disabled")
			} else {
				m.setError("suggest: " + msg.err.Error())
			}
			return m, nil
		}
		m.openInline(inlineTemplate, msg.s.Template)
		m.setStatus(msg.s.Description)
		return m, nil

	case toastMsg:
		m.lastMsg, m.lastErr = msg.text, msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.inline != inlineNone {
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m.handleInlineKey(msg)
	}
	if key.Matches(msg, m.keymap.ForceQuit) {
		return m, tea.Quit
	}
	if m.modal != modalNone {
		return m.handleModalKey(msg)
	}

	km := m.keymap
	if key.Matches(msg, km.Quit) {
		if m.dirty && !m.quitWarn {
			m.quitWarn = true
			return m, nil
		}
		return m, tea.Quit
	}
	m.quitWarn = false

	switch {
	case key.Matches(msg, km.Left):
		if m.selCol > 0 {
			m.selCol--
			m.refreshTable()
		}
	case key.Matches(msg, km.Right):
		if m.matrix != nil && m.selCol+1 < m.matrix.Width() {
			m.selCol++
			m.refreshTable()
		}
	case key.Matches(msg, km.SortAsc):
		m.sortBy(m.selCol, model.Ascending)
	case key.Matches(msg, km.SortDesc):
		m.sortBy(m.selCol, model.Descending)
	case key.Matches(msg, km.PickAsc):
		m.openPicker(model.Ascending)
	case key.Matches(msg, km.PickDesc):
		m.openPicker(model.Descending)
	case key.Matches(msg, km.Format):
		if m.matrix == nil {
			m.setError(notTabularMsg(m.parseErr))
			break
		}
		m.openInline(inlineTemplate, m.cfg.Template)
	case key.Matches(msg, km.Suggest):
		return m, m.suggestCmd(m.cfg.Template)
	case key.Matches(msg, km.Header):
		m.toggleHeader()
	case key.Matches(msg, km.Search):
		m.openInline(inlineSearch, "")
	case key.Matches(msg, km.SearchNext):
		m.searchNext()
	case key.Matches(msg, km.SearchPrev):
		m.searchPrev()
	case key.Matches(msg, km.Filter):
		m.openInline(inlineFilter, m.filterIn)
	case key.Matches(msg, km.ClearFilt):
		m.applyFilter("")
		m.setStatus("filter cleared")
	case key.Matches(msg, km.Inspect):
		if ri, ok := m.currentRow(); ok {
			body := colorizeRow(export.Labels(m.matrix), m.matrix.Rows[ri], m.styles)
			m.openModal(modalInspector, fmt.Sprintf("Row %d", ri), body)
		}
	case key.Matches(msg, km.Undo):
		m.undo()
	case key.Matches(msg, km.Write):
		m.writeFile()
	case key.Matches(msg, km.Follow):
		if m.follow {
			m.stopFollow()
			m.setStatus("follow off")
			return m, nil
		}
		return m, m.startFollow()
	case key.Matches(msg, km.AppLogs):
		m.openLogsModal()
	case key.Matches(msg, km.Help):
		m.openModal(modalHelp, "Keys", "")
	default:
		var cmd tea.Cmd
		m.tbl, cmd = m.tbl.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) openInline(mode inlineMode, value string) {
	m.inline = mode
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) closeInline() {
	m.inline = inlineNone
	m.input.Blur()
}

func (m *Model) handleInlineKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeInline()
		return m, nil
	case tea.KeyEnter:
		v := m.input.Value()
		mode := m.inline
		m.closeInline()
		switch mode {
		case inlineTemplate:
			if v != "" {
				m.cfg.Template = v
				m.formatRows(v)
			}
		case inlineSearch:
			m.setSearch(v)
		case inlineFilter:
			m.applyFilter(v)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) openPicker(dir model.SortDirection) {
	if m.matrix == nil {
		m.setError(notTabularMsg(m.parseErr))
		return
	}
	items := command.Columns(m.matrix)
	if len(items) == 0 {
		m.setError("no columns to sort by")
		return
	}
	m.pickItems = items
	m.pickSel = min(m.selCol, len(items)-1)
	m.pickDir = dir
	m.openModal(modalPicker, fmt.Sprintf("Sort %s by column", dir), "")
}

func (m *Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal == modalPicker {
		switch msg.Type {
		case tea.KeyUp:
			if m.pickSel > 0 {
				m.pickSel--
			}
		case tea.KeyDown:
			if m.pickSel+1 < len(m.pickItems) {
				m.pickSel++
			}
		case tea.KeyEnter:
			col, dir := m.pickSel, m.pickDir
			m.closeModal()
			m.selCol = col
			m.sortBy(col, dir)
		case tea.KeyEsc:
			dir := m.pickDir
			m.closeModal()
			m.sortBy(command.Cancelled, dir)
		}
		return m, nil
	}

	if msg.Type == tea.KeyEsc || msg.Type == tea.KeyEnter || msg.String() == "q" {
		m.closeModal()
		return m, nil
	}
	switch m.modal {
	case modalOutput, modalInspector, modalLogs:
		if msg.String() == "c" {
			copyToClipboard(m.modalBody)
			m.setStatus("copied to clipboard")
			return m, nil
		}
	}
	if m.modal == modalOutput && msg.String() == "s" {
		m.saveOutput()
		return m, nil
	}
	var cmd tea.Cmd
	m.modalVP, cmd = m.modalVP.Update(msg)
	return m, cmd
}

// saveOutput writes the formatted output to -out, or next to the source
// file. The source buffer is never touched.
func (m *Model) saveOutput() {
	path := m.cfg.OutPath
	if path == "" && m.cfg.FilePath != "" {
		path = m.cfg.FilePath + ".formatted.txt"
	}
	if path == "" {
		m.setError("no file to save next to; run with -out")
		return
	}
	if err := export.ToFile(path, m.modalBody+"\n"); err != nil {
		m.setError("save: " + err.Error())
		return
	}
	m.setStatus("saved " + path)
}
