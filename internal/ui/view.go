package ui

import (
	"encoding/base64"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"tabsense/internal/export"
	"tabsense/internal/util/logx"
	"tabsense/internal/version"
)

const (
	minColWidth = 4
	maxColWidth = 40
)

func (m *Model) View() string {
	v := m.renderMain()
	if m.modal != modalNone {
		dimmed := lipgloss.NewStyle().Faint(true).Render(v)
		v = overlay(dimmed, m.renderModal())
	}
	return v
}

func (m *Model) renderMain() string {
	var b strings.Builder
	switch {
	case !m.loaded:
		b.WriteString(m.spin.View() + " loading " + m.cfg.FilePath)
	case m.matrix == nil:
		b.WriteString(m.styles.StatusError.Render(notTabularMsg(m.parseErr)))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Help.Render(firstLines(m.buf.Body, max(1, m.termHeight-6))))
	default:
		b.WriteString(m.tbl.View())
	}
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderBottom())
	return b.String()
}

func (m *Model) renderStatus() string {
	parts := []string{version.Name, m.buf.Source}
	if m.matrix != nil {
		delim := string(m.matrix.Delimiter)
		if m.matrix.Delimiter == '\t' {
			delim = `\t`
		}
		parts = append(parts,
			fmt.Sprintf("delim %q", delim),
			fmt.Sprintf("rows %d/%d", len(m.visible), m.matrix.Len()),
			fmt.Sprintf("col %d:%s", m.selCol, m.columnLabel(m.selCol)),
		)
		if m.matrix.UseHeader {
			parts = append(parts, "header")
		}
	}
	if m.filterIn != "" {
		parts = append(parts, "filter "+m.filterIn)
	}
	if m.follow {
		parts = append(parts, "follow")
	}
	if m.dirty {
		parts = append(parts, "modified")
	}
	if n := m.history.Len(); n > 0 {
		undo := fmt.Sprintf("undo %d", n)
		if d := m.history.Dropped(); d > 0 {
			undo += fmt.Sprintf(" (+%d dropped)", d)
		}
		parts = append(parts, undo)
	}
	if m.aiBusy {
		parts = append(parts, m.spin.View()+" asking OpenAI")
	}
	line := m.styles.Status.Render(truncate(strings.Join(parts, " | "), m.termWidth))
	if m.lastMsg != "" {
		st := m.styles.Status
		if m.lastErr {
			st = m.styles.StatusError
		}
		line += "  " + st.Render(m.lastMsg)
	}
	return line
}

func (m *Model) renderBottom() string {
	switch m.inline {
	case inlineTemplate:
		return "template " + m.input.View()
	case inlineSearch:
		return "search " + m.input.View()
	case inlineFilter:
		return "filter " + m.input.View()
	}
	if m.quitWarn {
		return m.styles.StatusError.Render("unsaved changes: w to write, Q to quit anyway")
	}
	m.help.Width = m.termWidth
	return m.help.View(m.keymap)
}

// columnLabel is the header label of column i, or its index name.
func (m *Model) columnLabel(i int) string {
	if m.matrix == nil {
		return ""
	}
	labels := export.Labels(m.matrix)
	if i < 0 || i >= len(labels) {
		return fmt.Sprintf("c%d", i)
	}
	if l := strings.TrimSpace(labels[i]); l != "" {
		return l
	}
	return fmt.Sprintf("c%d", i)
}

// refreshFiltered recomputes the visible rows from the active filter.
func (m *Model) refreshFiltered() {
	m.visible = m.visible[:0]
	if m.matrix != nil {
		if m.eval != nil && m.eval.Active() {
			m.visible = m.eval.Indices(m.matrix, export.Labels(m.matrix))
		} else {
			for i := range m.matrix.Rows {
				m.visible = append(m.visible, i)
			}
		}
	}
	m.refreshTable()
}

// refreshTable lays out the columns that fit from colOff and loads the
// visible rows.
func (m *Model) refreshTable() {
	cur := m.tbl.Cursor()
	// rows first: the table renders rows against the current columns
	m.tbl.SetRows(nil)
	width := 0
	if m.matrix != nil {
		width = m.matrix.Width()
	}
	if width == 0 {
		m.tbl.SetColumns(nil)
		return
	}
	if m.selCol < m.colOff {
		m.colOff = m.selCol
	}
	first, last := m.colOff, m.colOff
	avail := m.termWidth
	if avail <= 0 {
		avail = 120
	}
	widths := make([]int, width)
	used := 0
	for c := m.colOff; c < width; c++ {
		widths[c] = m.columnWidth(c)
		if c > m.colOff && used+widths[c]+2 > avail {
			break
		}
		used += widths[c] + 2
		last = c
	}
	// scroll right until the selected column fits
	if m.selCol > last && last+1 < width {
		m.colOff++
		m.refreshTable()
		return
	}

	cols := make([]table.Column, 0, last-first+1)
	for c := first; c <= last; c++ {
		title := m.columnLabel(c)
		if c == m.selCol {
			title = "▸" + title
		}
		cols = append(cols, table.Column{Title: title, Width: widths[c]})
	}
	m.tbl.SetColumns(cols)

	rows := make([]table.Row, 0, len(m.visible))
	for _, ri := range m.visible {
		src := m.matrix.Rows[ri]
		r := make(table.Row, 0, len(cols))
		for c := first; c <= last; c++ {
			if c < len(src) {
				r = append(r, src[c])
			} else {
				r = append(r, "")
			}
		}
		rows = append(rows, r)
	}
	m.tbl.SetRows(rows)
	if cur >= len(rows) {
		cur = len(rows) - 1
	}
	m.tbl.SetCursor(max(cur, 0))
}

func (m *Model) columnWidth(c int) int {
	w := runewidth.StringWidth(m.columnLabel(c)) + 1
	for i, r := range m.matrix.Rows {
		if i > 200 {
			break
		}
		if c < len(r) {
			w = max(w, runewidth.StringWidth(r[c]))
		}
	}
	return min(max(w, minColWidth), maxColWidth)
}

// currentRow returns the matrix row under the table cursor.
func (m *Model) currentRow() (int, bool) {
	cur := m.tbl.Cursor()
	if m.matrix == nil || cur < 0 || cur >= len(m.visible) {
		return 0, false
	}
	return m.visible[cur], true
}

func (m *Model) setStatus(s string) {
	m.lastMsg, m.lastErr = s, false
}

func (m *Model) setError(s string) {
	log.Warnf("%s", s)
	m.lastMsg, m.lastErr = s, true
}

func (m *Model) openModal(kind modalKind, title, body string) {
	m.modal = kind
	m.modalTitle = title
	m.modalBody = body
	m.resizeModal()
}

func (m *Model) closeModal() {
	m.modal = modalNone
	m.pickItems = nil
}

func (m *Model) resizeModal() {
	w := max(m.termWidth-6, 20)
	h := max(m.termHeight-6, 5)
	m.modalVP = viewport.New(w-4, h-4)
	switch m.modal {
	case modalPicker:
		m.modalVP.SetContent(m.renderPicker())
	case modalHelp:
		m.help.ShowAll = true
		m.modalVP.SetContent(m.help.View(m.keymap))
		m.help.ShowAll = false
	default:
		m.modalVP.SetContent(m.modalBody)
	}
}

func (m *Model) renderPicker() string {
	var b strings.Builder
	for i, it := range m.pickItems {
		line := fmt.Sprintf("%2d  %s", i, it)
		if i == m.pickSel {
			line = m.styles.PickerSel.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m *Model) renderModal() string {
	var content string
	switch m.modal {
	case modalPicker:
		m.modalVP.SetContent(m.renderPicker())
		content = m.modalVP.View() + "\n[↑/↓]=choose  [enter]=sort  [esc]=cancel"
	case modalOutput:
		content = m.modalVP.View() + "\n[esc/enter]=close  [c]=copy  [s]=save next to file"
	case modalInspector:
		content = m.modalVP.View() + "\n[esc/enter]=close  [c]=copy"
	case modalLogs:
		header := []string{
			"Status:",
			fmt.Sprintf("source: %s  identity: %s", m.buf.Source, m.identity),
			fmt.Sprintf("rows: %d  visible: %d  undo: %d (dropped %d)  follow: %v", m.rowCount(), len(m.visible), m.history.Len(), m.history.Dropped(), m.follow),
		}
		content = m.styles.Help.Render(strings.Join(header, "\n")) + "\n" + m.modalVP.View() + "\n[esc/enter]=close  [c]=copy"
	default:
		content = m.modalVP.View() + "\n[esc/enter]=close"
	}
	boxW := max(m.termWidth-6, 20)
	title := m.styles.PopupTitle.Render(m.modalTitle)
	body := m.styles.PopupBox.Width(boxW).Render(title + "\n" + content)
	return lipgloss.Place(m.termWidth, m.termHeight, lipgloss.Center, lipgloss.Center, body)
}

func (m *Model) rowCount() int {
	if m.matrix == nil {
		return 0
	}
	return m.matrix.Len()
}

func (m *Model) openLogsModal() {
	m.openModal(modalLogs, "Application Logs", logx.Dump())
	m.modalVP.GotoBottom()
}

func overlay(base, over string) string {
	bLines := strings.Split(base, "\n")
	oLines := strings.Split(over, "\n")
	n := max(len(bLines), len(oLines))
	for len(bLines) < n {
		bLines = append(bLines, "")
	}
	for len(oLines) < n {
		oLines = append(oLines, "")
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		// whitespace-only overlay lines are transparent
		if strings.TrimSpace(oLines[i]) != "" {
			out[i] = oLines[i]
		} else {
			out[i] = bLines[i]
		}
	}
	return strings.Join(out, "\n")
}

// copyToClipboard copies text with OSC52, which most terminals support.
func copyToClipboard(s string) {
	enc := base64.StdEncoding.EncodeToString([]byte(stripANSI(s)))
	payload := fmt.Sprintf("\x1b]52;c;%s\x07", enc)
	if f, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0); err == nil {
		defer f.Close()
		_, _ = f.WriteString(payload)
		return
	}
	fmt.Fprint(os.Stdout, payload)
}

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

func stripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

func truncate(s string, w int) string {
	if w <= 0 {
		return s
	}
	return runewidth.Truncate(s, w, "…")
}

func firstLines(s string, n int) string {
	lines := strings.SplitN(s, "\n", n+1)
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}
