package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"tabsense/internal/config"
	"tabsense/internal/ingest"
	"tabsense/internal/model"
	"tabsense/internal/settings"
)

const people = "name,age\nBob,30\nAmy,25\n"

func newTestModel(t *testing.T, raw string, header bool) (*Model, *settings.MemoryStore) {
	t.Helper()
	store := settings.NewMemoryStore()
	if header {
		if err := store.SetFileSetting(settings.StdinIdentity, settings.KeyUseHeader, true); err != nil {
			t.Fatal(err)
		}
	}
	cfg := &config.Config{Delimiters: ",;", Theme: config.ThemeDark, History: 10, Offline: true}
	m := initialModel(context.Background(), cfg, store)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m.Update(loadedMsg{buf: ingest.NewBuffer(raw, "test")})
	return m, store
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = m.Update(msg)
	}
	return cmd
}

func TestSortKeyAndUndo(t *testing.T) {
	m, _ := newTestModel(t, people, true)
	press(m, "a")
	if want := "name,age\nAmy,25\nBob,30"; m.buf.Body != want {
		t.Fatalf("sorted body = %q, want %q", m.buf.Body, want)
	}
	if !m.dirty {
		t.Fatal("sort must mark the buffer modified")
	}
	if got := m.buf.Text(m.buf.Body); !strings.HasSuffix(got, "\n") {
		t.Fatalf("trailing newline lost: %q", got)
	}
	press(m, "u")
	if want := "name,age\nBob,30\nAmy,25"; m.buf.Body != want {
		t.Fatalf("after undo = %q, want %q", m.buf.Body, want)
	}
}

func TestSortDescendingSelectedColumn(t *testing.T) {
	m, _ := newTestModel(t, people, true)
	press(m, "right", "d")
	if want := "name,age\nBob,30\nAmy,25"; m.buf.Body != want {
		t.Fatalf("got %q", m.buf.Body)
	}
	if m.history.Len() != 0 {
		t.Fatalf("an unchanged buffer must not be recorded, history=%d", m.history.Len())
	}
}

func TestPickerCancelIsNoop(t *testing.T) {
	m, _ := newTestModel(t, people, true)
	before := m.buf.Body
	press(m, "A")
	if m.modal != modalPicker {
		t.Fatalf("picker not open, modal=%v", m.modal)
	}
	if len(m.pickItems) != 2 || m.pickItems[0] != "name" {
		t.Fatalf("picker items = %q", m.pickItems)
	}
	press(m, "esc")
	if m.modal != modalNone || m.buf.Body != before || m.dirty || m.lastErr {
		t.Fatalf("cancel changed state: modal=%v body=%q dirty=%v err=%v", m.modal, m.buf.Body, m.dirty, m.lastErr)
	}
}

func TestPickerSortsChosenColumn(t *testing.T) {
	m, _ := newTestModel(t, "name,age\nBob,30\nAmy,25\nCid,41", true)
	press(m, "D", "down", "enter")
	if want := "name,age\nCid,41\nBob,30\nAmy,25"; m.buf.Body != want {
		t.Fatalf("got %q", m.buf.Body)
	}
	if m.selCol != 1 {
		t.Fatalf("selected column = %d", m.selCol)
	}
}

func TestNotTabularBlocksActions(t *testing.T) {
	m, _ := newTestModel(t, "a,b;x\nc", false)
	if m.matrix != nil {
		t.Fatal("ragged buffer must not parse")
	}
	press(m, "a")
	if !m.lastErr || !strings.Contains(m.lastMsg, "doesn't appear to be a CSV file") {
		t.Fatalf("status = %q (err=%v)", m.lastMsg, m.lastErr)
	}
	if m.buf.Body != "a,b;x\nc" {
		t.Fatalf("buffer changed: %q", m.buf.Body)
	}
}

func TestHeaderToggleIsPersisted(t *testing.T) {
	m, store := newTestModel(t, people, false)
	if m.matrix.HasHeader() {
		t.Fatal("header should be off")
	}
	press(m, "H")
	if !store.GetFileSetting(settings.StdinIdentity, settings.KeyUseHeader) {
		t.Fatal("toggle not stored")
	}
	if !m.matrix.HasHeader() || m.matrix.Len() != 2 {
		t.Fatalf("matrix not reparsed: header=%v len=%d", m.matrix.HasHeader(), m.matrix.Len())
	}
}

func TestFormatOpensOutput(t *testing.T) {
	m, _ := newTestModel(t, people, true)
	press(m, "f")
	if m.inline != inlineTemplate {
		t.Fatal("template prompt not open")
	}
	m.input.SetValue("{0} is {1}")
	press(m, "enter")
	if m.modal != modalOutput {
		t.Fatalf("modal = %v", m.modal)
	}
	if want := "Bob is 30\nAmy is 25"; m.modalBody != want {
		t.Fatalf("output = %q, want %q", m.modalBody, want)
	}
	if m.dirty {
		t.Fatal("formatting must not touch the buffer")
	}
}

func TestFilterAndSearch(t *testing.T) {
	m, _ := newTestModel(t, "name,age\nBob,30\nAmy,25\nCid,41", true)
	press(m, "F")
	m.input.SetValue("=age > 28")
	press(m, "enter")
	if len(m.visible) != 2 || m.visible[0] != 0 || m.visible[1] != 2 {
		t.Fatalf("visible = %v", m.visible)
	}
	press(m, "X")
	if len(m.visible) != 3 {
		t.Fatalf("clear filter: visible = %v", m.visible)
	}
	press(m, "/")
	m.input.SetValue("cid")
	press(m, "enter")
	if got := m.tbl.Cursor(); got != 2 {
		t.Fatalf("search cursor = %d", got)
	}
}

func TestQuitWarnsWhenDirty(t *testing.T) {
	m, _ := newTestModel(t, people, true)
	if press(m, "a") != nil {
		t.Fatal("sort returned a command")
	}
	if cmd := press(m, "q"); cmd != nil || !m.quitWarn {
		t.Fatal("first q on a modified buffer must warn")
	}
	if cmd := press(m, "q"); cmd == nil {
		t.Fatal("second q must quit")
	}
}

func TestFollowedRowSurvivesUndo(t *testing.T) {
	m, _ := newTestModel(t, people, true)
	press(m, "a")
	m.Update(followLineMsg{line: ingest.Line{Text: "Zed,50"}})
	if want := "name,age\nAmy,25\nBob,30\nZed,50"; m.buf.Body != want {
		t.Fatalf("after append = %q, want %q", m.buf.Body, want)
	}
	if m.history.Len() != 0 {
		t.Fatalf("history = %d, want cleared", m.history.Len())
	}
	press(m, "u")
	if !strings.Contains(m.buf.Body, "Zed,50") {
		t.Fatalf("appended row lost after undo: %q", m.buf.Body)
	}
	if m.lastMsg != "nothing to undo" {
		t.Fatalf("status = %q", m.lastMsg)
	}
}

func TestStatusShowsUndoDepth(t *testing.T) {
	m, _ := newTestModel(t, people, true)
	m.cfg.History = 1
	m.history = model.NewHistory(1)
	press(m, "a", "d")
	if m.history.Dropped() != 1 {
		t.Fatalf("dropped = %d", m.history.Dropped())
	}
	if s := m.renderStatus(); !strings.Contains(s, "undo 1 (+1 dropped)") {
		t.Fatalf("status %q", s)
	}
}
