package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"tabsense/internal/ai"
	"tabsense/internal/command"
	"tabsense/internal/config"
	"tabsense/internal/filter"
	"tabsense/internal/ingest"
	"tabsense/internal/model"
	"tabsense/internal/settings"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalHelp
	modalPicker
	modalOutput
	modalInspector
	modalLogs
)

type inlineMode int

const (
	inlineNone inlineMode = iota
	inlineTemplate
	inlineSearch
	inlineFilter
)

type Model struct {
	ctx     context.Context
	cfg     *config.Config
	store   settings.Store
	actions command.Actions
	ai      *ai.OpenAIClient

	// Buffer and its parsed form. matrix is nil while the buffer is not
	// tabular; parseErr then says why.
	identity string
	buf      ingest.Buffer
	loaded   bool
	matrix   *model.Matrix
	parseErr error
	dirty    bool
	history  *model.History

	// Follow
	follow       bool
	followCancel context.CancelFunc
	followLines  <-chan ingest.Line
	followErrs   <-chan error

	// View of the matrix: data row indices after filtering
	visible  []int
	eval     *filter.Evaluator
	filterIn string
	selCol   int
	colOff   int

	// Search
	searchPattern string
	searchRegex   bool

	// Widgets
	tbl      table.Model
	input    textinput.Model
	help     help.Model
	spin     spinner.Model
	styles   Styles
	keymap   KeyMap
	inline   inlineMode
	aiBusy   bool
	quitWarn bool

	// Modal
	modal      modalKind
	modalVP    viewport.Model
	modalTitle string
	modalBody  string

	// Column picker for the prompted sort
	pickItems []string
	pickSel   int
	pickDir   model.SortDirection

	termWidth  int
	termHeight int
	lastMsg    string
	lastErr    bool
}

type loadedMsg struct {
	buf ingest.Buffer
	err error
}

type followLineMsg struct{ line ingest.Line }
type followErrMsg struct{ err error }
type followStoppedMsg struct{}

type aiDoneMsg struct {
	s   ai.Suggestion
	err error
}

type toastMsg struct {
	text string
	err  bool
}
