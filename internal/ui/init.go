package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"tabsense/internal/ai"
	"tabsense/internal/cli"
	"tabsense/internal/config"
	"tabsense/internal/model"
	"tabsense/internal/settings"
)

func initialModel(ctx context.Context, cfg *config.Config, store settings.Store) *Model {
	m := &Model{
		ctx:      ctx,
		cfg:      cfg,
		store:    store,
		actions:  cli.Actions(cfg, store),
		identity: settings.Identity(cfg.FilePath),
		history:  model.NewHistory(cfg.History),
		follow:   cfg.Follow && cfg.FilePath != "",
		help:     help.New(),
		styles:   NewStyles(cfg.Theme == config.ThemeDark),
		keymap:   DefaultKeyMap(),
		input:    textinput.New(),
		spin:     spinner.New(),
		pickDir:  model.Ascending,
	}
	if !cfg.Offline && cfg.OpenAIKey() != "" {
		m.ai = ai.NewOpenAIClient(cfg.OpenAIKey(), cfg.OpenAIBase, cfg.OpenAIModel, time.Duration(cfg.OpenAITimeoutSec)*time.Second)
	}
	m.spin.Spinner = spinner.Dot
	m.input.CharLimit = 512
	m.modalVP = viewport.New(80, 20)

	m.tbl = table.New(table.WithFocused(true), table.WithHeight(20))
	ts := table.DefaultStyles()
	ts.Header = m.styles.TableStyles.Header
	ts.Cell = m.styles.TableStyles.Cell
	ts.Selected = m.styles.TableStyles.Selected
	m.tbl.SetStyles(ts)
	return m
}

func Run(ctx context.Context, cfg *config.Config, store settings.Store) error {
	m := initialModel(ctx, cfg, store)
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err := p.Run()
	m.stopFollow()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.spin.Tick)
}
