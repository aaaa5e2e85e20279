package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	SortAsc    key.Binding
	SortDesc   key.Binding
	PickAsc    key.Binding
	PickDesc   key.Binding
	Format     key.Binding
	Suggest    key.Binding
	Header     key.Binding
	Search     key.Binding
	SearchNext key.Binding
	SearchPrev key.Binding
	Filter     key.Binding
	ClearFilt  key.Binding
	Inspect    key.Binding
	Undo       key.Binding
	Write      key.Binding
	Follow     key.Binding
	AppLogs    key.Binding
	Help       key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous row")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next row")),
		Left:       key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous column")),
		Right:      key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next column")),
		SortAsc:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "sort column ascending")),
		SortDesc:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "sort column descending")),
		PickAsc:    key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "pick column, sort ascending")),
		PickDesc:   key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "pick column, sort descending")),
		Format:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "format rows with a template")),
		Suggest:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "suggest a template (OpenAI)")),
		Header:     key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "toggle first row as header")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		SearchNext: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next match")),
		SearchPrev: key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "previous match")),
		Filter:     key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "filter rows (text, /re/ or =expr)")),
		ClearFilt:  key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "clear filter")),
		Inspect:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "inspect row")),
		Undo:       key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Write:      key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "write buffer to file")),
		Follow:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle follow")),
		AppLogs:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "application logs")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c", "Q"), key.WithHelp("Q", "quit without saving")),
	}
}

// ShortHelp and FullHelp make KeyMap a help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SortAsc, k.SortDesc, k.Format, k.Header, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Inspect},
		{k.SortAsc, k.SortDesc, k.PickAsc, k.PickDesc, k.Undo},
		{k.Format, k.Suggest, k.Header, k.Write, k.Follow},
		{k.Search, k.SearchNext, k.SearchPrev, k.Filter, k.ClearFilt},
		{k.AppLogs, k.Help, k.Quit, k.ForceQuit},
	}
}
