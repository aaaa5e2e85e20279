package ui

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Base        lipgloss.Style
	Status      lipgloss.Style
	StatusError lipgloss.Style
	Help        lipgloss.Style
	PopupBox    lipgloss.Style
	PopupTitle  lipgloss.Style
	PickerSel   lipgloss.Style
	TableStyles TableStyles

	JSONKey    lipgloss.Style
	JSONString lipgloss.Style
	JSONNumber lipgloss.Style
	JSONPunct  lipgloss.Style
}

type TableStyles struct {
	Header         lipgloss.Style
	Cell           lipgloss.Style
	Selected       lipgloss.Style
	HeaderSelected lipgloss.Style
}

func NewStyles(dark bool) Styles {
	s := Styles{}
	if dark {
		s.Base = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
		s.Status = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
		s.Help = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
		s.PopupBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("60")).Padding(1, 2)
		s.PopupTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
		s.JSONKey = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
		s.JSONString = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
		s.JSONNumber = lipgloss.NewStyle().Foreground(lipgloss.Color("215"))
		s.JSONPunct = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	} else {
		s.Base = lipgloss.NewStyle()
		s.Status = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.Help = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.PopupBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Padding(1, 2)
		s.PopupTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("27"))
		s.JSONKey = lipgloss.NewStyle().Foreground(lipgloss.Color("27"))
		s.JSONString = lipgloss.NewStyle().Foreground(lipgloss.Color("28"))
		s.JSONNumber = lipgloss.NewStyle().Foreground(lipgloss.Color("130"))
		s.JSONPunct = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	}
	s.StatusError = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	s.PickerSel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("220"))
	s.TableStyles = TableStyles{
		Header:         lipgloss.NewStyle().Bold(true).PaddingRight(1),
		Cell:           lipgloss.NewStyle().PaddingRight(1),
		Selected:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("220")),
		HeaderSelected: lipgloss.NewStyle().Underline(true),
	}
	return s
}
