package ui

import (
	"strconv"
	"strings"

	"tabsense/internal/filter"
)

// colorizeRow renders one row as an indented JSON object in column order.
// Values that parse as numbers are shown as numbers.
func colorizeRow(labels []string, row []string, st Styles) string {
	var b strings.Builder
	b.WriteString(st.JSONPunct.Render("{"))
	if len(row) > 0 {
		b.WriteString("\n")
	}
	for i, v := range row {
		label := "c" + strconv.Itoa(i)
		if i < len(labels) && strings.TrimSpace(labels[i]) != "" {
			label = labels[i]
		}
		b.WriteString("  ")
		b.WriteString(st.JSONKey.Render(strconv.Quote(label)))
		b.WriteString(st.JSONPunct.Render(": "))
		switch t := filter.Params([]string{v}, nil)["c0"].(type) {
		case float64:
			b.WriteString(st.JSONNumber.Render(strconv.FormatFloat(t, 'f', -1, 64)))
		default:
			b.WriteString(st.JSONString.Render(strconv.Quote(v)))
		}
		if i < len(row)-1 {
			b.WriteString(st.JSONPunct.Render(","))
		}
		b.WriteString("\n")
	}
	b.WriteString(st.JSONPunct.Render("}"))
	return b.String()
}
