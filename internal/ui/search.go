package ui

import (
	"regexp"
	"strings"

	"tabsense/internal/filter"
	"tabsense/internal/model"
)

func (m *Model) setSearch(q string) {
	q = strings.TrimSpace(q)
	m.searchPattern, m.searchRegex = filter.ParseQuery(q)
	if q == "" {
		m.searchPattern = ""
		return
	}
	if m.searchRegex {
		if _, err := regexp.Compile(m.searchPattern); err != nil {
			m.setError("search: " + err.Error())
			m.searchPattern = ""
			return
		}
	}
	m.searchNext()
}

func (m *Model) searchNext() {
	m.searchStep(1)
}

func (m *Model) searchPrev() {
	m.searchStep(-1)
}

// searchStep moves the cursor to the next visible row that matches, wrapping
// around. Matching starts at the row after (or before) the cursor.
func (m *Model) searchStep(dir int) {
	n := len(m.visible)
	if m.searchPattern == "" || m.matrix == nil || n == 0 {
		return
	}
	match := m.searchMatcher()
	start := m.tbl.Cursor()
	for i := 1; i <= n; i++ {
		idx := ((start+dir*i)%n + n) % n
		if match(m.matrix.Rows[m.visible[idx]]) {
			m.tbl.SetCursor(idx)
			m.setStatus("")
			return
		}
	}
	m.setStatus("no match for " + m.searchPattern)
}

func (m *Model) searchMatcher() func(model.Row) bool {
	if m.searchRegex {
		re, err := regexp.Compile(m.searchPattern)
		if err != nil {
			return func(model.Row) bool { return false }
		}
		return func(r model.Row) bool {
			for _, v := range r {
				if re.MatchString(v) {
					return true
				}
			}
			return false
		}
	}
	needle := strings.ToLower(m.searchPattern)
	return func(r model.Row) bool {
		for _, v := range r {
			if strings.Contains(strings.ToLower(v), needle) {
				return true
			}
		}
		return false
	}
}
