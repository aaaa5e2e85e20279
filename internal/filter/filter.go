package filter

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/Knetic/govaluate"

	"tabsense/internal/model"
)

type Criteria struct {
	Query    string // plain contains, or regex when UseRegex
	UseRegex bool
	Column   int    // Query applies to this column only; negative means any field
	Expr     string // govaluate expression over column names, e.g. `age > 30 && city == "Paris"`
}

// ParseQuery turns user input into Query/UseRegex: "/re/" is a regex,
// anything else a case-insensitive substring.
func ParseQuery(q string) (query string, useRegex bool) {
	q = strings.TrimSpace(q)
	if len(q) > 2 && strings.HasPrefix(q, "/") && strings.HasSuffix(q, "/") {
		return q[1 : len(q)-1], true
	}
	return q, false
}

type Evaluator struct {
	c    Criteria
	re   *regexp.Regexp
	expr *govaluate.EvaluableExpression
}

func NewEvaluator(c Criteria) (*Evaluator, error) {
	e := &Evaluator{c: c}
	var err error
	if c.UseRegex && c.Query != "" {
		e.re, err = regexp.Compile(c.Query)
		if err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(c.Expr) != "" {
		e.expr, err = govaluate.NewEvaluableExpression(c.Expr)
		if err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Active reports whether the evaluator filters anything at all.
func (e *Evaluator) Active() bool {
	return e != nil && (e.c.Query != "" || e.expr != nil)
}

// Match reports whether row passes the criteria. labels name the columns for
// the expression; every column is also reachable as c0, c1, ...
func (e *Evaluator) Match(row model.Row, labels []string) bool {
	if e == nil {
		return true
	}
	if e.c.Query != "" && !e.matchQuery(row) {
		return false
	}
	if e.expr != nil {
		result, err := e.expr.Evaluate(Params(row, labels))
		if err != nil {
			return false
		}
		b, ok := result.(bool)
		if !ok || !b {
			return false
		}
	}
	return true
}

func (e *Evaluator) matchQuery(row model.Row) bool {
	test := func(s string) bool {
		if e.re != nil {
			return e.re.MatchString(s)
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(e.c.Query))
	}
	if e.c.Column >= 0 {
		if e.c.Column >= len(row) {
			return false
		}
		return test(row[e.c.Column])
	}
	for _, v := range row {
		if test(v) {
			return true
		}
	}
	return false
}

// Indices returns the positions of the data rows that match.
func (e *Evaluator) Indices(m *model.Matrix, labels []string) []int {
	out := make([]int, 0, m.Len())
	for i, r := range m.Rows {
		if e.Match(r, labels) {
			out = append(out, i)
		}
	}
	return out
}

// Apply returns a copy of m holding only the matching data rows. The header,
// if any, is kept.
func (e *Evaluator) Apply(m *model.Matrix, labels []string) *model.Matrix {
	out := m.Clone()
	out.Rows = out.Rows[:0]
	for _, r := range m.Rows {
		if e.Match(r, labels) {
			out.Rows = append(out.Rows, append(model.Row(nil), r...))
		}
	}
	return out
}

// Params builds expression parameters for a row. Numeric-looking values are
// passed as float64 so comparisons such as `age > 30` work; an enclosing
// quote pair is ignored for that check only.
func Params(row model.Row, labels []string) map[string]any {
	params := make(map[string]any, 2*len(row))
	for i, v := range row {
		val := value(v)
		params["c"+strconv.Itoa(i)] = val
		if i < len(labels) {
			if name := Identifier(labels[i]); name != "" {
				if _, taken := params[name]; !taken {
					params[name] = val
				}
			}
		}
	}
	return params
}

func value(v string) any {
	s := strings.TrimSpace(v)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// Identifier turns a column label into an expression-safe name: runs of
// other characters become '_', and a leading digit gets a '_' prefix.
func Identifier(label string) string {
	label = strings.Trim(strings.TrimSpace(label), `"'`)
	var b strings.Builder
	lastUnderscore := false
	for _, r := range label {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
			lastUnderscore = r == '_'
			continue
		}
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	s := strings.TrimRight(b.String(), "_")
	if s == "" {
		return ""
	}
	if unicode.IsDigit(rune(s[0])) {
		s = "_" + s
	}
	return s
}
