package detect

import (
	"errors"
	"strings"

	"tabsense/internal/model"
	"tabsense/internal/parse"
	"tabsense/internal/util/logx"
)

// ErrNotTabular is returned when no candidate delimiter gives every line the
// same number of fields.
var ErrNotTabular = errors.New("the buffer doesn't appear to be a CSV file")

// DefaultDelimiters are tried in order; the first consistent one wins.
var DefaultDelimiters = []rune{',', ';'}

var log = logx.Named("detect")

type Options struct {
	Candidates     []rune // nil means DefaultDelimiters
	UseHeader      bool
	TrimWhitespace bool
}

// Detect tokenizes every line of buffer with each candidate delimiter and
// returns a matrix for the first candidate that yields a constant column
// count. ok is false when no candidate does.
func Detect(buffer string, candidates []rune, useHeader bool) (*model.Matrix, bool) {
	m, err := Run(buffer, Options{Candidates: candidates, UseHeader: useHeader})
	if err != nil {
		return nil, false
	}
	return m, true
}

// Run is Detect with options, reporting failure as ErrNotTabular.
func Run(buffer string, opt Options) (*model.Matrix, error) {
	candidates := opt.Candidates
	if len(candidates) == 0 {
		candidates = DefaultDelimiters
	}
	lines := parse.SplitLines(buffer)
	for _, d := range candidates {
		if m, ok := tryDelimiter(lines, d, opt); ok {
			log.Debugf("delimiter %q accepted: rows=%d width=%d header=%v", d, len(lines), m.Width(), m.HasHeader())
			return m, nil
		}
	}
	log.Infof("no consistent delimiter among %q for %d lines", string(candidates), len(lines))
	return nil, ErrNotTabular
}

func tryDelimiter(lines []string, d rune, opt Options) (*model.Matrix, bool) {
	tk := parse.NewTokenizer(d, opt.TrimWhitespace)
	m := model.NewMatrix(d, opt.UseHeader)
	width := -1
	for i, line := range lines {
		fields := tk.Tokenize(line)
		if width < 0 {
			width = len(fields)
		} else if len(fields) != width {
			log.Debugf("delimiter %q rejected at line %d: %d fields, expected %d", d, i+1, len(fields), width)
			return nil, false
		}
		m.AddRow(fields)
	}
	return m, true
}

// ParseDelimiters turns a configured candidate list such as ",;\t|" into
// runes, keeping order and dropping duplicates. The two-character sequence
// `\t` stands for a tab.
func ParseDelimiters(s string) []rune {
	s = strings.ReplaceAll(s, `\t`, "\t")
	seen := map[rune]bool{}
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if seen[r] || r == '\n' || r == '"' || r == '\'' {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
