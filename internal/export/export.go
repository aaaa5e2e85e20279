package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"tabsense/internal/model"
)

// Serialize renders the matrix back to text: the header first when one was
// captured, then every data row. Fields are joined with the matrix
// delimiter and rows with '\n'; there is no trailing newline.
func Serialize(m *model.Matrix) string {
	var b strings.Builder
	sep := string(m.Delimiter)
	first := true
	write := func(r model.Row) {
		if !first {
			b.WriteByte('\n')
		}
		first = false
		b.WriteString(strings.Join(r, sep))
	}
	if m.HasHeader() {
		write(m.Header)
	}
	for _, r := range m.Rows {
		write(r)
	}
	return b.String()
}

// Format expands template once per data row. Each "{i}" is replaced by field
// i of the row; placeholders beyond the row width stay as written. Inserted
// values are not expanded again.
func Format(m *model.Matrix, template string) string {
	lines := make([]string, 0, len(m.Rows))
	for _, r := range m.Rows {
		lines = append(lines, FormatRow(r, template))
	}
	return strings.Join(lines, "\n")
}

// FormatRow expands template for a single row.
func FormatRow(r model.Row, template string) string {
	if !strings.Contains(template, "{") {
		return template
	}
	pairs := make([]string, 0, 2*len(r))
	for i, v := range r {
		pairs = append(pairs, "{"+strconv.Itoa(i)+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Labels names the columns for keyed exports: the header when there is one,
// otherwise c0, c1, ...
func Labels(m *model.Matrix) []string {
	w := m.Width()
	out := make([]string, w)
	for i := 0; i < w; i++ {
		if m.HasHeader() && i < len(m.Header) && strings.TrimSpace(m.Header[i]) != "" {
			out[i] = m.Header[i]
			continue
		}
		out[i] = "c" + strconv.Itoa(i)
	}
	return out
}

// UniqueLabels is Labels with repeats made distinct: a label seen before
// gets the column index appended ("v", "v_1"), so keyed exports never merge
// two columns.
func UniqueLabels(m *model.Matrix) []string {
	labels := Labels(m)
	used := make(map[string]bool, len(labels))
	for i, l := range labels {
		if !used[l] {
			used[l] = true
			continue
		}
		k := l + "_" + strconv.Itoa(i)
		for n := 2; used[k]; n++ {
			k = l + "_" + strconv.Itoa(i) + "_" + strconv.Itoa(n)
		}
		used[k] = true
		labels[i] = k
	}
	return labels
}

// ToCSV writes RFC 4180 output (fields quoted where needed) for tools that
// expect strict CSV.
func ToCSV(w io.Writer, m *model.Matrix) error {
	cw := csv.NewWriter(w)
	switch m.Delimiter {
	case 0, '"', '\r', '\n', utf8.RuneError:
		// keep the comma; encoding/csv rejects these
	default:
		cw.Comma = m.Delimiter
	}
	if m.HasHeader() {
		if err := cw.Write(m.Header); err != nil {
			return err
		}
	}
	for _, r := range m.Rows {
		if err := cw.Write(r); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ToNDJSON writes one JSON object per data row keyed by UniqueLabels.
func ToNDJSON(w io.Writer, m *model.Matrix) error {
	if m.Len() == 0 {
		return errors.New("no rows")
	}
	labels := UniqueLabels(m)
	bw := bufio.NewWriter(w)
	for _, r := range m.Rows {
		obj := make(map[string]string, len(r))
		for i, v := range r {
			if i < len(labels) {
				obj[labels[i]] = v
			}
		}
		b, err := json.Marshal(obj)
		if err != nil {
			return err
		}
		if _, err := bw.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ToFile replaces path with content through a temp file and rename, so a
// failed write never leaves a half-written file.
func ToFile(path, content string) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if st, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmp, st.Mode().Perm())
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// Write dispatches on an export format name: raw, csv or ndjson.
func Write(w io.Writer, m *model.Matrix, format string) error {
	switch strings.ToLower(format) {
	case "", "raw":
		_, err := io.WriteString(w, Serialize(m))
		return err
	case "csv":
		return ToCSV(w, m)
	case "ndjson", "json":
		return ToNDJSON(w, m)
	}
	return fmt.Errorf("unknown export format %q", format)
}
