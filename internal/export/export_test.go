package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tabsense/internal/detect"
	"tabsense/internal/model"
)

func mustDetect(t *testing.T, buf string, header bool) *model.Matrix {
	t.Helper()
	m, ok := detect.Detect(buf, detect.DefaultDelimiters, header)
	if !ok {
		t.Fatalf("not tabular: %q", buf)
	}
	return m
}

func TestSerializeRoundTrip(t *testing.T) {
	buffers := []string{
		"b,2\na,1\nc,3",
		"name,age\nBob,30\nAmy,25",
		`a;"b;c";d` + "\n" + `1;'2;3';4`,
		" spaced , fields \n kept ,  as is ",
		"single line",
		"",
		"a,b\r\nc,d",
		`x,"",y`,
	}
	for _, buf := range buffers {
		for _, header := range []bool{false, true} {
			m := mustDetect(t, buf, header)
			out := Serialize(m)
			if out != buf {
				t.Errorf("header=%v: round trip %q -> %q", header, buf, out)
			}
			again := mustDetect(t, out, header)
			if again.Delimiter != m.Delimiter || again.Len() != m.Len() || again.Width() != m.Width() {
				t.Errorf("re-detect changed structure for %q", buf)
			}
		}
	}
}

func TestSerializeAfterSort(t *testing.T) {
	// a comma-free buffer is a consistent single column under ',', so force ';'
	m, ok := detect.Detect("name;age\nBob;30\nAmy;25", []rune{';'}, true)
	if !ok {
		t.Fatal("not detected")
	}
	if err := m.SortColumn(1, model.Ascending); err != nil {
		t.Fatal(err)
	}
	if got := Serialize(m); got != "name;age\nAmy;25\nBob;30" {
		t.Fatalf("got %q", got)
	}
}

func TestSerializeHeaderOnly(t *testing.T) {
	m := mustDetect(t, "name,age", true)
	if got := Serialize(m); got != "name,age" {
		t.Fatalf("got %q", got)
	}
}

func TestFormat(t *testing.T) {
	m := model.NewMatrix(',', false)
	m.AddRow(model.Row{"x", "y"})
	if got := Format(m, "{1}-{0}"); got != "y-x" {
		t.Fatalf("got %q", got)
	}

	m = mustDetect(t, "name,age\nBob,30\nAmy,25", true)
	got := Format(m, "{0} is {1} ({0}) {2} {x}")
	want := "Bob is 30 (Bob) {2} {x}\nAmy is 25 (Amy) {2} {x}"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatNoRescan(t *testing.T) {
	m := model.NewMatrix(',', false)
	m.AddRow(model.Row{"{1}", "b"})
	if got := Format(m, "{0}|{1}"); got != "{1}|b" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatManyColumns(t *testing.T) {
	r := make(model.Row, 12)
	for i := range r {
		r[i] = string(rune('a' + i))
	}
	if got := FormatRow(r, "{1}{10}{11}{12}"); got != "bkl{12}" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatEmpty(t *testing.T) {
	m := mustDetect(t, "only,header", true)
	if got := Format(m, "{0}"); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestToCSV(t *testing.T) {
	m := mustDetect(t, "name,note\n\"Doe, J\",plain", true)
	var b bytes.Buffer
	if err := ToCSV(&b, m); err != nil {
		t.Fatal(err)
	}
	// the retained quotes are data, so encoding/csv escapes them
	want := "name,note\n\"\"\"Doe, J\"\"\",plain\n"
	if b.String() != want {
		t.Fatalf("got %q", b.String())
	}
}

func TestToNDJSON(t *testing.T) {
	m := mustDetect(t, "name,age\nBob,30", true)
	var b bytes.Buffer
	if err := ToNDJSON(&b, m); err != nil {
		t.Fatal(err)
	}
	if b.String() != "{\"age\":\"30\",\"name\":\"Bob\"}\n" {
		t.Fatalf("got %q", b.String())
	}

	m = mustDetect(t, "a,b", false)
	b.Reset()
	_ = ToNDJSON(&b, m)
	if !strings.Contains(b.String(), `"c0":"a"`) {
		t.Fatalf("got %q", b.String())
	}
	if err := ToNDJSON(&b, mustDetect(t, "h", true)); err == nil {
		t.Fatalf("expected error on empty matrix")
	}
}

func TestToNDJSONDuplicateLabels(t *testing.T) {
	m := mustDetect(t, "v,v,v_2\n1,2,3", true)
	var b bytes.Buffer
	if err := ToNDJSON(&b, m); err != nil {
		t.Fatal(err)
	}
	if want := "{\"v\":\"1\",\"v_1\":\"2\",\"v_2\":\"3\"}\n"; b.String() != want {
		t.Fatalf("got %q, want %q", b.String(), want)
	}
}

func TestUniqueLabels(t *testing.T) {
	m := mustDetect(t, "a,a,a_1,a\nx,y,z,w", true)
	got := UniqueLabels(m)
	want := []string{"a", "a_1", "a_1_2", "a_3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("UniqueLabels = %q, want %q", got, want)
		}
	}
	if h := m.GetHeader(); h[1] != "a" {
		t.Fatalf("header modified: %q", h)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	var b bytes.Buffer
	if err := Write(&b, mustDetect(t, "a", false), "xml"); err == nil {
		t.Fatalf("expected error")
	}
	if err := Write(&b, mustDetect(t, "a,b", false), "raw"); err != nil || b.String() != "a,b" {
		t.Fatalf("raw: %q %v", b.String(), err)
	}
}

func TestToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := ToFile(path, "new,content"); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(path)
	if string(b) != "new,content" {
		t.Fatalf("got %q", b)
	}
	st, _ := os.Stat(path)
	if st.Mode().Perm() != 0o600 {
		t.Fatalf("mode not preserved: %v", st.Mode())
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temp files left: %v", entries)
	}
}
