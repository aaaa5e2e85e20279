package parse

import (
	"reflect"
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		name  string
		line  string
		delim rune
		trim  bool
		want  []string
	}{
		{"plain", "a,b,c", ',', false, []string{"a", "b", "c"}},
		{"no delimiter", "abc", ',', false, []string{"abc"}},
		{"empty line", "", ',', false, []string{""}},
		{"empty fields", ",,", ',', false, []string{"", "", ""}},
		{"quoted delimiter kept", `a;"b;c";d`, ';', false, []string{"a", `"b;c"`, "d"}},
		{"single quotes", `'x,y',z`, ',', false, []string{"'x,y'", "z"}},
		{"mixed quotes", `"it's",'say "hi"'`, ',', false, []string{`"it's"`, `'say "hi"'`}},
		{"quote mid word is literal", `ab"c,d`, ',', false, []string{`ab"c`, "d"}},
		{"unterminated quote swallows rest", `"a,b,c`, ',', false, []string{`"a,b,c`}},
		{"text after closing quote", `"a"b,c`, ',', false, []string{`"a"b`, "c"}},
		{"untrimmed spaces kept", " a , b ", ',', false, []string{" a ", " b "}},
		{"trim spaces", " a , b ", ',', true, []string{"a", "b"}},
		{"trim keeps inner spaces", " a b ,c", ',', true, []string{"a b", "c"}},
		{"trim before quote", `  "a, b"  ,c`, ',', true, []string{`"a, b"`, "c"}},
		{"trim keeps quoted spaces", `" a "`, ',', true, []string{`" a "`}},
		{"trim tabs", "\ta\t;\tb", ';', true, []string{"a", "b"}},
		{"trim does not eat letters", "abc,def", ',', true, []string{"abc", "def"}},
		{"semicolon ignores comma", "a,b;c", ';', false, []string{"a,b", "c"}},
		{"unicode", "é,ü;ß", ',', false, []string{"é", "ü;ß"}},
		{"tab delimiter", "a\tb", '\t', false, []string{"a", "b"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Tokenize(tc.line, tc.delim, tc.trim)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Tokenize(%q) = %q, want %q", tc.line, got, tc.want)
			}
		})
	}
}

// outside quotes delimiter count + 1 == field count
func TestTokenizeFieldCount(t *testing.T) {
	lines := []string{
		"a,b,c",
		`"a,b",c`,
		`x,'y,z',"w"`,
		",,,",
		`"",""`,
		"no delimiter here",
	}
	for _, l := range lines {
		got := len(Tokenize(l, ',', false))
		want := countOutsideQuotes(l, ',') + 1
		if got != want {
			t.Errorf("%q: %d fields, want %d", l, got, want)
		}
	}
}

// countOutsideQuotes counts delimiters that are not inside a quoted field.
func countOutsideQuotes(s string, d rune) int {
	inside := false
	var q rune
	atStart := true
	count := 0
	for _, r := range s {
		switch {
		case inside && r == q:
			inside = false
			atStart = false
		case !inside && atStart && (r == '"' || r == '\''):
			inside = true
			q = r
			atStart = false
		case !inside && r == d:
			count++
			atStart = true
		default:
			atStart = false
		}
	}
	return count
}

func TestTokenizerValue(t *testing.T) {
	tk := NewTokenizer(';', true)
	got := tk.Tokenize(" a ; b ")
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("got %q", got)
	}
}

func TestSplitLines(t *testing.T) {
	if got := SplitLines("a\nb"); len(got) != 2 {
		t.Fatalf("got %q", got)
	}
	if got := SplitLines("a\nb\n"); len(got) != 3 || got[2] != "" {
		t.Fatalf("trailing newline: got %q", got)
	}
	if got := SplitLines("a\r\nb"); got[0] != "a\r" {
		t.Fatalf("carriage return must be preserved, got %q", got)
	}
}

func TestColumnAt(t *testing.T) {
	line := `name,"a,b",age`
	cases := []struct {
		offset int
		want   int
	}{
		{-1, 0},
		{0, 0},
		{3, 0},
		{5, 1},
		{8, 1},
		{11, 2},
		{len(line) + 10, 2},
	}
	for _, tc := range cases {
		if got := ColumnAt(line, tc.offset, ','); got != tc.want {
			t.Errorf("ColumnAt(%d) = %d, want %d", tc.offset, got, tc.want)
		}
	}
	if got := ColumnAt("a;b;c", strings.Index("a;b;c", "c"), ';'); got != 2 {
		t.Errorf("semicolon: got %d", got)
	}
}
