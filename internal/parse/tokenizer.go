package parse

import (
	"strings"
	"unicode"
)

// Tokenizer splits single lines of delimited text into fields.
type Tokenizer struct {
	Delimiter      rune
	TrimWhitespace bool
}

func NewTokenizer(delimiter rune, trim bool) Tokenizer {
	return Tokenizer{Delimiter: delimiter, TrimWhitespace: trim}
}

func (t Tokenizer) Tokenize(line string) []string {
	return Tokenize(line, t.Delimiter, t.TrimWhitespace)
}

// Tokenize splits line on delimiter, ignoring delimiters inside a field that
// opens with a single or double quote. Quote characters are kept in the
// field value. The result always holds at least one field.
func Tokenize(line string, delimiter rune, trimWhitespace bool) []string {
	fields := make([]string, 0, 8)
	var word strings.Builder
	insideQuotes := false
	var quoteChar rune
	waitingForDelimiter := false

	for _, r := range line {
		// leading whitespace, or whitespace between a closing quote and the delimiter
		if trimWhitespace && (word.Len() == 0 || waitingForDelimiter) && unicode.IsSpace(r) {
			continue
		}
		switch {
		case insideQuotes && r == quoteChar:
			insideQuotes = false
			quoteChar = 0
			waitingForDelimiter = true
		case !insideQuotes && word.Len() == 0 && isQuote(r):
			insideQuotes = true
			quoteChar = r
		case !insideQuotes && r == delimiter:
			fields = append(fields, finish(word.String(), trimWhitespace))
			word.Reset()
			waitingForDelimiter = false
			continue
		}
		word.WriteRune(r)
	}
	return append(fields, finish(word.String(), trimWhitespace))
}

func isQuote(r rune) bool { return r == '"' || r == '\'' }

func finish(word string, trim bool) string {
	if trim {
		return strings.TrimSpace(word)
	}
	return word
}

// SplitLines splits a buffer into lines on '\n' only. A trailing newline
// yields a final empty line, as the buffer really ends with one.
func SplitLines(buffer string) []string {
	return strings.Split(buffer, "\n")
}

// ColumnAt returns the 0-based column that the byte offset falls in. Offsets
// past the end of the line resolve to the last column.
func ColumnAt(line string, offset int, delimiter rune) int {
	if offset <= 0 {
		return 0
	}
	if offset > len(line) {
		offset = len(line)
	}
	return len(Tokenize(line[:offset], delimiter, false)) - 1
}
