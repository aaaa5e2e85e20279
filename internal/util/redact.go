package util

import (
	"regexp"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	reToken = regexp.MustCompile(`(?i)((?:api|secret|token|key|password)[=:]\s*)([A-Za-z0-9-_]{8,})`)
	// column labels whose values are masked whole
	reSensitiveLabel = regexp.MustCompile(`(?i)(passw|secret|token|api.?key|ssn|iban|card)`)
)

// RedactPII masks e-mail addresses and key=value secrets before text leaves
// the process or reaches the logs.
func RedactPII(s string) string {
	s = reEmail.ReplaceAllString(s, "[redacted-email]")
	s = reToken.ReplaceAllString(s, "${1}[redacted]")
	return s
}

// SensitiveLabel reports whether a column label names secret data.
func SensitiveLabel(label string) bool {
	return reSensitiveLabel.MatchString(strings.TrimSpace(label))
}

// RedactRow returns a copy of row with every field passed through RedactPII,
// and fields under a sensitive label replaced entirely.
func RedactRow(labels, row []string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if i < len(labels) && SensitiveLabel(labels[i]) && v != "" {
			out[i] = "[redacted]"
			continue
		}
		out[i] = RedactPII(v)
	}
	return out
}
