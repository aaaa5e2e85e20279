package util

import "testing"

func TestRedactPII(t *testing.T) {
	cases := map[string]string{
		"mail bob@example.com now": "mail [redacted-email] now",
		"token=abcdef123456":       "token=[redacted]",
		"password: hunter2hunter":  "password: [redacted]",
		"age 30, city Lyon":        "age 30, city Lyon",
	}
	for in, want := range cases {
		if got := RedactPII(in); got != want {
			t.Errorf("RedactPII(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRedactRow(t *testing.T) {
	labels := []string{"name", "email", "Password", "card_number"}
	row := []string{"Bob", "bob@example.com", "hunter2", "4111"}
	got := RedactRow(labels, row)
	want := []string{"Bob", "[redacted-email]", "[redacted]", "[redacted]"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("RedactRow = %q, want %q", got, want)
		}
	}
	if row[2] != "hunter2" {
		t.Fatal("input row was modified")
	}
	// fields beyond the labels are still scanned
	if got := RedactRow(nil, []string{"key=abcdefgh1"}); got[0] != "key=[redacted]" {
		t.Fatalf("got %q", got)
	}
}

func TestSensitiveLabel(t *testing.T) {
	for _, l := range []string{"password", " API_KEY ", "ssn", "Secret"} {
		if !SensitiveLabel(l) {
			t.Errorf("%q not sensitive", l)
		}
	}
	for _, l := range []string{"name", "age", "city"} {
		if SensitiveLabel(l) {
			t.Errorf("%q flagged", l)
		}
	}
}
