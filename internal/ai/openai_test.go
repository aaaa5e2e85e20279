package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestDisabledClient(t *testing.T) {
	var c *OpenAIClient
	if _, err := c.SuggestTemplate(context.Background(), nil, nil, ""); !errors.Is(err, ErrDisabled) {
		t.Fatalf("nil client: %v", err)
	}
	c = NewOpenAIClient("", "", "m", 0)
	if _, err := c.SuggestTemplate(context.Background(), nil, nil, ""); !errors.Is(err, ErrDisabled) {
		t.Fatalf("no key: %v", err)
	}
}

func TestBuildTemplatePromptRedacts(t *testing.T) {
	p := buildTemplatePrompt([]string{"name", "email"}, [][]string{{"Bob", "bob@example.com"}}, "greeting")
	if strings.Contains(p, "bob@example.com") {
		t.Fatalf("email leaked: %s", p)
	}
	for _, want := range []string{"{0} name", "{1} email", "Bob | [redacted-email]", "The user wants: greeting"} {
		if !strings.Contains(p, want) {
			t.Fatalf("missing %q in %s", want, p)
		}
	}
}

func TestValidTemplate(t *testing.T) {
	if err := validTemplate("{1} is {0}", 2); err != nil {
		t.Fatal(err)
	}
	for _, bad := range []string{"", "  ", "{5}", "{0}\n{1}", "no placeholders"} {
		if err := validTemplate(bad, 2); err == nil {
			t.Errorf("%q accepted", bad)
		}
	}
}
