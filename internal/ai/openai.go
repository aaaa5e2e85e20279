package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	altai "github.com/sashabaranov/go-openai"

	"tabsense/internal/util"
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("openai disabled")

// Minimal client wrapper around go-openai.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration
}

func NewOpenAIClient(apiKey, baseURL, model string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{apiKey: apiKey, baseURL: baseURL, model: model, timeout: timeout}
}

type templateResponse struct {
	Template    string `json:"template"`
	Description string `json:"description"`
}

// Suggestion is a row template proposed for a table.
type Suggestion struct {
	Template    string
	Description string
}

// SuggestTemplate asks the model for a "{0} ... {1}" row template that reads
// well for the given columns. Sample rows are redacted before they are sent.
func (c *OpenAIClient) SuggestTemplate(ctx context.Context, labels []string, sample [][]string, hint string) (Suggestion, error) {
	if c == nil || c.apiKey == "" {
		return Suggestion{}, ErrDisabled
	}
	ctx2, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	resp, err := c.call(ctx2, buildTemplatePrompt(labels, sample, hint))
	if err != nil {
		return Suggestion{}, err
	}
	var out templateResponse
	if err := json.Unmarshal([]byte(resp), &out); err != nil {
		return Suggestion{}, fmt.Errorf("decode suggestion: %w", err)
	}
	if err := validTemplate(out.Template, len(labels)); err != nil {
		return Suggestion{}, err
	}
	return Suggestion{Template: out.Template, Description: out.Description}, nil
}

func (c *OpenAIClient) call(ctx context.Context, prompt string) (string, error) {
	cfg := altai.DefaultConfig(c.apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	cli := altai.NewClientWithConfig(cfg)
	resp, err := cli.CreateChatCompletion(ctx, altai.ChatCompletionRequest{
		Model: c.model,
		Messages: []altai.ChatCompletionMessage{
			{Role: altai.ChatMessageRoleSystem, Content: "You write one-line text templates for table rows and return ONLY strict JSON following the specified contract. No prose, no code fences."},
			{Role: altai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature:    0.2,
		ResponseFormat: &altai.ChatCompletionResponseFormat{Type: altai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildTemplatePrompt(labels []string, sample [][]string, hint string) string {
	// Limit to 20 rows
	max := 20
	if len(sample) < max {
		max = len(sample)
	}
	var b strings.Builder
	b.WriteString("Write a single-line template for the table below. Refer to column i as {i} (0-based). ")
	b.WriteString(`Return ONLY strict JSON matching this contract: {"template": string, "description": string}.` + "\n")
	if h := strings.TrimSpace(hint); h != "" {
		b.WriteString("The user wants: ")
		b.WriteString(h)
		b.WriteByte('\n')
	}
	b.WriteString("Columns:\n")
	for i, l := range labels {
		fmt.Fprintf(&b, "{%d} %s\n", i, util.RedactPII(l))
	}
	b.WriteString("Rows:\n")
	for i := 0; i < max; i++ {
		b.WriteString(strings.Join(util.RedactRow(labels, sample[i]), " | "))
		b.WriteByte('\n')
	}
	return b.String()
}

// validTemplate rejects empty templates and templates that reference no
// existing column.
func validTemplate(t string, width int) error {
	if strings.TrimSpace(t) == "" {
		return errors.New("empty template")
	}
	if strings.ContainsAny(t, "\n\r") {
		return errors.New("template spans several lines")
	}
	for i := 0; i < width; i++ {
		if strings.Contains(t, fmt.Sprintf("{%d}", i)) {
			return nil
		}
	}
	return fmt.Errorf("template %q uses no column placeholder", t)
}
