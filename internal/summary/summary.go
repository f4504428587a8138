// Package summary condenses long article text into a short summary with
// Gemini. It is strictly optional: without an API key or on any error
// the caller truncates instead.
package summary

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"khabar/internal/cleaner"
)

const promptContentLimit = 6000

type Condenser struct {
	client *genai.Client
}

func NewCondenser(ctx context.Context, apiKey string) (*Condenser, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Condenser{client: client}, nil
}

func (c *Condenser) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Condense rewrites content as a summary of at most maxChars characters.
func (c *Condenser) Condense(ctx context.Context, headline, content string, maxChars int) (string, error) {
	model := c.client.GenerativeModel("gemini-1.5-flash")

	// Keep the prompt bounded; over-long input wastes tokens without
	// improving the summary.
	content = strings.TrimSpace(strings.ReplaceAll(content, "\r", ""))
	content = strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(content) > promptContentLimit {
		runes := []rune(content)
		trimmed := string(runes[:promptContentLimit])
		if idx := strings.LastIndex(trimmed, ". "); idx > 1200 {
			trimmed = trimmed[:idx+1]
		}
		content = trimmed
	}

	prompt := fmt.Sprintf(`Summarize this news article in plain English prose, at most %d characters.
Keep names, places and numbers exact. No introduction, no bullet points, just the summary text.

HEADLINE: %s

ARTICLE:
%s`, maxChars, headline, content)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	out := strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
	if out == "" {
		return "", fmt.Errorf("empty summary from Gemini")
	}
	return cleaner.Truncate(out, maxChars), nil
}
