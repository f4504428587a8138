// Package translate localizes article fields through the Google
// Translate v2 API.
package translate

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	translatev2 "google.golang.org/api/translate/v2"
)

// Translator is the narrow client surface, kept small so tests can swap
// in a fake.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

type GoogleTranslator struct {
	svc *translatev2.Service
}

func NewGoogleTranslator(ctx context.Context, apiKey string) (*GoogleTranslator, error) {
	svc, err := translatev2.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create translate service: %w", err)
	}
	return &GoogleTranslator{svc: svc}, nil
}

func (g *GoogleTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	if text == "" {
		return "", nil
	}

	resp, err := g.svc.Translations.List([]string{text}, target).Format("text").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("translate request failed: %w", err)
	}
	if len(resp.Translations) == 0 {
		return "", fmt.Errorf("translate returned no result")
	}
	return resp.Translations[0].TranslatedText, nil
}
