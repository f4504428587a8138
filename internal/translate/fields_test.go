package translate

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"khabar/internal/article"
	"khabar/internal/logger"
	"khabar/internal/retry"
)

// fakeTranslator prefixes translations and can be told to fail on
// specific inputs.
type fakeTranslator struct {
	calls   int
	failing map[string]bool
}

func (f *fakeTranslator) Translate(_ context.Context, text, target string) (string, error) {
	f.calls++
	if f.failing[text] {
		return "", fmt.Errorf("synthetic failure for %q", text)
	}
	return "[" + target + "] " + text, nil
}

func fastTranslator(tr Translator) *FieldTranslator {
	return NewFieldTranslatorWithConfig(tr, Config{
		FieldInterval: time.Nanosecond,
		TagInterval:   time.Nanosecond,
		Retry:         retry.Config{MaxAttempts: 2, Delay: time.Millisecond},
	}, logger.With("test"))
}

func sampleArticle() *article.Article {
	return &article.Article{
		ID:       "aaa111bbb222",
		Headline: "Reservoir levels rise",
		Summary:  "The water level rose by four feet.",
		Author:   "R. Krishnan",
		Source:   "The Hindu",
		Category: "Tamil Nadu",
		Tags:     []string{"water", "monsoon"},
	}
}

func TestTranslateArticle(t *testing.T) {
	fake := &fakeTranslator{}
	ft := fastTranslator(fake)

	loc := ft.TranslateArticle(context.Background(), sampleArticle(), "hi")

	assert.Equal(t, "[hi] Reservoir levels rise", loc.Headline)
	assert.Equal(t, "[hi] The water level rose by four feet.", loc.Summary)
	assert.Equal(t, "[hi] R. Krishnan", loc.Author)
	assert.Equal(t, "[hi] The Hindu", loc.Source)
	assert.Equal(t, "[hi] Tamil Nadu", loc.Category)
	assert.Equal(t, []string{"[hi] water", "[hi] monsoon"}, loc.Tags)

	// 5 fields + 2 tags, one call each.
	assert.Equal(t, 7, fake.calls)
}

func TestTranslateArticleFieldFallback(t *testing.T) {
	fake := &fakeTranslator{failing: map[string]bool{"R. Krishnan": true}}
	ft := fastTranslator(fake)

	loc := ft.TranslateArticle(context.Background(), sampleArticle(), "ta")

	// The failing field keeps its original text, the rest translate.
	assert.Equal(t, "R. Krishnan", loc.Author)
	assert.Equal(t, "[ta] Reservoir levels rise", loc.Headline)
	assert.Equal(t, []string{"[ta] water", "[ta] monsoon"}, loc.Tags)
}

func TestTranslateArticleRetries(t *testing.T) {
	fake := &fakeTranslator{failing: map[string]bool{"R. Krishnan": true}}
	ft := fastTranslator(fake)

	ft.TranslateArticle(context.Background(), sampleArticle(), "hi")

	// 6 successful single calls plus 2 attempts for the failing field.
	assert.Equal(t, 8, fake.calls)
}

func TestTranslateArticleEmptyFields(t *testing.T) {
	fake := &fakeTranslator{}
	ft := fastTranslator(fake)

	a := &article.Article{ID: "aaa111bbb222", Headline: "Only headline"}
	loc := ft.TranslateArticle(context.Background(), a, "hi")

	assert.Equal(t, "[hi] Only headline", loc.Headline)
	assert.Equal(t, "", loc.Summary)
	assert.Empty(t, loc.Tags)
	assert.Equal(t, 1, fake.calls)
}
