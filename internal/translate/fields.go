package translate

import (
	"context"
	"log/slog"
	"time"

	"khabar/internal/article"
	"khabar/internal/ratelimit"
	"khabar/internal/retry"
)

// Localized holds the translated renditions of every text field on an
// article. A field whose translation failed keeps the original text.
type Localized struct {
	Headline string
	Summary  string
	Author   string
	Source   string
	Category string
	Tags     []string
}

// FieldTranslator translates article fields one by one with pacing and
// retries, so one stubborn field never sinks the whole article.
type FieldTranslator struct {
	tr       Translator
	pacer    *ratelimit.Pacer
	tagPacer *ratelimit.Pacer
	retry    retry.Config
	log      *slog.Logger
}

// Config tunes pacing and retries; zero values take the defaults used
// against the live API.
type Config struct {
	FieldInterval time.Duration
	TagInterval   time.Duration
	Retry         retry.Config
}

func NewFieldTranslator(tr Translator, log *slog.Logger) *FieldTranslator {
	return NewFieldTranslatorWithConfig(tr, Config{}, log)
}

func NewFieldTranslatorWithConfig(tr Translator, cfg Config, log *slog.Logger) *FieldTranslator {
	if cfg.FieldInterval == 0 {
		cfg.FieldInterval = 500 * time.Millisecond
	}
	if cfg.TagInterval == 0 {
		cfg.TagInterval = 200 * time.Millisecond
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.Config{
			MaxAttempts: 3,
			Delay:       2 * time.Second,
			Backoff:     true,
		}
	}
	return &FieldTranslator{
		tr:       tr,
		pacer:    ratelimit.NewPacer(cfg.FieldInterval),
		tagPacer: ratelimit.NewPacer(cfg.TagInterval),
		retry:    cfg.Retry,
		log:      log,
	}
}

// TranslateArticle localizes a into target.
func (f *FieldTranslator) TranslateArticle(ctx context.Context, a *article.Article, target string) Localized {
	loc := Localized{
		Headline: f.field(ctx, f.pacer, a.Headline, target, "headline", a.ID),
		Summary:  f.field(ctx, f.pacer, a.Summary, target, "summary", a.ID),
		Author:   f.field(ctx, f.pacer, a.Author, target, "author", a.ID),
		Source:   f.field(ctx, f.pacer, a.Source, target, "source", a.ID),
		Category: f.field(ctx, f.pacer, a.Category, target, "category", a.ID),
	}

	for _, tag := range a.Tags {
		loc.Tags = append(loc.Tags, f.field(ctx, f.tagPacer, tag, target, "tag", a.ID))
	}

	return loc
}

// field translates one string, falling back to the original on failure.
func (f *FieldTranslator) field(ctx context.Context, pacer *ratelimit.Pacer, text, target, name, articleID string) string {
	if text == "" {
		return text
	}

	var result string
	err := retry.Do(ctx, f.retry, func() error {
		if err := pacer.Wait(ctx); err != nil {
			return err
		}
		out, err := f.tr.Translate(ctx, text, target)
		if err != nil {
			return err
		}
		result = out
		return nil
	})
	if err != nil {
		f.log.Warn("field translation failed, keeping original",
			"article", articleID, "field", name, "language", target, "error", err)
		return text
	}
	return result
}
