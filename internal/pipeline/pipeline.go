// Package pipeline runs the extract-translate-narrate batch: discover
// fresh links, fetch and clean articles, then produce per-language
// translations with narration audio.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"khabar/internal/article"
	"khabar/internal/language"
	"khabar/internal/metrics"
	"khabar/internal/storage"
	"khabar/internal/store"
	"khabar/internal/summary"
	"khabar/internal/translate"
	"khabar/internal/tts"
)

var ErrAlreadyRunning = errors.New("batch already running")

// Discoverer yields candidate article URLs.
type Discoverer interface {
	DiscoverLinks(ctx context.Context) ([]string, error)
}

// Fetcher turns one URL into an Article.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*article.Article, error)
}

type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateDone    State = "done"
)

// Status is the job handle view exposed on /status.
type Status struct {
	State      State     `json:"state"`
	Processing bool      `json:"processing"`
	Languages  []string  `json:"languages,omitempty"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	LastError  string    `json:"last_error,omitempty"`
}

type Pipeline struct {
	crawler   Discoverer
	fetcher   Fetcher
	fields    *translate.FieldTranslator
	narrator  *tts.Narrator
	uploader  storage.Uploader
	condenser *summary.Condenser
	store     *store.Store
	metrics   *metrics.Metrics
	log       *slog.Logger

	maxArticles int

	slot     chan struct{} // 1-slot semaphore: only one batch in flight
	statusMu sync.RWMutex
	status   Status
}

type Options struct {
	Crawler     Discoverer
	Fetcher     Fetcher
	Fields      *translate.FieldTranslator
	Narrator    *tts.Narrator    // nil disables narration
	Uploader    storage.Uploader // nil disables uploads
	Condenser   *summary.Condenser
	Store       *store.Store
	Metrics     *metrics.Metrics
	MaxArticles int
	Log         *slog.Logger
}

func New(opts Options) *Pipeline {
	if opts.MaxArticles <= 0 {
		opts.MaxArticles = 10
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Global
	}
	p := &Pipeline{
		crawler:     opts.Crawler,
		fetcher:     opts.Fetcher,
		fields:      opts.Fields,
		narrator:    opts.Narrator,
		uploader:    opts.Uploader,
		condenser:   opts.Condenser,
		store:       opts.Store,
		metrics:     opts.Metrics,
		log:         opts.Log,
		maxArticles: opts.MaxArticles,
		slot:        make(chan struct{}, 1),
		status:      Status{State: StateIdle},
	}
	return p
}

// Status returns a snapshot of the current job state.
func (p *Pipeline) Status() Status {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}

func (p *Pipeline) setStatus(update func(*Status)) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	update(&p.status)
	p.status.Processing = p.status.State == StateRunning
}

// Start launches the batch in the background. Only one batch runs at a
// time; a second Start while one is in flight returns ErrAlreadyRunning.
func (p *Pipeline) Start(languages []string) error {
	select {
	case p.slot <- struct{}{}:
	default:
		return ErrAlreadyRunning
	}

	go func() {
		defer func() { <-p.slot }()
		p.run(context.Background(), languages)
	}()
	return nil
}

// RunSync runs the batch inline, for synchronous /extract requests and
// one-shot command line runs.
func (p *Pipeline) RunSync(ctx context.Context, languages []string) error {
	select {
	case p.slot <- struct{}{}:
	default:
		return ErrAlreadyRunning
	}
	defer func() { <-p.slot }()

	p.run(ctx, languages)

	st := p.Status()
	if st.LastError != "" {
		return errors.New(st.LastError)
	}
	return nil
}

func (p *Pipeline) run(ctx context.Context, languages []string) {
	start := time.Now()
	if len(languages) == 0 {
		languages = language.Codes()
	}

	p.setStatus(func(st *Status) {
		*st = Status{State: StateRunning, Languages: languages, StartedAt: start}
	})

	err := p.runBatch(ctx, languages)

	p.metrics.RecordBatchTime(time.Since(start))
	if err != nil {
		p.metrics.SetError(err.Error())
		p.log.Error("batch failed", "error", err)
	} else {
		p.metrics.SetLastRun()
	}

	p.setStatus(func(st *Status) {
		st.State = StateDone
		if err != nil {
			st.LastError = err.Error()
		} else {
			st.LastError = ""
		}
	})
}

func (p *Pipeline) runBatch(ctx context.Context, languages []string) error {
	links, err := p.crawler.DiscoverLinks(ctx)
	if err != nil {
		return fmt.Errorf("link discovery failed: %w", err)
	}
	p.metrics.IncrementArticlesDiscovered(len(links))

	var fresh []string
	for _, link := range links {
		if p.store.IsKnownURL(link) {
			p.metrics.IncrementDuplicatesSkipped()
			continue
		}
		fresh = append(fresh, link)
	}
	if len(fresh) > p.maxArticles {
		fresh = fresh[:p.maxArticles]
	}

	p.log.Info("starting batch", "discovered", len(links), "fresh", len(fresh), "languages", len(languages))

	for _, link := range fresh {
		art, err := p.fetcher.Fetch(ctx, link)
		if err != nil {
			p.log.Warn("failed to fetch article", "url", link, "error", err)
			continue
		}

		p.condenseSummary(ctx, art)
		p.narrateOriginal(ctx, art)

		// Upsert last: the store keeps a copy, so every field must be
		// final before the article becomes visible to readers.
		p.store.Upsert(art)
		if err := p.store.RecordLinks([]string{link}); err != nil {
			p.log.Warn("failed to record link", "url", link, "error", err)
		}
		p.metrics.IncrementArticlesFetched()

		p.log.Info("article extracted", "id", art.ID, "headline", art.Headline)
	}

	batches := p.translateAll(ctx, languages)

	for lang, batch := range batches {
		if err := p.store.AppendLanguageBatch(lang, batch); err != nil {
			p.log.Warn("failed to write language batch", "language", lang, "error", err)
		}
	}

	if err := p.store.SaveLanguagesSummary(p.store.RebuildLanguagesSummary()); err != nil {
		p.log.Warn("failed to save languages summary", "error", err)
	}

	if err := p.store.SaveArticles(); err != nil {
		return fmt.Errorf("failed to save article store: %w", err)
	}
	return nil
}

// condenseSummary replaces the truncated summary with a Gemini rewrite
// when the content is long enough to benefit. Failure keeps truncation.
func (p *Pipeline) condenseSummary(ctx context.Context, art *article.Article) {
	if p.condenser == nil || len(art.Content) <= 1000 {
		return
	}
	condensed, err := p.condenser.Condense(ctx, art.Headline, art.Content, 1000)
	if err != nil {
		p.log.Debug("summary condensing failed, keeping truncation", "id", art.ID, "error", err)
		return
	}
	art.Summary = condensed
}

// narrateOriginal produces the default English narration for a freshly
// fetched article.
func (p *Pipeline) narrateOriginal(ctx context.Context, art *article.Article) {
	if p.narrator == nil {
		return
	}

	english, err := language.Lookup(language.Default)
	if err != nil {
		return
	}

	audioURL, err := p.synthesize(ctx, art.ID, art.Summary, english)
	if err != nil {
		p.log.Warn("english narration failed", "id", art.ID, "error", err)
		return
	}
	art.AudioURL = audioURL
}

// translateAll walks every stored article for every requested language,
// skipping pairs already done. Returns per-language batches of the
// translations produced in this run.
func (p *Pipeline) translateAll(ctx context.Context, languages []string) map[string][]article.Translation {
	batches := make(map[string][]article.Translation)

	for _, code := range languages {
		lang, err := language.Lookup(code)
		if err != nil {
			p.log.Warn("skipping unsupported language", "language", code)
			continue
		}
		if code == language.Default {
			continue
		}

		for _, art := range p.store.Articles() {
			if p.store.IsTranslated(art.ID, code) {
				continue
			}

			tr, err := p.ProcessPair(ctx, art, lang)
			if err != nil {
				p.log.Warn("translation failed", "id", art.ID, "language", code, "error", err)
				continue
			}
			batches[code] = append(batches[code], tr)
		}
	}

	return batches
}

// ProcessPair translates one article into one language, synthesizes its
// narration, and persists the per-article records. Synthesis failure is
// not fatal: the translation is kept with no audio URL.
func (p *Pipeline) ProcessPair(ctx context.Context, art *article.Article, lang language.Language) (article.Translation, error) {
	loc := p.fields.TranslateArticle(ctx, art, lang.Code)

	tr := article.Translation{
		ArticleID:    art.ID,
		Language:     lang.Code,
		LanguageName: lang.Name,
		Title:        loc.Headline,
		Summary:      loc.Summary,
		Author:       loc.Author,
		Source:       loc.Source,
		Category:     loc.Category,
		Tags:         loc.Tags,
		TranslatedAt: time.Now(),
	}
	p.metrics.IncrementSuccessfulTranslations()

	if p.narrator != nil {
		audioURL, err := p.synthesize(ctx, art.ID, tr.Summary, lang)
		if err != nil {
			p.log.Warn("narration failed, keeping translation without audio",
				"id", art.ID, "language", lang.Code, "error", err)
		} else {
			tr.AudioURL = audioURL
		}
	}

	art.SetTranslation(tr)
	p.store.Upsert(art)

	if err := p.store.WriteTranslation(tr); err != nil {
		p.log.Warn("failed to write translation file", "id", art.ID, "language", lang.Code, "error", err)
	}
	if err := p.store.WriteArticleMetadata(p.articleMetadata(art)); err != nil {
		p.log.Warn("failed to write article metadata", "id", art.ID, "error", err)
	}

	return tr, nil
}

// synthesize narrates text in lang, stores the mp3 under the article's
// translation directory, uploads it when an uploader is wired, and
// records voice metadata. Returns the audio URL (uploaded or local).
func (p *Pipeline) synthesize(ctx context.Context, articleID, text string, lang language.Language) (string, error) {
	audio, err := p.narrator.Narrate(ctx, text, lang)
	if err != nil {
		p.metrics.IncrementFailedSyntheses()
		return "", err
	}
	p.metrics.IncrementSuccessfulSyntheses()

	path := p.store.VoicePath(articleID, lang.Code)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create voice dir: %w", err)
	}
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", fmt.Errorf("failed to write voice file: %w", err)
	}

	audioURL := path
	if p.uploader != nil {
		uploaded, err := p.uploader.Upload(ctx, path, "audio/mpeg")
		if err != nil {
			p.log.Warn("audio upload failed, keeping local path",
				"id", articleID, "language", lang.Code, "error", err)
		} else {
			audioURL = uploaded
			p.metrics.IncrementAudioUploads()
		}
	}

	meta := store.VoiceMetadata{
		ArticleID:    articleID,
		Language:     lang.Code,
		LanguageName: lang.Name,
		LocalPath:    path,
		AudioURL:     audioURL,
		CreatedAt:    time.Now(),
	}
	if err := p.store.WriteVoiceMetadata(meta); err != nil {
		p.log.Warn("failed to write voice metadata", "id", articleID, "language", lang.Code, "error", err)
	}

	return audioURL, nil
}

func (p *Pipeline) articleMetadata(art *article.Article) store.ArticleMetadata {
	langs := make([]string, 0, len(art.Translations))
	for code := range art.Translations {
		langs = append(langs, code)
	}
	sort.Strings(langs)

	return store.ArticleMetadata{
		ArticleID: art.ID,
		Headline:  art.Headline,
		URL:       art.URL,
		Date:      art.Date,
		Category:  art.Category,
		Languages: langs,
	}
}
