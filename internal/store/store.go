// Package store is the file-backed article repository. All JSON layout
// under the working directory is owned here; callers only see articles,
// translations, and summaries.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"khabar/internal/article"
	"khabar/internal/language"
)

var ErrNotFound = errors.New("article not found")

const (
	articlesFile = "latest_articles.json"
	linksFile    = "discovered_links.json"
	summaryFile  = "languages.json"
)

type Store struct {
	mu  sync.RWMutex
	dir string

	articles []*article.Article
	index    map[string]*article.Article
	links    []string
	linkSet  map[string]bool

	// translated ids recorded in earlier per-language batch files,
	// so restarts never redo finished work
	diskTranslated map[string]map[string]bool

	lastUpdated time.Time
}

type storeFile struct {
	LastUpdated time.Time          `json:"last_updated"`
	Articles    []*article.Article `json:"articles"`
}

// Open loads existing state from dir, creating the directory tree on
// first use.
func Open(dir string) (*Store, error) {
	s := &Store{
		dir:            dir,
		index:          make(map[string]*article.Article),
		linkSet:        make(map[string]bool),
		diskTranslated: make(map[string]map[string]bool),
	}

	for _, sub := range []string{"", "images", "translations", filepath.Join("translations", "articles")} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create work dir: %w", err)
		}
	}

	if err := s.loadArticles(); err != nil {
		return nil, err
	}
	if err := s.loadLinks(); err != nil {
		return nil, err
	}
	if err := s.loadTranslatedIndex(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) loadArticles() error {
	data, err := os.ReadFile(filepath.Join(s.dir, articlesFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read article store: %w", err)
	}

	var f storeFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse article store: %w", err)
	}

	s.articles = f.Articles
	s.lastUpdated = f.LastUpdated
	for _, a := range f.Articles {
		s.index[a.ID] = a
		s.linkSet[a.URL] = true
	}
	return nil
}

func (s *Store) loadLinks() error {
	data, err := os.ReadFile(filepath.Join(s.dir, linksFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read link store: %w", err)
	}

	var links []string
	if err := json.Unmarshal(data, &links); err != nil {
		return fmt.Errorf("failed to parse link store: %w", err)
	}

	for _, link := range links {
		if !s.linkSet[link] {
			s.linkSet[link] = true
			s.links = append(s.links, link)
		}
	}
	return nil
}

// loadTranslatedIndex scans earlier per-language batch files; ids found
// there are never retranslated even if the article store was rebuilt.
func (s *Store) loadTranslatedIndex() error {
	root := filepath.Join(s.dir, "translations")
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("failed to scan translations dir: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == "articles" {
			continue
		}
		lang := entry.Name()
		files, err := filepath.Glob(filepath.Join(root, lang, "articles_"+lang+"_*.json"))
		if err != nil {
			continue
		}
		for _, file := range files {
			data, err := os.ReadFile(file)
			if err != nil {
				continue
			}
			var batch []article.Translation
			if err := json.Unmarshal(data, &batch); err != nil {
				continue
			}
			for _, tr := range batch {
				s.markTranslated(lang, tr.ArticleID)
			}
		}
	}
	return nil
}

func (s *Store) markTranslated(lang, id string) {
	if s.diskTranslated[lang] == nil {
		s.diskTranslated[lang] = make(map[string]bool)
	}
	s.diskTranslated[lang][id] = true
}

// Articles returns a snapshot of every stored article, newest first.
// The snapshot holds deep copies: callers may mutate them freely and
// persist changes with Upsert.
func (s *Store) Articles() []*article.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*article.Article, len(s.articles))
	for i, a := range s.articles {
		out[i] = a.Clone()
	}
	return out
}

func (s *Store) Get(id string) (*article.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return a.Clone(), nil
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.articles)
}

func (s *Store) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// Upsert inserts a new article at the front or replaces an existing one
// in place. The store keeps its own deep copy, so later mutations of
// the caller's pointer never leak into concurrent readers.
func (s *Store) Upsert(a *article.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := a.Clone()
	if existing, ok := s.index[c.ID]; ok {
		*existing = *c
		return
	}

	s.index[c.ID] = c
	s.articles = append([]*article.Article{c}, s.articles...)
	s.linkSet[c.URL] = true
}

// IsKnownURL reports whether url was already discovered or stored.
func (s *Store) IsKnownURL(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.linkSet[url]
}

// RecordLinks remembers urls so later crawls skip them. The updated link
// list is persisted immediately.
func (s *Store) RecordLinks(urls []string) error {
	s.mu.Lock()
	for _, u := range urls {
		if !s.linkSet[u] {
			s.linkSet[u] = true
			s.links = append(s.links, u)
		}
	}
	links := make([]string, len(s.links))
	copy(links, s.links)
	s.mu.Unlock()

	return s.writeJSON(filepath.Join(s.dir, linksFile), links)
}

// IsTranslated reports whether a finished translation exists for the
// article in lang, either in memory or in an earlier batch file.
func (s *Store) IsTranslated(id, lang string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, ok := s.index[id]; ok && a.HasTranslation(lang) {
		return true
	}
	return s.diskTranslated[lang][id]
}

// SaveArticles writes the canonical store file plus a timestamped backup.
func (s *Store) SaveArticles() error {
	s.mu.Lock()
	s.lastUpdated = time.Now()
	f := storeFile{
		LastUpdated: s.lastUpdated,
		Articles:    make([]*article.Article, len(s.articles)),
	}
	// Copies, so marshalling happens outside the lock on stable data.
	for i, a := range s.articles {
		f.Articles[i] = a.Clone()
	}
	s.mu.Unlock()

	if err := s.writeJSON(filepath.Join(s.dir, articlesFile), f); err != nil {
		return err
	}

	backup := fmt.Sprintf("latest_articles_%s.json", f.LastUpdated.Format("20060102_150405"))
	return s.writeJSON(filepath.Join(s.dir, backup), f)
}

// AppendLanguageBatch writes one batch of finished translations for lang.
func (s *Store) AppendLanguageBatch(lang string, batch []article.Translation) error {
	if len(batch) == 0 {
		return nil
	}

	dir := filepath.Join(s.dir, "translations", lang)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create language dir: %w", err)
	}

	name := fmt.Sprintf("articles_%s_%s.json", lang, time.Now().Format("20060102_150405"))
	if err := s.writeJSON(filepath.Join(dir, name), batch); err != nil {
		return err
	}

	s.mu.Lock()
	for _, tr := range batch {
		s.markTranslated(lang, tr.ArticleID)
	}
	s.mu.Unlock()
	return nil
}

// ArticleMetadata is the per-article index file listing which languages
// are done.
type ArticleMetadata struct {
	ArticleID string   `json:"article_id"`
	Headline  string   `json:"headline"`
	URL       string   `json:"url"`
	Date      string   `json:"date"`
	Category  string   `json:"category"`
	Languages []string `json:"languages"`
}

// VoiceMetadata records one synthesized narration.
type VoiceMetadata struct {
	ArticleID    string    `json:"article_id"`
	Language     string    `json:"language"`
	LanguageName string    `json:"language_name"`
	LocalPath    string    `json:"local_path"`
	AudioURL     string    `json:"audio_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (s *Store) articleDir(id string) string {
	return filepath.Join(s.dir, "translations", "articles", id)
}

// VoicePath is where the narration audio for (id, lang) lives.
func (s *Store) VoicePath(id, lang string) string {
	return filepath.Join(s.articleDir(id), lang, "voice.mp3")
}

func (s *Store) ImagesDir() string {
	return filepath.Join(s.dir, "images")
}

func (s *Store) WriteArticleMetadata(meta ArticleMetadata) error {
	dir := s.articleDir(meta.ArticleID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create article dir: %w", err)
	}
	return s.writeJSON(filepath.Join(dir, "article_metadata.json"), meta)
}

func (s *Store) WriteTranslation(tr article.Translation) error {
	dir := filepath.Join(s.articleDir(tr.ArticleID), tr.Language)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create translation dir: %w", err)
	}
	return s.writeJSON(filepath.Join(dir, "translation.json"), tr)
}

func (s *Store) WriteVoiceMetadata(meta VoiceMetadata) error {
	dir := filepath.Join(s.articleDir(meta.ArticleID), meta.Language)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create translation dir: %w", err)
	}
	return s.writeJSON(filepath.Join(dir, "voice_metadata.json"), meta)
}

// LanguageSummary is one row of the languages overview.
type LanguageSummary struct {
	Name         string   `json:"name"`
	TTSSupported bool     `json:"tts_supported"`
	ArticleCount int      `json:"article_count"`
	ArticleIDs   []string `json:"article_ids"`
}

// RebuildLanguagesSummary recomputes the per-language overview from the
// article store. English counts every article; other languages count
// completed translations.
func (s *Store) RebuildLanguagesSummary() map[string]LanguageSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := make(map[string]LanguageSummary, len(language.Codes()))
	for _, lang := range language.All() {
		row := LanguageSummary{
			Name:         lang.Name,
			TTSSupported: strings.HasPrefix(lang.TTSCode, lang.Code),
			ArticleIDs:   []string{},
		}
		for _, a := range s.articles {
			if lang.Code == language.Default || a.HasTranslation(lang.Code) {
				row.ArticleIDs = append(row.ArticleIDs, a.ID)
			}
		}
		row.ArticleCount = len(row.ArticleIDs)
		summary[lang.Code] = row
	}
	return summary
}

// SaveLanguagesSummary persists the overview cache. The article store is
// authoritative; this file only saves recomputing on every request.
func (s *Store) SaveLanguagesSummary(summary map[string]LanguageSummary) error {
	return s.writeJSON(filepath.Join(s.dir, summaryFile), summary)
}

func (s *Store) LoadLanguagesSummary() (map[string]LanguageSummary, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, summaryFile))
	if err != nil {
		return nil, err
	}

	var summary map[string]LanguageSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to parse languages summary: %w", err)
	}
	return summary, nil
}

// writeJSON writes v atomically: temp file in the same directory, then
// rename over the target.
func (s *Store) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
