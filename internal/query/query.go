// Package query reads the article store for the HTTP surface: listing,
// per-language views, pagination, and the languages overview.
package query

import (
	"fmt"
	"strings"

	"khabar/internal/article"
	"khabar/internal/language"
	"khabar/internal/store"
)

type Service struct {
	store *store.Store
}

func New(st *store.Store) *Service {
	return &Service{store: st}
}

// ArticleView is the per-language rendition served on /news. For
// non-English languages every translated field comes from the
// translation; only the url, dates and images stay original.
type ArticleView struct {
	ArticleID string   `json:"article_id"`
	URL       string   `json:"url"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	Date      string   `json:"date"`
	Time      string   `json:"time"`
	Author    string   `json:"author"`
	Source    string   `json:"source"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	Language  string   `json:"language"`
	AudioURL  string   `json:"audio_url,omitempty"`
	MainImage string   `json:"main_image,omitempty"`
	Images    []string `json:"images,omitempty"`
}

// List returns the lang view of stored articles, offset-then-limit
// paginated. limit <= 0 means everything after offset. baseURL prefixes
// image links so clients can fetch them from this server.
func (s *Service) List(lang string, offset, limit int, baseURL string) ([]ArticleView, error) {
	if !language.Supported(lang) {
		return nil, fmt.Errorf("%w: %q", language.ErrUnsupported, lang)
	}

	var views []ArticleView
	for _, a := range s.store.Articles() {
		if lang != language.Default && !a.HasTranslation(lang) {
			continue
		}
		views = append(views, s.view(a, lang, baseURL))
	}

	if offset >= len(views) {
		return []ArticleView{}, nil
	}
	views = views[offset:]
	if limit > 0 && limit < len(views) {
		views = views[:limit]
	}
	return views, nil
}

func (s *Service) view(a *article.Article, lang, baseURL string) ArticleView {
	v := ArticleView{
		ArticleID: a.ID,
		URL:       a.URL,
		Title:     a.Headline,
		Summary:   a.Summary,
		Date:      a.Date,
		Time:      a.Time,
		Author:    a.Author,
		Source:    a.Source,
		Category:  a.Category,
		Tags:      a.Tags,
		Language:  lang,
		AudioURL:  a.AudioURL,
	}

	if lang != language.Default {
		tr := a.Translations[lang]
		v.Title = tr.Title
		v.Summary = tr.Summary
		v.AudioURL = tr.AudioURL
		// Older records predate translated attributes; keep the
		// originals when a field is missing.
		if tr.Author != "" {
			v.Author = tr.Author
		}
		if tr.Source != "" {
			v.Source = tr.Source
		}
		if tr.Category != "" {
			v.Category = tr.Category
		}
		if len(tr.Tags) > 0 {
			v.Tags = tr.Tags
		}
	}

	if a.MainImage != nil {
		v.MainImage = imageURL(baseURL, a.MainImage.Filename)
	}
	for _, img := range a.Images {
		if url := imageURL(baseURL, img.Filename); url != "" {
			v.Images = append(v.Images, url)
		}
	}

	return v
}

func imageURL(baseURL, filename string) string {
	if filename == "" {
		return ""
	}
	if baseURL == "" {
		return filename
	}
	return strings.TrimSuffix(baseURL, "/") + "/images/" + filename
}

// Get returns the full stored article, every translation included.
func (s *Service) Get(id string) (*article.Article, error) {
	return s.store.Get(id)
}

// Count reports how many articles exist for lang.
func (s *Service) Count(lang string) int {
	n := 0
	for _, a := range s.store.Articles() {
		if lang == language.Default || a.HasTranslation(lang) {
			n++
		}
	}
	return n
}

// Languages returns the per-language overview, serving the cached file
// when present. refresh forces a rebuild from the article store.
func (s *Service) Languages(refresh bool) map[string]store.LanguageSummary {
	if !refresh {
		if summary, err := s.store.LoadLanguagesSummary(); err == nil {
			return summary
		}
	}

	summary := s.store.RebuildLanguagesSummary()
	// Best effort: the cache file only saves recomputation.
	_ = s.store.SaveLanguagesSummary(summary)
	return summary
}
