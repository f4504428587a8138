// Package article defines the core data model shared across the pipeline.
package article

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// ImageRef describes one downloaded article image.
type ImageRef struct {
	URL       string `json:"url"`
	LocalPath string `json:"local_path,omitempty"`
	Filename  string `json:"filename,omitempty"`
	Position  int    `json:"position"`
	ServerURL string `json:"server_url,omitempty"`
}

// Translation is one localized rendition of an article. Every text
// field is translated, not just the headline and summary.
type Translation struct {
	ArticleID    string    `json:"article_id"`
	Language     string    `json:"language"`
	LanguageName string    `json:"language_name"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	Author       string    `json:"author,omitempty"`
	Source       string    `json:"source,omitempty"`
	Category     string    `json:"category,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	AudioURL     string    `json:"audio_url,omitempty"`
	TranslatedAt time.Time `json:"translated_at"`
}

type Article struct {
	ID           string                 `json:"article_id"`
	URL          string                 `json:"url"`
	Headline     string                 `json:"headline"`
	Summary      string                 `json:"summary"`
	Content      string                 `json:"content"`
	Date         string                 `json:"date"`
	Time         string                 `json:"time"`
	Author       string                 `json:"author"`
	Source       string                 `json:"source"`
	Category     string                 `json:"category"`
	Tags         []string               `json:"tags"`
	Language     string                 `json:"language"`
	MainImage    *ImageRef              `json:"main_image,omitempty"`
	Images       []ImageRef             `json:"images,omitempty"`
	AudioURL     string                 `json:"audio_url,omitempty"`
	Translations map[string]Translation `json:"translations,omitempty"`
	ExtractedAt  time.Time              `json:"extracted_at"`
}

// NewID derives the stable article identifier from url and headline.
// The same pair always hashes to the same id, so re-crawling a page
// never produces a second record.
func NewID(url, headline string) string {
	sum := md5.Sum([]byte(url + headline))
	return hex.EncodeToString(sum[:])[:12]
}

// HasTranslation reports whether a completed translation exists for lang.
func (a *Article) HasTranslation(lang string) bool {
	if a.Translations == nil {
		return false
	}
	_, ok := a.Translations[lang]
	return ok
}

// SetTranslation stores tr under its language code.
func (a *Article) SetTranslation(tr Translation) {
	if a.Translations == nil {
		a.Translations = make(map[string]Translation)
	}
	a.Translations[tr.Language] = tr
}

// Clone returns a deep copy that can be mutated without affecting a.
func (a *Article) Clone() *Article {
	c := *a
	if a.Tags != nil {
		c.Tags = append([]string(nil), a.Tags...)
	}
	if a.Images != nil {
		c.Images = append([]ImageRef(nil), a.Images...)
	}
	if a.MainImage != nil {
		img := *a.MainImage
		c.MainImage = &img
	}
	if a.Translations != nil {
		c.Translations = make(map[string]Translation, len(a.Translations))
		for lang, tr := range a.Translations {
			if tr.Tags != nil {
				tr.Tags = append([]string(nil), tr.Tags...)
			}
			c.Translations[lang] = tr
		}
	}
	return &c
}
