// Package scraper turns an article URL into a populated Article.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"khabar/internal/article"
	"khabar/internal/cleaner"
)

const (
	summaryLimit = 1000
	contentLimit = 5000

	defaultSource = "The Hindu"
)

type Scraper struct {
	client *http.Client
	images *ImageStore
	log    *slog.Logger
}

// New builds a Scraper. images may be nil to skip the image pipeline.
func New(client *http.Client, images *ImageStore, log *slog.Logger) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Scraper{client: client, images: images, log: log}
}

// Fetch downloads and parses one article page. Extraction never fails on
// missing metadata; every field has a usable default.
func (s *Scraper) Fetch(ctx context.Context, pageURL string) (*article.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; khabar/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	headline := s.extractHeadline(doc)
	content := s.extractContent(doc, body, pageURL, headline)

	summary := cleaner.Truncate(content, summaryLimit)
	content = cleaner.Truncate(content, contentLimit)

	date, timeStr := extractPublished(doc)

	art := &article.Article{
		ID:          article.NewID(pageURL, headline),
		URL:         pageURL,
		Headline:    headline,
		Summary:     summary,
		Content:     content,
		Date:        date,
		Time:        timeStr,
		Author:      extractAuthor(doc),
		Source:      defaultSource,
		Category:    extractCategory(doc),
		Tags:        extractTags(doc),
		Language:    "en",
		ExtractedAt: time.Now(),
	}

	if s.images != nil {
		s.collectImages(ctx, doc, art)
	}

	return art, nil
}

func (s *Scraper) extractHeadline(doc *goquery.Document) string {
	if h := strings.TrimSpace(doc.Find("h1.title").First().Text()); h != "" {
		return h
	}
	if h := strings.TrimSpace(doc.Find(".article-title, .title, h1").First().Text()); h != "" {
		return h
	}
	return "Unknown Headline"
}

func (s *Scraper) extractContent(doc *goquery.Document, body []byte, pageURL, headline string) string {
	selectors := []string{
		`.content, .article p, article p, [itemprop="articleBody"] p`,
		"p",
	}

	for _, selector := range selectors {
		var parts []string
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		if cleaned := cleaner.Clean(strings.Join(parts, " ")); cleaned != "" {
			return cleaned
		}
	}

	// Readability as a last resort for layouts the selectors miss.
	if parsed, err := readability.FromReader(bytes.NewReader(body), mustParseURL(pageURL)); err == nil {
		if cleaned := cleaner.Clean(parsed.TextContent); cleaned != "" {
			return cleaned
		}
	}

	return fmt.Sprintf("Article about %s. No detailed content could be extracted.", headline)
}

func extractPublished(doc *goquery.Document) (string, string) {
	now := time.Now()
	date := now.Format("2006-01-02")
	timeStr := now.Format("15:04:05")

	published, ok := doc.Find(`meta[itemprop="datePublished"]`).First().Attr("content")
	if !ok || published == "" {
		return date, timeStr
	}

	parts := strings.SplitN(published, "T", 2)
	date = parts[0]
	if len(parts) == 2 {
		t := strings.SplitN(parts[1], "+", 2)[0]
		if len(t) > 8 {
			t = t[:8]
		}
		timeStr = t
	}
	return date, timeStr
}

func extractAuthor(doc *goquery.Document) string {
	if author, ok := doc.Find(`meta[name="author"]`).First().Attr("content"); ok && author != "" {
		return author
	}
	return "Unknown Author"
}

func extractCategory(doc *goquery.Document) string {
	var categories []string
	doc.Find(".breadcrumb li").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			categories = append(categories, text)
		}
	})
	if len(categories) > 0 {
		return categories[len(categories)-1]
	}
	return "General"
}

func extractTags(doc *goquery.Document) []string {
	var tags []string
	doc.Find(`meta[name="keywords"]`).Each(func(_ int, sel *goquery.Selection) {
		content, ok := sel.Attr("content")
		if !ok {
			return
		}
		for _, tag := range strings.Split(content, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	})

	if len(tags) == 0 {
		doc.Find(".tags a, .article-tags a").Each(func(_ int, sel *goquery.Selection) {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				tags = append(tags, text)
			}
		})
	}
	return tags
}

// collectImages finds the og:image plus in-body images, saves the ones
// that pass the quality filter, and records them on the article.
func (s *Scraper) collectImages(ctx context.Context, doc *goquery.Document, art *article.Article) {
	base := mustParseURL(art.URL)

	var mainURL string
	var candidates []string
	seen := make(map[string]bool)

	if og, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok && og != "" {
		mainURL = og
		candidates = append(candidates, og)
		seen[og] = true
	}

	doc.Find(`.article img, article img, [itemprop="articleBody"] img`).Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok || src == "" {
			return
		}
		if !strings.HasPrefix(src, "http") && base != nil {
			if ref, err := url.Parse(src); err == nil {
				src = base.ResolveReference(ref).String()
			}
		}
		if !seen[src] {
			seen[src] = true
			candidates = append(candidates, src)
		}
	})

	for i, imgURL := range candidates {
		ref, err := s.images.Save(ctx, imgURL, art.Headline, i)
		if err != nil {
			s.log.Debug("image skipped", "url", imgURL, "error", err)
			continue
		}
		art.Images = append(art.Images, *ref)
		if imgURL == mainURL {
			art.MainImage = ref
		}
	}

	if art.MainImage == nil && len(art.Images) > 0 {
		art.MainImage = &art.Images[0]
	}
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	return u
}
