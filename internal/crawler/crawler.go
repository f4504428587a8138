// Package crawler discovers fresh article URLs from the configured news
// site: an anchor walk over the latest-news page plus optional RSS feeds.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"
)

// Sources describes where links come from. Loaded from a yaml file so the
// seed page and feed list can change without a rebuild.
type Sources struct {
	SeedURL        string   `yaml:"seed_url"`
	AllowedDomains []string `yaml:"allowed_domains"`
	ArticleSuffix  string   `yaml:"article_suffix"`
	Feeds          []Feed   `yaml:"feeds"`
}

type Feed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

func LoadSources(path string) (*Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources config: %w", err)
	}

	var src Sources
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("failed to parse sources config: %w", err)
	}

	if src.SeedURL == "" {
		return nil, fmt.Errorf("sources config: seed_url is required")
	}
	if len(src.AllowedDomains) == 0 {
		src.AllowedDomains = []string{"thehindu.com", "thehindubusinessline.com"}
	}
	if src.ArticleSuffix == "" {
		src.ArticleSuffix = ".ece"
	}

	return &src, nil
}

type Crawler struct {
	sources *Sources
	client  *http.Client
	parser  *gofeed.Parser
	log     *slog.Logger
}

func New(sources *Sources, client *http.Client, log *slog.Logger) *Crawler {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Crawler{
		sources: sources,
		client:  client,
		parser:  gofeed.NewParser(),
		log:     log,
	}
}

// DiscoverLinks returns every article URL found on the seed page and in the
// configured feeds, deduplicated, seed-page order first. A failing feed is
// logged and skipped; a failing seed page fails the whole discovery.
func (c *Crawler) DiscoverLinks(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var links []string

	seedLinks, err := c.crawlSeed(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to crawl seed page: %w", err)
	}
	for _, link := range seedLinks {
		if !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
	}

	for _, feed := range c.sources.Feeds {
		feedLinks, err := c.crawlFeed(ctx, feed)
		if err != nil {
			c.log.Warn("skipping feed", "feed", feed.Name, "error", err)
			continue
		}
		for _, link := range feedLinks {
			if !seen[link] {
				seen[link] = true
				links = append(links, link)
			}
		}
	}

	c.log.Info("link discovery finished", "links", len(links))
	return links, nil
}

func (c *Crawler) crawlSeed(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sources.SeedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; khabar/1.0)")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", c.sources.SeedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, c.sources.SeedURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse seed page: %w", err)
	}

	base, err := url.Parse(c.sources.SeedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed url: %w", err)
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		abs := resolveURL(base, href)
		if abs != "" && c.IsArticleLink(abs) {
			links = append(links, abs)
		}
	})

	return links, nil
}

func (c *Crawler) crawlFeed(ctx context.Context, feed Feed) ([]string, error) {
	parsed, err := c.parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", feed.URL, err)
	}

	var links []string
	for _, item := range parsed.Items {
		if item.Link != "" && c.IsArticleLink(item.Link) {
			links = append(links, item.Link)
		}
	}
	return links, nil
}

// IsArticleLink reports whether raw points at an article page: host on the
// allow-list and path ending in the site's article suffix.
func (c *Crawler) IsArticleLink(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}

	allowed := false
	for _, domain := range c.sources.AllowedDomains {
		if strings.Contains(u.Host, domain) {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}

	return strings.HasSuffix(u.Path, c.sources.ArticleSuffix)
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
