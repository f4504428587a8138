package scraper

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"khabar/internal/article"
)

const (
	minImageBytes  = 10 * 1024
	minImageWidth  = 400
	minImageHeight = 300
)

var (
	titleJunkRe  = regexp.MustCompile(`[^\w\s-]`)
	titleSpaceRe = regexp.MustCompile(`\s+`)
)

// junkImageNames flag tracking pixels and site chrome by URL substring.
var junkImageNames = []string{"icon", "logo", "spacer", "pixel", "1x1"}

// ImageStore downloads article images into a local directory, rejecting
// ones too small to be editorial photos.
type ImageStore struct {
	dir       string
	client    *http.Client
	minBytes  int
	minWidth  int
	minHeight int
}

func NewImageStore(dir string, client *http.Client) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image dir: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &ImageStore{
		dir:       dir,
		client:    client,
		minBytes:  minImageBytes,
		minWidth:  minImageWidth,
		minHeight: minImageHeight,
	}, nil
}

func (st *ImageStore) Dir() string {
	return st.dir
}

// Save downloads imgURL if it passes the quality filter and returns the
// stored reference. A file already present under the derived name is
// reused without re-downloading.
func (st *ImageStore) Save(ctx context.Context, imgURL, articleTitle string, position int) (*article.ImageRef, error) {
	ext := imageExt(imgURL)
	if ext == ".svg" {
		return nil, fmt.Errorf("svg image rejected: %s", imgURL)
	}

	lower := strings.ToLower(imgURL)
	for _, junk := range junkImageNames {
		if strings.Contains(lower, junk) {
			return nil, fmt.Errorf("icon or tracking image rejected: %s", imgURL)
		}
	}

	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		ext = ".jpg"
	}

	filename := imageFilename(articleTitle, position, imgURL, ext)
	path := filepath.Join(st.dir, filename)

	if _, err := os.Stat(path); err == nil {
		return &article.ImageRef{URL: imgURL, LocalPath: path, Filename: filename, Position: position}, nil
	}

	data, err := st.download(ctx, imgURL)
	if err != nil {
		return nil, err
	}

	if err := st.checkQuality(data, imgURL); err != nil {
		return nil, err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}

	return &article.ImageRef{URL: imgURL, LocalPath: path, Filename: filename, Position: position}, nil
}

func (st *ImageStore) download(ctx context.Context, imgURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imgURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := st.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for image %s", resp.StatusCode, imgURL)
	}

	return io.ReadAll(resp.Body)
}

func (st *ImageStore) checkQuality(data []byte, imgURL string) error {
	if len(data) < st.minBytes {
		return fmt.Errorf("image too small (%d bytes): %s", len(data), imgURL)
	}

	width, height, err := imageDimensions(data)
	if err != nil {
		return fmt.Errorf("unreadable image %s: %w", imgURL, err)
	}
	if width < st.minWidth || height < st.minHeight {
		return fmt.Errorf("image dimensions %dx%d below minimum: %s", width, height, imgURL)
	}
	return nil
}

// imageDimensions reads only the header, never the full pixel data.
func imageDimensions(data []byte) (int, int, error) {
	if cfg, err := jpeg.DecodeConfig(bytes.NewReader(data)); err == nil {
		return cfg.Width, cfg.Height, nil
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("not a jpeg or png image")
	}
	return cfg.Width, cfg.Height, nil
}

func imageExt(imgURL string) string {
	u, err := url.Parse(imgURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(filepath.Ext(u.Path))
}

// imageFilename derives a stable name from the article title, the image
// position, and a short hash of the source URL.
func imageFilename(title string, position int, imgURL, ext string) string {
	safe := titleJunkRe.ReplaceAllString(title, "")
	safe = titleSpaceRe.ReplaceAllString(safe, "_")
	if len(safe) > 30 {
		safe = safe[:30]
	}

	sum := md5.Sum([]byte(imgURL))
	hash := hex.EncodeToString(sum[:])[:10]

	return fmt.Sprintf("%s_%d_%s%s", safe, position, hash, ext)
}
