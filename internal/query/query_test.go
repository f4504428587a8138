package query

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khabar/internal/article"
	"khabar/internal/language"
	"khabar/internal/store"
)

func seededService(t *testing.T, n int) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)

	// Upsert puts the newest first, so insert in reverse to get
	// article0..articleN-1 in listing order.
	for i := n - 1; i >= 0; i-- {
		a := &article.Article{
			ID:       fmt.Sprintf("id%010d", i),
			URL:      fmt.Sprintf("https://x.test/%d.ece", i),
			Headline: fmt.Sprintf("Headline %d", i),
			Summary:  fmt.Sprintf("Summary %d", i),
			Author:   "Desk",
			Category: "National",
			Tags:     []string{"water"},
			Language: "en",
		}
		if i%2 == 0 {
			a.SetTranslation(article.Translation{
				ArticleID:    a.ID,
				Language:     "hi",
				LanguageName: "Hindi",
				Title:        "HI " + a.Headline,
				Summary:      "HI " + a.Summary,
				Author:       "HI Desk",
				Category:     "HI National",
				Tags:         []string{"HI water"},
				AudioURL:     "https://cdn.test/" + a.ID + ".mp3",
			})
		}
		st.Upsert(a)
	}

	return New(st), st
}

func TestListPagination(t *testing.T) {
	s, _ := seededService(t, 7)

	all, err := s.List("en", 0, 0, "")
	require.NoError(t, err)
	require.Len(t, all, 7)
	assert.Equal(t, "Headline 0", all[0].Title)

	page, err := s.List("en", 2, 3, "")
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, "Headline 2", page[0].Title)
	assert.Equal(t, "Headline 4", page[2].Title)

	tail, err := s.List("en", 5, 0, "")
	require.NoError(t, err)
	assert.Len(t, tail, 2)

	beyond, err := s.List("en", 50, 10, "")
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestListLanguageFilter(t *testing.T) {
	s, _ := seededService(t, 6)

	views, err := s.List("hi", 0, 0, "")
	require.NoError(t, err)
	require.Len(t, views, 3) // even-numbered articles only

	for _, v := range views {
		assert.Equal(t, "hi", v.Language)
		assert.Contains(t, v.Title, "HI ")
		assert.Contains(t, v.Summary, "HI ")
		assert.Equal(t, "HI Desk", v.Author)
		assert.Equal(t, "HI National", v.Category)
		assert.Equal(t, []string{"HI water"}, v.Tags)
		assert.Contains(t, v.AudioURL, "https://cdn.test/")
		// The url always points at the source article.
		assert.Contains(t, v.URL, "https://x.test/")
	}

	// English keeps the original attributes.
	english, err := s.List("en", 0, 1, "")
	require.NoError(t, err)
	require.Len(t, english, 1)
	assert.Equal(t, "Desk", english[0].Author)
	assert.Equal(t, []string{"water"}, english[0].Tags)
}

func TestListOverlayKeepsOriginalsForOldRecords(t *testing.T) {
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)

	// Records translated before attributes were localized carry only
	// title and summary.
	a := &article.Article{
		ID:       "id0000000001",
		URL:      "https://x.test/1.ece",
		Headline: "Headline",
		Author:   "Desk",
		Category: "National",
		Tags:     []string{"water"},
		Language: "en",
	}
	a.SetTranslation(article.Translation{
		ArticleID: a.ID,
		Language:  "hi",
		Title:     "HI Headline",
		Summary:   "HI Summary",
	})
	st.Upsert(a)

	views, err := New(st).List("hi", 0, 0, "")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "HI Headline", views[0].Title)
	assert.Equal(t, "Desk", views[0].Author)
	assert.Equal(t, "National", views[0].Category)
	assert.Equal(t, []string{"water"}, views[0].Tags)
}

func TestListUnsupportedLanguage(t *testing.T) {
	s, _ := seededService(t, 2)

	_, err := s.List("xx", 0, 0, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, language.ErrUnsupported)
}

func TestListImageURLs(t *testing.T) {
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)

	a := &article.Article{
		ID:       "id0000000001",
		URL:      "https://x.test/1.ece",
		Headline: "With image",
		Language: "en",
		MainImage: &article.ImageRef{
			URL:      "https://media.test/full.jpg",
			Filename: "With_image_0_abcdef1234.jpg",
		},
		Images: []article.ImageRef{{
			URL:      "https://media.test/full.jpg",
			Filename: "With_image_0_abcdef1234.jpg",
		}},
	}
	st.Upsert(a)

	views, err := New(st).List("en", 0, 0, "http://localhost:8080")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "http://localhost:8080/images/With_image_0_abcdef1234.jpg", views[0].MainImage)
	require.Len(t, views[0].Images, 1)
	assert.Equal(t, "http://localhost:8080/images/With_image_0_abcdef1234.jpg", views[0].Images[0])
}

func TestCount(t *testing.T) {
	s, _ := seededService(t, 6)
	assert.Equal(t, 6, s.Count("en"))
	assert.Equal(t, 3, s.Count("hi"))
	assert.Equal(t, 0, s.Count("ta"))
}

func TestLanguagesCacheAndRefresh(t *testing.T) {
	s, st := seededService(t, 4)

	summary := s.Languages(false)
	require.Len(t, summary, 19)
	assert.Equal(t, 4, summary["en"].ArticleCount)
	assert.Equal(t, 2, summary["hi"].ArticleCount)

	// The overview is now cached; new articles show up after refresh.
	st.Upsert(&article.Article{ID: "id9999999999", URL: "https://x.test/new.ece", Headline: "New", Language: "en"})
	assert.Equal(t, 4, s.Languages(false)["en"].ArticleCount)
	assert.Equal(t, 5, s.Languages(true)["en"].ArticleCount)
}
