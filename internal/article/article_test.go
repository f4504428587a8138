package article

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	id := NewID("https://example.com/news/story.ece", "Some headline")

	assert.Len(t, id, 12)
	assert.Equal(t, id, NewID("https://example.com/news/story.ece", "Some headline"))

	other := NewID("https://example.com/news/story.ece", "Another headline")
	assert.NotEqual(t, id, other)
}

func TestTranslations(t *testing.T) {
	a := &Article{ID: "abc123def456", Headline: "Test"}
	require.False(t, a.HasTranslation("hi"))

	a.SetTranslation(Translation{
		ArticleID:    a.ID,
		Language:     "hi",
		Title:        "टेस्ट",
		TranslatedAt: time.Now(),
	})

	assert.True(t, a.HasTranslation("hi"))
	assert.False(t, a.HasTranslation("ta"))
	assert.Equal(t, "टेस्ट", a.Translations["hi"].Title)
}

func TestCloneIsDeep(t *testing.T) {
	a := &Article{
		ID:        "abc123def456",
		Headline:  "Original",
		Tags:      []string{"economy"},
		MainImage: &ImageRef{Filename: "img_0_abcdef1234.jpg"},
		Images:    []ImageRef{{Filename: "img_0_abcdef1234.jpg"}},
	}
	a.SetTranslation(Translation{
		ArticleID: a.ID,
		Language:  "hi",
		Title:     "मूल",
		Tags:      []string{"अर्थव्यवस्था"},
	})

	c := a.Clone()

	a.Headline = "Changed"
	a.Tags[0] = "politics"
	a.MainImage.Filename = "other.jpg"
	a.Images[0].Position = 9
	a.SetTranslation(Translation{ArticleID: a.ID, Language: "ta", Title: "அசல்"})
	a.Translations["hi"].Tags[0] = "changed"

	assert.Equal(t, "Original", c.Headline)
	assert.Equal(t, []string{"economy"}, c.Tags)
	assert.Equal(t, "img_0_abcdef1234.jpg", c.MainImage.Filename)
	assert.Zero(t, c.Images[0].Position)
	require.False(t, c.HasTranslation("ta"))
	assert.Equal(t, []string{"अर्थव्यवस्था"}, c.Translations["hi"].Tags)
}
