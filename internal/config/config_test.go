package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "data", cfg.WorkDir)
	assert.Equal(t, "configs/sources.yaml", cfg.SourcesPath)
	assert.Equal(t, 10, cfg.MaxArticles)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.TTSEnabled())
	assert.False(t, cfg.UploadsEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "test-key")
	t.Setenv("PORT", "9090")
	t.Setenv("WORK_DIR", "/tmp/khabar")
	t.Setenv("MAX_ARTICLES", "3")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "5")
	t.Setenv("S3_BUCKET", "my-bucket")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/khabar", cfg.WorkDir)
	assert.Equal(t, 3, cfg.MaxArticles)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.UploadsEnabled())
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
}

func TestLoadMissingCredentialsFile(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "test-key")
	t.Setenv("GOOGLE_CREDENTIALS_FILE", "/does/not/exist.json")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadPresentCredentialsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	t.Setenv("GOOGLE_API_KEY", "test-key")
	t.Setenv("GOOGLE_CREDENTIALS_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.TTSEnabled())
}
