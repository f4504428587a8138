package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// HTTP settings
	ListenAddr string

	// Pipeline settings
	WorkDir        string
	SourcesPath    string
	MaxArticles    int
	RequestTimeout time.Duration

	// Google API settings
	GoogleAPIKey          string // Translate v2
	GoogleCredentialsFile string // Text-to-Speech service account
	GeminiAPIKey          string // optional summary condenser

	// S3 settings (uploads disabled when Bucket is empty)
	S3Bucket    string
	S3Region    string
	S3KeyPrefix string
	S3BaseURL   string

	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:     ":8080",
		WorkDir:        "data",
		SourcesPath:    "configs/sources.yaml",
		MaxArticles:    10,
		RequestTimeout: 30 * time.Second,
		S3Region:       "ap-south-1",
		S3KeyPrefix:    "audio",
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.ListenAddr = ":" + port
	}
	cfg.WorkDir = getEnvOrDefault("WORK_DIR", cfg.WorkDir)
	cfg.SourcesPath = getEnvOrDefault("SOURCES_CONFIG_PATH", cfg.SourcesPath)
	cfg.MaxArticles = getEnvIntOrDefault("MAX_ARTICLES", cfg.MaxArticles)

	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}

	cfg.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	cfg.GoogleCredentialsFile = os.Getenv("GOOGLE_CREDENTIALS_FILE")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	cfg.S3Bucket = os.Getenv("S3_BUCKET")
	cfg.S3Region = getEnvOrDefault("S3_REGION", cfg.S3Region)
	cfg.S3KeyPrefix = getEnvOrDefault("S3_KEY_PREFIX", cfg.S3KeyPrefix)
	cfg.S3BaseURL = os.Getenv("S3_BASE_URL")

	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.GoogleAPIKey == "" {
		return fmt.Errorf("GOOGLE_API_KEY is required")
	}
	if c.GoogleCredentialsFile != "" {
		if _, err := os.Stat(c.GoogleCredentialsFile); err != nil {
			return fmt.Errorf("GOOGLE_CREDENTIALS_FILE %q is not readable: %w", c.GoogleCredentialsFile, err)
		}
	}
	if c.MaxArticles <= 0 {
		return fmt.Errorf("MAX_ARTICLES must be positive")
	}
	return nil
}

// TTSEnabled reports whether speech synthesis should be wired. Without a
// service account file the texttospeech client falls back to ambient
// credentials, which only works inside GCP, so require the file.
func (c *Config) TTSEnabled() bool {
	return c.GoogleCredentialsFile != ""
}

func (c *Config) UploadsEnabled() bool {
	return c.S3Bucket != ""
}
