package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"khabar/internal/config"
	"khabar/internal/crawler"
	"khabar/internal/logger"
	"khabar/internal/metrics"
	"khabar/internal/pipeline"
	"khabar/internal/query"
	"khabar/internal/scraper"
	"khabar/internal/server"
	"khabar/internal/storage"
	"khabar/internal/store"
	"khabar/internal/summary"
	"khabar/internal/translate"
	"khabar/internal/tts"
)

func main() {
	_ = godotenv.Load()
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()

	st, err := store.Open(cfg.WorkDir)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}

	sources, err := crawler.LoadSources(cfg.SourcesPath)
	if err != nil {
		log.Fatalf("failed to load sources: %v", err)
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}

	images, err := scraper.NewImageStore(st.ImagesDir(), httpClient)
	if err != nil {
		log.Fatalf("failed to init image store: %v", err)
	}

	translator, err := translate.NewGoogleTranslator(ctx, cfg.GoogleAPIKey)
	if err != nil {
		log.Fatalf("failed to init translator: %v", err)
	}

	var narrator *tts.Narrator
	if cfg.TTSEnabled() {
		synth, err := tts.NewGoogleSynthesizer(ctx, cfg.GoogleCredentialsFile)
		if err != nil {
			log.Fatalf("failed to init speech synthesis: %v", err)
		}
		narrator = tts.NewNarrator(synth, logger.With("tts"))
	} else {
		logger.Warn("GOOGLE_CREDENTIALS_FILE not set, narration disabled")
	}

	var uploader storage.Uploader
	if cfg.UploadsEnabled() {
		s3up, err := storage.NewS3Uploader(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			KeyPrefix: cfg.S3KeyPrefix,
			BaseURL:   cfg.S3BaseURL,
		})
		if err != nil {
			log.Fatalf("failed to init s3 uploader: %v", err)
		}
		uploader = s3up
	} else {
		logger.Warn("S3_BUCKET not set, audio uploads disabled")
	}

	var condenser *summary.Condenser
	if cfg.GeminiAPIKey != "" {
		condenser, err = summary.NewCondenser(ctx, cfg.GeminiAPIKey)
		if err != nil {
			logger.Warn("failed to init summary condenser, using truncation", "error", err)
		} else {
			defer condenser.Close()
		}
	}

	pipe := pipeline.New(pipeline.Options{
		Crawler:     crawler.New(sources, httpClient, logger.With("crawler")),
		Fetcher:     scraper.New(httpClient, images, logger.With("scraper")),
		Fields:      translate.NewFieldTranslator(translator, logger.With("translate")),
		Narrator:    narrator,
		Uploader:    uploader,
		Condenser:   condenser,
		Store:       st,
		Metrics:     metrics.Global,
		MaxArticles: cfg.MaxArticles,
		Log:         logger.With("pipeline"),
	})

	srv := server.New(pipe, query.New(st), st, metrics.Global, logger.With("server"))

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("starting http server", "addr", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
