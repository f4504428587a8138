// Package server exposes the pipeline and the article store over HTTP.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"khabar/internal/language"
	"khabar/internal/metrics"
	"khabar/internal/pipeline"
	"khabar/internal/query"
	"khabar/internal/store"
)

type Server struct {
	pipe    *pipeline.Pipeline
	query   *query.Service
	store   *store.Store
	metrics *metrics.Metrics
	log     *slog.Logger
}

func New(pipe *pipeline.Pipeline, q *query.Service, st *store.Store, m *metrics.Metrics, log *slog.Logger) *Server {
	if m == nil {
		m = metrics.Global
	}
	return &Server{pipe: pipe, query: q, store: st, metrics: m, log: log}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.handleHealth)
	router.POST("/extract", s.handleExtract)
	router.GET("/news", s.handleNews)
	router.GET("/article/:id", s.handleArticle)
	router.GET("/languages", s.handleLanguages)
	router.GET("/status", s.handleStatus)
	router.GET("/images/:filename", s.handleImage)

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	stats := s.metrics.GetStats()

	status := "ok"
	code := http.StatusOK
	if healthy, ok := stats["is_healthy"].(bool); ok && !healthy {
		status = "error"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

// handleExtract kicks off a batch. languages is a comma separated list,
// empty meaning every registered language; background=false runs the
// batch inline and only answers once it finishes.
func (s *Server) handleExtract(c *gin.Context) {
	languages := parseLanguages(c.Query("languages"))
	for _, lang := range languages {
		if !language.Supported(lang) {
			c.JSON(http.StatusBadRequest, gin.H{
				"status": "error",
				"error":  "unsupported language: " + lang,
			})
			return
		}
	}

	background := true
	if v := c.Query("background"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			background = parsed
		}
	}

	if background {
		if err := s.pipe.Start(languages); err != nil {
			if errors.Is(err, pipeline.ErrAlreadyRunning) {
				c.JSON(http.StatusConflict, gin.H{"status": "already_processing"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "started"})
		return
	}

	if err := s.pipe.RunSync(c.Request.Context(), languages); err != nil {
		if errors.Is(err, pipeline.ErrAlreadyRunning) {
			c.JSON(http.StatusConflict, gin.H{"status": "already_processing"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed", "count": s.store.Count()})
}

func (s *Server) handleNews(c *gin.Context) {
	lang := c.DefaultQuery("language", language.Default)
	if !language.Supported(lang) {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "unsupported language: " + lang,
		})
		return
	}

	offset := parseIntParam(c.Query("offset"), 0)
	limit := parseIntParam(c.Query("limit"), 0)
	refresh := c.Query("refresh") == "true"

	summary := s.query.Languages(refresh)
	status := s.pipe.Status()

	if s.store.Count() == 0 {
		c.JSON(http.StatusOK, gin.H{
			"status":              "no_data",
			"count":               0,
			"language":            lang,
			"articles":            []query.ArticleView{},
			"available_languages": summary,
			"processing":          status.Processing,
			"last_updated":        s.store.LastUpdated(),
		})
		return
	}

	views, err := s.query.List(lang, offset, limit, requestBaseURL(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":              "success",
		"count":               len(views),
		"language":            lang,
		"articles":            views,
		"available_languages": summary,
		"processing":          status.Processing,
		"last_updated":        s.store.LastUpdated(),
	})
}

func (s *Server) handleArticle(c *gin.Context) {
	art, err := s.query.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "article": art})
}

func (s *Server) handleLanguages(c *gin.Context) {
	summary := s.query.Languages(c.Query("refresh") == "true")
	c.JSON(http.StatusOK, gin.H{
		"languages": summary,
		"count":     len(summary),
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	status := s.pipe.Status()
	c.JSON(http.StatusOK, gin.H{
		"state":        status.State,
		"processing":   status.Processing,
		"languages":    status.Languages,
		"last_error":   status.LastError,
		"articles":     s.store.Count(),
		"last_updated": s.store.LastUpdated(),
		"metrics":      s.metrics.GetStats(),
	})
}

// handleImage serves a downloaded article image. The filename is reduced
// to its base so the route can never escape the images directory.
func (s *Server) handleImage(c *gin.Context) {
	filename := filepath.Base(c.Param("filename"))
	if filename == "." || filename == "/" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid filename"})
		return
	}
	c.File(filepath.Join(s.store.ImagesDir(), filename))
}

func parseLanguages(raw string) []string {
	if raw == "" {
		return nil
	}
	var langs []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			langs = append(langs, part)
		}
	}
	return langs
}

// parseIntParam ignores missing, malformed, or negative values.
func parseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
