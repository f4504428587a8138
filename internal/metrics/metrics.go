package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ArticlesDiscovered     int64
	ArticlesFetched        int64
	DuplicatesSkipped      int64
	SuccessfulTranslations int64
	FailedTranslations     int64
	SuccessfulSyntheses    int64
	FailedSyntheses        int64
	AudioUploads           int64

	// Timings
	LastBatchTime    time.Duration
	AverageBatchTime time.Duration
	TotalBatchTime   time.Duration
	BatchCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementArticlesDiscovered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesDiscovered += int64(n)
}

func (m *Metrics) IncrementArticlesFetched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesFetched++
}

func (m *Metrics) IncrementDuplicatesSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesSkipped++
}

func (m *Metrics) IncrementSuccessfulTranslations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SuccessfulTranslations++
}

func (m *Metrics) IncrementFailedTranslations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailedTranslations++
}

func (m *Metrics) IncrementSuccessfulSyntheses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SuccessfulSyntheses++
}

func (m *Metrics) IncrementFailedSyntheses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailedSyntheses++
}

func (m *Metrics) IncrementAudioUploads() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AudioUploads++
}

func (m *Metrics) RecordBatchTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastBatchTime = duration
	m.TotalBatchTime += duration
	m.BatchCount++

	if m.BatchCount > 0 {
		m.AverageBatchTime = m.TotalBatchTime / time.Duration(m.BatchCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"articles_discovered":     m.ArticlesDiscovered,
		"articles_fetched":        m.ArticlesFetched,
		"duplicates_skipped":      m.DuplicatesSkipped,
		"successful_translations": m.SuccessfulTranslations,
		"failed_translations":     m.FailedTranslations,
		"successful_syntheses":    m.SuccessfulSyntheses,
		"failed_syntheses":        m.FailedSyntheses,
		"audio_uploads":           m.AudioUploads,
		"last_batch_time_ms":      m.LastBatchTime.Milliseconds(),
		"average_batch_time_ms":   m.AverageBatchTime.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
