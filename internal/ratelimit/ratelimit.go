// Package ratelimit spaces out calls to external translation and speech
// services so a batch never bursts past their request quotas.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Pacer enforces a minimum interval between successive calls.
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval}
}

// Wait blocks until at least the configured interval has passed since the
// previous call, or until ctx is cancelled.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	now := time.Now()
	next := p.last.Add(p.interval)
	if next.Before(now) {
		next = now
	}
	p.last = next
	p.mu.Unlock()

	wait := time.Until(next)
	if wait <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
