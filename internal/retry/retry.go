package retry

import (
	"context"
	"fmt"
	"time"
)

type Config struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     bool // double the delay after each failed attempt
}

func Do(ctx context.Context, config Config, fn func() error) error {
	var lastErr error

	delay := config.Delay
	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if err := fn(); err != nil {
			lastErr = err

			if attempt == config.MaxAttempts {
				return fmt.Errorf("failed after %d attempts: %w", config.MaxAttempts, err)
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}

			if config.Backoff {
				delay *= 2
			}
			continue
		}
		return nil
	}

	return lastErr
}
