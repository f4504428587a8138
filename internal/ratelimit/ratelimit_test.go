package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacerSpacesCalls(t *testing.T) {
	p := NewPacer(20 * time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Wait(context.Background()))
	}
	// First call is free, the next two wait one interval each.
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestPacerFirstCallImmediate(t *testing.T) {
	p := NewPacer(time.Second)

	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestPacerCancelled(t *testing.T) {
	p := NewPacer(time.Minute)
	require.NoError(t, p.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Wait(ctx), context.Canceled)
}
