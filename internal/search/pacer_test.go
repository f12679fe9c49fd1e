package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestPacerBackoffEveryFifthLoad(t *testing.T) {
	p := NewPacer()
	p.lim.SetLimit(rate.Inf)

	var sleeps []time.Duration
	p.sleep = func(_ context.Context, min, _ time.Duration) {
		sleeps = append(sleeps, min)
	}

	for i := 0; i < 5; i++ {
		p.PageLoaded(context.Background())
	}

	// One jitter sleep per load plus one long backoff on the fifth.
	assert.Len(t, sleeps, 6)
	assert.Equal(t, backoffMin, sleeps[5])
}

func TestPacerQueryDwell(t *testing.T) {
	p := NewPacer()
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return clock }

	var slept time.Duration
	p.sleep = func(_ context.Context, min, _ time.Duration) { slept = min }

	p.StartQuery()
	clock = clock.Add(5 * time.Minute)
	p.EndQuery(context.Background())
	assert.Equal(t, 10*time.Minute, slept)

	// Past the dwell window there is nothing left to sleep out.
	slept = 0
	p.StartQuery()
	clock = clock.Add(20 * time.Minute)
	p.EndQuery(context.Background())
	assert.Zero(t, slept)
}
