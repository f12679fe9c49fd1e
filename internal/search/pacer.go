package search

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"easyapply-engine/internal/session"
)

// Pacer keeps the run under the platform's activity threshold. This is
// throttling for survival, not a performance knob: the jitter, the periodic
// long backoff, and the per-query dwell all exist so the traffic never looks
// like a crawler on a timer.
type Pacer struct {
	lim       *rate.Limiter
	pageLoads int
	dwell     time.Duration
	deadline  time.Time

	// injectable for tests
	sleep func(ctx context.Context, min, max time.Duration)
	now   func() time.Time
}

const (
	pageDelayMin = 1500 * time.Millisecond
	pageDelayMax = 3500 * time.Millisecond
	backoffMin   = 3 * time.Minute
	backoffMax   = 5 * time.Minute
	queryDwell   = 15 * time.Minute
)

func NewPacer() *Pacer {
	return &Pacer{
		// Hard floor of one page load per two seconds on top of the jitter.
		lim:   rate.NewLimiter(rate.Every(2*time.Second), 1),
		dwell: queryDwell,
		sleep: session.SleepJitter,
		now:   time.Now,
	}
}

// PageLoaded is called after every page navigation. Every 5th load takes an
// additional multi-minute breather.
func (p *Pacer) PageLoaded(ctx context.Context) {
	p.pageLoads++
	_ = p.lim.Wait(ctx)
	p.sleep(ctx, pageDelayMin, pageDelayMax)
	if p.pageLoads%5 == 0 {
		p.sleep(ctx, backoffMin, backoffMax)
	}
}

// StartQuery arms the minimum dwell clock for the current query.
func (p *Pacer) StartQuery() {
	p.deadline = p.now().Add(p.dwell)
}

// EndQuery sleeps out whatever remains of the dwell window before the run
// moves on to the next (position, location) pair.
func (p *Pacer) EndQuery(ctx context.Context) {
	left := p.deadline.Sub(p.now())
	if left <= 0 {
		return
	}
	p.sleep(ctx, left, left+time.Second)
}
