package search

import (
	"context"
	"errors"
	"log"
	"math/rand"

	"easyapply-engine/internal/config"
	"easyapply-engine/internal/session"
)

// ErrQueryExhausted is an end-of-query marker, not a failure: the feed has
// nothing left worth scanning for this (position, location) pair.
var ErrQueryExhausted = errors.New("search: query exhausted")

// PageFunc processes one loaded result page. Returning ErrQueryExhausted
// (wrapped or not) ends the current query's page loop; any other error is
// logged and ends the query too, never the run.
type PageFunc func(ctx context.Context, q Query, page int) error

type Driver struct {
	sess  session.Session
	pacer *Pacer
	base  string
	pairs []Query
}

func NewDriver(sess session.Session, cfg config.Config, pacer *Pacer) *Driver {
	var pairs []Query
	for _, pos := range cfg.Search.Positions {
		for _, loc := range cfg.Search.Locations {
			pairs = append(pairs, Query{Position: pos, Location: loc})
		}
	}
	return &Driver{
		sess:  sess,
		pacer: pacer,
		base:  BaseParams(cfg),
		pairs: pairs,
	}
}

// Run walks every (position, location) pair in shuffled order, visiting pages
// strictly in increasing order within a query. Only a dead context stops it.
func (d *Driver) Run(ctx context.Context, each PageFunc) error {
	queries := make([]Query, len(d.pairs))
	copy(queries, d.pairs)
	rand.Shuffle(len(queries), func(i, j int) {
		queries[i], queries[j] = queries[j], queries[i]
	})

	for _, q := range queries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("[search] starting query position=%q location=%q", q.Position, q.Location)
		d.pacer.StartQuery()
		d.runQuery(ctx, q, each)
		d.pacer.EndQuery(ctx)
	}
	return ctx.Err()
}

func (d *Driver) runQuery(ctx context.Context, q Query, each PageFunc) {
	for page := 0; ; page++ {
		if ctx.Err() != nil {
			return
		}
		pageURL := NextPageURL(d.base, q, page)
		log.Printf("[search] loading page %d for %q / %q", page, q.Position, q.Location)
		if err := d.sess.Navigate(ctx, pageURL); err != nil {
			log.Printf("[search] navigate failed: %v", err)
			return
		}
		d.pacer.PageLoaded(ctx)

		err := each(ctx, q, page)
		switch {
		case err == nil:
			continue
		case errors.Is(err, ErrQueryExhausted):
			log.Printf("[search] query done at page %d: %v", page, err)
			return
		default:
			// Query-level errors end this query's loop only.
			log.Printf("[search] query aborted at page %d: %v", page, err)
			return
		}
	}
}
