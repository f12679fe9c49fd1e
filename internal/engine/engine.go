// Package engine wires the search driver, feed scanner and application
// machine into one run: walk every query, scan every page, apply to every
// candidate that survives the filters.
package engine

import (
	"context"
	"errors"
	"log"
	"time"

	"easyapply-engine/internal/apply"
	"easyapply-engine/internal/config"
	"easyapply-engine/internal/genai"
	"easyapply-engine/internal/scan"
	"easyapply-engine/internal/search"
	"easyapply-engine/internal/session"
	"easyapply-engine/internal/sink"
	"easyapply-engine/internal/store"
)

// staleClickRetries bounds how often a tile click is retried after the feed
// re-renders underneath it.
const staleClickRetries = 3

type Engine struct {
	sess    session.Session
	cfg     config.Config
	driver  *search.Driver
	scanner *scan.Scanner
	machine *apply.Machine
	ai      genai.Answerer
	out     *sink.Writer
	db      *store.DB
}

func New(sess session.Session, cfg config.Config, driver *search.Driver, scanner *scan.Scanner, machine *apply.Machine, ai genai.Answerer, out *sink.Writer, db *store.DB) *Engine {
	return &Engine{
		sess:    sess,
		cfg:     cfg,
		driver:  driver,
		scanner: scanner,
		machine: machine,
		ai:      ai,
		out:     out,
		db:      db,
	}
}

// Run executes the full job run. It returns only when every query pair has
// been exhausted or the context is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	return e.driver.Run(ctx, e.processPage)
}

func (e *Engine) processPage(ctx context.Context, q search.Query, page int) error {
	candidates, err := e.scanner.ScanPage(ctx)
	if err != nil {
		return err
	}
	log.Printf("[engine] page %d: %d candidates", page, len(candidates))

	for _, c := range candidates {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e.processCandidate(ctx, q, c)
	}
	return nil
}

func (e *Engine) processCandidate(ctx context.Context, q search.Query, c scan.Candidate) {
	if e.db != nil {
		applied, err := store.HasApplied(ctx, e.db.Pool, c.Link)
		if err != nil {
			log.Printf("[engine] history lookup failed for %s: %v", c.Link, err)
		} else if applied {
			log.Printf("[engine] already applied to %q at %q, skipping", c.Title, c.Company)
			return
		}
	}

	if !e.openTile(ctx, c) {
		log.Printf("[engine] could not open %q at %q, skipping", c.Title, c.Company)
		return
	}
	session.SleepJitter(ctx, 3*time.Second, 5*time.Second)

	if !genai.FitGate(ctx, e.ai, e.cfg.AI.EvaluateFit, c.Title, e.machine.Description()) {
		log.Printf("[engine] skipping %q at %q: poor fit", c.Title, c.Company)
		return
	}

	outcome := sink.Outcome{
		Company:         c.Company,
		Title:           c.Title,
		Link:            c.Link,
		PostingLocation: c.Location,
		SearchLocation:  q.Location,
	}

	submitted, err := e.machine.Apply(ctx)
	switch applyStatus(submitted, err) {
	case store.StatusApplied:
		if err != nil {
			log.Printf("[engine] applied to %q at %q (confirmation not acknowledged: %v)", c.Title, c.Company, err)
		} else {
			log.Printf("[engine] applied to %q at %q", c.Title, c.Company)
		}
		e.out.WriteApplied(outcome)
		e.recordHistory(ctx, c, q, store.StatusApplied)
	case store.StatusFailed:
		log.Printf("[engine] application failed for %q at %q: %v", c.Title, c.Company, err)
		e.out.WriteFailed(outcome)
		e.recordHistory(ctx, c, q, store.StatusFailed)
	default:
		log.Printf("[engine] %q at %q has no easy-apply entry, skipping", c.Title, c.Company)
	}
}

// applyStatus classifies a Machine.Apply result. A submission whose
// confirmation dialog would not close still counts as applied; marking it
// failed would make the next run apply to the same posting again.
func applyStatus(submitted bool, err error) string {
	switch {
	case submitted && (err == nil || errors.Is(err, apply.ErrConfirmation)):
		return store.StatusApplied
	case err != nil:
		return store.StatusFailed
	default:
		return ""
	}
}

// openTile clicks the feed tile to load the posting's detail pane. The feed
// virtualizes its list, so a click can land on a node that was just
// replaced; those clicks are retried.
func (e *Engine) openTile(ctx context.Context, c scan.Candidate) bool {
	for attempt := 0; attempt < staleClickRetries; attempt++ {
		err := c.Tile.Click()
		if err == nil {
			return true
		}
		if !errors.Is(err, session.ErrStale) {
			log.Printf("[engine] tile click failed: %v", err)
			return false
		}
		session.SleepJitter(ctx, time.Second, 2*time.Second)
	}
	return false
}

func (e *Engine) recordHistory(ctx context.Context, c scan.Candidate, q search.Query, status string) {
	if e.db == nil {
		return
	}
	err := store.RecordApplication(ctx, e.db.Pool, store.Application{
		Link:           c.Link,
		Company:        c.Company,
		Title:          c.Title,
		Location:       c.Location,
		SearchLocation: q.Location,
		Status:         status,
	})
	if err != nil {
		log.Printf("[engine] history write failed for %s: %v", c.Link, err)
	}
}
