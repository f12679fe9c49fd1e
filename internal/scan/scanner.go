// Package scan extracts posting records from the rendered feed and applies
// blacklist and dedup rules. Field extraction is isolated per tile: one
// broken field never costs the tile, one broken tile never costs the page.
package scan

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"easyapply-engine/internal/config"
	"easyapply-engine/internal/search"
	"easyapply-engine/internal/session"
)

// Posting is one extracted feed tile. Any field may be empty when its
// extraction failed; Link is the dedup key (query string stripped).
type Posting struct {
	Link        string
	Title       string
	Company     string
	Poster      string
	Location    string
	ApplyMethod string
}

// Candidate is a posting that survived filtering, still attached to its
// live tile element so the engine can activate it.
type Candidate struct {
	Posting
	Tile session.Element
}

type Scanner struct {
	sess  session.Session
	seen  *SeenSet
	cfg   config.Config
	debug bool
}

func NewScanner(sess session.Session, seen *SeenSet, cfg config.Config) *Scanner {
	return &Scanner{sess: sess, seen: seen, cfg: cfg, debug: cfg.App.Debug}
}

const tileSelector = "li.scaffold-layout__list-item"

// CheckExhausted recognizes the feed states that mean this query has nothing
// left: the explicit no-results banner, the "unfortunately" empty state, and
// the recommendations-only header. These end the query, they are not errors
// to retry.
func (s *Scanner) CheckExhausted() error {
	if banner, err := s.sess.Find(session.ByCSS(".jobs-search-two-pane__no-results-banner--expand")); err == nil {
		if text, err := banner.Text(); err == nil && strings.Contains(text, "No matching jobs found") {
			return fmt.Errorf("%w: no matching jobs banner", search.ErrQueryExhausted)
		}
	}

	src, err := s.sess.PageSource()
	if err == nil && strings.Contains(strings.ToLower(src), "unfortunately, things are") {
		return fmt.Errorf("%w: empty-state message", search.ErrQueryExhausted)
	}

	if header, err := s.sess.Find(session.ByCSS(".jobs-search-results-list__text")); err == nil {
		if text, err := header.Text(); err == nil && strings.Contains(text, "Jobs you may be interested in") {
			return fmt.Errorf("%w: recommendations only", search.ErrQueryExhausted)
		}
	}

	return nil
}

// ScanPage resolves the feed, walks its tiles in DOM order, and returns the
// candidates that pass every filter. Every processed tile's link lands in
// the seen set, filtered or not, so retries within the run can never apply
// to the same posting twice.
func (s *Scanner) ScanPage(ctx context.Context) ([]Candidate, error) {
	if err := s.CheckExhausted(); err != nil {
		return nil, err
	}

	container, list, listClass, err := resolveFeed(s.sess)
	if err != nil {
		// Fatal for this page; the driver's termination handling owns it.
		return nil, fmt.Errorf("%w: %v", search.ErrQueryExhausted, err)
	}

	// Lazy lists only materialize tiles as they come into view.
	s.sess.ScrollSlow(ctx, container, 3600, 100, false)
	s.sess.ScrollSlow(ctx, container, 3600, 300, true)

	// The list's leading class survives re-renders better than the element
	// handle the strategy resolved; re-locate through it when possible.
	if fresh, err := s.sess.Find(session.ByCSS("." + listClass)); err == nil {
		list = fresh
	}

	tiles, err := list.FindAll(session.ByCSS(tileSelector))
	if err != nil || len(tiles) == 0 {
		return nil, fmt.Errorf("%w: empty job list", search.ErrQueryExhausted)
	}

	var candidates []Candidate
	for _, tile := range tiles {
		p := s.extractTile(tile)
		keep, reason := s.filter(p)
		if !keep {
			if s.debug {
				log.Printf("[scan] skipped (%s) title=%q company=%q poster=%q", reason, p.Title, p.Company, p.Poster)
			}
			s.seen.Add(p.Link)
			continue
		}
		s.seen.Add(p.Link)
		candidates = append(candidates, Candidate{Posting: p, Tile: tile})
	}
	return candidates, nil
}

// extractTile pulls every field it can out of the tile's HTML. A failing
// field stays empty; the tile is never aborted here.
func (s *Scanner) extractTile(tile session.Element) Posting {
	var p Posting

	html, err := tile.HTML()
	if err != nil {
		return p
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return p
	}

	titleLink := doc.Find("a.job-card-list__title--link").First()
	p.Title = cleanText(titleLink.Find("strong").First().Text())
	if href, ok := titleLink.Attr("href"); ok {
		p.Link = canonicalLink(href)
	}

	p.Company = cleanText(doc.Find(".artdeco-entity-lockup__subtitle").First().Text())
	p.Location = cleanText(doc.Find(".job-card-container__metadata-item").First().Text())
	p.ApplyMethod = cleanText(doc.Find(".job-card-container__apply-method").First().Text())

	doc.Find("span").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		if i := strings.Index(text, " is hiring for this"); i > 0 {
			p.Poster = cleanText(text[:i])
			return false
		}
		return true
	})

	return p
}

// filter applies the rejection rules in fixed order: title blacklist
// (whole-token match), company blacklist (case-insensitive exact), poster
// blacklist (same), then dedup.
func (s *Scanner) filter(p Posting) (keep bool, reason string) {
	titleTokens := strings.Fields(strings.ToLower(p.Title))
	for _, word := range s.cfg.Blacklist.Titles {
		w := strings.ToLower(word)
		for _, tok := range titleTokens {
			if tok == w {
				return false, "title blacklist: " + word
			}
		}
	}

	for _, c := range s.cfg.Blacklist.Companies {
		if strings.EqualFold(strings.TrimSpace(c), p.Company) {
			return false, "company blacklist"
		}
	}

	for _, pb := range s.cfg.Blacklist.Posters {
		if p.Poster != "" && strings.EqualFold(strings.TrimSpace(pb), p.Poster) {
			return false, "poster blacklist"
		}
	}

	if s.seen.Has(p.Link) {
		return false, "already seen"
	}

	return true, ""
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}

// canonicalLink strips the tracking query string and fragment; what remains
// is the posting's identity for the whole run.
func canonicalLink(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		if i := strings.IndexByte(raw, '?'); i >= 0 {
			return raw[:i]
		}
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	if u.Host == "" {
		return "https://www.linkedin.com" + u.String()
	}
	return u.String()
}
