package scan

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"easyapply-engine/internal/config"
	"easyapply-engine/internal/search"
	"easyapply-engine/internal/session"
)

type stubElement struct {
	text  string
	html  string
	attrs map[string]string
	kids  []session.Element
}

func (e *stubElement) Text() (string, error) { return e.text, nil }

func (e *stubElement) Attribute(name string) (string, error) {
	return e.attrs[name], nil
}

func (e *stubElement) HTML() (string, error) { return e.html, nil }

func (e *stubElement) Click() error { return nil }

func (e *stubElement) SendKeys(string) error { return nil }

func (e *stubElement) PressEnter() error { return nil }

func (e *stubElement) PressDown() error { return nil }

func (e *stubElement) Clear() error { return nil }

func (e *stubElement) SelectOption(string) error { return nil }

func (e *stubElement) Find(session.Locator) (session.Element, error) {
	return nil, session.ErrElementNotFound
}

func (e *stubElement) FindAll(session.Locator) ([]session.Element, error) {
	return e.kids, nil
}

type stubSession struct {
	source   string
	elements map[string]session.Element
}

func (s *stubSession) Navigate(context.Context, string) error { return nil }

func (s *stubSession) CurrentURL() string { return "" }

func (s *stubSession) PageSource() (string, error) { return s.source, nil }

func (s *stubSession) Find(loc session.Locator) (session.Element, error) {
	if el, ok := s.elements[loc.String()]; ok {
		return el, nil
	}
	return nil, session.ErrElementNotFound
}

func (s *stubSession) FindAll(session.Locator) ([]session.Element, error) { return nil, nil }

func (s *stubSession) WaitFor(context.Context, session.Locator, time.Duration) bool { return false }

func (s *stubSession) ScrollSlow(context.Context, session.Element, int, int, bool) {}

func tileHTML(title, link, company, location string) string {
	return fmt.Sprintf(`<li class="scaffold-layout__list-item">
  <a class="job-card-list__title--link" href="%s"><strong>%s</strong></a>
  <div class="artdeco-entity-lockup__subtitle">%s</div>
  <span class="job-card-container__metadata-item">%s</span>
  <div class="job-card-container__apply-method">Easy Apply</div>
</li>`, link, title, company, location)
}

func feedSession(tiles ...session.Element) *stubSession {
	list := &stubElement{attrs: map[string]string{"class": "scaffold-layout__list-container"}, kids: tiles}
	return &stubSession{
		elements: map[string]session.Element{
			session.ByCSS("div.scaffold-layout__list").String():    &stubElement{},
			session.ByCSS("div.scaffold-layout__list ul").String(): list,
		},
	}
}

func TestScanPageExtractsTiles(t *testing.T) {
	sess := feedSession(
		&stubElement{html: tileHTML("Go Developer", "/jobs/view/123/?refId=abc", "Acme", "Austin, TX")},
		&stubElement{html: tileHTML("Platform Engineer", "https://www.linkedin.com/jobs/view/456/?tracking=x", "Globex", "Remote")},
	)

	s := NewScanner(sess, NewSeenSet(), config.Config{})
	got, err := s.ScanPage(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Go Developer", got[0].Title)
	assert.Equal(t, "Acme", got[0].Company)
	assert.Equal(t, "Austin, TX", got[0].Location)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/123/", got[0].Link)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/456/", got[1].Link)
}

func TestScanPageDedupAcrossPages(t *testing.T) {
	tile := &stubElement{html: tileHTML("Go Developer", "/jobs/view/123/", "Acme", "Austin, TX")}
	seen := NewSeenSet()
	s := NewScanner(feedSession(tile), seen, config.Config{})

	first, err := s.ScanPage(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	// The same tile showing up again resolves to the same canonical link.
	second, err := s.ScanPage(context.Background())
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Equal(t, 1, seen.Len())
}

func TestTitleBlacklistMatchesWholeTokens(t *testing.T) {
	var cfg config.Config
	cfg.Blacklist.Titles = []string{"Senior"}
	s := NewScanner(&stubSession{}, NewSeenSet(), cfg)

	keep, reason := s.filter(Posting{Title: "Senior Engineer", Link: "a"})
	assert.False(t, keep)
	assert.Contains(t, reason, "title blacklist")

	keep, _ = s.filter(Posting{Title: "Seniority Analyst", Link: "b"})
	assert.True(t, keep)
}

func TestCompanyAndPosterBlacklists(t *testing.T) {
	var cfg config.Config
	cfg.Blacklist.Companies = []string{"acme"}
	cfg.Blacklist.Posters = []string{"Jordan Smith"}
	s := NewScanner(&stubSession{}, NewSeenSet(), cfg)

	keep, _ := s.filter(Posting{Company: "Acme", Link: "a"})
	assert.False(t, keep)

	keep, _ = s.filter(Posting{Company: "Globex", Poster: "jordan smith", Link: "b"})
	assert.False(t, keep)

	keep, _ = s.filter(Posting{Company: "Globex", Link: "c"})
	assert.True(t, keep)
}

func TestScanPageExhaustedBanner(t *testing.T) {
	sess := &stubSession{
		elements: map[string]session.Element{
			session.ByCSS(".jobs-search-two-pane__no-results-banner--expand").String(): &stubElement{
				text: "No matching jobs found for this search",
			},
		},
	}
	s := NewScanner(sess, NewSeenSet(), config.Config{})
	_, err := s.ScanPage(context.Background())
	assert.True(t, errors.Is(err, search.ErrQueryExhausted))
}

func TestScanPageEmptyStateMessage(t *testing.T) {
	sess := &stubSession{source: "<html>Unfortunately, things are not working right now</html>"}
	s := NewScanner(sess, NewSeenSet(), config.Config{})
	_, err := s.ScanPage(context.Background())
	assert.True(t, errors.Is(err, search.ErrQueryExhausted))
}

func TestScanPageNoFeedIsExhausted(t *testing.T) {
	s := NewScanner(&stubSession{}, NewSeenSet(), config.Config{})
	_, err := s.ScanPage(context.Background())
	assert.True(t, errors.Is(err, search.ErrQueryExhausted))
}

func TestCanonicalLink(t *testing.T) {
	assert.Equal(t, "https://www.linkedin.com/jobs/view/1/", canonicalLink("/jobs/view/1/?refId=x#y"))
	assert.Equal(t, "https://www.linkedin.com/jobs/view/2/", canonicalLink("https://www.linkedin.com/jobs/view/2/?a=b"))
	assert.Equal(t, "", canonicalLink("  "))
}
