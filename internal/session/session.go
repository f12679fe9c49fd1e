// Package session abstracts the browser page the engine drives. Everything
// above this package talks to Session/Element; only the rod implementation
// knows about Chrome.
package session

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrElementNotFound is the expected miss: the structure we probed for
	// is not on the page. Callers skip the field/tile/strategy and move on.
	ErrElementNotFound = errors.New("session: element not found")

	// ErrStale marks a reference whose backing DOM node was replaced.
	// Callers retry a bounded number of times, then treat it as not found.
	ErrStale = errors.New("session: stale element reference")
)

// Locator is one structural recipe for finding an element. Exactly one of
// CSS or XPath is set.
type Locator struct {
	CSS   string
	XPath string
}

func ByCSS(sel string) Locator { return Locator{CSS: sel} }

func ByXPath(expr string) Locator { return Locator{XPath: expr} }

func (l Locator) String() string {
	if l.XPath != "" {
		return "xpath:" + l.XPath
	}
	return "css:" + l.CSS
}

type Element interface {
	Text() (string, error)
	Attribute(name string) (string, error)
	HTML() (string, error)
	Click() error
	SendKeys(value string) error
	// PressEnter commits the current value (date pickers, typeaheads).
	PressEnter() error
	// PressDown moves typeahead selection to the first suggestion.
	PressDown() error
	Clear() error
	// SelectOption picks a <select> option by visible text.
	SelectOption(text string) error
	Find(loc Locator) (Element, error)
	FindAll(loc Locator) ([]Element, error)
}

type Session interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL() string
	// PageSource returns the rendered document HTML, lowercase-insensitive
	// phrase scans happen on top of this.
	PageSource() (string, error)
	Find(loc Locator) (Element, error)
	FindAll(loc Locator) ([]Element, error)
	// WaitFor polls for the locator until it resolves or the timeout lapses.
	WaitFor(ctx context.Context, loc Locator, timeout time.Duration) bool
	// ScrollSlow scrolls el in randomized steps, bottom-up when reverse is
	// set. Paces like a human reading the page, not a performance concern.
	ScrollSlow(ctx context.Context, el Element, end, step int, reverse bool)
}
