package session

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

// Rod is the Chrome-backed Session. Find/FindAll probe the current DOM and
// return immediately; only WaitFor and Navigate block.
type Rod struct {
	page *rod.Page
}

func NewRod(page *rod.Page) *Rod {
	return &Rod{page: page}
}

func (s *Rod) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return err
	}
	// Best effort; heavy feeds keep loading assets long after the DOM is usable.
	_ = p.WaitLoad()
	return nil
}

func (s *Rod) CurrentURL() string {
	info, err := s.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (s *Rod) PageSource() (string, error) {
	return s.page.HTML()
}

func (s *Rod) Find(loc Locator) (Element, error) {
	var (
		ok  bool
		el  *rod.Element
		err error
	)
	if loc.XPath != "" {
		ok, el, err = s.page.HasX(loc.XPath)
	} else {
		ok, el, err = s.page.Has(loc.CSS)
	}
	if err != nil {
		return nil, mapErr(err)
	}
	if !ok {
		return nil, ErrElementNotFound
	}
	return &rodElement{el: el}, nil
}

func (s *Rod) FindAll(loc Locator) ([]Element, error) {
	var (
		els rod.Elements
		err error
	)
	if loc.XPath != "" {
		els, err = s.page.ElementsX(loc.XPath)
	} else {
		els, err = s.page.Elements(loc.CSS)
	}
	if err != nil {
		return nil, mapErr(err)
	}
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out, nil
}

func (s *Rod) WaitFor(ctx context.Context, loc Locator, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if _, err := s.Find(loc); err == nil {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(250 * time.Millisecond):
		}
	}
}

func (s *Rod) ScrollSlow(ctx context.Context, el Element, end, step int, reverse bool) {
	re, ok := el.(*rodElement)
	if !ok {
		return
	}
	start := 0
	if reverse {
		start, end = end, start
		step = -step
	}
	for i := start; (step > 0 && i < end) || (step < 0 && i > end); i += step {
		if _, err := re.el.Eval(`(y) => this.scrollTo(0, y)`, i); err != nil {
			return
		}
		SleepJitter(ctx, time.Second, 2600*time.Millisecond)
		if ctx.Err() != nil {
			return
		}
	}
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Text() (string, error) {
	t, err := e.el.Text()
	return t, mapErr(err)
}

func (e *rodElement) Attribute(name string) (string, error) {
	v, err := e.el.Attribute(name)
	if err != nil {
		return "", mapErr(err)
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

func (e *rodElement) HTML() (string, error) {
	h, err := e.el.HTML()
	return h, mapErr(err)
}

func (e *rodElement) Click() error {
	return mapErr(e.el.Click(proto.InputMouseButtonLeft, 1))
}

func (e *rodElement) SendKeys(value string) error {
	return mapErr(e.el.Input(value))
}

func (e *rodElement) PressEnter() error {
	return mapErr(e.el.Type(input.Enter))
}

func (e *rodElement) PressDown() error {
	return mapErr(e.el.Type(input.ArrowDown))
}

func (e *rodElement) Clear() error {
	if err := e.el.SelectAllText(); err != nil {
		return mapErr(err)
	}
	return mapErr(e.el.Input(""))
}

func (e *rodElement) SelectOption(text string) error {
	return mapErr(e.el.Select([]string{text}, true, rod.SelectorTypeText))
}

func (e *rodElement) Find(loc Locator) (Element, error) {
	var (
		ok  bool
		el  *rod.Element
		err error
	)
	if loc.XPath != "" {
		ok, el, err = e.el.HasX(loc.XPath)
	} else {
		ok, el, err = e.el.Has(loc.CSS)
	}
	if err != nil {
		return nil, mapErr(err)
	}
	if !ok {
		return nil, ErrElementNotFound
	}
	return &rodElement{el: el}, nil
}

func (e *rodElement) FindAll(loc Locator) ([]Element, error) {
	var (
		els rod.Elements
		err error
	)
	if loc.XPath != "" {
		els, err = e.el.ElementsX(loc.XPath)
	} else {
		els, err = e.el.Elements(loc.CSS)
	}
	if err != nil {
		return nil, mapErr(err)
	}
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out, nil
}

// mapErr folds CDP-level failures into the two errors callers handle.
// Anything that smells like a detached or replaced node is a stale reference.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "Cannot find context with specified id"),
		strings.Contains(msg, "Node with given id does not belong to the document"),
		strings.Contains(msg, "Object couldn't be returned by evaluation"),
		strings.Contains(msg, "Could not find node with given id"):
		return ErrStale
	case strings.Contains(msg, "cannot find element"):
		return ErrElementNotFound
	}
	return err
}

// SleepJitter sleeps a uniformly random duration in [min, max) or until ctx
// is done. Every delay in the engine goes through here so the access pattern
// never looks mechanical.
func SleepJitter(ctx context.Context, min, max time.Duration) {
	d := min
	if max > min {
		d = min + time.Duration(rand.Int63n(int64(max-min)))
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
