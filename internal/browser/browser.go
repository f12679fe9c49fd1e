// Package browser owns Chrome lifecycle: launch with an anti-automation
// profile, hand out the working page, and tear everything down. Thin wrapper;
// the engine itself only ever sees session.Session.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

type Options struct {
	// ProfileDir persists cookies between runs so a previous login session
	// can be restored instead of logging in every time.
	ProfileDir string

	// Headful runs a visible window. Security challenges are much easier to
	// clear by hand with one.
	Headful bool
}

// Browser bundles the launched Chrome with its page and launcher handle.
type Browser struct {
	browser *rod.Browser
	page    *rod.Page
	lnch    *launcher.Launcher
}

// Launch starts Chrome and opens a single stealth page. The page carries the
// whole run; the engine is strictly sequential over one browser session.
func Launch(ctx context.Context, opts Options) (*Browser, error) {
	l := launcher.New().
		Headless(!opts.Headful).
		Set("no-sandbox").
		Set("disable-extensions").
		Set("ignore-certificate-errors").
		Set("disable-blink-features", "AutomationControlled").
		Set("window-size", "1920,1080")

	if opts.ProfileDir != "" {
		l = l.UserDataDir(opts.ProfileDir)
	}

	wsURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch chrome: %w", err)
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}

	page, err := stealth.Page(b)
	if err != nil {
		_ = b.Close()
		l.Cleanup()
		return nil, fmt.Errorf("browser: open stealth page: %w", err)
	}

	return &Browser{browser: b, page: page, lnch: l}, nil
}

func (b *Browser) Page() *rod.Page { return b.page }

func (b *Browser) Close() {
	if b.page != nil {
		_ = b.page.Close()
	}
	if b.browser != nil {
		// Give in-flight CDP calls a moment to settle before the kill.
		time.Sleep(100 * time.Millisecond)
		_ = b.browser.Close()
	}
	if b.lnch != nil {
		b.lnch.Cleanup()
	}
}
