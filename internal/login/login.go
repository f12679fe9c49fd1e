// Package login signs the browser session in, reusing a persisted profile
// when one is still valid and clearing security checkpoints when they come
// up.
package login

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"easyapply-engine/internal/session"
)

const (
	feedURL  = "https://www.linkedin.com/feed/"
	loginURL = "https://www.linkedin.com/login"
)

var (
	locUsername   = session.ByCSS("#username")
	locPassword   = session.ByCSS("#password")
	locSignIn     = session.ByCSS(".btn__primary--large")
	locCodeInput  = session.ByCSS(`input[name="pin"]`)
	locCodeSubmit = session.ByCSS("#email-pin-submit-button")
)

type Credentials struct {
	Email    string
	Password string
}

type Login struct {
	sess    session.Session
	creds   Credentials
	mailbox *ChallengeMailbox
	stdin   *bufio.Reader
}

func New(sess session.Session, creds Credentials, mailbox *ChallengeMailbox) *Login {
	return &Login{sess: sess, creds: creds, mailbox: mailbox, stdin: bufio.NewReader(os.Stdin)}
}

// Run establishes an authenticated session. The persisted browser profile is
// tried first; only when the feed does not load does the password flow run.
func (l *Login) Run(ctx context.Context) error {
	log.Printf("[login] attempting to restore previous session")
	if err := l.sess.Navigate(ctx, feedURL); err != nil {
		return err
	}
	session.SleepJitter(ctx, 5*time.Second, 10*time.Second)

	if strings.Contains(l.sess.CurrentURL(), "/feed") {
		log.Printf("[login] session restored")
		return nil
	}

	log.Printf("[login] no live session, signing in")
	if err := l.signIn(ctx); err != nil {
		return err
	}
	return l.securityCheck(ctx)
}

func (l *Login) signIn(ctx context.Context) error {
	if err := l.sess.Navigate(ctx, loginURL); err != nil {
		return err
	}
	if !l.sess.WaitFor(ctx, locUsername, 10*time.Second) {
		// Some checkpoints intercept the login page itself.
		return l.securityCheck(ctx)
	}

	user, err := l.sess.Find(locUsername)
	if err != nil {
		return fmt.Errorf("username field: %w", err)
	}
	if err := user.SendKeys(l.creds.Email); err != nil {
		return err
	}
	pass, err := l.sess.Find(locPassword)
	if err != nil {
		return fmt.Errorf("password field: %w", err)
	}
	if err := pass.SendKeys(l.creds.Password); err != nil {
		return err
	}
	btn, err := l.sess.Find(locSignIn)
	if err != nil {
		return fmt.Errorf("sign-in button: %w", err)
	}
	if err := btn.Click(); err != nil {
		return err
	}

	if l.sess.WaitFor(ctx, session.ByCSS(".global-nav"), 10*time.Second) &&
		strings.Contains(l.sess.CurrentURL(), "/feed") {
		session.SleepJitter(ctx, 5*time.Second, 10*time.Second)
		return nil
	}
	return l.securityCheck(ctx)
}

// securityCheck detects a sign-in checkpoint and clears it, preferring an
// emailed PIN over waiting on the console.
func (l *Login) securityCheck(ctx context.Context) error {
	url := l.sess.CurrentURL()
	source, _ := l.sess.PageSource()
	lower := strings.ToLower(source)

	challenged := strings.Contains(url, "/checkpoint/challenge/") ||
		strings.Contains(lower, "security check") ||
		strings.Contains(lower, "quick verification")
	if !challenged {
		if strings.Contains(l.sess.CurrentURL(), "/feed") {
			return nil
		}
		return fmt.Errorf("login did not reach the feed (at %s)", url)
	}

	if l.mailbox != nil {
		if err := l.enterEmailedPIN(ctx); err == nil {
			return nil
		} else {
			log.Printf("[login] emailed PIN attempt failed: %v", err)
		}
	}

	fmt.Println("Please complete the security check in the browser and press enter here when done.")
	_, _ = l.stdin.ReadString('\n')
	session.SleepJitter(ctx, 5500*time.Millisecond, 10500*time.Millisecond)
	return nil
}

func (l *Login) enterEmailedPIN(ctx context.Context) error {
	input, err := l.sess.Find(locCodeInput)
	if err != nil {
		return fmt.Errorf("no PIN input on checkpoint page: %w", err)
	}

	// The mail takes a moment to arrive; poll a few times before giving up.
	var pin string
	for attempt := 0; attempt < 6; attempt++ {
		session.SleepJitter(ctx, 8*time.Second, 12*time.Second)
		pin, err = l.mailbox.FetchPIN(ctx)
		if err == nil {
			break
		}
	}
	if pin == "" {
		return fmt.Errorf("fetch PIN: %w", err)
	}

	if err := input.SendKeys(pin); err != nil {
		return err
	}
	if btn, err := l.sess.Find(locCodeSubmit); err == nil {
		if err := btn.Click(); err != nil {
			return err
		}
	} else if err := input.PressEnter(); err != nil {
		return err
	}

	if !l.sess.WaitFor(ctx, session.ByCSS(".global-nav"), 15*time.Second) {
		return fmt.Errorf("checkpoint did not clear after PIN entry")
	}
	log.Printf("[login] checkpoint cleared with emailed PIN")
	return nil
}
