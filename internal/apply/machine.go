package apply

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"easyapply-engine/internal/session"
)

var (
	// ErrValidation means the submission surfaced required-field errors the
	// resolver could not satisfy. The application was discarded.
	ErrValidation = errors.New("apply: required questions rejected")

	// ErrConfirmation means the application went through but the
	// confirmation dialog would not close, leaving the page in an unknown
	// state.
	ErrConfirmation = errors.New("apply: could not close confirmation dialog")
)

var (
	locApplyButton    = session.ByCSS(".jobs-apply-button")
	locDescription    = session.ByCSS(".jobs-search__job-details--container")
	locPrimaryButton  = session.ByCSS(".artdeco-button--primary")
	locModalDismiss   = session.ByCSS(".artdeco-modal__dismiss")
	locDiscardConfirm = session.ByCSS(".artdeco-modal__confirm-dialog-btn")
	locToastDismiss   = session.ByCSS(".artdeco-toast-item__dismiss")
	locSaveDialog     = session.ByCSS(`button[data-control-name="save_application_btn"]`)
	locUnfollowLabel  = session.ByXPath(`//label[contains(.,'to stay up to date with their page.')]`)
)

// validationPhrases are the inline error strings the form surfaces, in every
// locale observed in the wild. The scan runs over the lowercased page source
// after each step advance.
var validationPhrases = []string{
	"enter a valid",
	"enter a decimal",
	"enter a whole number",
	"file is required",
	"whole number",
	"make a selection",
	"select checkbox to proceed",
	"saisissez un numéro",
	"numéro de téléphone",
	"请输入whole编号",
	"请输入decimal编号",
	"长度超过 0.0",
	"introduce un número de whole entre",
	"inserisci un numero whole compreso",
	"preguntas adicionales",
	"insira um um número",
	"cuántos años",
	"use the format",
	"请选择",
	"请 选 择",
	"inserisci",
	"wholenummer",
	"wpisz liczb",
	"zakresu od",
	"tussen",
}

// maxSteps bounds the modal walk. Real applications finish well under this;
// hitting the bound means a step keeps failing silently.
const maxSteps = 20

// Machine walks one posting from its detail pane through the easy-apply
// modal to the submitted confirmation.
type Machine struct {
	sess   session.Session
	filler *Filler
	debug  bool

	// sleep is swapped out by tests.
	sleep func(ctx context.Context, min, max time.Duration)
}

func NewMachine(sess session.Session, filler *Filler, debug bool) *Machine {
	return &Machine{sess: sess, filler: filler, debug: debug, sleep: session.SleepJitter}
}

// Description returns the visible posting description, or "" when the detail
// pane is not rendered.
func (m *Machine) Description() string {
	pane, err := m.sess.Find(locDescription)
	if err != nil {
		return ""
	}
	text, err := pane.Text()
	if err != nil {
		return ""
	}
	return text
}

// Apply runs the full flow for the posting currently open in the detail
// pane. It returns (false, nil) when the posting has no easy-apply entry
// point, (true, nil) on a confirmed submission, and (false, err) when the
// flow started but could not finish.
func (m *Machine) Apply(ctx context.Context) (bool, error) {
	button, err := m.sess.Find(locApplyButton)
	if err != nil {
		return false, nil
	}

	// Reading the description before applying keeps the dwell pattern
	// consistent with a person deciding whether to apply.
	if pane, err := m.sess.Find(locDescription); err == nil {
		m.sess.ScrollSlow(ctx, pane, 1600, 100, false)
		m.sess.ScrollSlow(ctx, pane, 1600, 400, true)
	}

	log.Printf("[apply] starting application")
	if err := button.Click(); err != nil {
		return false, fmt.Errorf("open modal: %w", err)
	}

	for step := 0; step < maxSteps; step++ {
		submitted, err := m.advance(ctx)
		if err != nil {
			m.discard(ctx)
			return false, err
		}
		if submitted {
			return true, m.closeConfirmation(ctx)
		}
	}
	m.discard(ctx)
	return false, fmt.Errorf("modal did not converge after %d steps", maxSteps)
}

// advance fills the current step and clicks the primary button. It returns
// true once that button submitted the application.
func (m *Machine) advance(ctx context.Context) (bool, error) {
	m.filler.FillStep(ctx)

	next, err := m.sess.Find(locPrimaryButton)
	if err != nil {
		return false, fmt.Errorf("primary button: %w", err)
	}
	label, err := next.Text()
	if err != nil {
		return false, fmt.Errorf("primary button label: %w", err)
	}
	submitting := strings.Contains(strings.ToLower(label), "submit application")
	if submitting {
		m.unfollow()
	}

	m.sleep(ctx, 1500*time.Millisecond, 2500*time.Millisecond)
	if err := next.Click(); err != nil {
		return false, fmt.Errorf("advance step: %w", err)
	}
	m.sleep(ctx, 3*time.Second, 5*time.Second)

	if phrase := m.validationError(); phrase != "" {
		return false, fmt.Errorf("%w (%q)", ErrValidation, phrase)
	}
	return submitting, nil
}

func (m *Machine) validationError() string {
	source, err := m.sess.PageSource()
	if err != nil {
		return ""
	}
	source = strings.ToLower(source)
	for _, phrase := range validationPhrases {
		if strings.Contains(source, phrase) {
			return phrase
		}
	}
	return ""
}

// unfollow unticks the follow-company checkbox before submitting so the
// account does not accumulate followed pages.
func (m *Machine) unfollow() {
	label, err := m.sess.Find(locUnfollowLabel)
	if err != nil {
		return
	}
	if err := label.Click(); err != nil && m.debug {
		log.Printf("[apply] unfollow click failed: %v", err)
	}
}

// discard abandons a half-finished application: close the modal, then
// confirm the discard dialog.
func (m *Machine) discard(ctx context.Context) {
	if dismiss, err := m.sess.Find(locModalDismiss); err == nil {
		_ = dismiss.Click()
	}
	m.sleep(ctx, 3*time.Second, 5*time.Second)
	if confirm, err := m.sess.Find(locDiscardConfirm); err == nil {
		_ = confirm.Click()
	}
	m.sleep(ctx, 3*time.Second, 5*time.Second)
}

// closeConfirmation dismisses whichever post-submit surface appeared. The
// dialog varies, so every known close affordance is tried.
func (m *Machine) closeConfirmation(ctx context.Context) error {
	m.sleep(ctx, 3*time.Second, 5*time.Second)
	closed := false
	for _, loc := range []session.Locator{locModalDismiss, locToastDismiss, locSaveDialog} {
		if el, err := m.sess.Find(loc); err == nil {
			if err := el.Click(); err == nil {
				closed = true
			}
		}
	}
	m.sleep(ctx, 3*time.Second, 5*time.Second)
	if !closed {
		return ErrConfirmation
	}
	return nil
}
