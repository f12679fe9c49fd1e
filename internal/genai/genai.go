// Package genai is the generative-answer capability behind the resolver's
// fallback and the optional fit gate. Everything here is advisory: callers
// must treat any error as "no answer" and carry on (fail-open).
package genai

import (
	"context"
	"errors"
)

// ErrUnavailable means the capability is absent or not responding. Callers
// fall back to deterministic defaults; it never propagates further.
var ErrUnavailable = errors.New("genai: capability unavailable")

// Answerer resolves free-form application questions and pursue/skip
// decisions. Implementations must be safe to call with any input and must
// never block past their own timeouts.
type Answerer interface {
	// Answer returns raw model output for the question. For choice fields
	// the options are enumerated with indices and the reply is expected to
	// be one index; the caller validates that.
	Answer(ctx context.Context, question string, kind string, options []string) (string, error)

	// EvaluateFit decides whether a posting is worth pursuing given the
	// candidate profile.
	EvaluateFit(ctx context.Context, title, description string) (bool, error)
}

// Null is the no-capability Answerer. Selecting it at construction is how
// the engine runs without a configured model.
type Null struct{}

func (Null) Answer(context.Context, string, string, []string) (string, error) {
	return "", ErrUnavailable
}

func (Null) EvaluateFit(context.Context, string, string) (bool, error) {
	return false, ErrUnavailable
}
