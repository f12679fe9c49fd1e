package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"easyapply-engine/internal/apply"
	"easyapply-engine/internal/store"
)

func TestApplyStatus(t *testing.T) {
	assert.Equal(t, store.StatusApplied, applyStatus(true, nil))
	assert.Equal(t, store.StatusFailed, applyStatus(false, apply.ErrValidation))
	assert.Equal(t, "", applyStatus(false, nil), "no apply control is not an attempt")
}

func TestApplyStatusUnacknowledgedSubmission(t *testing.T) {
	// The modal submitted but none of the confirmation closers worked.
	// That application exists on the platform, so it must count as
	// applied or the next run would submit a duplicate.
	err := fmt.Errorf("closing modal: %w", apply.ErrConfirmation)
	assert.Equal(t, store.StatusApplied, applyStatus(true, err))

	// Any other error alongside submitted=true stays failed.
	assert.Equal(t, store.StatusFailed, applyStatus(true, errors.New("detached frame")))
}
