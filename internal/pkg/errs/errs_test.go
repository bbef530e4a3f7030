//go:build unit

package errs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/pkg/errs"
)

func TestMarkIsVisibleThroughIs(t *testing.T) {
	t.Parallel()

	sentinel := errs.New("cart storage operation failed")
	cause := errs.New("redis down")
	marked := errs.Mark(cause, sentinel)

	assert.True(t, errs.Is(marked, sentinel))
	assert.True(t, errs.Is(marked, cause))
	assert.Equal(t, cause.Error(), marked.Error(), "marking must not change the message")

	// Marks sit outside the Unwrap chain; only errs.Is sees them.
	assert.False(t, errors.Is(marked, sentinel))

	assert.True(t, errs.Is(errs.Mark(nil, sentinel), sentinel), "nil cause degrades to the mark itself")
}

func TestIsHonorsWrapping(t *testing.T) {
	t.Parallel()

	sentinel := errs.New("boom")
	assert.True(t, errs.Is(errs.Wrap(sentinel, "loading cart"), sentinel))
	assert.False(t, errs.Is(errs.New("unrelated"), sentinel))
}
