//go:build unit

package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelMatching(t *testing.T) {
	sentinel := New("value rejected")
	cause := errors.New("parse failure")

	t.Run("wrapping the sentinel keeps it in the unwrap chain", func(t *testing.T) {
		wrapped := Wrap(sentinel, cause.Error())
		assert.True(t, errors.Is(wrapped, sentinel))
	})

	t.Run("marking is invisible to stdlib unwrapping", func(t *testing.T) {
		// Mark records equivalence for cockroach-aware callers only. A use
		// case that wants handlers to match a business sentinel with
		// errors.Is must return the sentinel itself, wrapped, not a marked
		// cause.
		marked := Mark(cause, sentinel)
		assert.False(t, errors.Is(marked, sentinel))
	})

	t.Run("mark with nil cause yields the sentinel", func(t *testing.T) {
		assert.True(t, errors.Is(Mark(nil, sentinel), sentinel))
	})
}
