package xerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	t.Run("structured error", func(t *testing.T) {
		err := NotFound("lead", "abc")
		assert.Equal(t, KindNotFound, KindOf(err))
		assert.Equal(t, "abc", err.Details["id"])
		assert.Equal(t, "lead not found", err.Error())
	})

	t.Run("wrapped structured error", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", Conflict("email already in use"))
		assert.True(t, Is(err, KindConflict))
	})

	t.Run("plain error is internal", func(t *testing.T) {
		assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	})

	t.Run("nil", func(t *testing.T) {
		assert.Equal(t, Kind(""), KindOf(nil))
		assert.False(t, Is(nil, KindInternal))
	})
}

func TestInternalUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause, "failed to update lead")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to update lead: connection reset", err.Error())
}
