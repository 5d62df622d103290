//go:build unit

package copy

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCopy(t *testing.T) *Copy {
	t.Helper()
	c, err := NewCopy(uuid.New(), "BC-0001", decimal.RequireFromString("19.99"), time.Now())
	require.NoError(t, err)
	return c
}

func TestNewCopy(t *testing.T) {
	c := newTestCopy(t)
	assert.Equal(t, StatusAvailable, c.Status())
	assert.True(t, c.IsAvailable())

	_, err := NewCopy(uuid.New(), "", decimal.Zero, time.Now())
	assert.ErrorIs(t, err, ErrEmptyBarcode)

	_, err = NewCopy(uuid.New(), "BC-0002", decimal.RequireFromString("-1"), time.Now())
	assert.Error(t, err)
}

func TestClaimForLoan(t *testing.T) {
	c := newTestCopy(t)

	require.NoError(t, c.ClaimForLoan())
	assert.Equal(t, StatusOnLoan, c.Status())

	// A second claim observes the copy already out.
	assert.ErrorIs(t, c.ClaimForLoan(), ErrNotAvailable)
}

func TestClaimWithdrawnCopy(t *testing.T) {
	c := newTestCopy(t)
	require.NoError(t, c.ClaimForLoan())
	require.NoError(t, c.MarkLost())

	assert.ErrorIs(t, c.ClaimForLoan(), ErrWithdrawn)
}

func TestRelease(t *testing.T) {
	c := newTestCopy(t)

	assert.ErrorIs(t, c.Release(), ErrNotOnLoan)

	require.NoError(t, c.ClaimForLoan())
	require.NoError(t, c.Release())
	assert.Equal(t, StatusAvailable, c.Status())
}

func TestMarkLost(t *testing.T) {
	c := newTestCopy(t)

	assert.ErrorIs(t, c.MarkLost(), ErrNotOnLoan)

	require.NoError(t, c.ClaimForLoan())
	require.NoError(t, c.MarkLost())
	assert.Equal(t, StatusWithdrawn, c.Status())

	// Withdrawn is terminal.
	assert.ErrorIs(t, c.Release(), ErrNotOnLoan)
	assert.ErrorIs(t, c.ClaimForLoan(), ErrWithdrawn)
}

func TestMaintenanceCycle(t *testing.T) {
	c := newTestCopy(t)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	assert.ErrorIs(t, c.ReturnFromMaintenance(now), ErrInvalidTransition)

	require.NoError(t, c.SendToMaintenance())
	assert.Equal(t, StatusMaintenance, c.Status())
	assert.ErrorIs(t, c.SendToMaintenance(), ErrInvalidTransition)
	assert.ErrorIs(t, c.ClaimForLoan(), ErrNotAvailable)

	require.NoError(t, c.ReturnFromMaintenance(now))
	assert.Equal(t, StatusAvailable, c.Status())
	require.NotNil(t, c.LastMaintenance())
	assert.Equal(t, now, *c.LastMaintenance())
}

func TestStatusFromCode(t *testing.T) {
	for _, code := range []string{"available", "on_loan", "maintenance", "withdrawn"} {
		st, err := StatusFromCode(code)
		require.NoError(t, err)
		assert.Equal(t, code, st.String())
	}

	_, err := StatusFromCode("checked_out")
	assert.ErrorIs(t, err, ErrInvalidStatusCode)
}
