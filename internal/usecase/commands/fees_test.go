//go:build unit

package commands

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"circulation/internal/domain/copy"
	"circulation/internal/domain/loan"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feeTestEnv struct {
	*testEnv
	svc FeeCommands
}

func newFeeTestEnv(t *testing.T) *feeTestEnv {
	t.Helper()
	base := newTestEnv(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &feeTestEnv{
		testEnv: base,
		svc:     NewFeeCommands(&fakeUoW{store: base.store}, base.clk, logger),
	}
}

func (e *feeTestEnv) openLoan(t *testing.T) (*loan.Loan, *copy.Copy) {
	t.Helper()
	borrowerID := e.addBorrower()
	cp := e.addCopy(t, e.addBook())
	l, err := e.testEnv.svc.Borrow(context.Background(), borrowerID, cp.ID())
	require.NoError(t, err)
	return l, cp
}

func TestCalculateOverdueFine(t *testing.T) {
	t.Run("within the due time nothing changes", func(t *testing.T) {
		env := newFeeTestEnv(t)
		l, _ := env.openLoan(t)

		env.clk.Add(10 * 24 * time.Hour)
		got, err := env.svc.CalculateOverdueFine(context.Background(), l.ID())

		require.NoError(t, err)
		assert.Equal(t, loan.StatusActive, got.Status())
		assert.True(t, got.Fine().IsZero())
	})

	t.Run("flags the loan with the fine accrued so far", func(t *testing.T) {
		env := newFeeTestEnv(t)
		l, _ := env.openLoan(t)

		// 30-day loan, 40 days late at 0.50 per day.
		env.clk.Add(70 * 24 * time.Hour)
		got, err := env.svc.CalculateOverdueFine(context.Background(), l.ID())

		require.NoError(t, err)
		assert.Equal(t, loan.StatusOverdue, got.Status())
		assert.True(t, got.Fine().Equal(decimal.RequireFromString("20.00")),
			"fine = %s", got.Fine())
		assert.Nil(t, got.ReturnedAt(), "the sweep does not close the loan")
	})

	t.Run("re-running refreshes the accrual", func(t *testing.T) {
		env := newFeeTestEnv(t)
		l, _ := env.openLoan(t)

		env.clk.Add(32 * 24 * time.Hour)
		got, err := env.svc.CalculateOverdueFine(context.Background(), l.ID())
		require.NoError(t, err)
		assert.True(t, got.Fine().Equal(decimal.RequireFromString("1.00")))

		env.clk.Add(2 * 24 * time.Hour)
		got, err = env.svc.CalculateOverdueFine(context.Background(), l.ID())
		require.NoError(t, err)
		assert.True(t, got.Fine().Equal(decimal.RequireFromString("2.00")))
	})

	t.Run("finalized loan", func(t *testing.T) {
		env := newFeeTestEnv(t)
		l, cp := env.openLoan(t)
		_, err := env.testEnv.svc.Return(context.Background(), l.BorrowerID(), cp.ID())
		require.NoError(t, err)

		_, err = env.svc.CalculateOverdueFine(context.Background(), l.ID())
		assert.ErrorIs(t, err, ErrAlreadyTerminal)
	})

	t.Run("unknown loan", func(t *testing.T) {
		env := newFeeTestEnv(t)

		_, err := env.svc.CalculateOverdueFine(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ErrLoanNotFound)
	})
}

func TestCalculateLossCompensation(t *testing.T) {
	t.Run("charges the purchase price and withdraws the copy", func(t *testing.T) {
		env := newFeeTestEnv(t)
		l, cp := env.openLoan(t)

		got, err := env.svc.CalculateLossCompensation(context.Background(), l.ID())

		require.NoError(t, err)
		assert.Equal(t, loan.StatusLost, got.Status())
		assert.True(t, got.Fine().Equal(cp.PurchasePrice()))
		assert.NotNil(t, got.ReturnedAt(), "a lost loan is finalized")
		assert.Equal(t, copy.StatusWithdrawn, cp.Status())
	})

	t.Run("finalized loan", func(t *testing.T) {
		env := newFeeTestEnv(t)
		l, _ := env.openLoan(t)

		_, err := env.svc.CalculateLossCompensation(context.Background(), l.ID())
		require.NoError(t, err)

		_, err = env.svc.CalculateLossCompensation(context.Background(), l.ID())
		assert.ErrorIs(t, err, ErrAlreadyTerminal)
	})

	t.Run("unknown loan", func(t *testing.T) {
		env := newFeeTestEnv(t)

		_, err := env.svc.CalculateLossCompensation(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ErrLoanNotFound)
	})
}

func TestSettleFineCommand(t *testing.T) {
	lateReturn := func(t *testing.T, env *feeTestEnv) *loan.Loan {
		t.Helper()
		l, cp := env.openLoan(t)
		env.clk.Add(40 * 24 * time.Hour)
		got, err := env.testEnv.svc.Return(context.Background(), l.BorrowerID(), cp.ID())
		require.NoError(t, err)
		require.False(t, got.Fine().IsZero())
		return got
	}

	t.Run("marks an outstanding fine paid", func(t *testing.T) {
		env := newFeeTestEnv(t)
		l := lateReturn(t, env)

		got, err := env.svc.SettleFine(context.Background(), l.ID())

		require.NoError(t, err)
		assert.True(t, got.FinePaid())
	})

	t.Run("nothing to settle", func(t *testing.T) {
		env := newFeeTestEnv(t)
		l, cp := env.openLoan(t)
		_, err := env.testEnv.svc.Return(context.Background(), l.BorrowerID(), cp.ID())
		require.NoError(t, err)

		_, err = env.svc.SettleFine(context.Background(), l.ID())
		assert.ErrorIs(t, err, ErrNoOutstandingFine)
	})

	t.Run("already settled", func(t *testing.T) {
		env := newFeeTestEnv(t)
		l := lateReturn(t, env)
		_, err := env.svc.SettleFine(context.Background(), l.ID())
		require.NoError(t, err)

		_, err = env.svc.SettleFine(context.Background(), l.ID())
		assert.ErrorIs(t, err, ErrFineAlreadySettled)
	})

	t.Run("unknown loan", func(t *testing.T) {
		env := newFeeTestEnv(t)

		_, err := env.svc.SettleFine(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ErrLoanNotFound)
	})
}
