//go:build unit

package commands

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"circulation/internal/domain/rule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRuleService(store *fakeStore) RuleCommands {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRuleCommands(&fakeUoW{store: store}, logger)
}

func TestSeedDefaults(t *testing.T) {
	t.Run("fills an empty store", func(t *testing.T) {
		store := newFakeStore()
		svc := newRuleService(store)

		require.NoError(t, svc.SeedDefaults(context.Background()))

		assert.Len(t, store.rules, len(rule.Defaults()))
		assert.Equal(t, "5", store.rules[rule.KeyMaxBorrowBooks].Value())
		assert.Equal(t, "0.50", store.rules[rule.KeyFinePerDay].Value())
	})

	t.Run("reseeding never overwrites an operator edit", func(t *testing.T) {
		store := newFakeStore()
		svc := newRuleService(store)
		require.NoError(t, svc.SeedDefaults(context.Background()))

		edited := store.rules[rule.KeyLoanPeriodDays]
		require.NoError(t, edited.Update(edited.Name(), edited.Description(), "14", edited.Type()))

		require.NoError(t, svc.SeedDefaults(context.Background()))

		assert.Equal(t, "14", store.rules[rule.KeyLoanPeriodDays].Value())
	})
}

func TestUpdateRule(t *testing.T) {
	seeded := func(t *testing.T) (*fakeStore, RuleCommands) {
		t.Helper()
		store := newFakeStore()
		store.seedRules()
		return store, newRuleService(store)
	}

	t.Run("replaces the value", func(t *testing.T) {
		store, svc := seeded(t)

		updated, err := svc.UpdateRule(context.Background(), UpdateRuleParams{
			Key:         rule.KeyLoanPeriodDays,
			Name:        "Loan period (days)",
			Description: "Shortened for the summer program",
			Value:       "21",
			ValueType:   rule.TypeInteger,
		})

		require.NoError(t, err)
		assert.Equal(t, "21", updated.Value())
		assert.Equal(t, "21", store.rules[rule.KeyLoanPeriodDays].Value())
	})

	t.Run("value must parse under the declared type", func(t *testing.T) {
		store, svc := seeded(t)

		_, err := svc.UpdateRule(context.Background(), UpdateRuleParams{
			Key:       rule.KeyMaxBorrowBooks,
			Name:      "Maximum borrowed books",
			Value:     "many",
			ValueType: rule.TypeInteger,
		})

		assert.ErrorIs(t, err, ErrInvalidRuleValue)
		assert.Equal(t, "5", store.rules[rule.KeyMaxBorrowBooks].Value(),
			"a failed update leaves the stored value alone")
	})

	t.Run("unknown value type", func(t *testing.T) {
		_, svc := seeded(t)

		_, err := svc.UpdateRule(context.Background(), UpdateRuleParams{
			Key:       rule.KeyMaxBorrowBooks,
			Name:      "Maximum borrowed books",
			Value:     "5",
			ValueType: rule.ValueType("FLOAT"),
		})

		assert.ErrorIs(t, err, ErrInvalidRuleValue)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, svc := seeded(t)

		_, err := svc.UpdateRule(context.Background(), UpdateRuleParams{
			Key:       "NO_SUCH_RULE",
			Name:      "n",
			Value:     "1",
			ValueType: rule.TypeInteger,
		})

		assert.ErrorIs(t, err, ErrRuleNotFound)
	})
}
