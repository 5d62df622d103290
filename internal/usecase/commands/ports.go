package commands

import (
	"context"

	"circulation/internal/domain/loan"
	"circulation/internal/domain/rule"
	"circulation/internal/usecase/shared"

	"github.com/google/uuid"
)

// Ports onto the excluded collaborators (catalog, identity, notification).
// The core only ever touches them through these narrow interfaces.

// CatalogReads answers existence questions about catalog books and
// borrowers. Both live outside this core; we never mutate them.
type CatalogReads interface {
	BookExists(ctx context.Context, bookID uuid.UUID) (bool, error)
	BorrowerExists(ctx context.Context, borrowerID uuid.UUID) (bool, error)
}

// Notifier dispatches a best-effort message to a borrower. Failures are
// observed and logged but never roll back the state transition that
// triggered them.
type Notifier interface {
	Notify(ctx context.Context, borrowerID uuid.UUID, message string)
}

// loadPolicy snapshots the rule values a loan decision runs under. Reading
// them all at the start of the use case keeps a mid-flight rule update from
// producing a half-old, half-new decision.
func loadPolicy(ctx context.Context, rules shared.RuleRepository) (loan.Policy, error) {
	var p loan.Policy

	intRule := func(key string) (int, error) {
		r, err := rules.FindByKey(ctx, key)
		if err != nil {
			return 0, err
		}
		return r.IntValue()
	}

	var err error
	if p.MaxBorrowBooks, err = intRule(rule.KeyMaxBorrowBooks); err != nil {
		return p, err
	}
	if p.LoanPeriodDays, err = intRule(rule.KeyLoanPeriodDays); err != nil {
		return p, err
	}
	if p.RenewalPeriodDays, err = intRule(rule.KeyRenewalPeriodDays); err != nil {
		return p, err
	}
	if p.MaxRenewalTimes, err = intRule(rule.KeyMaxRenewalTimes); err != nil {
		return p, err
	}

	allowRule, err := rules.FindByKey(ctx, rule.KeyAllowRenewals)
	if err != nil {
		return p, err
	}
	if p.AllowRenewals, err = allowRule.BoolValue(); err != nil {
		return p, err
	}

	fineRule, err := rules.FindByKey(ctx, rule.KeyFinePerDay)
	if err != nil {
		return p, err
	}
	if p.FinePerDay, err = fineRule.DecimalValue(); err != nil {
		return p, err
	}

	return p, nil
}

func loadHoldDays(ctx context.Context, rules shared.RuleRepository) (int, error) {
	r, err := rules.FindByKey(ctx, rule.KeyReservationHoldDays)
	if err != nil {
		return 0, err
	}
	return r.IntValue()
}
