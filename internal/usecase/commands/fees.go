package commands

import (
	"context"
	"errors"
	"log/slog"

	"circulation/internal/domain/loan"
	"circulation/internal/infra"
	"circulation/internal/pkg/clock"
	"circulation/internal/pkg/errs"
	"circulation/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrAlreadyTerminal    = errs.New("loan is already finalized")
	ErrNoOutstandingFine  = errs.New("loan has no outstanding fine")
	ErrFineAlreadySettled = errs.New("fine has already been settled")
)

// FeeCommands are the librarian-facing administrative operations: the
// periodic overdue sweep, lost-copy compensation and fine settlement.
type FeeCommands interface {
	// CalculateOverdueFine flags a still-out loan OVERDUE with the fine
	// accrued so far. Safe to re-run; a loan within its due time is left
	// untouched.
	CalculateOverdueFine(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error)
	// CalculateLossCompensation finalizes the loan as LOST with a fine of
	// the copy's full purchase price and withdraws the copy for good.
	CalculateLossCompensation(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error)
	// SettleFine marks an outstanding fine as paid.
	SettleFine(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error)
}

type feeCommandsImpl struct {
	uow    shared.UnitOfWork
	clock  clock.Clock
	logger *slog.Logger
}

func NewFeeCommands(uow shared.UnitOfWork, clk clock.Clock, logger *slog.Logger) FeeCommands {
	return &feeCommandsImpl{
		uow:    uow,
		clock:  clk,
		logger: logger,
	}
}

func (c *feeCommandsImpl) CalculateOverdueFine(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error) {
	now := c.clock.Now()
	var result *loan.Loan

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		l, err := findLoan(ctx, tx, loanID)
		if err != nil {
			return err
		}

		policy, err := loadPolicy(ctx, tx.Rules())
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		flagged, err := l.FlagOverdue(now, policy)
		if err != nil {
			if errors.Is(err, loan.ErrAlreadyTerminal) {
				return ErrAlreadyTerminal
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if flagged {
			if err := tx.Loans().Update(ctx, l); err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
		}
		result = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Status() == loan.StatusOverdue {
		c.logger.Info("loan flagged overdue", "loan_id", result.ID(), "fine", result.Fine())
	}
	return result, nil
}

func (c *feeCommandsImpl) CalculateLossCompensation(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error) {
	now := c.clock.Now()
	var result *loan.Loan

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		l, err := findLoan(ctx, tx, loanID)
		if err != nil {
			return err
		}

		cp, err := tx.Copies().FindByID(ctx, l.CopyID())
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if err := l.DeclareLost(now, cp.PurchasePrice()); err != nil {
			if errors.Is(err, loan.ErrAlreadyTerminal) {
				return ErrAlreadyTerminal
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if err := tx.Loans().Update(ctx, l); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		// The copy leaves circulation permanently.
		if err := tx.Copies().MarkLost(ctx, l.CopyID()); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		result = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("loan declared lost",
		"loan_id", result.ID(), "copy_id", result.CopyID(), "compensation", result.Fine())
	return result, nil
}

func (c *feeCommandsImpl) SettleFine(ctx context.Context, loanID uuid.UUID) (*loan.Loan, error) {
	var result *loan.Loan

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		l, err := findLoan(ctx, tx, loanID)
		if err != nil {
			return err
		}

		if err := l.SettleFine(); err != nil {
			switch {
			case errors.Is(err, loan.ErrNoFineToSettle):
				return ErrNoOutstandingFine
			case errors.Is(err, loan.ErrFineAlreadySettled):
				return ErrFineAlreadySettled
			default:
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
		}
		if err := tx.Loans().Update(ctx, l); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		result = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("fine settled", "loan_id", result.ID(), "amount", result.Fine())
	return result, nil
}

func findLoan(ctx context.Context, tx shared.Tx, loanID uuid.UUID) (*loan.Loan, error) {
	l, err := tx.Loans().FindByID(ctx, loanID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return l, nil
}
