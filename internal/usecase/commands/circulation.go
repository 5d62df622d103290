package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"circulation/internal/domain/copy"
	"circulation/internal/domain/loan"
	"circulation/internal/infra"
	"circulation/internal/pkg/clock"
	"circulation/internal/pkg/errs"
	"circulation/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrCopyNotFound            = errs.New("copy not found")
	ErrLoanNotFound            = errs.New("loan not found")
	ErrBorrowerNotFound        = errs.New("borrower not found")
	ErrBookNotFound            = errs.New("book not found")
	ErrCopyNotAvailable        = errs.New("copy is not available")
	ErrAlreadyBorrowed         = errs.New("borrower already has this book on loan")
	ErrBorrowLimitExceeded     = errs.New("borrow limit exceeded")
	ErrNoActiveLoan            = errs.New("no active loan for this copy")
	ErrRenewalNotAllowed       = errs.New("renewals are disabled")
	ErrRenewalLimitExceeded    = errs.New("renewal limit exceeded")
	ErrLoanOverdue             = errs.New("loan is overdue")
	ErrReservationPending      = errs.New("book has pending reservations")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

// CirculationCommands is the coordinator facade over the copy ledger, the
// loan ledger and the reservation queue. Every use case is one transaction:
// a caller either observes the whole transition or none of it.
type CirculationCommands interface {
	Borrow(ctx context.Context, borrowerID, copyID uuid.UUID) (*loan.Loan, error)
	BorrowNextAvailable(ctx context.Context, borrowerID, bookID uuid.UUID) (*loan.Loan, error)
	Return(ctx context.Context, borrowerID, copyID uuid.UUID) (*loan.Loan, error)
	Renew(ctx context.Context, borrowerID, copyID uuid.UUID) (*loan.Loan, error)
}

type circulationCommandsImpl struct {
	uow      shared.UnitOfWork
	catalog  CatalogReads
	notifier Notifier
	clock    clock.Clock
	logger   *slog.Logger
}

func NewCirculationCommands(
	uow shared.UnitOfWork,
	catalog CatalogReads,
	notifier Notifier,
	clk clock.Clock,
	logger *slog.Logger,
) CirculationCommands {
	return &circulationCommandsImpl{
		uow:      uow,
		catalog:  catalog,
		notifier: notifier,
		clock:    clk,
		logger:   logger,
	}
}

// Borrow claims the copy and opens a loan. The copy claim is the
// compare-and-set: of two borrowers racing for the last copy, one wins and
// the other gets ErrCopyNotAvailable with nothing mutated.
func (c *circulationCommandsImpl) Borrow(ctx context.Context, borrowerID, copyID uuid.UUID) (*loan.Loan, error) {
	exists, err := c.catalog.BorrowerExists(ctx, borrowerID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !exists {
		return nil, ErrBorrowerNotFound
	}

	now := c.clock.Now()
	var opened *loan.Loan

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cp, err := tx.Copies().FindByID(ctx, copyID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrCopyNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		opened, err = c.openLoan(ctx, tx, borrowerID, cp, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("loan opened",
		"loan_id", opened.ID(), "borrower_id", borrowerID, "copy_id", copyID, "due_at", opened.DueAt())
	return opened, nil
}

// BorrowNextAvailable picks whichever copy of the book sits on the shelf and
// borrows it. A borrower holding a notice for the book claims their freed
// copy this way without knowing its barcode.
func (c *circulationCommandsImpl) BorrowNextAvailable(ctx context.Context, borrowerID, bookID uuid.UUID) (*loan.Loan, error) {
	exists, err := c.catalog.BorrowerExists(ctx, borrowerID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !exists {
		return nil, ErrBorrowerNotFound
	}
	exists, err = c.catalog.BookExists(ctx, bookID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !exists {
		return nil, ErrBookNotFound
	}

	now := c.clock.Now()
	var opened *loan.Loan

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cp, err := tx.Copies().FindAnyAvailable(ctx, bookID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrCopyNotAvailable
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		opened, err = c.openLoan(ctx, tx, borrowerID, cp, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("loan opened",
		"loan_id", opened.ID(), "borrower_id", borrowerID, "copy_id", opened.CopyID(), "due_at", opened.DueAt())
	return opened, nil
}

func (c *circulationCommandsImpl) openLoan(ctx context.Context, tx shared.Tx, borrowerID uuid.UUID, cp *copy.Copy, now time.Time) (*loan.Loan, error) {
	policy, err := loadPolicy(ctx, tx.Rules())
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	active, err := tx.Loans().CountActiveByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if active >= int64(policy.MaxBorrowBooks) {
		return nil, ErrBorrowLimitExceeded
	}

	held, err := tx.Loans().ExistsActiveByBorrowerAndBook(ctx, borrowerID, cp.BookID())
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if held {
		return nil, ErrAlreadyBorrowed
	}

	if err := tx.Copies().ClaimForLoan(ctx, cp.ID()); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, ErrCopyNotAvailable
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	opened := loan.Open(borrowerID, cp.ID(), now, policy)
	if err := tx.Loans().Create(ctx, opened); err != nil {
		// Compensate: the copy was already claimed. The surrounding
		// transaction will roll both writes back, and the explicit
		// release keeps the copy from being stranded if it cannot.
		if relErr := tx.Copies().Release(ctx, cp.ID()); relErr != nil {
			c.logger.Error("borrow compensation failed, manual reconciliation required",
				"copy_id", cp.ID(), "borrower_id", borrowerID, "error", relErr)
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	// A notified borrower claiming a copy of the reserved book fulfills
	// their reservation in the same transaction.
	if err := c.fulfillNotified(ctx, tx, borrowerID, cp.BookID()); err != nil {
		return nil, err
	}
	return opened, nil
}

// Return closes the loan, frees the copy and promotes the book's queue, in
// that order: a promoted reservation is only notified once the copy is
// actually free.
func (c *circulationCommandsImpl) Return(ctx context.Context, borrowerID, copyID uuid.UUID) (*loan.Loan, error) {
	now := c.clock.Now()

	var (
		closed   *loan.Loan
		promoted *promotion
	)

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		l, err := tx.Loans().FindActiveByBorrowerAndCopy(ctx, borrowerID, copyID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrNoActiveLoan
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		policy, err := loadPolicy(ctx, tx.Rules())
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if err := l.Close(now, policy); err != nil {
			return errs.Wrap(ErrNoActiveLoan, err.Error())
		}
		if err := tx.Loans().Update(ctx, l); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if err := tx.Copies().Release(ctx, copyID); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		cp, err := tx.Copies().FindByID(ctx, copyID)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		promoted, err = promoteNext(ctx, tx, cp.BookID(), now)
		if err != nil {
			return err
		}

		closed = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	if promoted != nil {
		c.notifyPromoted(ctx, promoted)
	}

	c.logger.Info("loan closed",
		"loan_id", closed.ID(), "status", closed.Status(), "fine", closed.Fine())
	return closed, nil
}

// Renew extends the due time unless the book's queue has anyone waiting: a
// queued book cannot be renewed out from under the waiting borrowers.
func (c *circulationCommandsImpl) Renew(ctx context.Context, borrowerID, copyID uuid.UUID) (*loan.Loan, error) {
	now := c.clock.Now()
	var renewed *loan.Loan

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		l, err := tx.Loans().FindActiveByBorrowerAndCopy(ctx, borrowerID, copyID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrNoActiveLoan
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		cp, err := tx.Copies().FindByID(ctx, copyID)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		queued, err := tx.Reservations().HasActiveForBook(ctx, cp.BookID())
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if queued {
			return ErrReservationPending
		}

		policy, err := loadPolicy(ctx, tx.Rules())
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if err := l.Renew(now, policy); err != nil {
			return mapRenewErr(err)
		}
		if err := tx.Loans().Update(ctx, l); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		renewed = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("loan renewed",
		"loan_id", renewed.ID(), "renewals", renewed.Renewals(), "due_at", renewed.DueAt())
	return renewed, nil
}

func (c *circulationCommandsImpl) fulfillNotified(ctx context.Context, tx shared.Tx, borrowerID, bookID uuid.UUID) error {
	r, err := tx.Reservations().FindNotifiedByBorrowerAndBook(ctx, borrowerID, bookID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := r.Fulfill(); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := tx.Reservations().Update(ctx, r); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}

type promotion struct {
	reservationID uuid.UUID
	borrowerID    uuid.UUID
	bookID        uuid.UUID
}

// promoteNext runs the queue for one book: stale NOTIFIED holds are expired
// lazily, then the oldest WAITING entry becomes NOTIFIED. The per-book queue
// lock serializes two concurrent returns of the same book. A no-op when the
// queue is empty.
func promoteNext(ctx context.Context, tx shared.Tx, bookID uuid.UUID, now time.Time) (*promotion, error) {
	if err := tx.Reservations().LockBookQueue(ctx, bookID); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	holdDays, err := loadHoldDays(ctx, tx.Rules())
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	notified, err := tx.Reservations().ListNotifiedForBook(ctx, bookID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	for _, r := range notified {
		if !r.HoldExpired(now, holdDays) {
			continue
		}
		if err := r.Expire(); err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if err := tx.Reservations().Update(ctx, r); err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
	}

	head, err := tx.Reservations().OldestWaiting(ctx, bookID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if head == nil {
		return nil, nil
	}

	if err := head.Notify(now); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := tx.Reservations().Update(ctx, head); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	return &promotion{
		reservationID: head.ID(),
		borrowerID:    head.BorrowerID(),
		bookID:        head.BookID(),
	}, nil
}

// notifyPromoted runs after commit. Best-effort: a failed or panicking
// notifier never unwinds the committed return.
func (c *circulationCommandsImpl) notifyPromoted(ctx context.Context, p *promotion) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("notifier panicked", "reservation_id", p.reservationID, "panic", r)
		}
	}()
	msg := fmt.Sprintf("A copy of the book you reserved is now available. Reservation %s is ready to claim.", p.reservationID)
	c.notifier.Notify(ctx, p.borrowerID, msg)
}

func mapRenewErr(err error) error {
	switch {
	case errors.Is(err, loan.ErrRenewalNotAllowed):
		return ErrRenewalNotAllowed
	case errors.Is(err, loan.ErrRenewalLimitExceeded):
		return ErrRenewalLimitExceeded
	case errors.Is(err, loan.ErrLoanOverdue):
		return ErrLoanOverdue
	case errors.Is(err, loan.ErrAlreadyTerminal):
		return ErrNoActiveLoan
	default:
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
}
