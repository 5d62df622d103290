package commands

import (
	"context"
	"errors"
	"log/slog"

	"circulation/internal/domain/reservation"
	"circulation/internal/infra"
	"circulation/internal/pkg/clock"
	"circulation/internal/pkg/errs"
	"circulation/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrReservationNotFound  = errs.New("reservation not found")
	ErrCopiesAvailable      = errs.New("copies are available, borrow instead of reserving")
	ErrDuplicateReservation = errs.New("borrower already has a waiting reservation for this book")
	ErrBorrowerBlocked      = errs.New("borrower has overdue loans and cannot reserve")
	ErrNotReservationOwner  = errs.New("reservation belongs to another borrower")
	ErrReservationNotActive = errs.New("reservation is no longer waiting")
)

// ReservationCommands manages the per-book waiting list. Queue promotion
// lives with the coordinator's Return flow; here a borrower only joins or
// leaves the queue.
type ReservationCommands interface {
	Reserve(ctx context.Context, borrowerID, bookID uuid.UUID) (*reservation.Reservation, error)
	Cancel(ctx context.Context, borrowerID, reservationID uuid.UUID) error
}

type reservationCommandsImpl struct {
	uow     shared.UnitOfWork
	catalog CatalogReads
	clock   clock.Clock
	logger  *slog.Logger
}

func NewReservationCommands(
	uow shared.UnitOfWork,
	catalog CatalogReads,
	clk clock.Clock,
	logger *slog.Logger,
) ReservationCommands {
	return &reservationCommandsImpl{
		uow:     uow,
		catalog: catalog,
		clock:   clk,
		logger:  logger,
	}
}

// Reserve queues the borrower for the next free copy of the book.
// Only a book with zero available copies may be reserved; a borrower with an
// overdue loan on record may not queue for more books.
func (c *reservationCommandsImpl) Reserve(ctx context.Context, borrowerID, bookID uuid.UUID) (*reservation.Reservation, error) {
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
	var created *reservation.Reservation

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		available, err := tx.Copies().CountAvailable(ctx, bookID)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if available > 0 {
			return ErrCopiesAvailable
		}

		blocked, err := tx.Loans().ExistsOverdueByBorrower(ctx, borrowerID)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if blocked {
			return ErrBorrowerBlocked
		}

		dup, err := tx.Reservations().ExistsWaiting(ctx, borrowerID, bookID)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if dup {
			return ErrDuplicateReservation
		}

		created = reservation.NewReservation(borrowerID, bookID, now)
		if err := tx.Reservations().Create(ctx, created); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return ErrDuplicateReservation
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("reservation created",
		"reservation_id", created.ID(), "borrower_id", borrowerID, "book_id", bookID)
	return created, nil
}

// Cancel removes the borrower's own WAITING reservation from the queue.
func (c *reservationCommandsImpl) Cancel(ctx context.Context, borrowerID, reservationID uuid.UUID) error {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		r, err := tx.Reservations().FindByID(ctx, reservationID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrReservationNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if err := r.CancelBy(borrowerID); err != nil {
			switch {
			case errors.Is(err, reservation.ErrNotOwner):
				return ErrNotReservationOwner
			case errors.Is(err, reservation.ErrNotWaiting):
				return ErrReservationNotActive
			default:
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
		}
		return tx.Reservations().Update(ctx, r)
	})
	if err != nil {
		return err
	}

	c.logger.Info("reservation cancelled", "reservation_id", reservationID, "borrower_id", borrowerID)
	return nil
}
