package queries

import (
	"context"

	"github.com/google/uuid"
)

type ReservationQueries interface {
	// ListActiveByBorrower returns the borrower's WAITING and NOTIFIED
	// entries with their queue positions.
	ListActiveByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*ReservationView, error)
	Availability(ctx context.Context, bookID uuid.UUID) (*AvailabilityView, error)
}

type ReservationViewRepo interface {
	FindActiveByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*ReservationView, error)
}

type AvailabilityViewRepo interface {
	CountAvailable(ctx context.Context, bookID uuid.UUID) (int64, error)
}

type reservationQueriesImpl struct {
	repo         ReservationViewRepo
	availability AvailabilityViewRepo
}

func NewReservationQueries(repo ReservationViewRepo, availability AvailabilityViewRepo) ReservationQueries {
	return &reservationQueriesImpl{repo: repo, availability: availability}
}

func (q *reservationQueriesImpl) ListActiveByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*ReservationView, error) {
	return q.repo.FindActiveByBorrower(ctx, borrowerID)
}

func (q *reservationQueriesImpl) Availability(ctx context.Context, bookID uuid.UUID) (*AvailabilityView, error) {
	n, err := q.availability.CountAvailable(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return &AvailabilityView{BookID: bookID, AvailableCopies: n}, nil
}
