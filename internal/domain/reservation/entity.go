package reservation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatusCode = errors.New("invalid reservation status code")
	ErrNotWaiting        = errors.New("reservation is not waiting")
	ErrNotNotified       = errors.New("reservation is not notified")
	ErrNotOwner          = errors.New("reservation belongs to another borrower")
)

// Reservation is a borrower's place in a book's waiting list. Reservations
// are per-book, not per-copy: any available copy satisfies one. Entries for
// a book are totally ordered by reservation time, ids ascending on ties, and
// promotion always selects the oldest WAITING entry.
type Reservation struct {
	id         uuid.UUID
	borrowerID uuid.UUID
	bookID     uuid.UUID
	reservedAt time.Time
	notifiedAt *time.Time
	status     Status
	createdAt  time.Time
	updatedAt  time.Time
}

func NewReservation(borrowerID, bookID uuid.UUID, now time.Time) *Reservation {
	return &Reservation{
		id:         uuid.New(),
		borrowerID: borrowerID,
		bookID:     bookID,
		reservedAt: now,
		status:     StatusWaiting,
	}
}

func Reconstruct(
	id, borrowerID, bookID uuid.UUID,
	reservedAt time.Time,
	notifiedAt *time.Time,
	status Status,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:         id,
		borrowerID: borrowerID,
		bookID:     bookID,
		reservedAt: reservedAt,
		notifiedAt: notifiedAt,
		status:     status,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// CancelBy transitions WAITING -> CANCELLED. Only the owner may cancel, and
// only while the reservation is still waiting.
func (r *Reservation) CancelBy(borrowerID uuid.UUID) error {
	if r.borrowerID != borrowerID {
		return ErrNotOwner
	}
	if r.status != StatusWaiting {
		return ErrNotWaiting
	}
	r.status = StatusCancelled
	return nil
}

// Notify transitions WAITING -> NOTIFIED, recording the notice time that
// starts the claim window.
func (r *Reservation) Notify(now time.Time) error {
	if r.status != StatusWaiting {
		return ErrNotWaiting
	}
	r.status = StatusNotified
	r.notifiedAt = &now
	return nil
}

// Fulfill transitions NOTIFIED -> FULFILLED when the borrower claims a copy
// within the hold window.
func (r *Reservation) Fulfill() error {
	if r.status != StatusNotified {
		return ErrNotNotified
	}
	r.status = StatusFulfilled
	return nil
}

// Expire transitions NOTIFIED -> EXPIRED once the hold window has elapsed;
// the next WAITING entry then takes its turn.
func (r *Reservation) Expire() error {
	if r.status != StatusNotified {
		return ErrNotNotified
	}
	r.status = StatusExpired
	return nil
}

// HoldExpired reports whether a NOTIFIED reservation's claim window of
// holdDays has elapsed at now. Checked lazily when the queue is processed.
func (r *Reservation) HoldExpired(now time.Time, holdDays int) bool {
	if r.status != StatusNotified || r.notifiedAt == nil {
		return false
	}
	return now.After(r.notifiedAt.AddDate(0, 0, holdDays))
}

func (r *Reservation) ID() uuid.UUID          { return r.id }
func (r *Reservation) BorrowerID() uuid.UUID  { return r.borrowerID }
func (r *Reservation) BookID() uuid.UUID      { return r.bookID }
func (r *Reservation) ReservedAt() time.Time  { return r.reservedAt }
func (r *Reservation) NotifiedAt() *time.Time { return r.notifiedAt }
func (r *Reservation) Status() Status         { return r.status }
func (r *Reservation) CreatedAt() time.Time   { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time   { return r.updatedAt }
