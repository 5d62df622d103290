package shared

import (
	"context"

	"circulation/internal/domain/copy"
	"circulation/internal/domain/loan"
	"circulation/internal/domain/reservation"
	"circulation/internal/domain/rule"

	"github.com/google/uuid"
)

// UnitOfWork executes a use case inside one transaction so the copy
// compare-and-set and the loan write that follows it become visible together.
type UnitOfWork interface {
	// Within: full transaction for write use cases, retried on transient
	// serialization conflicts.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx exposes the write-side repositories bound to one open transaction.
type Tx interface {
	Copies() CopyRepository
	Loans() LoanRepository
	Reservations() ReservationRepository
	Rules() RuleRepository
}

// CopyRepository owns every mutation of copy state. ClaimForLoan is the only
// compare-and-set in the system: of N concurrent callers for one AVAILABLE
// copy exactly one wins, the rest observe a conflict without having mutated
// anything.
type CopyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*copy.Copy, error)
	// ClaimForLoan atomically transitions AVAILABLE -> ON_LOAN.
	ClaimForLoan(ctx context.Context, copyID uuid.UUID) error
	// Release transitions ON_LOAN -> AVAILABLE.
	Release(ctx context.Context, copyID uuid.UUID) error
	// MarkLost transitions ON_LOAN -> WITHDRAWN.
	MarkLost(ctx context.Context, copyID uuid.UUID) error
	FindAnyAvailable(ctx context.Context, bookID uuid.UUID) (*copy.Copy, error)
	CountAvailable(ctx context.Context, bookID uuid.UUID) (int64, error)
	Update(ctx context.Context, c *copy.Copy) error
}

type LoanRepository interface {
	Create(ctx context.Context, l *loan.Loan) error
	Update(ctx context.Context, l *loan.Loan) error
	FindByID(ctx context.Context, id uuid.UUID) (*loan.Loan, error)
	FindActiveByBorrowerAndCopy(ctx context.Context, borrowerID, copyID uuid.UUID) (*loan.Loan, error)
	CountActiveByBorrower(ctx context.Context, borrowerID uuid.UUID) (int64, error)
	ExistsActiveByBorrowerAndBook(ctx context.Context, borrowerID, bookID uuid.UUID) (bool, error)
	ExistsOverdueByBorrower(ctx context.Context, borrowerID uuid.UUID) (bool, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, r *reservation.Reservation) error
	Update(ctx context.Context, r *reservation.Reservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	ExistsWaiting(ctx context.Context, borrowerID, bookID uuid.UUID) (bool, error)
	// HasActiveForBook reports whether any WAITING or NOTIFIED entry exists.
	HasActiveForBook(ctx context.Context, bookID uuid.UUID) (bool, error)
	// OldestWaiting returns the FIFO head of the book's queue (reservation
	// time ascending, id ascending on ties) or nil if the queue is empty.
	OldestWaiting(ctx context.Context, bookID uuid.UUID) (*reservation.Reservation, error)
	ListNotifiedForBook(ctx context.Context, bookID uuid.UUID) ([]*reservation.Reservation, error)
	FindNotifiedByBorrowerAndBook(ctx context.Context, borrowerID, bookID uuid.UUID) (*reservation.Reservation, error)
	// LockBookQueue serializes queue processing per book for the duration of
	// the transaction. Two concurrent returns of the same book must not
	// promote the same entry twice, nor skip one.
	LockBookQueue(ctx context.Context, bookID uuid.UUID) error
}

type RuleRepository interface {
	FindByKey(ctx context.Context, key string) (*rule.Rule, error)
	Update(ctx context.Context, r *rule.Rule) error
	// CreateIfAbsent inserts the rule unless the key already exists. Seeding
	// defaults through this is idempotent.
	CreateIfAbsent(ctx context.Context, r *rule.Rule) error
	ListAll(ctx context.Context) ([]*rule.Rule, error)
}
