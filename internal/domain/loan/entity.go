package loan

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidStatusCode    = errors.New("invalid loan status code")
	ErrAlreadyTerminal      = errors.New("loan is already finalized")
	ErrRenewalNotAllowed    = errors.New("renewals are disabled")
	ErrRenewalLimitExceeded = errors.New("renewal limit exceeded")
	ErrLoanOverdue          = errors.New("loan is past its due time")
	ErrFineAlreadySettled   = errors.New("fine is already settled")
	ErrNoFineToSettle       = errors.New("loan has no fine to settle")
)

// Policy is the snapshot of rule values a loan operation runs under. It is
// assembled from the rule store at the start of each use case so a mid-flight
// rule update never produces a half-old, half-new decision.
type Policy struct {
	MaxBorrowBooks    int
	LoanPeriodDays    int
	RenewalPeriodDays int
	MaxRenewalTimes   int
	AllowRenewals     bool
	FinePerDay        decimal.Decimal
}

// Loan is a single borrow transaction linking a borrower to a copy. Loans
// are never deleted; terminal states carry the fine decided at close time.
type Loan struct {
	id         uuid.UUID
	borrowerID uuid.UUID
	copyID     uuid.UUID
	borrowedAt time.Time
	dueAt      time.Time
	returnedAt *time.Time
	status     Status
	fine       decimal.Decimal
	finePaid   bool
	renewals   int
	createdAt  time.Time
	updatedAt  time.Time
}

// Open starts a loan at now with a due time of now + the policy loan period.
// The caller must already hold the copy claim (see the coordinator ordering
// contract); Open itself is copy-state agnostic.
func Open(borrowerID, copyID uuid.UUID, now time.Time, policy Policy) *Loan {
	return &Loan{
		id:         uuid.New(),
		borrowerID: borrowerID,
		copyID:     copyID,
		borrowedAt: now,
		dueAt:      now.AddDate(0, 0, policy.LoanPeriodDays),
		status:     StatusActive,
		fine:       decimal.Zero,
	}
}

func Reconstruct(
	id, borrowerID, copyID uuid.UUID,
	borrowedAt, dueAt time.Time,
	returnedAt *time.Time,
	status Status,
	fine decimal.Decimal,
	finePaid bool,
	renewals int,
	createdAt, updatedAt time.Time,
) *Loan {
	return &Loan{
		id:         id,
		borrowerID: borrowerID,
		copyID:     copyID,
		borrowedAt: borrowedAt,
		dueAt:      dueAt,
		returnedAt: returnedAt,
		status:     status,
		fine:       fine,
		finePaid:   finePaid,
		renewals:   renewals,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// Finalized reports whether the loan has been closed for good. A loan
// proactively flagged OVERDUE by the fee sweep is not yet finalized: the copy
// is still out and the loan will be closed on its eventual return.
func (l *Loan) Finalized() bool {
	return l.returnedAt != nil
}

// Renew extends the due time by the policy renewal period. The due time
// extends from the current due time, not from now.
func (l *Loan) Renew(now time.Time, policy Policy) error {
	if l.Finalized() {
		return ErrAlreadyTerminal
	}
	if !policy.AllowRenewals {
		return ErrRenewalNotAllowed
	}
	if l.renewals >= policy.MaxRenewalTimes {
		return ErrRenewalLimitExceeded
	}
	if l.status == StatusOverdue || now.After(l.dueAt) {
		return ErrLoanOverdue
	}
	l.dueAt = l.dueAt.AddDate(0, 0, policy.RenewalPeriodDays)
	l.renewals++
	return nil
}

// Close finalizes the loan at now. A late return becomes OVERDUE with a fine
// of whole days late (partial days round up) times the per-day rate; an
// on-time return becomes RETURNED with a zero fine. The fine decided here is
// final: an earlier proactive OVERDUE flag is superseded, never added to.
func (l *Loan) Close(now time.Time, policy Policy) error {
	if l.Finalized() {
		return ErrAlreadyTerminal
	}
	l.returnedAt = &now
	late := DaysLate(l.dueAt, now)
	if late > 0 {
		l.status = StatusOverdue
		l.fine = policy.FinePerDay.Mul(decimal.NewFromInt(late))
	} else {
		l.status = StatusReturned
		l.fine = decimal.Zero
	}
	return nil
}

// FlagOverdue marks a still-out loan OVERDUE with the fine accrued so far.
// Used by the administrative fee sweep; idempotent, and a no-op while the
// loan is within its due time. The returned bool reports whether the loan
// was (or already is) flagged.
func (l *Loan) FlagOverdue(now time.Time, policy Policy) (bool, error) {
	if l.Finalized() {
		return false, ErrAlreadyTerminal
	}
	late := DaysLate(l.dueAt, now)
	if late == 0 {
		return false, nil
	}
	l.status = StatusOverdue
	l.fine = policy.FinePerDay.Mul(decimal.NewFromInt(late))
	return true, nil
}

// DeclareLost finalizes the loan as LOST with a fine of the full replacement
// price. No depreciation is applied.
func (l *Loan) DeclareLost(now time.Time, replacementPrice decimal.Decimal) error {
	if l.Finalized() {
		return ErrAlreadyTerminal
	}
	if replacementPrice.IsNegative() {
		replacementPrice = decimal.Zero
	}
	l.status = StatusLost
	l.fine = replacementPrice
	l.returnedAt = &now
	return nil
}

// SettleFine marks an outstanding fine as paid. Settlement itself (payment
// collection) is an external collaborator concern.
func (l *Loan) SettleFine() error {
	if l.fine.IsZero() {
		return ErrNoFineToSettle
	}
	if l.finePaid {
		return ErrFineAlreadySettled
	}
	l.finePaid = true
	return nil
}

func (l *Loan) IsActive() bool {
	return l.status == StatusActive
}

func (l *Loan) IsPastDue(now time.Time) bool {
	return l.status == StatusActive && now.After(l.dueAt)
}

func (l *Loan) HasUnpaidFine() bool {
	return l.fine.IsPositive() && !l.finePaid
}

// DaysLate counts whole days of overage from due to now, rounding partial
// days up. Never negative.
func DaysLate(due, now time.Time) int64 {
	if !now.After(due) {
		return 0
	}
	elapsed := now.Sub(due)
	days := int64(elapsed / (24 * time.Hour))
	if elapsed%(24*time.Hour) > 0 {
		days++
	}
	return days
}

func (l *Loan) ID() uuid.UUID         { return l.id }
func (l *Loan) BorrowerID() uuid.UUID { return l.borrowerID }
func (l *Loan) CopyID() uuid.UUID     { return l.copyID }
func (l *Loan) BorrowedAt() time.Time { return l.borrowedAt }
func (l *Loan) DueAt() time.Time      { return l.dueAt }
func (l *Loan) ReturnedAt() *time.Time {
	return l.returnedAt
}
func (l *Loan) Status() Status        { return l.status }
func (l *Loan) Fine() decimal.Decimal { return l.fine }
func (l *Loan) FinePaid() bool        { return l.finePaid }
func (l *Loan) Renewals() int         { return l.renewals }
func (l *Loan) CreatedAt() time.Time  { return l.createdAt }
func (l *Loan) UpdatedAt() time.Time  { return l.updatedAt }
