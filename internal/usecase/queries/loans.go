package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type LoanQueries interface {
	ListActiveByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*LoanView, error)
	// ListOverdue returns loans still out past their due time at now, for
	// the administrative sweep.
	ListOverdue(ctx context.Context, now time.Time) ([]*LoanView, error)
	ListUnpaidFines(ctx context.Context, borrowerID uuid.UUID) ([]*LoanView, error)
}

type LoanViewRepo interface {
	FindActiveByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*LoanView, error)
	FindPastDue(ctx context.Context, now time.Time) ([]*LoanView, error)
	FindUnpaidFinesByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*LoanView, error)
}

type loanQueriesImpl struct {
	repo LoanViewRepo
}

func NewLoanQueries(repo LoanViewRepo) LoanQueries {
	return &loanQueriesImpl{repo: repo}
}

func (q *loanQueriesImpl) ListActiveByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*LoanView, error) {
	return q.repo.FindActiveByBorrower(ctx, borrowerID)
}

func (q *loanQueriesImpl) ListOverdue(ctx context.Context, now time.Time) ([]*LoanView, error) {
	return q.repo.FindPastDue(ctx, now)
}

func (q *loanQueriesImpl) ListUnpaidFines(ctx context.Context, borrowerID uuid.UUID) ([]*LoanView, error) {
	return q.repo.FindUnpaidFinesByBorrower(ctx, borrowerID)
}
