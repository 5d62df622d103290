package readstore

import (
	"context"
	"time"

	"circulation/internal/infra"
	"circulation/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type LoanReadStore struct {
	db DB
}

func NewLoanReadStore(db DB) *LoanReadStore {
	return &LoanReadStore{db: db}
}

const loanViewQuery = `
	SELECT l.id, l.borrower_id, l.copy_id, c.book_id, c.barcode,
	       l.borrowed_at, l.due_at, l.returned_at, l.status,
	       l.fine::text, l.fine_paid, l.renewals, l.created_at
	FROM loans l
	JOIN book_copies c ON c.id = l.copy_id`

func (r *LoanReadStore) FindActiveByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*queries.LoanView, error) {
	rows, err := r.db.Query(ctx, loanViewQuery+`
		WHERE l.borrower_id = $1 AND l.returned_at IS NULL
		ORDER BY l.due_at ASC`, borrowerID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find active loans", err)
	}
	return collectLoanViews(rows)
}

func (r *LoanReadStore) FindPastDue(ctx context.Context, now time.Time) ([]*queries.LoanView, error) {
	rows, err := r.db.Query(ctx, loanViewQuery+`
		WHERE l.returned_at IS NULL AND l.due_at < $1
		ORDER BY l.due_at ASC`, now)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find past-due loans", err)
	}
	return collectLoanViews(rows)
}

func (r *LoanReadStore) FindUnpaidFinesByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*queries.LoanView, error) {
	rows, err := r.db.Query(ctx, loanViewQuery+`
		WHERE l.borrower_id = $1 AND l.fine > 0 AND NOT l.fine_paid
		ORDER BY l.created_at ASC`, borrowerID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find unpaid fines", err)
	}
	return collectLoanViews(rows)
}

func collectLoanViews(rows pgx.Rows) ([]*queries.LoanView, error) {
	defer rows.Close()

	var result []*queries.LoanView
	for rows.Next() {
		var (
			v    queries.LoanView
			fine string
		)
		if err := rows.Scan(&v.ID, &v.BorrowerID, &v.CopyID, &v.BookID, &v.Barcode,
			&v.BorrowedAt, &v.DueAt, &v.ReturnedAt, &v.Status,
			&fine, &v.FinePaid, &v.Renewals, &v.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan loan view", err)
		}
		d, err := decimal.NewFromString(fine)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to parse fine amount", err)
		}
		v.Fine = d
		result = append(result, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate loan views", err)
	}
	return result, nil
}
