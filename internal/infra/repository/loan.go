package repository

import (
	"context"
	"time"

	"circulation/internal/domain/loan"
	"circulation/internal/infra"

	"github.com/google/uuid"
)

type LoanRepository struct {
	db DB
}

func NewLoanRepository(db DB) *LoanRepository {
	return &LoanRepository{db: db}
}

const loanColumns = `id, borrower_id, copy_id, borrowed_at, due_at, returned_at, status, fine::text, fine_paid, renewals, created_at, updated_at`

func (r *LoanRepository) Create(ctx context.Context, l *loan.Loan) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO loans (id, borrower_id, copy_id, borrowed_at, due_at, returned_at, status, fine, fine_paid, renewals)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, $10)`,
		l.ID(), l.BorrowerID(), l.CopyID(), l.BorrowedAt(), l.DueAt(), l.ReturnedAt(),
		l.Status().String(), l.Fine().String(), l.FinePaid(), l.Renewals())
	if err != nil {
		if IsUniqueViolation(err) {
			// The partial unique index on open loans per copy caught a
			// second holder.
			return infra.WrapRepoErr("copy already has an open loan", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create loan", err)
	}
	return nil
}

func (r *LoanRepository) Update(ctx context.Context, l *loan.Loan) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE loans
		 SET due_at = $1, returned_at = $2, status = $3, fine = $4::numeric,
		     fine_paid = $5, renewals = $6, updated_at = now()
		 WHERE id = $7`,
		l.DueAt(), l.ReturnedAt(), l.Status().String(), l.Fine().String(),
		l.FinePaid(), l.Renewals(), l.ID())
	if err != nil {
		return infra.WrapRepoErr("failed to update loan", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("loan not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *LoanRepository) FindByID(ctx context.Context, id uuid.UUID) (*loan.Loan, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
	l, err := scanLoan(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, infra.WrapRepoErr("loan not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find loan by id", err)
	}
	return l, nil
}

// FindActiveByBorrowerAndCopy matches the borrower's open loan for the copy;
// a loan proactively flagged OVERDUE is still open until returned.
func (r *LoanRepository) FindActiveByBorrowerAndCopy(ctx context.Context, borrowerID, copyID uuid.UUID) (*loan.Loan, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+loanColumns+` FROM loans
		 WHERE borrower_id = $1 AND copy_id = $2 AND returned_at IS NULL`,
		borrowerID, copyID)
	l, err := scanLoan(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, infra.WrapRepoErr("no open loan for copy", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find open loan", err)
	}
	return l, nil
}

func (r *LoanRepository) CountActiveByBorrower(ctx context.Context, borrowerID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM loans WHERE borrower_id = $1 AND returned_at IS NULL`,
		borrowerID).Scan(&n)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count open loans", err)
	}
	return n, nil
}

func (r *LoanRepository) ExistsActiveByBorrowerAndBook(ctx context.Context, borrowerID, bookID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM loans l
			JOIN book_copies c ON c.id = l.copy_id
			WHERE l.borrower_id = $1 AND c.book_id = $2 AND l.returned_at IS NULL
		)`, borrowerID, bookID).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check open loan for book", err)
	}
	return exists, nil
}

// ExistsOverdueByBorrower reports whether the borrower has a still-out loan
// flagged overdue. Returned-late loans do not count: the block lifts once the
// book is back, even with the fine unpaid.
func (r *LoanRepository) ExistsOverdueByBorrower(ctx context.Context, borrowerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM loans
			WHERE borrower_id = $1 AND status = $2 AND returned_at IS NULL
		)`, borrowerID, loan.StatusOverdue.String()).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check overdue loans", err)
	}
	return exists, nil
}

func scanLoan(row rowScanner) (*loan.Loan, error) {
	var (
		id, borrowerID, copyID uuid.UUID
		borrowedAt, dueAt      time.Time
		returnedAt             *time.Time
		status, fineText       string
		finePaid               bool
		renewals               int32
		createdAt, updatedAt   time.Time
	)
	if err := row.Scan(&id, &borrowerID, &copyID, &borrowedAt, &dueAt, &returnedAt,
		&status, &fineText, &finePaid, &renewals, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	st, err := loan.StatusFromCode(status)
	if err != nil {
		return nil, err
	}
	fine, err := parseDecimal(fineText)
	if err != nil {
		return nil, err
	}
	return loan.Reconstruct(id, borrowerID, copyID, borrowedAt, dueAt, returnedAt,
		st, fine, finePaid, int(renewals), createdAt, updatedAt), nil
}
