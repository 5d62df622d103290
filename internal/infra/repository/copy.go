package repository

import (
	"context"
	"time"

	"circulation/internal/domain/copy"
	"circulation/internal/infra"

	"github.com/google/uuid"
)

// CopyRepository is the only writer of copy state. The AVAILABLE -> ON_LOAN
// edge is a guarded UPDATE: concurrent claimants race on the WHERE clause
// and exactly one sees a row updated.
type CopyRepository struct {
	db DB
}

func NewCopyRepository(db DB) *CopyRepository {
	return &CopyRepository{db: db}
}

const copyColumns = `id, book_id, barcode, status, purchase_price::text, purchased_at, last_maintenance, created_at, updated_at`

func (r *CopyRepository) FindByID(ctx context.Context, id uuid.UUID) (*copy.Copy, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+copyColumns+` FROM book_copies WHERE id = $1`, id)
	c, err := scanCopy(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, infra.WrapRepoErr("copy not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find copy by id", err)
	}
	return c, nil
}

// ClaimForLoan is the compare-and-set at the heart of borrow: the loser of a
// race observes zero rows updated and has mutated nothing.
func (r *CopyRepository) ClaimForLoan(ctx context.Context, copyID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE book_copies SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`,
		copy.StatusOnLoan.String(), copyID, copy.StatusAvailable.String())
	if err != nil {
		return infra.WrapRepoErr("failed to claim copy for loan", err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyMiss(ctx, copyID, "copy is not available")
	}
	return nil
}

func (r *CopyRepository) Release(ctx context.Context, copyID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE book_copies SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`,
		copy.StatusAvailable.String(), copyID, copy.StatusOnLoan.String())
	if err != nil {
		return infra.WrapRepoErr("failed to release copy", err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyMiss(ctx, copyID, "copy is not on loan")
	}
	return nil
}

func (r *CopyRepository) MarkLost(ctx context.Context, copyID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE book_copies SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`,
		copy.StatusWithdrawn.String(), copyID, copy.StatusOnLoan.String())
	if err != nil {
		return infra.WrapRepoErr("failed to withdraw copy", err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyMiss(ctx, copyID, "copy is not on loan")
	}
	return nil
}

func (r *CopyRepository) FindAnyAvailable(ctx context.Context, bookID uuid.UUID) (*copy.Copy, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+copyColumns+` FROM book_copies
		 WHERE book_id = $1 AND status = $2
		 ORDER BY barcode LIMIT 1`,
		bookID, copy.StatusAvailable.String())
	c, err := scanCopy(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, infra.WrapRepoErr("no available copy", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find available copy", err)
	}
	return c, nil
}

func (r *CopyRepository) CountAvailable(ctx context.Context, bookID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM book_copies WHERE book_id = $1 AND status = $2`,
		bookID, copy.StatusAvailable.String()).Scan(&n)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count available copies", err)
	}
	return n, nil
}

func (r *CopyRepository) Update(ctx context.Context, c *copy.Copy) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE book_copies
		 SET status = $1, last_maintenance = $2, updated_at = now()
		 WHERE id = $3`,
		c.Status().String(), c.LastMaintenance(), c.ID())
	if err != nil {
		return infra.WrapRepoErr("failed to update copy", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("copy not found", nil, infra.KindNotFound)
	}
	return nil
}

// classifyMiss distinguishes a lost race (conflict) from a missing copy.
func (r *CopyRepository) classifyMiss(ctx context.Context, copyID uuid.UUID, msg string) error {
	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM book_copies WHERE id = $1)`, copyID).Scan(&exists); err != nil {
		return infra.WrapRepoErr("failed to check copy existence", err)
	}
	if !exists {
		return infra.WrapRepoErr("copy not found", nil, infra.KindNotFound)
	}
	return infra.WrapRepoErr(msg, nil, infra.KindConflict)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCopy(row rowScanner) (*copy.Copy, error) {
	var (
		id, bookID      uuid.UUID
		barcode, status string
		priceText       string
		purchasedAt     time.Time
		lastMaintenance *time.Time
		createdAt       time.Time
		updatedAt       time.Time
	)
	if err := row.Scan(&id, &bookID, &barcode, &status, &priceText,
		&purchasedAt, &lastMaintenance, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	st, err := copy.StatusFromCode(status)
	if err != nil {
		return nil, err
	}
	price, err := parseDecimal(priceText)
	if err != nil {
		return nil, err
	}
	return copy.ReconstructCopy(id, bookID, barcode, st, price, purchasedAt, lastMaintenance, createdAt, updatedAt), nil
}
