package readstore

import (
	"context"

	"circulation/internal/infra"

	"github.com/google/uuid"
)

// CatalogReadStore answers existence checks against the catalog and
// borrower tables owned by the surrounding system.
type CatalogReadStore struct {
	db DB
}

func NewCatalogReadStore(db DB) *CatalogReadStore {
	return &CatalogReadStore{db: db}
}

func (r *CatalogReadStore) BookExists(ctx context.Context, bookID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, bookID).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check book existence", err)
	}
	return exists, nil
}

func (r *CatalogReadStore) BorrowerExists(ctx context.Context, borrowerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM borrowers WHERE id = $1)`, borrowerID).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check borrower existence", err)
	}
	return exists, nil
}

// AvailabilityReadStore counts claimable copies per book for the public
// availability query.
type AvailabilityReadStore struct {
	db DB
}

func NewAvailabilityReadStore(db DB) *AvailabilityReadStore {
	return &AvailabilityReadStore{db: db}
}

func (r *AvailabilityReadStore) CountAvailable(ctx context.Context, bookID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM book_copies WHERE book_id = $1 AND status = 'available'`,
		bookID).Scan(&n)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count available copies", err)
	}
	return n, nil
}
