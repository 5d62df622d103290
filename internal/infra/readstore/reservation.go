package readstore

import (
	"context"

	"circulation/internal/infra"
	"circulation/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReservationReadStore struct {
	db DB
}

func NewReservationReadStore(db DB) *ReservationReadStore {
	return &ReservationReadStore{db: db}
}

// FindActiveByBorrower lists the borrower's WAITING and NOTIFIED entries.
// Position counts the WAITING entries at or ahead of this one in the book's
// queue, so the head reads 1; non-waiting entries carry position 0.
func (r *ReservationReadStore) FindActiveByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*queries.ReservationView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.id, r.borrower_id, r.book_id, r.reserved_at, r.notified_at, r.status,
		       CASE WHEN r.status = 'waiting' THEN (
		           SELECT count(*) FROM reservations w
		           WHERE w.book_id = r.book_id AND w.status = 'waiting'
		             AND (w.reserved_at, w.id) <= (r.reserved_at, r.id)
		       ) ELSE 0 END AS position
		FROM reservations r
		WHERE r.borrower_id = $1 AND r.status IN ('waiting', 'notified')
		ORDER BY r.reserved_at ASC, r.id ASC`, borrowerID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find active reservations", err)
	}
	defer rows.Close()

	var result []*queries.ReservationView
	for rows.Next() {
		var v queries.ReservationView
		if err := rows.Scan(&v.ID, &v.BorrowerID, &v.BookID, &v.ReservedAt,
			&v.NotifiedAt, &v.Status, &v.Position); err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation view", err)
		}
		result = append(result, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate reservation views", err)
	}
	return result, nil
}
