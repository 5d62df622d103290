package repository

import (
	"context"
	"time"

	"circulation/internal/domain/reservation"
	"circulation/internal/infra"

	"github.com/google/uuid"
)

type ReservationRepository struct {
	db DB
}

func NewReservationRepository(db DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationColumns = `id, borrower_id, book_id, reserved_at, notified_at, status, created_at, updated_at`

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO reservations (id, borrower_id, book_id, reserved_at, notified_at, status)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		res.ID(), res.BorrowerID(), res.BookID(), res.ReservedAt(), res.NotifiedAt(), res.Status().String())
	if err != nil {
		if IsUniqueViolation(err) {
			return infra.WrapRepoErr("borrower already waiting for this book", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create reservation", err)
	}
	return nil
}

func (r *ReservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE reservations
		 SET notified_at = $1, status = $2, updated_at = now()
		 WHERE id = $3`,
		res.NotifiedAt(), res.Status().String(), res.ID())
	if err != nil {
		return infra.WrapRepoErr("failed to update reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
	res, err := scanReservation(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation by id", err)
	}
	return res, nil
}

func (r *ReservationRepository) ExistsWaiting(ctx context.Context, borrowerID, bookID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE borrower_id = $1 AND book_id = $2 AND status = $3
		)`, borrowerID, bookID, reservation.StatusWaiting.String()).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check waiting reservation", err)
	}
	return exists, nil
}

func (r *ReservationRepository) HasActiveForBook(ctx context.Context, bookID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE book_id = $1 AND status IN ($2, $3)
		)`, bookID, reservation.StatusWaiting.String(), reservation.StatusNotified.String()).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check active reservations", err)
	}
	return exists, nil
}

// OldestWaiting returns the FIFO head of the book's queue: reservation time
// ascending, id ascending on ties. Row-locked so a concurrent promotion of
// the same book blocks behind this transaction.
func (r *ReservationRepository) OldestWaiting(ctx context.Context, bookID uuid.UUID) (*reservation.Reservation, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations
		 WHERE book_id = $1 AND status = $2
		 ORDER BY reserved_at ASC, id ASC
		 LIMIT 1
		 FOR UPDATE`,
		bookID, reservation.StatusWaiting.String())
	res, err := scanReservation(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to select queue head", err)
	}
	return res, nil
}

func (r *ReservationRepository) ListNotifiedForBook(ctx context.Context, bookID uuid.UUID) ([]*reservation.Reservation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+reservationColumns+` FROM reservations
		 WHERE book_id = $1 AND status = $2
		 ORDER BY notified_at ASC
		 FOR UPDATE`,
		bookID, reservation.StatusNotified.String())
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list notified reservations", err)
	}
	defer rows.Close()

	var result []*reservation.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation", err)
		}
		result = append(result, res)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate reservations", err)
	}
	return result, nil
}

func (r *ReservationRepository) FindNotifiedByBorrowerAndBook(ctx context.Context, borrowerID, bookID uuid.UUID) (*reservation.Reservation, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations
		 WHERE borrower_id = $1 AND book_id = $2 AND status = $3
		 ORDER BY notified_at ASC
		 LIMIT 1`,
		borrowerID, bookID, reservation.StatusNotified.String())
	res, err := scanReservation(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, infra.WrapRepoErr("no notified reservation", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find notified reservation", err)
	}
	return res, nil
}

// LockBookQueue serializes queue processing per book for the duration of the
// transaction. The advisory lock is released automatically at commit or
// rollback.
func (r *ReservationRepository) LockBookQueue(ctx context.Context, bookID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, bookID)
	if err != nil {
		return infra.WrapRepoErr("failed to lock book queue", err)
	}
	return nil
}

func scanReservation(row rowScanner) (*reservation.Reservation, error) {
	var (
		id, borrowerID, bookID uuid.UUID
		reservedAt             time.Time
		notifiedAt             *time.Time
		status                 string
		createdAt, updatedAt   time.Time
	)
	if err := row.Scan(&id, &borrowerID, &bookID, &reservedAt, &notifiedAt,
		&status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	st, err := reservation.StatusFromCode(status)
	if err != nil {
		return nil, err
	}
	return reservation.Reconstruct(id, borrowerID, bookID, reservedAt, notifiedAt, st, createdAt, updatedAt), nil
}
