package response

import (
	"time"

	"circulation/internal/domain/reservation"
	"circulation/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReservationResponse struct {
	ID         uuid.UUID  `json:"id"`
	BorrowerID uuid.UUID  `json:"borrowerId"`
	BookID     uuid.UUID  `json:"bookId"`
	ReservedAt time.Time  `json:"reservedAt"`
	NotifiedAt *time.Time `json:"notifiedAt,omitempty"`
	Status     string     `json:"status"`
	Position   int32      `json:"position,omitempty"`
}

type AvailabilityResponse struct {
	BookID          uuid.UUID `json:"bookId"`
	AvailableCopies int64     `json:"availableCopies"`
}

func FromReservation(r *reservation.Reservation) *ReservationResponse {
	return &ReservationResponse{
		ID:         r.ID(),
		BorrowerID: r.BorrowerID(),
		BookID:     r.BookID(),
		ReservedAt: r.ReservedAt(),
		NotifiedAt: r.NotifiedAt(),
		Status:     r.Status().String(),
	}
}

func FromReservationView(rm *queries.ReservationView) *ReservationResponse {
	return &ReservationResponse{
		ID:         rm.ID,
		BorrowerID: rm.BorrowerID,
		BookID:     rm.BookID,
		ReservedAt: rm.ReservedAt,
		NotifiedAt: rm.NotifiedAt,
		Status:     rm.Status,
		Position:   rm.Position,
	}
}

func FromAvailabilityView(rm *queries.AvailabilityView) *AvailabilityResponse {
	return &AvailabilityResponse{
		BookID:          rm.BookID,
		AvailableCopies: rm.AvailableCopies,
	}
}
