package request

import (
	"github.com/google/uuid"
)

type CreateReservationRequest struct {
	BorrowerID uuid.UUID `json:"borrower_id" binding:"required"`
	BookID     uuid.UUID `json:"book_id" binding:"required"`
}

type CancelReservationRequest struct {
	BorrowerID uuid.UUID `json:"borrower_id" binding:"required"`
}
