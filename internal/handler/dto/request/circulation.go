package request

import (
	"github.com/google/uuid"
)

type BorrowRequest struct {
	BorrowerID uuid.UUID `json:"borrower_id" binding:"required"`
	CopyID     uuid.UUID `json:"copy_id" binding:"required"`
}

type BorrowBookRequest struct {
	BorrowerID uuid.UUID `json:"borrower_id" binding:"required"`
}

type ReturnRequest struct {
	BorrowerID uuid.UUID `json:"borrower_id" binding:"required"`
	CopyID     uuid.UUID `json:"copy_id" binding:"required"`
}

type RenewRequest struct {
	BorrowerID uuid.UUID `json:"borrower_id" binding:"required"`
	CopyID     uuid.UUID `json:"copy_id" binding:"required"`
}
