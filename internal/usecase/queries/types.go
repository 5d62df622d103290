package queries

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Read models (DTO for read side)

type LoanView struct {
	ID         uuid.UUID       `json:"id"`
	BorrowerID uuid.UUID       `json:"borrower_id"`
	CopyID     uuid.UUID       `json:"copy_id"`
	BookID     uuid.UUID       `json:"book_id"`
	Barcode    string          `json:"barcode"`
	BorrowedAt time.Time       `json:"borrowed_at"`
	DueAt      time.Time       `json:"due_at"`
	ReturnedAt *time.Time      `json:"returned_at,omitempty"`
	Status     string          `json:"status"`
	Fine       decimal.Decimal `json:"fine"`
	FinePaid   bool            `json:"fine_paid"`
	Renewals   int32           `json:"renewals"`
	CreatedAt  time.Time       `json:"created_at"`
}

type ReservationView struct {
	ID         uuid.UUID  `json:"id"`
	BorrowerID uuid.UUID  `json:"borrower_id"`
	BookID     uuid.UUID  `json:"book_id"`
	ReservedAt time.Time  `json:"reserved_at"`
	NotifiedAt *time.Time `json:"notified_at,omitempty"`
	Status     string     `json:"status"`
	// Position is the 1-based place in the book's WAITING queue; zero for
	// entries that are no longer waiting.
	Position int32 `json:"position,omitempty"`
}

type RuleView struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Value       string    `json:"value"`
	ValueType   string    `json:"value_type"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AvailabilityView struct {
	BookID          uuid.UUID `json:"book_id"`
	AvailableCopies int64     `json:"available_copies"`
}
