package response

import (
	"time"

	"circulation/internal/domain/copy"

	"github.com/google/uuid"
)

type CopyResponse struct {
	ID              uuid.UUID  `json:"id"`
	BookID          uuid.UUID  `json:"bookId"`
	Barcode         string     `json:"barcode"`
	Status          string     `json:"status"`
	PurchasePrice   string     `json:"purchasePrice"`
	PurchasedAt     time.Time  `json:"purchasedAt"`
	LastMaintenance *time.Time `json:"lastMaintenance,omitempty"`
}

func FromCopy(c *copy.Copy) *CopyResponse {
	return &CopyResponse{
		ID:              c.ID(),
		BookID:          c.BookID(),
		Barcode:         c.Barcode(),
		Status:          c.Status().String(),
		PurchasePrice:   c.PurchasePrice().StringFixed(2),
		PurchasedAt:     c.PurchasedAt(),
		LastMaintenance: c.LastMaintenance(),
	}
}
