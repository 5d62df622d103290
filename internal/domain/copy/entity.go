package copy

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidStatusCode = errors.New("invalid copy status code")
	ErrNotAvailable      = errors.New("copy is not available")
	ErrNotOnLoan         = errors.New("copy is not on loan")
	ErrWithdrawn         = errors.New("copy is withdrawn from circulation")
	ErrEmptyBarcode      = errors.New("barcode is required")
	ErrInvalidTransition = errors.New("invalid copy status transition")
)

// Copy is one physical, individually trackable instance of a catalog book.
// Status mutations go through the methods below so every legal transition of
// the availability state machine is encoded in one place; the persistence
// layer additionally guards the AVAILABLE -> ON_LOAN edge with a
// compare-and-set so concurrent borrowers cannot both win.
type Copy struct {
	id              uuid.UUID
	bookID          uuid.UUID
	barcode         string
	status          Status
	purchasePrice   decimal.Decimal
	purchasedAt     time.Time
	lastMaintenance *time.Time
	createdAt       time.Time
	updatedAt       time.Time
}

func NewCopy(bookID uuid.UUID, barcode string, purchasePrice decimal.Decimal, purchasedAt time.Time) (*Copy, error) {
	if barcode == "" {
		return nil, ErrEmptyBarcode
	}
	if purchasePrice.IsNegative() {
		return nil, errors.New("purchase price cannot be negative")
	}
	return &Copy{
		id:            uuid.New(),
		bookID:        bookID,
		barcode:       barcode,
		status:        StatusAvailable,
		purchasePrice: purchasePrice,
		purchasedAt:   purchasedAt,
	}, nil
}

func ReconstructCopy(
	id, bookID uuid.UUID,
	barcode string,
	status Status,
	purchasePrice decimal.Decimal,
	purchasedAt time.Time,
	lastMaintenance *time.Time,
	createdAt, updatedAt time.Time,
) *Copy {
	return &Copy{
		id:              id,
		bookID:          bookID,
		barcode:         barcode,
		status:          status,
		purchasePrice:   purchasePrice,
		purchasedAt:     purchasedAt,
		lastMaintenance: lastMaintenance,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// ClaimForLoan transitions AVAILABLE -> ON_LOAN.
func (c *Copy) ClaimForLoan() error {
	switch c.status {
	case StatusAvailable:
		c.status = StatusOnLoan
		return nil
	case StatusWithdrawn:
		return ErrWithdrawn
	default:
		return ErrNotAvailable
	}
}

// Release transitions ON_LOAN -> AVAILABLE.
func (c *Copy) Release() error {
	if c.status != StatusOnLoan {
		return ErrNotOnLoan
	}
	c.status = StatusAvailable
	return nil
}

// MarkLost transitions ON_LOAN -> WITHDRAWN. There is no path back.
func (c *Copy) MarkLost() error {
	if c.status != StatusOnLoan {
		return ErrNotOnLoan
	}
	c.status = StatusWithdrawn
	return nil
}

// SendToMaintenance transitions AVAILABLE -> MAINTENANCE.
func (c *Copy) SendToMaintenance() error {
	if c.status != StatusAvailable {
		return ErrInvalidTransition
	}
	c.status = StatusMaintenance
	return nil
}

// ReturnFromMaintenance transitions MAINTENANCE -> AVAILABLE and stamps the
// maintenance time.
func (c *Copy) ReturnFromMaintenance(now time.Time) error {
	if c.status != StatusMaintenance {
		return ErrInvalidTransition
	}
	c.status = StatusAvailable
	c.lastMaintenance = &now
	return nil
}

func (c *Copy) IsAvailable() bool {
	return c.status == StatusAvailable
}

func (c *Copy) ID() uuid.UUID                  { return c.id }
func (c *Copy) BookID() uuid.UUID              { return c.bookID }
func (c *Copy) Barcode() string                { return c.barcode }
func (c *Copy) Status() Status                 { return c.status }
func (c *Copy) PurchasePrice() decimal.Decimal { return c.purchasePrice }
func (c *Copy) PurchasedAt() time.Time         { return c.purchasedAt }
func (c *Copy) LastMaintenance() *time.Time    { return c.lastMaintenance }
func (c *Copy) CreatedAt() time.Time           { return c.createdAt }
func (c *Copy) UpdatedAt() time.Time           { return c.updatedAt }
