package response

import (
	"time"

	"circulation/internal/domain/loan"
	"circulation/internal/usecase/queries"

	"github.com/google/uuid"
)

type LoanResponse struct {
	ID         uuid.UUID  `json:"id"`
	BorrowerID uuid.UUID  `json:"borrowerId"`
	CopyID     uuid.UUID  `json:"copyId"`
	BorrowedAt time.Time  `json:"borrowedAt"`
	DueAt      time.Time  `json:"dueAt"`
	ReturnedAt *time.Time `json:"returnedAt,omitempty"`
	Status     string     `json:"status"`
	Fine       string     `json:"fine"`
	FinePaid   bool       `json:"finePaid"`
	Renewals   int        `json:"renewals"`
}

type LoanListResponse struct {
	ID         uuid.UUID  `json:"id"`
	BorrowerID uuid.UUID  `json:"borrowerId"`
	CopyID     uuid.UUID  `json:"copyId"`
	BookID     uuid.UUID  `json:"bookId"`
	Barcode    string     `json:"barcode"`
	BorrowedAt time.Time  `json:"borrowedAt"`
	DueAt      time.Time  `json:"dueAt"`
	ReturnedAt *time.Time `json:"returnedAt,omitempty"`
	Status     string     `json:"status"`
	Fine       string     `json:"fine"`
	FinePaid   bool       `json:"finePaid"`
	Renewals   int32      `json:"renewals"`
}

func FromLoan(l *loan.Loan) *LoanResponse {
	return &LoanResponse{
		ID:         l.ID(),
		BorrowerID: l.BorrowerID(),
		CopyID:     l.CopyID(),
		BorrowedAt: l.BorrowedAt(),
		DueAt:      l.DueAt(),
		ReturnedAt: l.ReturnedAt(),
		Status:     l.Status().String(),
		Fine:       l.Fine().StringFixed(2),
		FinePaid:   l.FinePaid(),
		Renewals:   l.Renewals(),
	}
}

func FromLoanView(rm *queries.LoanView) *LoanListResponse {
	return &LoanListResponse{
		ID:         rm.ID,
		BorrowerID: rm.BorrowerID,
		CopyID:     rm.CopyID,
		BookID:     rm.BookID,
		Barcode:    rm.Barcode,
		BorrowedAt: rm.BorrowedAt,
		DueAt:      rm.DueAt,
		ReturnedAt: rm.ReturnedAt,
		Status:     rm.Status,
		Fine:       rm.Fine.StringFixed(2),
		FinePaid:   rm.FinePaid,
		Renewals:   rm.Renewals,
	}
}
