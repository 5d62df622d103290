package api

import (
	"errors"
	"net/http"
	"time"

	reqdto "circulation/internal/handler/dto/request"
	resdto "circulation/internal/handler/dto/response"
	"circulation/internal/usecase/commands"
	"circulation/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CirculationHandler struct {
	circulation commands.CirculationCommands
	loanQueries queries.LoanQueries
}

func NewCirculationHandler(circulation commands.CirculationCommands, loanQueries queries.LoanQueries) *CirculationHandler {
	return &CirculationHandler{
		circulation: circulation,
		loanQueries: loanQueries,
	}
}

// @Summary Borrow a copy
// @Description Claim an available copy and open a loan for the borrower
// @Tags loans
// @Accept json
// @Produce json
// @Param request body reqdto.BorrowRequest true "Borrow request"
// @Success 201 {object} resdto.LoanResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /loans [post]
func (h *CirculationHandler) Borrow(c *gin.Context) {
	var req reqdto.BorrowRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	l, err := h.circulation.Borrow(c.Request.Context(), req.BorrowerID, req.CopyID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrBorrowerNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Borrower not found",
			})
		case errors.Is(err, commands.ErrCopyNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Copy not found",
			})
		case errors.Is(err, commands.ErrCopyNotAvailable):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Copy is not available",
			})
		case errors.Is(err, commands.ErrAlreadyBorrowed):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Borrower already has this book on loan",
			})
		case errors.Is(err, commands.ErrBorrowLimitExceeded):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Borrow limit exceeded",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromLoan(l))
}

// @Summary Borrow any available copy of a book
// @Description Claim whichever copy of the book is on the shelf; used by notified borrowers claiming their hold
// @Tags loans
// @Accept json
// @Produce json
// @Param book_id path string true "Book ID"
// @Param request body reqdto.BorrowBookRequest true "Borrow request"
// @Success 201 {object} resdto.LoanResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /books/{book_id}/borrow [post]
func (h *CirculationHandler) BorrowBook(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("book_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid book ID format",
		})
		return
	}

	var req reqdto.BorrowBookRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	l, err := h.circulation.BorrowNextAvailable(c.Request.Context(), req.BorrowerID, bookID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrBorrowerNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Borrower not found",
			})
		case errors.Is(err, commands.ErrBookNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Book not found",
			})
		case errors.Is(err, commands.ErrCopyNotAvailable):
			c.JSON(http.StatusConflict, gin.H{
				"error": "No copy of this book is available",
			})
		case errors.Is(err, commands.ErrAlreadyBorrowed):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Borrower already has this book on loan",
			})
		case errors.Is(err, commands.ErrBorrowLimitExceeded):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Borrow limit exceeded",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromLoan(l))
}

// @Summary Return a copy
// @Description Close the loan, free the copy and promote the reservation queue
// @Tags loans
// @Accept json
// @Produce json
// @Param request body reqdto.ReturnRequest true "Return request"
// @Success 200 {object} resdto.LoanResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /loans/return [post]
func (h *CirculationHandler) Return(c *gin.Context) {
	var req reqdto.ReturnRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	l, err := h.circulation.Return(c.Request.Context(), req.BorrowerID, req.CopyID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrNoActiveLoan):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "No active loan for this copy",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromLoan(l))
}

// @Summary Renew a loan
// @Description Extend the due time of an active loan
// @Tags loans
// @Accept json
// @Produce json
// @Param request body reqdto.RenewRequest true "Renew request"
// @Success 200 {object} resdto.LoanResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /loans/renew [post]
func (h *CirculationHandler) Renew(c *gin.Context) {
	var req reqdto.RenewRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	l, err := h.circulation.Renew(c.Request.Context(), req.BorrowerID, req.CopyID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrNoActiveLoan):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "No active loan for this copy",
			})
		case errors.Is(err, commands.ErrReservationPending):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Book has pending reservations",
			})
		case errors.Is(err, commands.ErrRenewalNotAllowed):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Renewals are disabled",
			})
		case errors.Is(err, commands.ErrRenewalLimitExceeded):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Renewal limit exceeded",
			})
		case errors.Is(err, commands.ErrLoanOverdue):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Loan is overdue and cannot be renewed",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromLoan(l))
}

// @Summary List a borrower's active loans
// @Description List loans that are still out for the borrower
// @Tags loans
// @Produce json
// @Param borrower_id path string true "Borrower ID"
// @Success 200 {array} resdto.LoanListResponse
// @Failure 400 {object} map[string]string
// @Router /borrowers/{borrower_id}/loans [get]
func (h *CirculationHandler) ListActiveLoans(c *gin.Context) {
	borrowerID, err := uuid.Parse(c.Param("borrower_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid borrower ID format",
		})
		return
	}

	views, err := h.loanQueries.ListActiveByBorrower(c.Request.Context(), borrowerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, toLoanListResponse(views))
}

// @Summary List overdue loans
// @Description List every loan still out past its due time
// @Tags loans
// @Produce json
// @Success 200 {array} resdto.LoanListResponse
// @Router /loans/overdue [get]
func (h *CirculationHandler) ListOverdueLoans(c *gin.Context) {
	views, err := h.loanQueries.ListOverdue(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, toLoanListResponse(views))
}

// @Summary List a borrower's unpaid fines
// @Description List loans with an outstanding unpaid fine
// @Tags loans
// @Produce json
// @Param borrower_id path string true "Borrower ID"
// @Success 200 {array} resdto.LoanListResponse
// @Failure 400 {object} map[string]string
// @Router /borrowers/{borrower_id}/fines [get]
func (h *CirculationHandler) ListUnpaidFines(c *gin.Context) {
	borrowerID, err := uuid.Parse(c.Param("borrower_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid borrower ID format",
		})
		return
	}

	views, err := h.loanQueries.ListUnpaidFines(c.Request.Context(), borrowerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, toLoanListResponse(views))
}

func toLoanListResponse(views []*queries.LoanView) []*resdto.LoanListResponse {
	response := make([]*resdto.LoanListResponse, len(views))
	for i, v := range views {
		response[i] = resdto.FromLoanView(v)
	}
	return response
}
