package api

import (
	"errors"
	"net/http"

	resdto "circulation/internal/handler/dto/response"
	"circulation/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FeeHandler struct {
	fees commands.FeeCommands
}

func NewFeeHandler(fees commands.FeeCommands) *FeeHandler {
	return &FeeHandler{fees: fees}
}

// @Summary Flag a loan overdue
// @Description Mark a past-due loan OVERDUE with the fine accrued so far
// @Tags fees
// @Produce json
// @Param id path string true "Loan ID"
// @Success 200 {object} resdto.LoanResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /loans/{id}/overdue-fine [post]
func (h *FeeHandler) CalculateOverdueFine(c *gin.Context) {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid loan ID format",
		})
		return
	}

	l, err := h.fees.CalculateOverdueFine(c.Request.Context(), loanID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrLoanNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Loan not found",
			})
		case errors.Is(err, commands.ErrAlreadyTerminal):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Loan is already finalized",
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

// @Summary Declare a loaned copy lost
// @Description Finalize the loan as LOST, charge the replacement price and withdraw the copy
// @Tags fees
// @Produce json
// @Param id path string true "Loan ID"
// @Success 200 {object} resdto.LoanResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /loans/{id}/loss-compensation [post]
func (h *FeeHandler) CalculateLossCompensation(c *gin.Context) {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid loan ID format",
		})
		return
	}

	l, err := h.fees.CalculateLossCompensation(c.Request.Context(), loanID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrLoanNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Loan not found",
			})
		case errors.Is(err, commands.ErrAlreadyTerminal):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Loan is already finalized",
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

// @Summary Settle a fine
// @Description Mark a loan's outstanding fine as paid
// @Tags fees
// @Produce json
// @Param id path string true "Loan ID"
// @Success 200 {object} resdto.LoanResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /loans/{id}/settle-fine [post]
func (h *FeeHandler) SettleFine(c *gin.Context) {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid loan ID format",
		})
		return
	}

	l, err := h.fees.SettleFine(c.Request.Context(), loanID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrLoanNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Loan not found",
			})
		case errors.Is(err, commands.ErrNoOutstandingFine):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Loan has no outstanding fine",
			})
		case errors.Is(err, commands.ErrFineAlreadySettled):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Fine has already been settled",
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
