package api

import (
	"errors"
	"net/http"

	reqdto "circulation/internal/handler/dto/request"
	resdto "circulation/internal/handler/dto/response"
	"circulation/internal/usecase/commands"
	"circulation/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservationHandler struct {
	reservations       commands.ReservationCommands
	reservationQueries queries.ReservationQueries
}

func NewReservationHandler(reservations commands.ReservationCommands, reservationQueries queries.ReservationQueries) *ReservationHandler {
	return &ReservationHandler{
		reservations:       reservations,
		reservationQueries: reservationQueries,
	}
}

// @Summary Create reservation
// @Description Queue the borrower for the next free copy of a fully loaned-out book
// @Tags reservations
// @Accept json
// @Produce json
// @Param request body reqdto.CreateReservationRequest true "Reservation request"
// @Success 201 {object} resdto.ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /reservations [post]
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req reqdto.CreateReservationRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	res, err := h.reservations.Reserve(c.Request.Context(), req.BorrowerID, req.BookID)
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
		case errors.Is(err, commands.ErrCopiesAvailable):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Copies are available, borrow instead of reserving",
			})
		case errors.Is(err, commands.ErrDuplicateReservation):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Borrower already has a waiting reservation for this book",
			})
		case errors.Is(err, commands.ErrBorrowerBlocked):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Borrower has overdue loans and cannot reserve",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromReservation(res))
}

// @Summary Cancel reservation
// @Description Withdraw a waiting reservation from the queue
// @Tags reservations
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param request body reqdto.CancelReservationRequest true "Cancel request"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID format",
		})
		return
	}

	var req reqdto.CancelReservationRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.reservations.Cancel(c.Request.Context(), req.BorrowerID, reservationID); err != nil {
		switch {
		case errors.Is(err, commands.ErrReservationNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Reservation not found",
			})
		case errors.Is(err, commands.ErrNotReservationOwner):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Reservation belongs to another borrower",
			})
		case errors.Is(err, commands.ErrReservationNotActive):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Reservation is no longer waiting",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary List a borrower's reservations
// @Description List waiting and notified reservations with queue positions
// @Tags reservations
// @Produce json
// @Param borrower_id path string true "Borrower ID"
// @Success 200 {array} resdto.ReservationResponse
// @Failure 400 {object} map[string]string
// @Router /borrowers/{borrower_id}/reservations [get]
func (h *ReservationHandler) ListBorrowerReservations(c *gin.Context) {
	borrowerID, err := uuid.Parse(c.Param("borrower_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid borrower ID format",
		})
		return
	}

	views, err := h.reservationQueries.ListActiveByBorrower(c.Request.Context(), borrowerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	response := make([]*resdto.ReservationResponse, len(views))
	for i, v := range views {
		response[i] = resdto.FromReservationView(v)
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Book availability
// @Description Count the claimable copies of a book
// @Tags reservations
// @Produce json
// @Param book_id path string true "Book ID"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 400 {object} map[string]string
// @Router /books/{book_id}/availability [get]
func (h *ReservationHandler) GetAvailability(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("book_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid book ID format",
		})
		return
	}

	view, err := h.reservationQueries.Availability(c.Request.Context(), bookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromAvailabilityView(view))
}
