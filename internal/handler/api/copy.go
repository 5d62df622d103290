package api

import (
	"errors"
	"net/http"

	resdto "circulation/internal/handler/dto/response"
	"circulation/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CopyHandler struct {
	copies commands.CopyCommands
}

func NewCopyHandler(copies commands.CopyCommands) *CopyHandler {
	return &CopyHandler{copies: copies}
}

// @Summary Send a copy to maintenance
// @Description Pull an available copy off the shelf for maintenance
// @Tags copies
// @Produce json
// @Param id path string true "Copy ID"
// @Success 200 {object} resdto.CopyResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /copies/{id}/maintenance [post]
func (h *CopyHandler) SendToMaintenance(c *gin.Context) {
	copyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid copy ID format",
		})
		return
	}

	cp, err := h.copies.SendToMaintenance(c.Request.Context(), copyID)
	if err != nil {
		respondCopyError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCopy(cp))
}

// @Summary Return a copy from maintenance
// @Description Put the copy back on the shelf and stamp the maintenance time
// @Tags copies
// @Produce json
// @Param id path string true "Copy ID"
// @Success 200 {object} resdto.CopyResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /copies/{id}/maintenance/complete [post]
func (h *CopyHandler) ReturnFromMaintenance(c *gin.Context) {
	copyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid copy ID format",
		})
		return
	}

	cp, err := h.copies.ReturnFromMaintenance(c.Request.Context(), copyID)
	if err != nil {
		respondCopyError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCopy(cp))
}

func respondCopyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrCopyNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Copy not found",
		})
	case errors.Is(err, commands.ErrInvalidCopyTransition):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Copy cannot make this transition",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
