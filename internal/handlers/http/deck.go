package handlers

import (
	"net/http"
	"strconv"

	"card-clicker/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) getDeck(c *gin.Context) {
	deck, err := h.useCases.Deck(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "deck", err)
		return
	}
	c.JSON(http.StatusOK, deck)
}

func (h *Handlers) swapSlot(c *gin.Context) {
	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil {
		respondError(c, "swap slot", models.ErrInvalidSlot)
		return
	}

	var req models.SwapSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "instanceId is required")
		return
	}

	deck, err := h.useCases.SwapDeckSlot(c.Request.Context(), c.Param("id"), slot, req.InstanceID)
	if err != nil {
		respondError(c, "swap slot", err)
		return
	}
	c.JSON(http.StatusOK, deck)
}

func (h *Handlers) resetDeck(c *gin.Context) {
	deck, err := h.useCases.ResetDeckToAuto(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "reset deck", err)
		return
	}
	c.JSON(http.StatusOK, deck)
}
