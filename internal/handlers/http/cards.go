package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"card-clicker/internal/models"

	"github.com/gin-gonic/gin"
)

// click treats an empty body as a single click
func (h *Handlers) click(c *gin.Context) {
	req := models.ClickRequest{Clicks: 1}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "clicks must be between 1 and 1000")
			return
		}
	}

	res, err := h.useCases.Click(c.Request.Context(), c.Param("id"), max(req.Clicks, 1))
	if err != nil && !errors.Is(err, models.ErrCatalogLookup) {
		respondError(c, "click", err)
		return
	}
	if err != nil {
		slog.Warn("click granted no card", "player", c.Param("id"), "error", err)
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) upgrade(c *gin.Context) {
	res, err := h.useCases.Upgrade(c.Request.Context(), c.Param("id"), c.Param("instanceId"))
	if err != nil {
		respondError(c, "upgrade", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) disenchant(c *gin.Context) {
	res, err := h.useCases.Disenchant(c.Request.Context(), c.Param("id"), c.Param("instanceId"))
	if err != nil {
		respondError(c, "disenchant", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) clearUnseen(c *gin.Context) {
	cleared, err := h.useCases.ClearUnseen(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "clear unseen", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": cleared})
}
