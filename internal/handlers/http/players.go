package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"card-clicker/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:   "OK",
		Backend:  h.backend,
		Sessions: h.useCases.Sessions(),
	})
}

func (h *Handlers) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.CustomID) == "" {
		badRequest(c, "customId is required")
		return
	}

	res, err := h.useCases.Login(c.Request.Context(), req.CustomID)
	if err != nil {
		respondError(c, "login", err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}

func (h *Handlers) getPlayer(c *gin.Context) {
	view, err := h.useCases.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "snapshot", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handlers) save(c *gin.Context) {
	player, err := h.useCases.Save(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "save", err)
		return
	}
	c.JSON(http.StatusOK, player)
}

func (h *Handlers) setAutoClick(c *gin.Context) {
	var req models.AutoClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "enabled is required")
		return
	}

	if err := h.useCases.SetAutoClick(c.Request.Context(), c.Param("id"), *req.Enabled); err != nil {
		respondError(c, "auto click", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": *req.Enabled})
}

func (h *Handlers) closeSession(c *gin.Context) {
	if err := h.useCases.CloseSession(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "close session", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) getLeaderboard(c *gin.Context) {
	n := h.leaderboardSize
	if raw := c.Query("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			badRequest(c, "n must be a positive integer")
			return
		}
		n = parsed
	}

	entries, err := h.useCases.Leaderboard(c.Request.Context(), n)
	if err != nil {
		respondError(c, "leaderboard", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
