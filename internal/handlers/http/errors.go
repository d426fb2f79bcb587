package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"card-clicker/internal/models"

	"github.com/gin-gonic/gin"
)

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, models.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, "insufficient_funds"
	case errors.Is(err, models.ErrCardInDeck):
		return http.StatusConflict, "card_in_deck"
	case errors.Is(err, models.ErrAlreadyInDeck):
		return http.StatusConflict, "already_in_deck"
	case errors.Is(err, models.ErrAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, models.ErrInvalidSlot):
		return http.StatusBadRequest, "invalid_slot"
	case errors.Is(err, models.ErrCollaboratorUnavailable):
		return http.StatusServiceUnavailable, "collaborator_unavailable"
	case errors.Is(err, models.ErrSessionClosed):
		return http.StatusServiceUnavailable, "session_closed"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func respondError(c *gin.Context, op string, err error) {
	status, kind := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error(op+" failed", "player", c.Param("id"), "error", err)
	}
	c.JSON(status, models.ErrorResponse{Type: kind, Message: err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Type: "bad_request", Message: msg})
}
