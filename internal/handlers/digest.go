package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"summymail/internal/email"
	"summymail/internal/models"
	"summymail/internal/session"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// DigestSender mails the latest analysis to a recipient
type DigestSender interface {
	SendDigest(ctx context.Context, recipient string, snap session.Snapshot) error
}

// DigestHandler mails the most recent analysis and its checklist
// @Summary Mail the latest analysis
// @Tags analysis
// @Accept json
// @Produce json
// @Param request body models.DigestRequest true "Digest recipient"
// @Success 200 {object} models.DigestResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /api/digest [post]
func DigestHandler(sender DigestSender, sess *session.Session, logger zerolog.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.DigestRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Title: "Invalid Request",
				Error: fmt.Sprintf("Invalid request body: %v", err),
			})
		}

		err := sender.SendDigest(c.Request().Context(), req.Recipient, sess.Snapshot())
		switch {
		case err == nil:
		case errors.Is(err, email.ErrNotConfigured):
			return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Title: "Not Configured", Error: err.Error()})
		case errors.Is(err, session.ErrNotReady):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Title: "Not Ready", Error: err.Error()})
		case errors.Is(err, email.ErrInvalidRecipient):
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Title: "Invalid Request", Error: err.Error()})
		default:
			logger.Error().Err(err).Msg("Digest delivery failed")
			return c.JSON(http.StatusBadGateway, models.ErrorResponse{Title: "Error", Error: err.Error()})
		}

		logger.Info().Msg("Digest sent")
		return c.JSON(http.StatusOK, models.DigestResponse{
			Success: true,
			Message: "Digest sent successfully",
		})
	}
}
