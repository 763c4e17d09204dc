package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"summymail/internal/analysis"
	"summymail/internal/models"
	"summymail/internal/session"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// errAnalysisAborted is recorded when the handler unwinds without a result
var errAnalysisAborted = errors.New("analysis aborted unexpectedly")

// ThreadAnalyzer sends an email thread to the model and returns its reply
type ThreadAnalyzer interface {
	Analyze(ctx context.Context, threadText string) (string, error)
}

// AnalyzeHandler runs a pasted thread through the model
// @Summary Analyze an email thread
// @Description Summarize the thread and extract action items and participants
// @Tags analysis
// @Accept json
// @Produce json
// @Param request body models.AnalyzeRequest true "Email thread"
// @Success 200 {object} session.Snapshot
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/analyze [post]
func AnalyzeHandler(analyzer ThreadAnalyzer, sess *session.Session, logger zerolog.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.AnalyzeRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Title: "Invalid Request",
				Error: fmt.Sprintf("Invalid request body: %v", err),
			})
		}

		if strings.TrimSpace(req.Thread) == "" {
			return c.JSON(http.StatusBadRequest, inputRequired())
		}

		if err := sess.Begin(); err != nil {
			return c.JSON(http.StatusConflict, models.ErrorResponse{
				Title: "Busy",
				Error: "An email thread is already being processed.",
			})
		}

		settled := false
		defer func() {
			// a panic must not leave the session stuck in flight
			if !settled {
				sess.Fail(errAnalysisAborted)
			}
		}()

		reply, err := analyzer.Analyze(c.Request().Context(), req.Thread)
		settled = true
		if err != nil {
			sess.Fail(err)
			if errors.Is(err, analysis.ErrEmptyThread) {
				return c.JSON(http.StatusBadRequest, inputRequired())
			}

			logger.Error().Err(err).Msg("Email thread analysis failed")
			return c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Title: "Error",
				Error: fmt.Sprintf("An error occurred: %v", err),
			})
		}

		snap := sess.Complete(reply)
		logger.Info().Int("action_items", len(snap.ActionItems)).Msg("Email thread processed")

		return c.JSON(http.StatusOK, snap)
	}
}

// StateHandler returns the current request lifecycle snapshot
// @Summary Current analysis state
// @Tags analysis
// @Produce json
// @Success 200 {object} session.Snapshot
// @Router /api/state [get]
func StateHandler(sess *session.Session) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, sess.Snapshot())
	}
}

// ToggleActionItemHandler checks or unchecks a checklist entry
// @Summary Toggle an action item
// @Tags analysis
// @Produce json
// @Param index path int true "Zero-based action item index"
// @Success 200 {object} session.Snapshot
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/action-items/{index}/toggle [post]
func ToggleActionItemHandler(sess *session.Session) echo.HandlerFunc {
	return func(c echo.Context) error {
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Title: "Invalid Request",
				Error: fmt.Sprintf("Invalid action item index %q", c.Param("index")),
			})
		}

		snap, err := sess.Toggle(index)
		switch {
		case errors.Is(err, session.ErrNoSuchItem):
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Title: "Not Found", Error: err.Error()})
		case errors.Is(err, session.ErrNotReady):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Title: "Not Ready", Error: err.Error()})
		case err != nil:
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Title: "Error", Error: err.Error()})
		}

		return c.JSON(http.StatusOK, snap)
	}
}

func inputRequired() models.ErrorResponse {
	return models.ErrorResponse{
		Title: "Input Required",
		Error: "Please paste an email thread to process.",
	}
}
