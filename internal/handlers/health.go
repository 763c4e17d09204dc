package handlers

import (
	"net/http"
	"time"

	"summymail/internal/models"

	"github.com/labstack/echo/v4"
)

// HealthHandler handles basic health check requests
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /healthz [get]
func HealthHandler(version string) echo.HandlerFunc {
	return func(c echo.Context) error {
		response := models.HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
			Version:   version,
		}

		return c.JSON(http.StatusOK, response)
	}
}

// RootHandler handles requests to the root endpoint
func RootHandler(version string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "sumMyMail API",
			"version": version,
			"status":  "running",
		})
	}
}
