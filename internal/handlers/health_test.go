package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"summymail/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name           string
		version        string
		expectedStatus int
		checkResponse  func(t *testing.T, resp models.HealthResponse)
	}{
		{
			name:           "returns healthy status",
			version:        "1.0.0",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp models.HealthResponse) {
				assert.Equal(t, "healthy", resp.Status)
				assert.Equal(t, "1.0.0", resp.Version)
				assert.WithinDuration(t, time.Now().UTC(), resp.Timestamp, 5*time.Second)
			},
		},
		{
			name:           "returns healthy with custom version",
			version:        "2.5.3",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp models.HealthResponse) {
				assert.Equal(t, "healthy", resp.Status)
				assert.Equal(t, "2.5.3", resp.Version)
			},
		},
		{
			name:           "returns healthy with empty version",
			version:        "",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp models.HealthResponse) {
				assert.Equal(t, "healthy", resp.Status)
				assert.Equal(t, "", resp.Version)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			// Execute
			handler := HealthHandler(tt.version)
			err := handler(c)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, rec.Code)

			var response models.HealthResponse
			err = json.Unmarshal(rec.Body.Bytes(), &response)
			require.NoError(t, err)

			tt.checkResponse(t, response)
		})
	}
}

func TestRootHandler(t *testing.T) {
	tests := []struct {
		name           string
		version        string
		expectedStatus int
		checkResponse  func(t *testing.T, resp map[string]string)
	}{
		{
			name:           "returns service information",
			version:        "1.0.0",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp map[string]string) {
				assert.Equal(t, "sumMyMail API", resp["service"])
				assert.Equal(t, "1.0.0", resp["version"])
				assert.Equal(t, "running", resp["status"])
			},
		},
		{
			name:           "returns with different version",
			version:        "3.2.1",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp map[string]string) {
				assert.Equal(t, "sumMyMail API", resp["service"])
				assert.Equal(t, "3.2.1", resp["version"])
				assert.Equal(t, "running", resp["status"])
			},
		},
		{
			name:           "returns with empty version",
			version:        "",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp map[string]string) {
				assert.Equal(t, "sumMyMail API", resp["service"])
				assert.Equal(t, "", resp["version"])
				assert.Equal(t, "running", resp["status"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			// Execute
			handler := RootHandler(tt.version)
			err := handler(c)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, rec.Code)

			var response map[string]string
			err = json.Unmarshal(rec.Body.Bytes(), &response)
			require.NoError(t, err)

			tt.checkResponse(t, response)
		})
	}
}
