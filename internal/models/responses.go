package models

import "time"

// HealthResponse represents a basic health check response
// @Description Health check response
type HealthResponse struct {
	Status    string    `json:"status" example:"healthy"`                 // Health status
	Timestamp time.Time `json:"timestamp" example:"2023-01-01T00:00:00Z"` // Timestamp of the check
	Version   string    `json:"version" example:"1.0.0"`                  // Application version
}

// AnalyzeRequest represents the request body for the analyze endpoint
// @Description Email thread to analyze
type AnalyzeRequest struct {
	Thread string `json:"thread" example:"From: Alice\nHi Eduardo, can you send the revised proposal?"` // Pasted email thread
}

// DigestRequest represents the request body for the digest endpoint
// @Description Digest delivery request
type DigestRequest struct {
	Recipient string `json:"recipient" example:"eduardo@example.com"` // Address to mail the latest analysis to
}

// ErrorResponse is returned for every failed request
// @Description Error response payload
type ErrorResponse struct {
	Title string `json:"title" example:"Input Required"`                           // Short dialog title
	Error string `json:"error" example:"Please paste an email thread to process."` // User-facing message
}

// DigestResponse represents the response from the digest endpoint
// @Description Digest delivery response
type DigestResponse struct {
	Success bool   `json:"success" example:"true"`                     // Whether the email was sent
	Message string `json:"message" example:"Digest sent successfully"` // Response message
}
