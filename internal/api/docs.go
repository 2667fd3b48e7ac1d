package api

import (
	"encoding/json"

	_ "github.com/repofolio/repofolio/docs"
)

// ErrorResponse represents an API error
// @Description Error response from the API
// @swagger:model ErrorResponse
type ErrorResponse struct {
	// Stable error code
	// @example not_found
	Error string `json:"error" example:"unauthorized" enums:"unauthorized,invalid_input,not_found,upstream_error,not_configured,internal_error"`
	// Human readable message
	// @example profile not found
	Message string `json:"message" example:"missing GitHub access token"`
}

// SummaryResponse carries a generated project description
// @swagger:model SummaryResponse
type SummaryResponse struct {
	// Generated description
	Summary string `json:"summary" example:"A caching layer for GitHub portfolio data written in Go."`
}

// SaveProfileResponse acknowledges a saved profile
// @swagger:model SaveProfileResponse
type SaveProfileResponse struct {
	OK bool `json:"ok" example:"true"`
	// The stored document
	Profile json.RawMessage `json:"profile" swaggertype:"object"`
}

// HealthResponse reports service liveness
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	// Active cache backend
	Cache string `json:"cache" example:"memory" enums:"memory,redis"`
	// Whether POST /ai/summarize has a generator
	Summaries bool `json:"summaries" example:"true"`
}
