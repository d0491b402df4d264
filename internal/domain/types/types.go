// Package types contains the JSON shapes exchanged over the HTTP API. They
// are shared by the server handlers and the load generator client.
package types

import (
	"github.com/okian/tracescore/internal/domain/geometry"
	"github.com/okian/tracescore/internal/domain/model"
	"github.com/okian/tracescore/internal/domain/scoring"
)

// SmoothRequest is the body of POST /v1/smooth.
type SmoothRequest struct {
	Points []geometry.Point `json:"points"`
	// Precision is optional; the server default applies when nil.
	Precision *int `json:"precision,omitempty"`
}

// SmoothResponse is returned by POST /v1/smooth.
type SmoothResponse struct {
	Points []geometry.Point `json:"points"`
}

// ScoreRequest is the body of POST /v1/score and one element of a batch.
type ScoreRequest struct {
	AttemptID  string              `json:"attempt_id,omitempty"`
	Stroke     []geometry.Point    `json:"stroke"`
	Circle     geometry.Circle     `json:"circle"`
	Difficulty *int                `json:"difficulty,omitempty"`
	Penalty    bool                `json:"penalty,omitempty"`
	Thresholds *scoring.Thresholds `json:"thresholds,omitempty"`
}

// ScoreResponse is returned by POST /v1/score.
type ScoreResponse struct {
	AttemptID string `json:"attempt_id,omitempty"`
	scoring.Subscores
}

// BatchRequest is the body of POST /v1/score/batch.
type BatchRequest struct {
	Attempts []ScoreRequest `json:"attempts"`
}

// BatchResult is one entry of a batch response. Error is set instead of the
// scores when that attempt could not be scored.
type BatchResult struct {
	AttemptID string             `json:"attempt_id"`
	Scores    *scoring.Subscores `json:"scores,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// BatchResponse is returned by POST /v1/score/batch. Results follow the order
// of the request.
type BatchResponse struct {
	BatchID string        `json:"batch_id"`
	Results []BatchResult `json:"results"`
}

// AnalyzeRequest is the body of POST /v1/analyze.
type AnalyzeRequest struct {
	Stroke []geometry.Point `json:"stroke"`
	Circle geometry.Circle  `json:"circle"`
}

// AnalyzeResponse is returned by POST /v1/analyze.
type AnalyzeResponse = model.Diagnostics

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
