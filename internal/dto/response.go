package dto

import (
	"github.com/helioskrill/alma-control/internal/analytics"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"validation_error"`
	Message string `json:"message,omitempty" example:"timestamp is required"`
}

// ImportReport summarizes a batch ingestion: how many records were accepted,
// how many were skipped, and a bounded sample of rejection reasons.
type ImportReport struct {
	OK       bool                  `json:"ok"`
	BatchID  string                `json:"batch_id"`
	Imported int                   `json:"imported"`
	Skipped  int                   `json:"skipped"`
	Errors   []analytics.Rejection `json:"errors"`
}

// QueryRange reports the resolved time range of a sync run.
type QueryRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SyncStatus reports the state of the direct SQL sync connector.
type SyncStatus struct {
	Status         string     `json:"status" example:"pending_config"`
	Message        string     `json:"message"`
	QueryRange     QueryRange `json:"query_range"`
	MissingSecrets []string   `json:"missing_secrets,omitempty"`
}

// CreateEventResponse acknowledges a manually created event.
type CreateEventResponse struct {
	EventID string `json:"event_id"`
	Status  string `json:"status" example:"accepted"`
}
