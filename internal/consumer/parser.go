package consumer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/helioskrill/alma-control/internal/analytics"
	"github.com/helioskrill/alma-control/internal/domain"
)

// JSONEventParser implements MessageParser for canonical event messages
// published by the API service.
type JSONEventParser struct{}

// NewJSONEventParser creates a new JSON event parser
func NewJSONEventParser() *JSONEventParser {
	return &JSONEventParser{}
}

// queuedEvent mirrors the canonical event wire shape with the timestamp left
// as a string, so the timestamp normalizer can absorb format drift between
// API versions.
type queuedEvent struct {
	EventID           string `json:"id"`
	Timestamp         string `json:"timestamp"`
	SourceUserID      string `json:"user_id"`
	OperatorID        string `json:"operator_id"`
	OperationType     string `json:"operation_type"`
	OperationCategory string `json:"operation_category"`
	DocumentID        string `json:"document_id"`
	DeviceID          string `json:"device_id"`
	Source            string `json:"source"`
	AppVersion        string `json:"app_version"`
	RawPayload        string `json:"raw_payload"`
}

// Parse parses a queued message body into a canonical event
func (p *JSONEventParser) Parse(body []byte) (*domain.Event, error) {
	var msg queuedEvent
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message body: %w", err)
	}

	ts, err := analytics.NormalizeTimestamp(msg.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("invalid event timestamp %q: %w", msg.Timestamp, err)
	}

	if msg.OperatorID == "" {
		return nil, fmt.Errorf("event %s has no operator_id", msg.EventID)
	}

	category := domain.Category(msg.OperationCategory)
	if category == "" {
		category = analytics.ClassifyCategory(msg.OperationType)
	}

	event := &domain.Event{
		EventID:           msg.EventID,
		Timestamp:         ts,
		SourceUserID:      msg.SourceUserID,
		OperatorID:        msg.OperatorID,
		OperationType:     msg.OperationType,
		OperationCategory: category,
		DocumentID:        msg.DocumentID,
		DeviceID:          msg.DeviceID,
		Source:            msg.Source,
		AppVersion:        msg.AppVersion,
		RawPayload:        msg.RawPayload,
		ProcessedAt:       time.Now(),
		Version:           uint64(time.Now().UnixNano()),
	}

	return event, nil
}
