package dto

import (
	"encoding/json"
	"errors"
)

// ImportEventsRequest is the synchronous batch-import payload (ALMA export
// format). Records are heterogeneous maps; the normalizer resolves the
// field-name dialect per record.
type ImportEventsRequest struct {
	Events  []map[string]any  `json:"events" binding:"required,min=1"`
	UserMap map[string]string `json:"user_map"`
	Source  string            `json:"source"`
}

// CreateOperatorRequest creates an operator.
type CreateOperatorRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name" binding:"required"`
	PDAID       string `json:"pda_id"`
	Team        string `json:"team"`
	Active      *bool  `json:"active"`
	DailyTarget int64  `json:"daily_target"`
}

// CreateEventRequest creates a single event manually.
type CreateEventRequest struct {
	Timestamp     string `json:"timestamp" binding:"required"`
	OperatorID    string `json:"operator_id" binding:"required"`
	DocumentID    string `json:"order_id"`
	DeviceID      string `json:"pda_id"`
	OperationType string `json:"operation_type"`
}

// SummaryQuery parameterizes the shift summary, heatmap and anomaly
// endpoints. Unset fields fall back to the configured defaults.
type SummaryQuery struct {
	Date       string   `form:"date"`
	StartTime  string   `form:"start_time"`
	EndTime    string   `form:"end_time"`
	Threshold  *float64 `form:"threshold"`
	Preset     string   `form:"preset"`
	Categories []string `form:"categories"`
}

// HistoryQuery parameterizes the daily-totals history endpoint.
type HistoryQuery struct {
	Days int `form:"days,default=7" binding:"min=1,max=90"`
}

// SyncRunRequest parameterizes a direct SQL sync run.
type SyncRunRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// ErrNoEvents signals a webhook payload with zero parseable event records.
var ErrNoEvents = errors.New("no events found in payload")

// ParseWebhookPayload extracts raw event records from the three payload
// shapes the PDA fleet sends: a bare array, an object with an "events"
// array (plus optional user_map and source), or a single event object.
func ParseWebhookPayload(body []byte) (raws []map[string]any, userMap map[string]string, source string, err error) {
	source = "webhook"

	var asArray []map[string]any
	if err := json.Unmarshal(body, &asArray); err == nil {
		if len(asArray) == 0 {
			return nil, nil, source, ErrNoEvents
		}
		return asArray, nil, source, nil
	}

	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(body, &asObject); err != nil {
		return nil, nil, source, ErrNoEvents
	}

	if rawUserMap, ok := asObject["user_map"]; ok {
		_ = json.Unmarshal(rawUserMap, &userMap)
	}
	if rawSource, ok := asObject["source"]; ok {
		var s string
		if json.Unmarshal(rawSource, &s) == nil && s != "" {
			source = s
		}
	}

	if rawEvents, ok := asObject["events"]; ok {
		var events []map[string]any
		if err := json.Unmarshal(rawEvents, &events); err != nil || len(events) == 0 {
			return nil, userMap, source, ErrNoEvents
		}
		return events, userMap, source, nil
	}

	// Single event object: accept it when it carries any identity field.
	var single map[string]any
	if err := json.Unmarshal(body, &single); err == nil {
		for _, key := range []string{"timestamp", "user_id", "usuario"} {
			if _, ok := single[key]; ok {
				return []map[string]any{single}, userMap, source, nil
			}
		}
	}

	return nil, userMap, source, ErrNoEvents
}
