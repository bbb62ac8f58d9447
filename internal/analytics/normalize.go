package analytics

import (
	"encoding/json"
	"fmt"

	"github.com/helioskrill/alma-control/internal/domain"
)

// Rejection explains why a raw record could not be normalized. Rejected
// records are reported back to the caller, never silently dropped.
type Rejection struct {
	Raw    map[string]any `json:"raw"`
	Reason string         `json:"reason"`
}

const (
	ReasonInvalidTimestamp = "invalid or missing timestamp"
	ReasonMissingUserID    = "missing user_id"
	ReasonMissingDocument  = "missing user_id or document_id"
)

// Field-name aliases used by the different PDA software versions, probed in
// order; the first key with a non-empty value wins. Keep these as data so new
// dialects can be added without touching the normalizer.
var (
	timestampAliases  = []string{"timestamp", "fecha_hora", "FECHA_HORA", "datetime"}
	userAliases       = []string{"user_id", "usuario", "USUARIO", "userId"}
	opTypeAliases     = []string{"operation_type", "tipo_op", "TIPO_OP", "type", "action"}
	documentAliases   = []string{"document_id", "documento", "DOCUMENTO", "order_id", "orderId", "picking_id"}
	deviceAliases     = []string{"device_id", "dispositivo", "DISPOSITIVO", "pda_id", "pdaId"}
	appVersionAliases = []string{"app_version", "version", "apk_version"}
)

// probeField returns the first non-empty value among the aliased keys,
// rendered as a string. Numeric JSON values are formatted without an
// exponent so numeric user and document IDs survive intact.
func probeField(raw map[string]any, aliases []string) string {
	for _, key := range aliases {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			if val != "" {
				return val
			}
		case float64:
			if val == float64(int64(val)) {
				return fmt.Sprintf("%d", int64(val))
			}
			return fmt.Sprintf("%v", val)
		case bool:
			return fmt.Sprintf("%t", val)
		}
	}
	return ""
}

// NormalizeEvent maps a raw heterogeneous device record into a canonical
// event. userMap optionally resolves source user IDs to internal operator
// IDs; unmapped IDs pass through unchanged. The full raw record is retained
// as JSON for audit. The function is pure; persisting the result is the
// caller's responsibility.
func NormalizeEvent(raw map[string]any, userMap map[string]string, source string) (*domain.Event, *Rejection) {
	ts, err := NormalizeTimestamp(probeField(raw, timestampAliases))
	if err != nil {
		return nil, &Rejection{Raw: raw, Reason: ReasonInvalidTimestamp}
	}

	userID := probeField(raw, userAliases)
	if userID == "" {
		return nil, &Rejection{Raw: raw, Reason: ReasonMissingUserID}
	}

	operatorID := userID
	if mapped, ok := userMap[userID]; ok && mapped != "" {
		operatorID = mapped
	}

	opType := probeField(raw, opTypeAliases)

	payload, err := json.Marshal(raw)
	if err != nil {
		payload = []byte("{}")
	}

	ev := &domain.Event{
		Timestamp:         ts,
		SourceUserID:      userID,
		OperatorID:        operatorID,
		OperationType:     opType,
		OperationCategory: ClassifyCategory(opType),
		DocumentID:        probeField(raw, documentAliases),
		DeviceID:          probeField(raw, deviceAliases),
		Source:            source,
		AppVersion:        probeField(raw, appVersionAliases),
		RawPayload:        string(payload),
	}

	return ev, nil
}
