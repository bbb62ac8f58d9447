package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/helioskrill/alma-control/internal/domain"
)

// Severity ranks anomalies; errors sort before warnings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Anomaly is a derived finding over the scanned event set. Anomalies are
// recomputed on every call and never persisted.
type Anomaly struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	RelatedIDs  []string `json:"related_ids"`
}

// highSpeedThresholdMin is the average inter-event interval below which an
// operator's cadence is flagged as a probable device error.
const highSpeedThresholdMin = 2.0

// DetectAnomalies scans the full event set of a period for duplicate order
// closures, shared devices, abnormal cadence and, when a shift window is
// supplied, out-of-shift events. The rules are independent; one event can
// contribute to several anomaly types. Output order is deterministic for
// identical input: grouping follows first appearance in the event list and a
// stable sort puts errors before warnings.
func DetectAnomalies(operators []domain.Operator, events []*domain.Event, window *ShiftWindow) ([]Anomaly, error) {
	anomalies := []Anomaly{}

	opNames := make(map[string]string, len(operators))
	for _, op := range operators {
		opNames[op.ID] = op.Name
	}
	nameOf := func(id string) string {
		if name, ok := opNames[id]; ok {
			return name
		}
		return id
	}

	// Duplicate orders: same document closed in two or more events.
	orderEvents := map[string][]*domain.Event{}
	var orderIDs []string
	for _, ev := range events {
		if ev.DocumentID == "" {
			continue
		}
		if _, seen := orderEvents[ev.DocumentID]; !seen {
			orderIDs = append(orderIDs, ev.DocumentID)
		}
		orderEvents[ev.DocumentID] = append(orderEvents[ev.DocumentID], ev)
	}
	for _, orderID := range orderIDs {
		evs := orderEvents[orderID]
		if len(evs) < 2 {
			continue
		}
		var ops []string
		seen := map[string]bool{}
		for _, ev := range evs {
			name := nameOf(ev.OperatorID)
			if !seen[name] {
				seen[name] = true
				ops = append(ops, name)
			}
		}
		related := make([]string, len(evs))
		for i, ev := range evs {
			related[i] = ev.EventID
		}
		anomalies = append(anomalies, Anomaly{
			ID:          "dup-" + orderID,
			Type:        "duplicate_order",
			Severity:    SeverityError,
			Title:       fmt.Sprintf("Duplicate order: %s", orderID),
			Description: fmt.Sprintf("Order %s appears %d times (operators: %s)", orderID, len(evs), strings.Join(ops, ", ")),
			RelatedIDs:  related,
		})
	}

	// Shared devices: same PDA used by two or more distinct operators.
	deviceOps := map[string][]string{}
	deviceSeen := map[string]map[string]bool{}
	var deviceIDs []string
	for _, ev := range events {
		if ev.DeviceID == "" {
			continue
		}
		if deviceSeen[ev.DeviceID] == nil {
			deviceSeen[ev.DeviceID] = map[string]bool{}
			deviceIDs = append(deviceIDs, ev.DeviceID)
		}
		if !deviceSeen[ev.DeviceID][ev.OperatorID] {
			deviceSeen[ev.DeviceID][ev.OperatorID] = true
			deviceOps[ev.DeviceID] = append(deviceOps[ev.DeviceID], ev.OperatorID)
		}
	}
	for _, deviceID := range deviceIDs {
		opIDs := deviceOps[deviceID]
		if len(opIDs) < 2 {
			continue
		}
		names := make([]string, len(opIDs))
		for i, id := range opIDs {
			names[i] = nameOf(id)
		}
		anomalies = append(anomalies, Anomaly{
			ID:          "shared-" + deviceID,
			Type:        "shared_device",
			Severity:    SeverityWarning,
			Title:       fmt.Sprintf("Shared PDA: %s", deviceID),
			Description: fmt.Sprintf("PDA %s was used by %s within the same period", deviceID, strings.Join(names, ", ")),
			RelatedIDs:  opIDs,
		})
	}

	// Abnormal speed: average interval under two minutes across the period.
	opEvents := map[string][]*domain.Event{}
	var speedOpIDs []string
	for _, ev := range events {
		if _, seen := opEvents[ev.OperatorID]; !seen {
			speedOpIDs = append(speedOpIDs, ev.OperatorID)
		}
		opEvents[ev.OperatorID] = append(opEvents[ev.OperatorID], ev)
	}
	for _, opID := range speedOpIDs {
		evs := opEvents[opID]
		if len(evs) < 3 {
			continue
		}
		sorted := make([]*domain.Event, len(evs))
		copy(sorted, evs)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		})
		_, avgIntervalMin := computeCadence(sorted)
		if avgIntervalMin != nil && *avgIntervalMin < highSpeedThresholdMin {
			anomalies = append(anomalies, Anomaly{
				ID:          "speed-" + opID,
				Type:        "high_speed",
				Severity:    SeverityWarning,
				Title:       fmt.Sprintf("Abnormal speed: %s", nameOf(opID)),
				Description: fmt.Sprintf("Average interval of %.1f min per order (under %.0f min, possible PDA error)", *avgIntervalMin, highSpeedThresholdMin),
				RelatedIDs:  []string{opID},
			})
		}
	}

	// Out-of-shift events, reported as one aggregate anomaly.
	if window != nil {
		shiftStart, shiftEnd, err := window.Bounds()
		if err != nil {
			return nil, err
		}
		var outside []string
		for _, ev := range events {
			if ev.Timestamp.Before(shiftStart) || ev.Timestamp.After(shiftEnd) {
				outside = append(outside, ev.EventID)
			}
		}
		if len(outside) > 0 {
			anomalies = append(anomalies, Anomaly{
				ID:          "out-of-shift",
				Type:        "out_of_shift",
				Severity:    SeverityWarning,
				Title:       fmt.Sprintf("%d event(s) outside the shift", len(outside)),
				Description: fmt.Sprintf("Events detected outside the %s-%s shift window", window.StartTime, window.EndTime),
				RelatedIDs:  outside,
			})
		}
	}

	sort.SliceStable(anomalies, func(i, j int) bool {
		return anomalies[i].Severity == SeverityError && anomalies[j].Severity != SeverityError
	})

	return anomalies, nil
}
