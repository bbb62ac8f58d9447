package analytics

import (
	"time"

	"github.com/helioskrill/alma-control/internal/domain"
)

const heatmapSlotMinutes = 15

// HeatmapRow holds one operator's event counts per time slot.
type HeatmapRow struct {
	OperatorID   string `json:"operator_id"`
	OperatorName string `json:"operator_name"`
	Counts       []int  `json:"counts"`
}

// Heatmap is a fixed-width slot schedule spanning the shift window with
// per-operator activity counts.
type Heatmap struct {
	Slots []string     `json:"slots"`
	Rows  []HeatmapRow `json:"rows"`
}

// BuildHeatmap buckets events into 15-minute slots per operator.
//
// Unlike the summary engine's inclusive window, events exactly at or after
// shift end are excluded here; this asymmetry is inherited from the source
// system and pinned by tests.
func BuildHeatmap(operators []domain.Operator, events []*domain.Event, window ShiftWindow) (*Heatmap, error) {
	shiftStart, shiftEnd, err := window.Bounds()
	if err != nil {
		return nil, err
	}

	slotDur := heatmapSlotMinutes * time.Minute
	span := shiftEnd.Sub(shiftStart)
	totalSlots := int((span + slotDur - 1) / slotDur)
	if totalSlots < 0 {
		totalSlots = 0
	}

	slots := make([]string, totalSlots)
	for i := range slots {
		slots[i] = shiftStart.Add(time.Duration(i) * slotDur).Format("15:04")
	}

	rows := make([]HeatmapRow, 0, len(operators))
	for _, op := range operators {
		counts := make([]int, totalSlots)
		for _, ev := range events {
			if ev.OperatorID != op.ID {
				continue
			}
			if ev.Timestamp.Before(shiftStart) || !ev.Timestamp.Before(shiftEnd) {
				continue
			}
			idx := int(ev.Timestamp.Sub(shiftStart) / slotDur)
			if idx >= 0 && idx < totalSlots {
				counts[idx]++
			}
		}
		rows = append(rows, HeatmapRow{OperatorID: op.ID, OperatorName: op.Name, Counts: counts})
	}

	return &Heatmap{Slots: slots, Rows: rows}, nil
}
