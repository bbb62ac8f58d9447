package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/helioskrill/alma-control/internal/domain"
)

// Status is the derived activity status of one operator for one shift.
type Status string

const (
	StatusGreen  Status = "green"
	StatusYellow Status = "yellow"
	StatusRed    Status = "red"
	StatusNone   Status = "none"
)

// Gap is a contiguous idle span inside the shift window longer than the
// configured threshold.
type Gap struct {
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
	Minutes float64   `json:"minutes"`
}

// OperatorShiftSummary is the per-operator, per-shift analytics result.
// It is recomputed on every query and never persisted.
type OperatorShiftSummary struct {
	OperatorID     string          `json:"operator_id"`
	OperatorName   string          `json:"operator_name"`
	TotalOrders    int             `json:"total_orders"`
	ActivityEvents int             `json:"activity_events"`
	FirstClose     *time.Time      `json:"first_close"`
	LastClose      *time.Time      `json:"last_close"`
	MaxGap         *float64        `json:"max_gap"`
	GapCount       int             `json:"gap_count"`
	Gaps           []Gap           `json:"gaps"`
	Events         []*domain.Event `json:"events"`
	Status         Status          `json:"status"`
	OrdersPerHour  *float64        `json:"orders_per_hour"`
	AvgIntervalMin *float64        `json:"avg_interval_min"`
}

// round1 mirrors toFixed(1) for the non-negative durations handled here.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// computeCadence derives throughput metrics from a time-sorted event list.
// ordersPerHour is nil when the first-to-last span is zero; avgIntervalMin is
// nil with fewer than two events.
func computeCadence(sorted []*domain.Event) (ordersPerHour, avgIntervalMin *float64) {
	if len(sorted) == 0 {
		return nil, nil
	}

	spanHours := sorted[len(sorted)-1].Timestamp.Sub(sorted[0].Timestamp).Hours()
	if spanHours > 0 {
		oph := round1(float64(len(sorted)) / spanHours)
		ordersPerHour = &oph
	}

	if len(sorted) > 1 {
		var total time.Duration
		for i := 1; i < len(sorted); i++ {
			total += sorted[i].Timestamp.Sub(sorted[i-1].Timestamp)
		}
		avg := round1(total.Minutes() / float64(len(sorted)-1))
		avgIntervalMin = &avg
	}

	return ordersPerHour, avgIntervalMin
}

// deriveStatus is order-sensitive: red conditions are checked before
// defaulting to yellow, so a single gap larger than three thresholds is red
// even though the gap count is 1.
func deriveStatus(gapCount int, maxGap, thresholdMinutes float64) Status {
	if gapCount == 0 {
		return StatusGreen
	}
	if gapCount >= 3 || maxGap > thresholdMinutes*3 {
		return StatusRed
	}
	return StatusYellow
}

// ComputeOperatorSummary computes the shift summary for a single operator.
//
// Events are filtered to the operator and the inclusive [shiftStart,
// shiftEnd] window, then sorted ascending. When activityCategories is
// non-empty only events in those categories drive gap detection and cadence;
// the full in-window set still feeds the raw totals and the event timeline.
func ComputeOperatorSummary(op domain.Operator, events []*domain.Event, window ShiftWindow, activityCategories []domain.Category) (*OperatorShiftSummary, error) {
	shiftStart, shiftEnd, err := window.Bounds()
	if err != nil {
		return nil, err
	}

	var allOpEvents []*domain.Event
	for _, ev := range events {
		if ev.OperatorID != op.ID {
			continue
		}
		if ev.Timestamp.Before(shiftStart) || ev.Timestamp.After(shiftEnd) {
			continue
		}
		allOpEvents = append(allOpEvents, ev)
	}
	sort.SliceStable(allOpEvents, func(i, j int) bool {
		return allOpEvents[i].Timestamp.Before(allOpEvents[j].Timestamp)
	})

	opEvents := allOpEvents
	if len(activityCategories) > 0 {
		wanted := make(map[domain.Category]bool, len(activityCategories))
		for _, c := range activityCategories {
			wanted[c] = true
		}
		opEvents = nil
		for _, ev := range allOpEvents {
			if wanted[ev.OperationCategory] {
				opEvents = append(opEvents, ev)
			}
		}
	}

	if len(opEvents) == 0 {
		return &OperatorShiftSummary{
			OperatorID:   op.ID,
			OperatorName: op.Name,
			Gaps:         []Gap{},
			Events:       []*domain.Event{},
			Status:       StatusNone,
		}, nil
	}

	var gaps []Gap
	maxGap := 0.0
	addGap := func(from, to time.Time) {
		minutes := to.Sub(from).Minutes()
		if minutes > window.ThresholdMinutes {
			gaps = append(gaps, Gap{From: from, To: to, Minutes: minutes})
			if minutes > maxGap {
				maxGap = minutes
			}
		}
	}

	addGap(shiftStart, opEvents[0].Timestamp)
	for i := 1; i < len(opEvents); i++ {
		addGap(opEvents[i-1].Timestamp, opEvents[i].Timestamp)
	}
	addGap(opEvents[len(opEvents)-1].Timestamp, shiftEnd)

	ordersPerHour, avgIntervalMin := computeCadence(opEvents)

	first := opEvents[0].Timestamp
	last := opEvents[len(opEvents)-1].Timestamp
	if gaps == nil {
		gaps = []Gap{}
	}

	return &OperatorShiftSummary{
		OperatorID:     op.ID,
		OperatorName:   op.Name,
		TotalOrders:    len(allOpEvents),
		ActivityEvents: len(opEvents),
		FirstClose:     &first,
		LastClose:      &last,
		MaxGap:         &maxGap,
		GapCount:       len(gaps),
		Gaps:           gaps,
		Events:         allOpEvents,
		Status:         deriveStatus(len(gaps), maxGap, window.ThresholdMinutes),
		OrdersPerHour:  ordersPerHour,
		AvgIntervalMin: avgIntervalMin,
	}, nil
}

// ComputeOperatorSummaries computes shift summaries for every operator.
func ComputeOperatorSummaries(operators []domain.Operator, events []*domain.Event, window ShiftWindow, activityCategories []domain.Category) ([]*OperatorShiftSummary, error) {
	summaries := make([]*OperatorShiftSummary, 0, len(operators))
	for _, op := range operators {
		s, err := ComputeOperatorSummary(op, events, window, activityCategories)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}
