package analytics

import (
	"github.com/helioskrill/alma-control/internal/domain"
)

// DailyTotalsRow holds one operator's event count per calendar day, aligned
// with the Dates slice of the containing DailyTotals.
type DailyTotalsRow struct {
	OperatorID   string `json:"operator_id"`
	OperatorName string `json:"operator_name"`
	DailyTarget  int64  `json:"daily_target,omitempty"`
	Counts       []int  `json:"counts"`
}

// DailyTotals is the per-day activity history used by trend views.
type DailyTotals struct {
	Dates []string         `json:"dates"`
	Rows  []DailyTotalsRow `json:"rows"`
}

// BuildDailyTotals counts each operator's events per UTC calendar day over
// the given date range (dates are "YYYY-MM-DD", ascending). Events outside
// the range are ignored.
func BuildDailyTotals(operators []domain.Operator, events []*domain.Event, dates []string) *DailyTotals {
	dateIndex := make(map[string]int, len(dates))
	for i, d := range dates {
		dateIndex[d] = i
	}

	counts := make(map[string][]int, len(operators))
	for _, op := range operators {
		counts[op.ID] = make([]int, len(dates))
	}

	for _, ev := range events {
		row, ok := counts[ev.OperatorID]
		if !ok {
			continue
		}
		if idx, ok := dateIndex[ev.Timestamp.UTC().Format("2006-01-02")]; ok {
			row[idx]++
		}
	}

	rows := make([]DailyTotalsRow, 0, len(operators))
	for _, op := range operators {
		rows = append(rows, DailyTotalsRow{
			OperatorID:   op.ID,
			OperatorName: op.Name,
			DailyTarget:  op.DailyTarget,
			Counts:       counts[op.ID],
		})
	}

	return &DailyTotals{Dates: dates, Rows: rows}
}
