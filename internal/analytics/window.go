package analytics

import (
	"fmt"
	"time"
)

// ShiftWindow bounds analytics to the configured working hours of one
// calendar day. StartTime and EndTime are local wall-clock "HH:MM" values.
type ShiftWindow struct {
	Date             string  `json:"date"`
	StartTime        string  `json:"start_time"`
	EndTime          string  `json:"end_time"`
	ThresholdMinutes float64 `json:"threshold_minutes"`
}

// Bounds resolves the window to concrete shift start/end instants,
// interpreting date and times as local wall-clock.
func (w ShiftWindow) Bounds() (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02 15:04", w.Date+" "+w.StartTime, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid shift start: %w", err)
	}
	end, err := time.ParseInLocation("2006-01-02 15:04", w.Date+" "+w.EndTime, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid shift end: %w", err)
	}
	return start, end, nil
}
