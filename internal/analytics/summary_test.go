package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/helioskrill/alma-control/internal/domain"
)

const testShiftDate = "2026-02-19"

// tsAt builds a local wall-clock instant on the test shift date.
func tsAt(hour, minute int) time.Time {
	return time.Date(2026, 2, 19, hour, minute, 0, 0, time.Local)
}

func makeEvent(id, operatorID string, ts time.Time, category domain.Category) *domain.Event {
	return &domain.Event{
		EventID:           id,
		Timestamp:         ts,
		OperatorID:        operatorID,
		OperationType:     "ORDER_CLOSED",
		OperationCategory: category,
		DocumentID:        "PED-" + id,
		DeviceID:          "PDA-01",
		Source:            "webhook",
	}
}

func testOperator(id, name string) domain.Operator {
	return domain.Operator{ID: id, Name: name, Active: true}
}

func TestComputeOperatorSummary_FullScenario(t *testing.T) {
	op := testOperator("op1", "A")
	window := ShiftWindow{Date: testShiftDate, StartTime: "07:00", EndTime: "12:00", ThresholdMinutes: 30}
	events := []*domain.Event{
		makeEvent("e1", "op1", tsAt(7, 10), domain.CategoryPicking),
		makeEvent("e2", "op1", tsAt(7, 40), domain.CategoryPicking),
		makeEvent("e3", "op1", tsAt(9, 50), domain.CategoryPicking),
		makeEvent("e4", "op1", tsAt(11, 30), domain.CategoryPicking),
	}

	s, err := ComputeOperatorSummary(op, events, window, nil)

	assert.NoError(t, err)
	assert.Equal(t, "op1", s.OperatorID)
	assert.Equal(t, "A", s.OperatorName)
	assert.Equal(t, 4, s.TotalOrders)
	assert.Equal(t, 4, s.ActivityEvents)
	// 07:00-07:10 (10m) and 07:10-07:40 (exactly 30m) stay under the
	// threshold; 07:40-09:50 (130m) and 09:50-11:30 (100m) are gaps; the
	// trailing 11:30-12:00 span is exactly 30m and is not.
	assert.Equal(t, 2, s.GapCount)
	assert.NotNil(t, s.MaxGap)
	assert.Equal(t, 130.0, *s.MaxGap)
	// One gap over three thresholds forces red even with fewer than 3 gaps.
	assert.Equal(t, StatusRed, s.Status)
	assert.True(t, s.FirstClose.Equal(tsAt(7, 10)))
	assert.True(t, s.LastClose.Equal(tsAt(11, 30)))
}

func TestComputeOperatorSummary_GapThresholdIsStrict(t *testing.T) {
	op := testOperator("op1", "A")
	window := ShiftWindow{Date: testShiftDate, StartTime: "07:00", EndTime: "08:10", ThresholdMinutes: 30}
	events := []*domain.Event{
		makeEvent("e1", "op1", tsAt(7, 10), domain.CategoryPicking),
		makeEvent("e2", "op1", tsAt(7, 40), domain.CategoryPicking),
	}

	s, err := ComputeOperatorSummary(op, events, window, nil)

	assert.NoError(t, err)
	// Spans of 10, exactly 30, and exactly 30 minutes: no gaps.
	assert.Equal(t, 0, s.GapCount)
	assert.Equal(t, StatusGreen, s.Status)
	assert.Equal(t, 0.0, *s.MaxGap)
}

func TestComputeOperatorSummary_RedBoundaryIsStrict(t *testing.T) {
	op := testOperator("op1", "A")
	window := ShiftWindow{Date: testShiftDate, StartTime: "07:00", EndTime: "09:00", ThresholdMinutes: 30}

	// One gap of exactly 3x threshold: yellow, not red.
	exactly := []*domain.Event{
		makeEvent("e1", "op1", tsAt(7, 0), domain.CategoryPicking),
		makeEvent("e2", "op1", tsAt(8, 30), domain.CategoryPicking),
	}
	s, err := ComputeOperatorSummary(op, exactly, window, nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, s.GapCount)
	assert.Equal(t, 90.0, *s.MaxGap)
	assert.Equal(t, StatusYellow, s.Status)

	// One minute over the boundary tips it to red.
	over := []*domain.Event{
		makeEvent("e1", "op1", tsAt(7, 0), domain.CategoryPicking),
		makeEvent("e2", "op1", tsAt(8, 31), domain.CategoryPicking),
	}
	s, err = ComputeOperatorSummary(op, over, window, nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, s.GapCount)
	assert.Equal(t, StatusRed, s.Status)
}

func TestComputeOperatorSummary_ThreeGapsIsRed(t *testing.T) {
	op := testOperator("op1", "A")
	window := ShiftWindow{Date: testShiftDate, StartTime: "07:00", EndTime: "10:00", ThresholdMinutes: 30}
	events := []*domain.Event{
		makeEvent("e1", "op1", tsAt(7, 35), domain.CategoryPicking),
		makeEvent("e2", "op1", tsAt(8, 20), domain.CategoryPicking),
		makeEvent("e3", "op1", tsAt(9, 10), domain.CategoryPicking),
	}

	s, err := ComputeOperatorSummary(op, events, window, nil)

	assert.NoError(t, err)
	// Gaps: 35m leading, 45m, 50m, 50m trailing. Each under 3x threshold
	// but four of them.
	assert.Equal(t, 4, s.GapCount)
	assert.Equal(t, StatusRed, s.Status)
}

func TestComputeOperatorSummary_NoEvents(t *testing.T) {
	op := testOperator("op1", "A")
	window := ShiftWindow{Date: testShiftDate, StartTime: "07:00", EndTime: "15:00", ThresholdMinutes: 30}

	s, err := ComputeOperatorSummary(op, nil, window, nil)

	assert.NoError(t, err)
	assert.Equal(t, StatusNone, s.Status)
	assert.Equal(t, 0, s.TotalOrders)
	assert.Nil(t, s.FirstClose)
	assert.Nil(t, s.LastClose)
	assert.Nil(t, s.MaxGap)
	assert.Nil(t, s.OrdersPerHour)
	assert.Nil(t, s.AvgIntervalMin)
	assert.NotNil(t, s.Gaps)
	assert.Empty(t, s.Gaps)
	assert.NotNil(t, s.Events)
	assert.Empty(t, s.Events)
}

func TestComputeOperatorSummary_WindowBoundsInclusive(t *testing.T) {
	op := testOperator("op1", "A")
	window := ShiftWindow{Date: testShiftDate, StartTime: "07:00", EndTime: "15:00", ThresholdMinutes: 30}
	events := []*domain.Event{
		makeEvent("before", "op1", tsAt(6, 59), domain.CategoryPicking),
		makeEvent("start", "op1", tsAt(7, 0), domain.CategoryPicking),
		makeEvent("end", "op1", tsAt(15, 0), domain.CategoryPicking),
		makeEvent("after", "op1", tsAt(15, 1), domain.CategoryPicking),
	}

	s, err := ComputeOperatorSummary(op, events, window, nil)

	assert.NoError(t, err)
	// Events exactly at the shift boundaries count; outside ones do not.
	assert.Equal(t, 2, s.TotalOrders)
	assert.True(t, s.FirstClose.Equal(tsAt(7, 0)))
	assert.True(t, s.LastClose.Equal(tsAt(15, 0)))
}

func TestComputeOperatorSummary_IgnoresOtherOperators(t *testing.T) {
	op := testOperator("op1", "A")
	window := ShiftWindow{Date: testShiftDate, StartTime: "07:00", EndTime: "15:00", ThresholdMinutes: 30}
	events := []*domain.Event{
		makeEvent("e1", "op1", tsAt(8, 0), domain.CategoryPicking),
		makeEvent("e2", "op2", tsAt(8, 5), domain.CategoryPicking),
	}

	s, err := ComputeOperatorSummary(op, events, window, nil)

	assert.NoError(t, err)
	assert.Equal(t, 1, s.TotalOrders)
}

func TestComputeOperatorSummary_ActivityCategoryFilter(t *testing.T) {
	op := testOperator("op1", "A")
	window := ShiftWindow{Date: testShiftDate, StartTime: "07:00", EndTime: "09:00", ThresholdMinutes: 30}
	events := []*domain.Event{
		makeEvent("e1", "op1", tsAt(7, 5), domain.CategoryPicking),
		makeEvent("e2", "op1", tsAt(7, 50), domain.CategoryAuth),
		makeEvent("e3", "op1", tsAt(8, 40), domain.CategoryPicking),
	}

	s, err := ComputeOperatorSummary(op, events, window, []domain.Category{domain.CategoryPicking})

	assert.NoError(t, err)
	// All three events appear in the timeline, but only picking drives
	// gap detection: 07:05 to 08:40 is a 95-minute gap despite the login
	// in between.
	assert.Equal(t, 3, s.TotalOrders)
	assert.Equal(t, 2, s.ActivityEvents)
	assert.Equal(t, 1, s.GapCount)
	assert.Equal(t, 95.0, *s.MaxGap)
	assert.Len(t, s.Events, 3)
}

func TestComputeOperatorSummary_OnlyFilteredCategoriesIsNone(t *testing.T) {
	op := testOperator("op1", "A")
	window := ShiftWindow{Date: testShiftDate, StartTime: "07:00", EndTime: "09:00", ThresholdMinutes: 30}
	events := []*domain.Event{
		makeEvent("e1", "op1", tsAt(7, 5), domain.CategoryAuth),
	}

	s, err := ComputeOperatorSummary(op, events, window, []domain.Category{domain.CategoryPicking})

	assert.NoError(t, err)
	assert.Equal(t, StatusNone, s.Status)
	assert.Equal(t, 0, s.ActivityEvents)
}

func TestComputeOperatorSummary_Idempotent(t *testing.T) {
	op := testOperator("op1", "A")
	window := ShiftWindow{Date: testShiftDate, StartTime: "07:00", EndTime: "12:00", ThresholdMinutes: 30}
	events := []*domain.Event{
		makeEvent("e1", "op1", tsAt(7, 10), domain.CategoryPicking),
		makeEvent("e2", "op1", tsAt(9, 50), domain.CategoryPicking),
	}

	first, err := ComputeOperatorSummary(op, events, window, nil)
	assert.NoError(t, err)
	second, err := ComputeOperatorSummary(op, events, window, nil)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComputeOperatorSummary_GapsPartitionShift(t *testing.T) {
	op := testOperator("op1", "A")
	window := ShiftWindow{Date: testShiftDate, StartTime: "07:00", EndTime: "12:00", ThresholdMinutes: 30}
	events := []*domain.Event{
		makeEvent("e1", "op1", tsAt(7, 10), domain.CategoryPicking),
		makeEvent("e2", "op1", tsAt(7, 40), domain.CategoryPicking),
		makeEvent("e3", "op1", tsAt(9, 50), domain.CategoryPicking),
		makeEvent("e4", "op1", tsAt(11, 30), domain.CategoryPicking),
	}

	s, err := ComputeOperatorSummary(op, events, window, nil)
	assert.NoError(t, err)

	// Every gap must exceed the threshold, and gap plus non-gap spans must
	// cover the shift window exactly.
	shiftStart, shiftEnd, err := window.Bounds()
	assert.NoError(t, err)

	var gapTotal float64
	for _, g := range s.Gaps {
		assert.Greater(t, g.Minutes, window.ThresholdMinutes)
		gapTotal += g.Minutes
	}

	points := append([]time.Time{shiftStart}, tsAt(7, 10), tsAt(7, 40), tsAt(9, 50), tsAt(11, 30), shiftEnd)
	var nonGapTotal float64
	for i := 1; i < len(points); i++ {
		span := points[i].Sub(points[i-1]).Minutes()
		if span <= window.ThresholdMinutes {
			nonGapTotal += span
		}
	}

	assert.InDelta(t, shiftEnd.Sub(shiftStart).Minutes(), gapTotal+nonGapTotal, 1e-9)
}

func TestComputeOperatorSummary_Cadence(t *testing.T) {
	op := testOperator("op1", "A")
	window := ShiftWindow{Date: testShiftDate, StartTime: "07:00", EndTime: "12:00", ThresholdMinutes: 30}
	events := []*domain.Event{
		makeEvent("e1", "op1", tsAt(7, 0), domain.CategoryPicking),
		makeEvent("e2", "op1", tsAt(7, 30), domain.CategoryPicking),
		makeEvent("e3", "op1", tsAt(8, 0), domain.CategoryPicking),
	}

	s, err := ComputeOperatorSummary(op, events, window, nil)

	assert.NoError(t, err)
	// 3 events over a 1-hour span, 30 minutes between consecutive events.
	assert.NotNil(t, s.OrdersPerHour)
	assert.Equal(t, 3.0, *s.OrdersPerHour)
	assert.NotNil(t, s.AvgIntervalMin)
	assert.Equal(t, 30.0, *s.AvgIntervalMin)
}

func TestComputeOperatorSummary_SingleEventCadence(t *testing.T) {
	op := testOperator("op1", "A")
	window := ShiftWindow{Date: testShiftDate, StartTime: "07:00", EndTime: "12:00", ThresholdMinutes: 30}
	events := []*domain.Event{
		makeEvent("e1", "op1", tsAt(8, 0), domain.CategoryPicking),
	}

	s, err := ComputeOperatorSummary(op, events, window, nil)

	assert.NoError(t, err)
	// A single event has no span and no intervals.
	assert.Nil(t, s.OrdersPerHour)
	assert.Nil(t, s.AvgIntervalMin)
}

func TestComputeOperatorSummary_InvalidWindow(t *testing.T) {
	op := testOperator("op1", "A")
	window := ShiftWindow{Date: "not-a-date", StartTime: "07:00", EndTime: "15:00", ThresholdMinutes: 30}

	_, err := ComputeOperatorSummary(op, nil, window, nil)

	assert.Error(t, err)
}

func TestComputeOperatorSummaries_AllOperators(t *testing.T) {
	operators := []domain.Operator{
		testOperator("op1", "A"),
		testOperator("op2", "B"),
		testOperator("op3", "C"),
	}
	window := ShiftWindow{Date: testShiftDate, StartTime: "07:00", EndTime: "15:00", ThresholdMinutes: 30}

	var events []*domain.Event
	for i := 0; i < 8; i++ {
		events = append(events, makeEvent(fmt.Sprintf("a%d", i), "op1", tsAt(7, i*25), domain.CategoryPicking))
	}
	events = append(events, makeEvent("b1", "op2", tsAt(8, 0), domain.CategoryPicking))

	summaries, err := ComputeOperatorSummaries(operators, events, window, nil)

	assert.NoError(t, err)
	assert.Len(t, summaries, 3)
	assert.Equal(t, "op1", summaries[0].OperatorID)
	assert.Equal(t, 8, summaries[0].TotalOrders)
	assert.Equal(t, "op2", summaries[1].OperatorID)
	assert.Equal(t, 1, summaries[1].TotalOrders)
	assert.Equal(t, StatusNone, summaries[2].Status)
}
