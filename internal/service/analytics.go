package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/helioskrill/alma-control/internal/analytics"
	"github.com/helioskrill/alma-control/internal/config"
	"github.com/helioskrill/alma-control/internal/domain"
	"github.com/helioskrill/alma-control/internal/dto"
	"github.com/helioskrill/alma-control/internal/metrics"
	"github.com/helioskrill/alma-control/internal/repository"
)

// ErrOperatorNotFound is returned when a summary is requested for an
// operator that does not exist.
var ErrOperatorNotFound = errors.New("operator not found")

// AnalyticsService loads operators and events from the store and runs the
// analytics engine over the in-memory snapshot. Every query recomputes its
// results from scratch; nothing derived is persisted.
type AnalyticsService struct {
	events    repository.EventRepository
	operators repository.OperatorRepository
	defaults  config.Shift
	log       *zap.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(events repository.EventRepository, operators repository.OperatorRepository, defaults config.Shift, log *zap.Logger) *AnalyticsService {
	metrics.Init()
	return &AnalyticsService{
		events:    events,
		operators: operators,
		defaults:  defaults,
		log:       log,
	}
}

// resolveWindow fills unset query fields from the configured defaults.
func (s *AnalyticsService) resolveWindow(q dto.SummaryQuery) analytics.ShiftWindow {
	window := analytics.ShiftWindow{
		Date:             q.Date,
		StartTime:        q.StartTime,
		EndTime:          q.EndTime,
		ThresholdMinutes: s.defaults.ThresholdMinutes,
	}
	if window.Date == "" {
		window.Date = time.Now().Format("2006-01-02")
	}
	if window.StartTime == "" {
		window.StartTime = s.defaults.StartTime
	}
	if window.EndTime == "" {
		window.EndTime = s.defaults.EndTime
	}
	if q.Threshold != nil {
		window.ThresholdMinutes = *q.Threshold
	}
	return window
}

// resolveCategories returns the activity-category filter for a query.
// Explicit categories win over a preset; with neither, the configured
// default preset applies.
func (s *AnalyticsService) resolveCategories(q dto.SummaryQuery) ([]domain.Category, error) {
	if len(q.Categories) > 0 {
		cats := make([]domain.Category, 0, len(q.Categories))
		for _, c := range q.Categories {
			cats = append(cats, domain.Category(strings.ToUpper(c)))
		}
		return cats, nil
	}

	presetID := q.Preset
	if presetID == "" {
		presetID = s.defaults.ActivityPreset
	}
	preset, ok := analytics.PresetByID(presetID)
	if !ok {
		return nil, fmt.Errorf("unknown activity preset: %s", presetID)
	}
	return preset.Categories, nil
}

// loadEventsForDate fetches the event snapshot and filters it to one UTC
// calendar day. The store query is bounded; date filtering happens here
// because the engine works on in-memory snapshots.
func (s *AnalyticsService) loadEventsForDate(ctx context.Context, date string) ([]*domain.Event, error) {
	all, err := s.events.ListEvents(ctx, "-timestamp", s.defaults.EventQueryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var filtered []*domain.Event
	for _, ev := range all {
		if ev.Timestamp.UTC().Format("2006-01-02") == date {
			filtered = append(filtered, ev)
		}
	}
	return filtered, nil
}

// AllSummaries computes the shift summary for every operator.
func (s *AnalyticsService) AllSummaries(ctx context.Context, q dto.SummaryQuery) ([]*analytics.OperatorShiftSummary, error) {
	window := s.resolveWindow(q)
	categories, err := s.resolveCategories(q)
	if err != nil {
		return nil, err
	}

	operators, err := s.operators.ListOperators(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list operators: %w", err)
	}

	events, err := s.loadEventsForDate(ctx, window.Date)
	if err != nil {
		return nil, err
	}

	summaries, err := analytics.ComputeOperatorSummaries(operators, events, window, categories)
	if err != nil {
		return nil, err
	}

	metrics.AnalyticsQueries.WithLabelValues("summaries").Inc()
	s.log.Info("Computed operator summaries",
		zap.String("date", window.Date),
		zap.Int("operators", len(operators)),
		zap.Int("events", len(events)))

	return summaries, nil
}

// OperatorSummary computes the shift summary for one operator.
func (s *AnalyticsService) OperatorSummary(ctx context.Context, operatorID string, q dto.SummaryQuery) (*analytics.OperatorShiftSummary, error) {
	operators, err := s.operators.ListOperators(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list operators: %w", err)
	}

	var operator *domain.Operator
	for i := range operators {
		if operators[i].ID == operatorID {
			operator = &operators[i]
			break
		}
	}
	if operator == nil {
		return nil, fmt.Errorf("%w: %s", ErrOperatorNotFound, operatorID)
	}

	window := s.resolveWindow(q)
	categories, err := s.resolveCategories(q)
	if err != nil {
		return nil, err
	}

	events, err := s.loadEventsForDate(ctx, window.Date)
	if err != nil {
		return nil, err
	}

	metrics.AnalyticsQueries.WithLabelValues("summary").Inc()
	return analytics.ComputeOperatorSummary(*operator, events, window, categories)
}

// Heatmap computes the per-slot activity heatmap for every operator.
func (s *AnalyticsService) Heatmap(ctx context.Context, q dto.SummaryQuery) (*analytics.Heatmap, error) {
	window := s.resolveWindow(q)

	operators, err := s.operators.ListOperators(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list operators: %w", err)
	}

	events, err := s.loadEventsForDate(ctx, window.Date)
	if err != nil {
		return nil, err
	}

	metrics.AnalyticsQueries.WithLabelValues("heatmap").Inc()
	return analytics.BuildHeatmap(operators, events, window)
}

// Anomalies scans the event set for operational anomalies. When the query
// carries a date, the scan is bounded to that day and includes the
// out-of-shift check; otherwise the whole snapshot is scanned without it.
func (s *AnalyticsService) Anomalies(ctx context.Context, q dto.SummaryQuery) ([]analytics.Anomaly, error) {
	operators, err := s.operators.ListOperators(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list operators: %w", err)
	}

	var events []*domain.Event
	var window *analytics.ShiftWindow
	if q.Date != "" {
		w := s.resolveWindow(q)
		window = &w
		events, err = s.loadEventsForDate(ctx, w.Date)
	} else {
		events, err = s.events.ListEvents(ctx, "-timestamp", s.defaults.EventQueryLimit)
	}
	if err != nil {
		return nil, err
	}

	anomalies, err := analytics.DetectAnomalies(operators, events, window)
	if err != nil {
		return nil, err
	}

	metrics.AnalyticsQueries.WithLabelValues("anomalies").Inc()
	for _, a := range anomalies {
		metrics.AnomaliesFound.WithLabelValues(a.Type).Inc()
	}

	return anomalies, nil
}

// History computes per-operator daily event totals over the last N days.
func (s *AnalyticsService) History(ctx context.Context, days int) (*analytics.DailyTotals, error) {
	operators, err := s.operators.ListOperators(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list operators: %w", err)
	}

	events, err := s.events.ListEvents(ctx, "-timestamp", s.defaults.EventQueryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	dates := make([]string, days)
	today := time.Now().UTC()
	for i := 0; i < days; i++ {
		dates[i] = today.AddDate(0, 0, -(days - 1 - i)).Format("2006-01-02")
	}

	metrics.AnalyticsQueries.WithLabelValues("history").Inc()
	return analytics.BuildDailyTotals(operators, events, dates), nil
}
