package service

import (
	"context"

	"github.com/helioskrill/alma-control/internal/analytics"
	"github.com/helioskrill/alma-control/internal/domain"
	"github.com/helioskrill/alma-control/internal/dto"
)

// IngestServicer defines the interface for event ingestion operations
type IngestServicer interface {
	IngestWebhook(ctx context.Context, raws []map[string]any, userMap map[string]string, source string) (*dto.ImportReport, error)
	ImportEvents(ctx context.Context, req *dto.ImportEventsRequest) (*dto.ImportReport, error)
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*domain.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// AnalyticsServicer defines the interface for analytics query operations
type AnalyticsServicer interface {
	AllSummaries(ctx context.Context, q dto.SummaryQuery) ([]*analytics.OperatorShiftSummary, error)
	OperatorSummary(ctx context.Context, operatorID string, q dto.SummaryQuery) (*analytics.OperatorShiftSummary, error)
	Heatmap(ctx context.Context, q dto.SummaryQuery) (*analytics.Heatmap, error)
	Anomalies(ctx context.Context, q dto.SummaryQuery) ([]analytics.Anomaly, error)
	History(ctx context.Context, days int) (*analytics.DailyTotals, error)
}

// OperatorServicer defines the interface for operator data management
type OperatorServicer interface {
	List(ctx context.Context) ([]domain.Operator, error)
	Create(ctx context.Context, req *dto.CreateOperatorRequest) (*domain.Operator, error)
	Delete(ctx context.Context, operatorID string) error
}

// SyncServicer defines the interface for the direct SQL sync connector
type SyncServicer interface {
	Run(ctx context.Context, req *dto.SyncRunRequest) *dto.SyncStatus
}
