package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/helioskrill/alma-control/internal/analytics"
	"github.com/helioskrill/alma-control/internal/domain"
	"github.com/helioskrill/alma-control/internal/dto"
	"github.com/helioskrill/alma-control/internal/metrics"
	"github.com/helioskrill/alma-control/internal/queue"
	"github.com/helioskrill/alma-control/internal/repository"
)

// Rejection samples are bounded so a bulk upload with a systemic format
// problem does not echo thousands of raw records back to the caller.
const (
	webhookErrorSample = 10
	importErrorSample  = 20
)

// IngestService normalizes raw device records and routes the canonical
// events either to the queue (webhook path) or straight into the store
// (import path).
type IngestService struct {
	publisher  queue.QueuePublisher
	repository repository.EventRepository
	log        *zap.Logger
}

// NewIngestService creates a new ingest service
func NewIngestService(publisher queue.QueuePublisher, repo repository.EventRepository, log *zap.Logger) *IngestService {
	metrics.Init()
	return &IngestService{
		publisher:  publisher,
		repository: repo,
		log:        log,
	}
}

// computeEventID generates a deterministic event ID from the event content.
// Re-delivery of the same record collapses into one row in the store, while
// genuinely repeated order closures keep distinct IDs and stay visible to
// the anomaly detector.
func computeEventID(ev *domain.Event) string {
	data := fmt.Sprintf("%s|%s|%d|%s|%s|%s",
		ev.OperatorID,
		ev.OperationType,
		ev.Timestamp.Unix(),
		ev.DocumentID,
		ev.DeviceID,
		ev.Source,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// IngestWebhook normalizes a webhook batch and publishes the accepted
// events to the queue. Rejected records are reported with reasons, bounded
// to a small sample.
func (s *IngestService) IngestWebhook(ctx context.Context, raws []map[string]any, userMap map[string]string, source string) (*dto.ImportReport, error) {
	batchID := uuid.NewString()
	report := &dto.ImportReport{OK: true, BatchID: batchID, Errors: []analytics.Rejection{}}

	for i, raw := range raws {
		ev, rejection := analytics.NormalizeEvent(raw, userMap, source)
		if rejection != nil {
			report.Skipped++
			metrics.EventsRejected.WithLabelValues(rejection.Reason).Inc()
			if len(report.Errors) < webhookErrorSample {
				report.Errors = append(report.Errors, *rejection)
			}
			continue
		}

		ev.EventID = computeEventID(ev)

		if err := s.publisher.PublishEvent(ctx, ev); err != nil {
			s.log.Warn("Failed to publish event in batch",
				zap.String("batch_id", batchID),
				zap.Int("index", i),
				zap.Error(err))
			report.Skipped++
			if len(report.Errors) < webhookErrorSample {
				report.Errors = append(report.Errors, analytics.Rejection{Raw: raw, Reason: "failed to enqueue event"})
			}
			continue
		}

		report.Imported++
		metrics.EventsIngested.WithLabelValues(source).Inc()
	}

	s.log.Info("Webhook batch processed",
		zap.String("batch_id", batchID),
		zap.String("source", source),
		zap.Int("imported", report.Imported),
		zap.Int("skipped", report.Skipped))

	return report, nil
}

// ImportEvents normalizes an import batch and bulk-inserts the accepted
// events directly. The import path is stricter than the webhook: records
// without a resolvable document ID are rejected, since the importer feeds
// the order-closure analytics.
func (s *IngestService) ImportEvents(ctx context.Context, req *dto.ImportEventsRequest) (*dto.ImportReport, error) {
	source := req.Source
	if source == "" {
		source = "csv_import"
	}

	batchID := uuid.NewString()
	report := &dto.ImportReport{OK: true, BatchID: batchID, Errors: []analytics.Rejection{}}

	var accepted []*domain.Event
	for _, raw := range req.Events {
		ev, rejection := analytics.NormalizeEvent(raw, req.UserMap, source)
		if rejection == nil && ev.DocumentID == "" {
			rejection = &analytics.Rejection{Raw: raw, Reason: analytics.ReasonMissingDocument}
		}
		if rejection != nil {
			report.Skipped++
			metrics.EventsRejected.WithLabelValues(rejection.Reason).Inc()
			if len(report.Errors) < importErrorSample {
				report.Errors = append(report.Errors, *rejection)
			}
			continue
		}

		ev.EventID = computeEventID(ev)
		accepted = append(accepted, ev)
	}

	if len(accepted) > 0 {
		inserted, err := s.repository.InsertEvents(ctx, accepted)
		if err != nil {
			return nil, fmt.Errorf("failed to insert imported events: %w", err)
		}
		report.Imported = inserted
		metrics.EventsIngested.WithLabelValues(source).Add(float64(inserted))
	}

	s.log.Info("Import batch processed",
		zap.String("batch_id", batchID),
		zap.String("source", source),
		zap.Int("imported", report.Imported),
		zap.Int("skipped", report.Skipped))

	return report, nil
}

// CreateEvent inserts one manually entered event.
func (s *IngestService) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*domain.Event, error) {
	ts, err := analytics.NormalizeTimestamp(req.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp %q: %w", req.Timestamp, err)
	}

	opType := req.OperationType
	if opType == "" {
		opType = "ORDER_CLOSED"
	}

	ev := &domain.Event{
		Timestamp:         ts,
		SourceUserID:      req.OperatorID,
		OperatorID:        req.OperatorID,
		OperationType:     opType,
		OperationCategory: analytics.ClassifyCategory(opType),
		DocumentID:        req.DocumentID,
		DeviceID:          req.DeviceID,
		Source:            "manual",
		RawPayload:        "{}",
	}
	ev.EventID = computeEventID(ev)

	if _, err := s.repository.InsertEvents(ctx, []*domain.Event{ev}); err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	metrics.EventsIngested.WithLabelValues("manual").Inc()
	return ev, nil
}

// DeleteEvent removes one event by ID.
func (s *IngestService) DeleteEvent(ctx context.Context, eventID string) error {
	if err := s.repository.DeleteEvent(ctx, eventID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}
