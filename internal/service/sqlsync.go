package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/helioskrill/alma-control/internal/analytics"
	"github.com/helioskrill/alma-control/internal/config"
	"github.com/helioskrill/alma-control/internal/dto"
)

// SyncService is the direct ALMA SQL Server connector. The warehouse
// software vendor has not yet provided database credentials or the real
// table layout, so every run reports a pending-configuration status instead
// of failing; the query range is still resolved so the caller can verify
// the parameters it would sync with.
type SyncService struct {
	cfg      config.AlmaDB
	defaults config.Shift
	log      *zap.Logger
}

// NewSyncService creates a new sync service
func NewSyncService(cfg config.AlmaDB, defaults config.Shift, log *zap.Logger) *SyncService {
	return &SyncService{
		cfg:      cfg,
		defaults: defaults,
		log:      log,
	}
}

// Run resolves the sync window and reports the connector status.
func (s *SyncService) Run(_ context.Context, req *dto.SyncRunRequest) *dto.SyncStatus {
	date := req.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	startTime := req.StartTime
	if startTime == "" {
		startTime = s.defaults.StartTime
	}
	endTime := req.EndTime
	if endTime == "" {
		endTime = s.defaults.EndTime
	}

	window := analytics.ShiftWindow{Date: date, StartTime: startTime, EndTime: endTime}
	var queryRange dto.QueryRange
	if start, end, err := window.Bounds(); err == nil {
		queryRange = dto.QueryRange{
			Start: start.UTC().Format(time.RFC3339),
			End:   end.UTC().Format(time.RFC3339),
		}
	}

	if !s.cfg.Configured() {
		missing := s.cfg.MissingFields()
		s.log.Warn("SQL sync requested without credentials",
			zap.Strings("missing", missing))
		return &dto.SyncStatus{
			Status:         "pending_config",
			Message:        "ALMA SQL Server is not configured; request read-only credentials from the vendor",
			QueryRange:     queryRange,
			MissingSecrets: missing,
		}
	}

	// Credentials are present, but the vendor has not confirmed the
	// operations-log table layout, so the connector stays disabled.
	s.log.Info("SQL sync run requested",
		zap.String("date", date),
		zap.String("start", startTime),
		zap.String("end", endTime))

	return &dto.SyncStatus{
		Status:     "pending_config",
		Message:    "Connector prepared; waiting for the vendor to confirm the operations-log schema",
		QueryRange: queryRange,
	}
}
