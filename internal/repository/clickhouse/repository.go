package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/helioskrill/alma-control/internal/domain"
)

// Repository implements the event and operator repositories for ClickHouse.
type Repository struct {
	client *Client
	log    *zap.Logger
}

// NewRepository creates a new ClickHouse repository
func NewRepository(client *Client, log *zap.Logger) *Repository {
	return &Repository{
		client: client,
		log:    log,
	}
}

// InitSchema initializes the ClickHouse schema with ReplacingMergeTree engines
func (r *Repository) InitSchema(ctx context.Context) error {
	eventsTable := `
	CREATE TABLE IF NOT EXISTS pda_events (
		event_id String,
		timestamp DateTime64(3, 'UTC'),
		source_user_id String,
		operator_id String,
		operation_type LowCardinality(String),
		operation_category LowCardinality(String),
		document_id String,
		device_id LowCardinality(String),
		source LowCardinality(String),
		app_version LowCardinality(String),
		raw_payload String,
		processed_at DateTime64(3) DEFAULT now64(3),
		version UInt64
	) ENGINE = ReplacingMergeTree(version)
	PRIMARY KEY (event_id)
	ORDER BY (event_id, timestamp)
	PARTITION BY toYYYYMM(timestamp)
	SETTINGS index_granularity = 8192
	`

	if err := r.client.Conn().Exec(ctx, eventsTable); err != nil {
		return fmt.Errorf("failed to create pda_events table: %w", err)
	}

	operatorsTable := `
	CREATE TABLE IF NOT EXISTS operators (
		id String,
		name String,
		pda_id LowCardinality(String),
		team LowCardinality(String),
		active Bool,
		daily_target Int64,
		version UInt64
	) ENGINE = ReplacingMergeTree(version)
	PRIMARY KEY (id)
	ORDER BY (id)
	`

	if err := r.client.Conn().Exec(ctx, operatorsTable); err != nil {
		return fmt.Errorf("failed to create operators table: %w", err)
	}

	r.log.Info("ClickHouse schema initialized successfully")
	return nil
}

// InsertEvents inserts a batch of canonical events into ClickHouse
func (r *Repository) InsertEvents(ctx context.Context, events []*domain.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO pda_events")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch: %w", err)
	}

	insertedCount := 0
	for _, event := range events {
		if event.Version == 0 {
			event.Version = uint64(time.Now().UnixNano())
		}
		if event.ProcessedAt.IsZero() {
			event.ProcessedAt = time.Now()
		}

		rawPayload := event.RawPayload
		if rawPayload == "" {
			rawPayload = "{}"
		}

		err := batch.Append(
			event.EventID,
			event.Timestamp,
			event.SourceUserID,
			event.OperatorID,
			event.OperationType,
			string(event.OperationCategory),
			event.DocumentID,
			event.DeviceID,
			event.Source,
			event.AppVersion,
			rawPayload,
			event.ProcessedAt,
			event.Version,
		)

		if err != nil {
			return 0, fmt.Errorf("failed to append event to batch: %w", err)
		}
		insertedCount++
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send batch: %w", err)
	}

	return insertedCount, nil
}

// ListEvents returns up to limit events ordered by timestamp.
// orderBy follows the client convention: "timestamp" ascending,
// "-timestamp" descending.
func (r *Repository) ListEvents(ctx context.Context, orderBy string, limit int) ([]*domain.Event, error) {
	direction := "ASC"
	switch orderBy {
	case "timestamp", "":
	case "-timestamp":
		direction = "DESC"
	default:
		return nil, fmt.Errorf("unsupported order_by value: %s", orderBy)
	}

	query := fmt.Sprintf(`
		SELECT
			event_id, timestamp, source_user_id, operator_id,
			operation_type, operation_category, document_id, device_id,
			source, app_version, raw_payload, processed_at, version
		FROM pda_events FINAL
		ORDER BY timestamp %s
		LIMIT ?
	`, direction)

	rows, err := r.client.Conn().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer func(rows driver.Rows) {
		if err := rows.Close(); err != nil {
			r.log.Error("Failed to close event rows", zap.Error(err))
		}
	}(rows)

	var events []*domain.Event
	for rows.Next() {
		var ev domain.Event
		var category string
		if err := rows.Scan(
			&ev.EventID, &ev.Timestamp, &ev.SourceUserID, &ev.OperatorID,
			&ev.OperationType, &category, &ev.DocumentID, &ev.DeviceID,
			&ev.Source, &ev.AppVersion, &ev.RawPayload, &ev.ProcessedAt, &ev.Version,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		ev.OperationCategory = domain.Category(category)
		events = append(events, &ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}

// DeleteEvent removes a single event by ID.
func (r *Repository) DeleteEvent(ctx context.Context, eventID string) error {
	query := "DELETE FROM pda_events WHERE event_id = ?"
	if err := r.client.Conn().Exec(ctx, query, eventID); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}
	return nil
}

// InsertOperator inserts or replaces an operator row.
func (r *Repository) InsertOperator(ctx context.Context, op *domain.Operator) error {
	if op.Version == 0 {
		op.Version = uint64(time.Now().UnixNano())
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO operators")
	if err != nil {
		return fmt.Errorf("failed to prepare operator batch: %w", err)
	}

	if err := batch.Append(op.ID, op.Name, op.PDAID, op.Team, op.Active, op.DailyTarget, op.Version); err != nil {
		return fmt.Errorf("failed to append operator: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to insert operator: %w", err)
	}

	return nil
}

// ListOperators returns every operator ordered by name.
func (r *Repository) ListOperators(ctx context.Context) ([]domain.Operator, error) {
	query := `
		SELECT id, name, pda_id, team, active, daily_target, version
		FROM operators FINAL
		ORDER BY name ASC
	`

	rows, err := r.client.Conn().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query operators: %w", err)
	}
	defer func(rows driver.Rows) {
		if err := rows.Close(); err != nil {
			r.log.Error("Failed to close operator rows", zap.Error(err))
		}
	}(rows)

	var operators []domain.Operator
	for rows.Next() {
		var op domain.Operator
		if err := rows.Scan(&op.ID, &op.Name, &op.PDAID, &op.Team, &op.Active, &op.DailyTarget, &op.Version); err != nil {
			return nil, fmt.Errorf("failed to scan operator row: %w", err)
		}
		operators = append(operators, op)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operator rows: %w", err)
	}

	return operators, nil
}

// DeleteOperator removes an operator by ID.
func (r *Repository) DeleteOperator(ctx context.Context, operatorID string) error {
	query := "DELETE FROM operators WHERE id = ?"
	if err := r.client.Conn().Exec(ctx, query, operatorID); err != nil {
		return fmt.Errorf("failed to delete operator %s: %w", operatorID, err)
	}
	return nil
}

// Ping checks if the ClickHouse connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Conn().Ping(ctx)
}

// Close closes the ClickHouse connection
func (r *Repository) Close() error {
	return r.client.Close()
}
