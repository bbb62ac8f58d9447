package repository

import (
	"context"

	"github.com/helioskrill/alma-control/internal/domain"
)

// EventRepository defines the interface for canonical event storage.
type EventRepository interface {
	// InsertEvents inserts a batch of canonical events.
	InsertEvents(ctx context.Context, events []*domain.Event) (int, error)

	// ListEvents returns up to limit events ordered by timestamp.
	// orderBy is "timestamp" for ascending or "-timestamp" for descending.
	ListEvents(ctx context.Context, orderBy string, limit int) ([]*domain.Event, error)

	// DeleteEvent removes a single event by ID.
	DeleteEvent(ctx context.Context, eventID string) error

	// InitSchema initializes the database schema (creates tables if they don't exist)
	InitSchema(ctx context.Context) error

	// Ping checks if the database connection is alive
	Ping(ctx context.Context) error

	// Close closes the repository and releases resources
	Close() error
}

// OperatorRepository defines the interface for operator storage.
type OperatorRepository interface {
	InsertOperator(ctx context.Context, op *domain.Operator) error
	ListOperators(ctx context.Context) ([]domain.Operator, error)
	DeleteOperator(ctx context.Context, operatorID string) error
}
