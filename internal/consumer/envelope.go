package consumer

import (
	"context"

	"github.com/helioskrill/alma-control/internal/domain"
)

// AckFunc settles a queue message after its event has been handled.
type AckFunc func(context.Context) error

// Envelope carries a normalized PDA event through the pipeline together with
// the callbacks that settle its underlying queue message.
type Envelope struct {
	Event *domain.Event

	ack  AckFunc
	nack AckFunc
}

// NewEnvelope wraps an event with its settlement callbacks. Either callback
// may be nil, in which case settling is a no-op.
func NewEnvelope(event *domain.Event, ack, nack AckFunc) *Envelope {
	return &Envelope{Event: event, ack: ack, nack: nack}
}

// Ack marks the event as durably stored and removes it from the queue.
func (e *Envelope) Ack(ctx context.Context) error {
	if e.ack == nil {
		return nil
	}
	return e.ack(ctx)
}

// Nack leaves the message on the queue for redelivery.
func (e *Envelope) Nack(ctx context.Context) error {
	if e.nack == nil {
		return nil
	}
	return e.nack(ctx)
}
