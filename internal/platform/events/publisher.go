package events

import "context"

// Routing keys for balance movement events.
const (
	RouteTransactionCompleted = "transaction.completed"
	RouteTransactionCancelled = "transaction.cancelled"
	RouteTransferInitiated    = "transfer.initiated"
	RouteTransferApproved     = "transfer.approved"
	RouteTransferCompleted    = "transfer.completed"
	RouteTransferCancelled    = "transfer.cancelled"
	RouteReconciliationDone   = "reconciliation.recorded"
)

// Publisher emits balance movement events after the owning database
// transaction has committed. Publishing is best effort: a failed publish is
// logged by the caller and never affects the committed state.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close() error
}

// NoopPublisher discards all events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
