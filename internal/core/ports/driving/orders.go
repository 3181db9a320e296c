package driving

import (
	"context"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
)

// OrderExecutor queries a single environment.
type OrderExecutor interface {
	// Execute returns the fully enriched orders of one environment.
	// Errors are scoped to that environment.
	Execute(ctx context.Context, envID string, filter domain.OrderFilter) ([]domain.Order, error)
}

// OrderQuery fans a query out over environments and reconciles the results.
type OrderQuery interface {
	// Aggregate validates the filter, runs it against every target
	// environment and returns the concatenated, weighted result.
	Aggregate(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
}

// PhoneLookup matches a batch of phone numbers against one order fetch.
type PhoneLookup interface {
	// Lookup fetches orders once with defaults and matches every item.
	Lookup(ctx context.Context, items []domain.PhoneLookupItem, defaults domain.OrderFilter) ([]domain.PhoneMatch, error)
}

// Pusher sends enriched orders to the subscriber sink.
type Pusher interface {
	// Push aggregates orders for filter and sends the contactable ones.
	// With dryRun the batch is built and returned but not sent.
	Push(ctx context.Context, filter domain.OrderFilter, dryRun bool) (*domain.PushResult, error)
}

// GoodsReceipts reads supplier deliveries from one environment.
type GoodsReceipts interface {
	// Receipts returns one page of receipts with their rows. An empty
	// environment selects the default one.
	Receipts(ctx context.Context, q domain.ReceiptQuery) ([]domain.GoodsReceipt, error)
}

// SubscriberForwarder sends a caller-built subscriber batch unchanged.
type SubscriberForwarder interface {
	// Forward rejects an empty batch and otherwise hands it to the sink.
	Forward(ctx context.Context, batch domain.SubscriberBatch) (*domain.SinkResult, error)
}
