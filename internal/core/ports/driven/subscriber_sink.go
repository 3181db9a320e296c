package driven

import (
	"context"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
)

// SubscriberSink delivers subscriber batches to the marketing platform.
// Retry and delivery semantics belong to the implementation.
type SubscriberSink interface {
	// Send delivers one batch. A rejected batch returns a result with
	// Success false together with an error.
	Send(ctx context.Context, batch domain.SubscriberBatch) (*domain.SinkResult, error)
}
