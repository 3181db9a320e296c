package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driven"
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driving"
	"github.com/niemi-bil/infoflex-bridge/internal/logger"
)

// Ensure PushService implements the interfaces.
var (
	_ driving.Pusher              = (*PushService)(nil)
	_ driving.SubscriberForwarder = (*PushService)(nil)
)

// PushService sends contactable customers of aggregated orders to the
// subscriber sink.
type PushService struct {
	query   driving.OrderQuery
	sink    driven.SubscriberSink
	builder *SubscriberBuilder
}

// NewPushService creates a push service. sink may be nil, in which case
// only dry runs succeed.
func NewPushService(query driving.OrderQuery, sink driven.SubscriberSink, builder *SubscriberBuilder) *PushService {
	return &PushService{query: query, sink: sink, builder: builder}
}

// Push aggregates orders for filter, keeps those whose customer has an
// email address or a mobile number and sends them as one batch.
func (s *PushService) Push(ctx context.Context, filter domain.OrderFilter, dryRun bool) (*domain.PushResult, error) {
	if !dryRun && s.sink == nil {
		return nil, &domain.ConfigurationError{Err: domain.ErrSinkNotConfigured}
	}

	result := &domain.PushResult{RunID: uuid.NewString(), DryRun: dryRun}

	orders, err := s.query.Aggregate(ctx, filter)
	if err != nil {
		return nil, err
	}
	result.Fetched = len(orders)

	eligible := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if o.Customer.Contactable() {
			eligible = append(eligible, o)
		}
	}
	result.Eligible = len(eligible)
	logger.Info("push %s: %d of %d orders have email or mobile", result.RunID, result.Eligible, result.Fetched)

	if len(eligible) == 0 {
		result.Success = true
		result.Message = "no contactable orders"
		return result, nil
	}

	batch := s.builder.Build(eligible)
	if dryRun {
		result.Success = true
		result.Batch = batch
		result.Message = fmt.Sprintf("dry run: %d subscribers not sent", len(batch.Subscribers))
		return result, nil
	}

	res, err := s.sink.Send(ctx, *batch)
	if err != nil {
		result.Message = err.Error()
		if res != nil && res.Message != "" {
			result.Message = res.Message
		}
		logger.Error("push %s: send failed: %v", result.RunID, err)
		return result, fmt.Errorf("send subscribers: %w", err)
	}

	result.Success = res.Success
	result.Message = res.Message
	if res.Success {
		result.Sent = len(batch.Subscribers)
	}
	logger.Info("push %s: sent %d subscribers", result.RunID, result.Sent)
	return result, nil
}

// Forward sends a batch built by the caller as is. Email is the only
// field the sink requires, so each subscriber must carry one.
func (s *PushService) Forward(ctx context.Context, batch domain.SubscriberBatch) (*domain.SinkResult, error) {
	if len(batch.Subscribers) == 0 {
		return nil, &domain.ValidationError{Field: "subscribers", Err: domain.ErrEmptySubscriberList}
	}
	for i, sub := range batch.Subscribers {
		if strings.TrimSpace(sub.Email) == "" {
			return nil, &domain.ValidationError{
				Field: fmt.Sprintf("subscribers[%d].email", i),
				Err:   fmt.Errorf("%w: email is required", domain.ErrInvalidInput),
			}
		}
	}
	if s.sink == nil {
		return nil, &domain.ConfigurationError{Err: domain.ErrSinkNotConfigured}
	}

	res, err := s.sink.Send(ctx, batch)
	if err != nil {
		logger.Error("forward: send of %d subscribers failed: %v", len(batch.Subscribers), err)
		return res, fmt.Errorf("send subscribers: %w", err)
	}
	logger.Info("forward: sent %d subscribers", len(batch.Subscribers))
	return res, nil
}
