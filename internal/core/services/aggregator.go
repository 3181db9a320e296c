package services

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driving"
	"github.com/niemi-bil/infoflex-bridge/internal/logger"
)

// Ensure Aggregator implements the interface.
var _ driving.OrderQuery = (*Aggregator)(nil)

// Aggregator fans an order query out over environments, waits for every
// environment to finish and reconciles the results.
type Aggregator struct {
	registry    driving.EnvironmentRegistry
	executor    driving.OrderExecutor
	concurrency int
}

// NewAggregator creates an aggregator running at most concurrency
// environments at once.
func NewAggregator(registry driving.EnvironmentRegistry, executor driving.OrderExecutor, concurrency int) *Aggregator {
	if concurrency < 1 {
		concurrency = domain.DefaultConcurrency
	}
	return &Aggregator{
		registry:    registry,
		executor:    executor,
		concurrency: concurrency,
	}
}

// Aggregate validates filter, resolves the target environments and runs the
// executor for each of them. A failing environment is logged and contributes
// no orders. Results are concatenated in target order without deduplication,
// then filtered by customer type and weighted by plate.
func (a *Aggregator) Aggregate(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	targets, err := a.registry.ResolveTargets(filter.Environment, filter.Environments)
	if err != nil {
		return nil, err
	}
	for _, id := range targets {
		if _, err := a.registry.ConnectionFor(id); err != nil {
			return nil, err
		}
	}

	logger.Section("Order fan-out")
	logger.Debug("targets: %s", strings.Join(targets, ", "))
	results := make([][]domain.Order, len(targets))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, id := range targets {
		g.Go(func() error {
			orders, err := a.executor.Execute(ctx, id, filter)
			if err != nil {
				logger.L().Warn("environment query failed",
					zap.String("environment", id),
					zap.Error(err))
				return nil
			}
			results[i] = orders
			return nil
		})
	}
	// Workers never return errors; a failed environment leaves its slot empty.
	_ = g.Wait()

	total := 0
	for _, r := range results {
		total += len(r)
	}
	orders := make([]domain.Order, 0, total)
	for _, r := range results {
		orders = append(orders, r...)
	}

	orders = filterByCustomerType(orders, filter.CustomerType)
	AssignWeights(orders)

	logger.Debug("aggregate: %d orders from %d environments", len(orders), len(targets))
	return orders, nil
}

// filterByCustomerType keeps orders whose customer has type t. An empty t
// keeps everything.
func filterByCustomerType(orders []domain.Order, t domain.CustomerType) []domain.Order {
	if t == "" {
		return orders
	}
	kept := orders[:0]
	for _, o := range orders {
		if o.CustomerType() == t {
			kept = append(kept, o)
		}
	}
	return kept
}
