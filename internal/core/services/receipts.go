package services

import (
	"context"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driven"
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driving"
	"github.com/niemi-bil/infoflex-bridge/internal/logger"
)

var _ driving.GoodsReceipts = (*ReceiptService)(nil)

const (
	stageReceipts    = "receipts"
	stageReceiptRows = "receipt rows"
)

// ReceiptService reads goods receipts from a single environment.
type ReceiptService struct {
	registry  driving.EnvironmentRegistry
	opener    driven.StoreOpener
	batchSize int
}

// NewReceiptService creates a receipt service. Row lookups use the
// configured IN list batch size.
func NewReceiptService(registry driving.EnvironmentRegistry, opener driven.StoreOpener, settings domain.QuerySettings) *ReceiptService {
	settings.Normalise()
	return &ReceiptService{registry: registry, opener: opener, batchSize: settings.BatchSize}
}

// Receipts returns the requested page with rows attached in row order.
func (s *ReceiptService) Receipts(ctx context.Context, q domain.ReceiptQuery) ([]domain.GoodsReceipt, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	env, err := s.registry.ConnectionFor(q.Environment)
	if err != nil {
		return nil, err
	}

	store, err := s.opener.Open(ctx, env)
	if err != nil {
		return nil, &domain.EnvironmentQueryError{Environment: env.ID, Stage: stageConnect, Err: err}
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Warn("environment %s: close connection: %v", env.ID, cerr)
		}
	}()

	receipts, err := store.ReceiptHeaders(ctx, q)
	if err != nil {
		return nil, &domain.EnvironmentQueryError{Environment: env.ID, Stage: stageReceipts, Err: err}
	}
	if len(receipts) == 0 {
		return []domain.GoodsReceipt{}, nil
	}

	numbers := make([]int, len(receipts))
	for i := range receipts {
		numbers[i] = receipts[i].Number
	}
	byReceipt := make(map[int][]domain.ReceiptRow, len(receipts))
	for _, batch := range chunk(numbers, s.batchSize) {
		rows, err := store.ReceiptRows(ctx, batch)
		if err != nil {
			return nil, &domain.EnvironmentQueryError{Environment: env.ID, Stage: stageReceiptRows, Err: err}
		}
		for _, r := range rows {
			byReceipt[r.ReceiptNumber] = append(byReceipt[r.ReceiptNumber], r)
		}
	}

	for i := range receipts {
		receipts[i].Environment = env.ID
		receipts[i].Rows = byReceipt[receipts[i].Number]
		if receipts[i].Rows == nil {
			receipts[i].Rows = []domain.ReceiptRow{}
		}
	}
	logger.Debug("environment %s: %d goods receipts", env.ID, len(receipts))
	return receipts, nil
}
