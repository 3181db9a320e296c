package httpapi

import (
	"context"
	"time"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
	"github.com/niemi-bil/infoflex-bridge/internal/core/services"
)

type mockOrderQuery struct {
	orders  []domain.Order
	err     error
	filters []domain.OrderFilter
}

func (m *mockOrderQuery) Aggregate(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	m.filters = append(m.filters, filter)
	return m.orders, m.err
}

type mockPhoneLookup struct {
	matches  []domain.PhoneMatch
	err      error
	items    []domain.PhoneLookupItem
	defaults domain.OrderFilter
}

func (m *mockPhoneLookup) Lookup(
	_ context.Context, items []domain.PhoneLookupItem, defaults domain.OrderFilter,
) ([]domain.PhoneMatch, error) {
	m.items, m.defaults = items, defaults
	return m.matches, m.err
}

type mockPusher struct {
	result  *domain.PushResult
	err     error
	filters []domain.OrderFilter
	dryRuns []bool
}

func (m *mockPusher) Push(_ context.Context, filter domain.OrderFilter, dryRun bool) (*domain.PushResult, error) {
	m.filters = append(m.filters, filter)
	m.dryRuns = append(m.dryRuns, dryRun)
	return m.result, m.err
}

type mockScheduler struct {
	result  *domain.TaskResult
	err     error
	history []domain.TaskResult
	limit   int
	next    time.Time
}

func (m *mockScheduler) Start(context.Context) error { return nil }
func (m *mockScheduler) Stop() error                 { return nil }

func (m *mockScheduler) RunNow(context.Context) (*domain.TaskResult, error) {
	return m.result, m.err
}

func (m *mockScheduler) History(_ context.Context, limit int) ([]domain.TaskResult, error) {
	m.limit = limit
	return m.history, m.err
}

func (m *mockScheduler) NextRun() time.Time { return m.next }

type mockForwarder struct {
	result  *domain.SinkResult
	err     error
	batches []domain.SubscriberBatch
}

func (m *mockForwarder) Forward(_ context.Context, batch domain.SubscriberBatch) (*domain.SinkResult, error) {
	m.batches = append(m.batches, batch)
	return m.result, m.err
}

type mockReceipts struct {
	receipts []domain.GoodsReceipt
	err      error
	queries  []domain.ReceiptQuery
}

func (m *mockReceipts) Receipts(_ context.Context, q domain.ReceiptQuery) ([]domain.GoodsReceipt, error) {
	m.queries = append(m.queries, q)
	return m.receipts, m.err
}

// recordingSink lets tests run the real forwarder.
type recordingSink struct {
	batches []domain.SubscriberBatch
}

func (s *recordingSink) Send(_ context.Context, batch domain.SubscriberBatch) (*domain.SinkResult, error) {
	s.batches = append(s.batches, batch)
	return &domain.SinkResult{Success: true, Message: "ok"}, nil
}

func testPorts() *Ports {
	envs := domain.KnownEnvironments()
	for i := range envs {
		envs[i].DSN = "localhost:/data/" + envs[i].ID + ".fdb"
	}
	return &Ports{
		Registry:    services.NewEnvironmentRegistry(envs, domain.DefaultEnvironmentID),
		Classifier:  services.NewClassifier(domain.DefaultKeywordTable()),
		Orders:      &mockOrderQuery{},
		Phones:      &mockPhoneLookup{},
		Pusher:      &mockPusher{},
		Subscribers: &mockForwarder{result: &domain.SinkResult{Success: true}},
		Receipts:    &mockReceipts{},
		Scheduler:   &mockScheduler{},
	}
}
