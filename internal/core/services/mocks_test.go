package services

import (
	"context"
	"sync"
	"time"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driven"
)

// Ensure mocks implement interfaces.
var (
	_ driven.OrderStore  = (*mockOrderStore)(nil)
	_ driven.StoreOpener = (*mockStoreOpener)(nil)
)

// mockOrderStore serves canned rows and records the IN lists it receives.
type mockOrderStore struct {
	mu sync.Mutex

	headers  []domain.Order
	items    []domain.LineItem
	invoices []domain.Invoice
	vehicles []domain.Vehicle
	receipts []domain.GoodsReceipt
	rows     []domain.ReceiptRow

	headerErr  error
	itemsErr   error
	invoiceErr error
	delay      time.Duration

	headerQueries []driven.HeaderQuery
	itemBatches   [][]int
	invoiceRanges [][2]*time.Time
	vehicleCalls  [][]string
	receiptPages  []domain.ReceiptQuery
	rowBatches    [][]int
	receiptErr    error
	closed        int
}

func (m *mockOrderStore) OrderHeaders(ctx context.Context, q driven.HeaderQuery) ([]domain.Order, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.headerQueries = append(m.headerQueries, q)
	if m.headerErr != nil {
		return nil, m.headerErr
	}

	plates := make(map[string]bool, len(q.Plates))
	for _, p := range q.Plates {
		plates[domain.NormalisePlate(p)] = true
	}

	var out []domain.Order
	for _, o := range m.headers {
		if len(plates) > 0 && !plates[o.PlateKey()] {
			continue
		}
		if q.Status != "" && o.Status != q.Status {
			continue
		}
		out = append(out, copyOrder(o))
	}
	return out, nil
}

func (m *mockOrderStore) LineItems(_ context.Context, numbers []int) ([]domain.LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.itemBatches = append(m.itemBatches, append([]int(nil), numbers...))
	if m.itemsErr != nil {
		return nil, m.itemsErr
	}
	want := intSet(numbers)
	var out []domain.LineItem
	for _, li := range m.items {
		if want[li.OrderNumber] {
			out = append(out, li)
		}
	}
	return out, nil
}

func (m *mockOrderStore) Invoices(_ context.Context, numbers []int, from, to *time.Time) ([]domain.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoiceRanges = append(m.invoiceRanges, [2]*time.Time{from, to})
	if m.invoiceErr != nil {
		return nil, m.invoiceErr
	}
	want := intSet(numbers)
	var out []domain.Invoice
	for _, inv := range m.invoices {
		if want[inv.Number] {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *mockOrderStore) Vehicles(_ context.Context, plates []string) ([]domain.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicleCalls = append(m.vehicleCalls, append([]string(nil), plates...))
	want := make(map[string]bool, len(plates))
	for _, p := range plates {
		want[domain.NormalisePlate(p)] = true
	}
	var out []domain.Vehicle
	for _, v := range m.vehicles {
		if want[domain.NormalisePlate(v.Plate)] {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *mockOrderStore) ReceiptHeaders(_ context.Context, q domain.ReceiptQuery) ([]domain.GoodsReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receiptPages = append(m.receiptPages, q)
	if m.receiptErr != nil {
		return nil, m.receiptErr
	}
	var out []domain.GoodsReceipt
	for i, r := range m.receipts {
		if i < q.Skip {
			continue
		}
		if len(out) == q.Take {
			break
		}
		r.Rows = nil
		out = append(out, r)
	}
	return out, nil
}

func (m *mockOrderStore) ReceiptRows(_ context.Context, numbers []int) ([]domain.ReceiptRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rowBatches = append(m.rowBatches, append([]int(nil), numbers...))
	want := intSet(numbers)
	var out []domain.ReceiptRow
	for _, r := range m.rows {
		if want[r.ReceiptNumber] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockOrderStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

func (m *mockOrderStore) closeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// mockStoreOpener hands out one mockOrderStore per environment.
type mockStoreOpener struct {
	mu      sync.Mutex
	stores  map[string]*mockOrderStore
	openErr map[string]error
	opened  []string
}

func newMockStoreOpener() *mockStoreOpener {
	return &mockStoreOpener{
		stores:  make(map[string]*mockOrderStore),
		openErr: make(map[string]error),
	}
}

func (m *mockStoreOpener) store(envID string) *mockOrderStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stores[envID]
	if !ok {
		s = &mockOrderStore{}
		m.stores[envID] = s
	}
	return s
}

func (m *mockStoreOpener) Open(_ context.Context, env domain.Environment) (driven.OrderStore, error) {
	m.mu.Lock()
	m.opened = append(m.opened, env.ID)
	err := m.openErr[env.ID]
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.store(env.ID), nil
}

func (m *mockStoreOpener) Close() error {
	return nil
}

// copyOrder copies the party records, which the executor normalises in place.
func copyOrder(o domain.Order) domain.Order {
	for _, p := range []**domain.Party{&o.Customer, &o.Payer, &o.Driver} {
		if *p != nil {
			c := **p
			*p = &c
		}
	}
	return o
}

func intSet(values []int) map[int]bool {
	set := make(map[int]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func ptrTime(t time.Time) *time.Time {
	return &t
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
