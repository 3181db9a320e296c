package mcp

import (
	"context"
	"time"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
	"github.com/niemi-bil/infoflex-bridge/internal/core/services"
)

// mockOrderQuery is a mock implementation of driving.OrderQuery.
type mockOrderQuery struct {
	orders  []domain.Order
	err     error
	filters []domain.OrderFilter
}

func (m *mockOrderQuery) Aggregate(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	m.filters = append(m.filters, filter)
	return m.orders, m.err
}

func testPorts(orders *mockOrderQuery) *Ports {
	envs := domain.KnownEnvironments()
	envs[0].DSN = "localhost:/data/nie2v.fdb"
	return &Ports{
		Registry:   services.NewEnvironmentRegistry(envs, domain.DefaultEnvironmentID),
		Classifier: services.NewClassifier(domain.DefaultKeywordTable()),
		Orders:     orders,
	}
}

func testOrder() domain.Order {
	date := time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC)
	return domain.Order{
		Number:       41872,
		Environment:  domain.EnvUmea,
		Date:         &date,
		Plate:        "ABC123",
		Status:       "KON",
		TotalInclVAT: 2499.5,
		Customer: &domain.Party{
			Number:    501,
			Name:      "Nilsson, Anna",
			FirstName: "Anna",
			LastName:  "Nilsson",
			Type:      domain.CustomerPrivate,
		},
		Vehicle:    &domain.Vehicle{Plate: "ABC123", Make: "VOLVO", Model: "XC60"},
		LineItems:  []domain.LineItem{{OrderNumber: 41872, Row: 1}},
		Invoices:   []domain.Invoice{{Number: 41872}},
		Categories: []string{"Bromsar"},
	}
}
