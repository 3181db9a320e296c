package cli

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
)

func testOrder() domain.Order {
	date := time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC)
	return domain.Order{
		Number:       41872,
		Environment:  domain.EnvUmea,
		Date:         &date,
		Plate:        "ABC123",
		Status:       "KON",
		TotalInclVAT: 2499.5,
		Customer:     &domain.Party{Number: 501, Name: "Nilsson, Anna", FirstName: "Anna", LastName: "Nilsson"},
		Categories:   []string{"Bromsar", "Däck"},
	}
}

func TestOrdersCmd_Table(t *testing.T) {
	s := testServices()
	s.Orders = &mockOrderQuery{orders: []domain.Order{testOrder()}}
	withServices(t, s)

	out, err := execute(t, newOrdersCmd(), "--from", "2025-10-01", "--to", "2025-10-31")
	require.NoError(t, err)

	assert.Contains(t, out, "CATEGORIES")
	assert.Contains(t, out, "NIEM3")
	assert.Contains(t, out, "41872")
	assert.Contains(t, out, "2025-10-14")
	assert.Contains(t, out, "Anna Nilsson")
	assert.Contains(t, out, "2499.50")
	assert.Contains(t, out, "Bromsar, Däck")
	assert.Contains(t, out, "1 orders")
}

func TestOrdersCmd_Filter(t *testing.T) {
	s := testServices()
	query := &mockOrderQuery{}
	s.Orders = query
	withServices(t, s)

	_, err := execute(t, newOrdersCmd(),
		"--from", "2025-10-01", "--to", "2025-10-31",
		"--envs", "nie2v,niem3",
		"--status", "KON",
		"--customer-type", "private",
		"--invoiced=false",
		"--phone", "070-383 35 67",
	)
	require.NoError(t, err)
	require.Len(t, query.filters, 1)

	f := query.filters[0]
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), *f.From)
	assert.Equal(t, time.Date(2025, 10, 31, 23, 59, 59, 0, time.UTC), *f.To)
	assert.Equal(t, []string{"NIE2V", "NIEM3"}, f.Environments)
	assert.Equal(t, []string{"070-383 35 67"}, f.Phones)
	assert.Equal(t, "KON", f.Status)
	assert.Equal(t, domain.CustomerPrivate, f.CustomerType)
	assert.False(t, f.IsInvoiced())
	assert.Equal(t, domain.SelectByPhones, f.Selector())
}

func TestOrdersCmd_Plates(t *testing.T) {
	s := testServices()
	query := &mockOrderQuery{}
	s.Orders = query
	withServices(t, s)

	_, err := execute(t, newOrdersCmd(), "--env", "niem3", "--plate", "ABC123", "--plate", "XYZ789")
	require.NoError(t, err)
	require.Len(t, query.filters, 1)
	assert.Equal(t, "NIEM3", query.filters[0].Environment)
	assert.Equal(t, []string{"ABC123", "XYZ789"}, query.filters[0].Plates)
	assert.Nil(t, query.filters[0].From)
}

func TestOrdersCmd_JSON(t *testing.T) {
	s := testServices()
	s.Orders = &mockOrderQuery{orders: []domain.Order{testOrder()}}
	withServices(t, s)

	out, err := execute(t, newOrdersCmd(), "--from", "2025-10-01", "--to", "2025-10-31", "--json")
	require.NoError(t, err)

	var orders []domain.Order
	require.NoError(t, json.Unmarshal([]byte(out), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, 41872, orders[0].Number)
}

func TestOrdersCmd_EmptyJSON(t *testing.T) {
	withServices(t, testServices())

	out, err := execute(t, newOrdersCmd(), "--from", "2025-10-01", "--to", "2025-10-31", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestOrdersCmd_NoOrders(t *testing.T) {
	withServices(t, testServices())

	out, err := execute(t, newOrdersCmd(), "--from", "2025-10-01", "--to", "2025-10-31")
	require.NoError(t, err)
	assert.Contains(t, out, "No orders found.")
}

func TestOrdersCmd_Errors(t *testing.T) {
	t.Run("missing range", func(t *testing.T) {
		withServices(t, testServices())
		_, err := execute(t, newOrdersCmd())
		assert.ErrorIs(t, err, domain.ErrMissingDateRange)
	})

	t.Run("bad date", func(t *testing.T) {
		withServices(t, testServices())
		_, err := execute(t, newOrdersCmd(), "--from", "yesterday", "--to", "2025-10-31")
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("query failure", func(t *testing.T) {
		s := testServices()
		s.Orders = &mockOrderQuery{err: errors.New("boom")}
		withServices(t, s)
		_, err := execute(t, newOrdersCmd(), "--from", "2025-10-01", "--to", "2025-10-31")
		assert.EqualError(t, err, "boom")
	})

	t.Run("not configured", func(t *testing.T) {
		_, err := execute(t, newOrdersCmd(), "--from", "2025-10-01", "--to", "2025-10-31")
		assert.ErrorIs(t, err, errNotConfigured)
	})
}

func TestCustomerName(t *testing.T) {
	tests := []struct {
		name  string
		order domain.Order
		want  string
	}{
		{"no customer", domain.Order{Name: "Kontant"}, "Kontant"},
		{"company", domain.Order{Customer: &domain.Party{Name: "Bygg AB", CompanyName: "Bygg AB"}}, "Bygg AB"},
		{"person", domain.Order{Customer: &domain.Party{Name: "Nilsson, Anna", FirstName: "Anna", LastName: "Nilsson"}}, "Anna Nilsson"},
		{"raw name", domain.Order{Customer: &domain.Party{Name: "NILSSON ANNA"}}, "NILSSON ANNA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, customerName(&tt.order))
		})
	}
}
