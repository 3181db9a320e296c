package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
	"github.com/niemi-bil/infoflex-bridge/internal/normalisers/party"
)

func fixedNow() time.Time {
	return time.Date(2025, 10, 16, 12, 0, 0, 0, time.UTC)
}

func newTestExecutor(opener *mockStoreOpener, settings domain.QuerySettings) *Executor {
	registry := NewEnvironmentRegistry(testEnvironments(), "")
	return NewExecutor(
		registry,
		opener,
		NewClassifier(domain.DefaultKeywordTable()),
		party.New(settings.PhonePriority).WithClock(fixedNow),
		settings,
	)
}

func dayFilter() domain.OrderFilter {
	from, to := domain.DayRange(date(2025, 10, 15))
	return domain.OrderFilter{From: &from, To: &to}
}

func TestExecutor_Execute_Enriches(t *testing.T) {
	logAt := time.Date(2025, 10, 15, 9, 30, 0, 0, time.UTC)
	laterLog := logAt.Add(2 * time.Hour)

	opener := newMockStoreOpener()
	store := opener.store("NIEM3")
	store.headers = []domain.Order{
		{
			Number: 1001, Plate: "ABC 123", Status: "KON", Date: ptrTime(date(2025, 10, 14)),
			Customer: &domain.Party{
				Number: 7, Name: "ANDERSSON, ERIK", OrgNumber: "850101-1234",
				Phone1: "0920-230088", Phone2: "070-383 35 67", PostalAddress: "945 33 ROSVIK",
				Email: "erik@example.se",
			},
		},
	}
	store.items = []domain.LineItem{
		{OrderNumber: 1001, Row: 3, Text: "Bromsskivor fram", TypeCode: "A", Quantity: 1},
		{OrderNumber: 1001, Row: 1, Text: "Byte bromsklossar", TypeCode: "A", Quantity: 1.5},
		{OrderNumber: 1001, Row: 2, Text: "Diagnos felkod", TypeCode: "a", Quantity: 0.5},
		{OrderNumber: 1001, Row: 4, Text: "AC filter", TypeCode: "D", Quantity: 1, MaterialCode: "HUSBIL"},
		{OrderNumber: 1001, Row: 5, Text: "Service 2 år", TypeCode: "A", Quantity: 0},
	}
	store.invoices = []domain.Invoice{
		{Number: 1001, Logs: []domain.LogEntry{
			{ID: 2, Timestamp: ptrTime(laterLog)},
			{ID: 1, Timestamp: ptrTime(logAt)},
		}},
	}
	store.vehicles = []domain.Vehicle{{Plate: "ABC123", Make: "Volvo"}}

	exec := newTestExecutor(opener, domain.DefaultQuerySettings())

	orders, err := exec.Execute(context.Background(), "niem3", dayFilter())
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, "NIEM3", o.Environment)
	assert.Equal(t, []string{"Bromsar", "Felsökning"}, o.Categories)

	want := []domain.LineItem{
		{OrderNumber: 1001, Row: 1, Text: "Byte bromsklossar", TypeCode: "A", Quantity: 1.5,
			MatchedKeyword: "BROMS", MatchedCategory: "Bromsar"},
		{OrderNumber: 1001, Row: 2, Text: "Diagnos felkod", TypeCode: "a", Quantity: 0.5,
			MatchedKeyword: "DIAGNOS", MatchedCategory: "Felsökning"},
		{OrderNumber: 1001, Row: 3, Text: "Bromsskivor fram", TypeCode: "A", Quantity: 1,
			MatchedKeyword: "BROMS", MatchedCategory: "Bromsar"},
		{OrderNumber: 1001, Row: 4, Text: "AC filter", TypeCode: "D", Quantity: 1, MaterialCode: "HUSBIL"},
		{OrderNumber: 1001, Row: 5, Text: "Service 2 år", TypeCode: "A", Quantity: 0},
	}
	if diff := cmp.Diff(want, o.LineItems); diff != "" {
		t.Errorf("line items mismatch (-want +got):\n%s", diff)
	}

	require.NotNil(t, o.Customer)
	assert.Equal(t, "Erik", o.Customer.FirstName)
	assert.Equal(t, "Andersson", o.Customer.LastName)
	assert.Equal(t, "+46703833567", o.Customer.MobilePhone)
	assert.Equal(t, "94533", o.Customer.ZipCode)
	assert.Equal(t, "ROSVIK", o.Customer.City)
	assert.Equal(t, domain.CustomerPrivate, o.Customer.Type)

	require.NotNil(t, o.Vehicle)
	assert.Equal(t, "Husbil", o.Vehicle.Category)
	assert.Equal(t, "Volvo", o.Vehicle.Make)

	require.Len(t, o.Invoices, 1)
	require.NotNil(t, o.FirstLogAt)
	assert.True(t, o.FirstLogAt.Equal(logAt))
	assert.True(t, o.LastLogAt.Equal(laterLog))

	assert.Equal(t, 1, store.closeCount())
	require.Len(t, store.invoiceRanges, 1)
	assert.NotNil(t, store.invoiceRanges[0][0], "invoiced queries restrict logs to the range")
}

func TestExecutor_Execute_Categories(t *testing.T) {
	tests := []struct {
		name  string
		items []domain.LineItem
		want  []string
	}{
		{
			name:  "labor without match gets default",
			items: []domain.LineItem{{OrderNumber: 1, Row: 1, Text: "Tvätt", TypeCode: "A", Quantity: 1}},
			want:  []string{"Allmän reparation"},
		},
		{
			name:  "parts only stay empty",
			items: []domain.LineItem{{OrderNumber: 1, Row: 1, Text: "Bromsklossar", TypeCode: "D", Quantity: 2}},
			want:  []string{},
		},
		{
			name:  "no lines",
			items: nil,
			want:  []string{},
		},
		{
			name: "first match order",
			items: []domain.LineItem{
				{OrderNumber: 1, Row: 1, Text: "Däckbyte", TypeCode: "A", Quantity: 1},
				{OrderNumber: 1, Row: 2, Text: "Service", TypeCode: "A", Quantity: 1},
				{OrderNumber: 1, Row: 3, Text: "Tvätt", TypeCode: "A", Quantity: 1},
			},
			want: []string{"Däck", "Service"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opener := newMockStoreOpener()
			store := opener.store("NIE2V")
			store.headers = []domain.Order{{Number: 1, Plate: "XYZ789"}}
			store.items = tt.items

			orders, err := newTestExecutor(opener, domain.DefaultQuerySettings()).
				Execute(context.Background(), "NIE2V", dayFilter())

			require.NoError(t, err)
			require.Len(t, orders, 1)
			assert.Equal(t, tt.want, orders[0].Categories)
			assert.NotNil(t, orders[0].LineItems)
		})
	}
}

func TestExecutor_Execute_BackfillNeverOverwrites(t *testing.T) {
	opener := newMockStoreOpener()
	store := opener.store("NIE2V")
	store.headers = []domain.Order{{Number: 1, Plate: "XYZ789"}}
	store.items = []domain.LineItem{{OrderNumber: 1, Row: 1, MaterialCode: "husbil", TypeCode: "D", Quantity: 1}}
	store.vehicles = []domain.Vehicle{{Plate: "XYZ 789", Category: "Personbil"}}

	orders, err := newTestExecutor(opener, domain.DefaultQuerySettings()).
		Execute(context.Background(), "NIE2V", dayFilter())

	require.NoError(t, err)
	require.NotNil(t, orders[0].Vehicle)
	assert.Equal(t, "Personbil", orders[0].Vehicle.Category)
}

func TestExecutor_Execute_BatchesInLists(t *testing.T) {
	settings := domain.DefaultQuerySettings()
	settings.BatchSize = 2

	opener := newMockStoreOpener()
	store := opener.store("NIE2V")
	plates := make([]string, 0, 5)
	for i := 1; i <= 5; i++ {
		plate := fmt.Sprintf("AAA%03d", i)
		plates = append(plates, plate)
		store.headers = append(store.headers, domain.Order{
			Number: i, Plate: plate, Date: ptrTime(date(2025, 1, i)),
		})
	}

	filter := domain.OrderFilter{Plates: append(plates, "aaa001")}
	orders, err := newTestExecutor(opener, settings).Execute(context.Background(), "NIE2V", filter)
	require.NoError(t, err)

	require.Len(t, store.headerQueries, 3, "five distinct plates in batches of two")
	assert.Equal(t, []string{"AAA001", "AAA002"}, store.headerQueries[0].Plates)
	assert.Equal(t, []string{"AAA005"}, store.headerQueries[2].Plates)

	require.Len(t, orders, 5)
	numbers := make([]int, len(orders))
	for i, o := range orders {
		numbers[i] = o.Number
	}
	assert.Equal(t, []int{5, 4, 3, 2, 1}, numbers, "merged chunks are sorted newest first")

	require.Len(t, store.itemBatches, 3)
	for _, batch := range store.itemBatches {
		assert.LessOrEqual(t, len(batch), 2)
	}
	assert.Len(t, store.vehicleCalls, 3)
}

func TestExecutor_Execute_SortsByDateThenNumber(t *testing.T) {
	opener := newMockStoreOpener()
	store := opener.store("NIE2V")
	store.headers = []domain.Order{
		{Number: 10, Date: ptrTime(date(2025, 1, 1))},
		{Number: 12, Date: ptrTime(date(2025, 1, 1))},
		{Number: 11, Date: ptrTime(date(2025, 2, 1))},
		{Number: 13},
	}

	orders, err := newTestExecutor(opener, domain.DefaultQuerySettings()).
		Execute(context.Background(), "NIE2V", dayFilter())
	require.NoError(t, err)

	numbers := make([]int, len(orders))
	for i, o := range orders {
		numbers[i] = o.Number
	}
	assert.Equal(t, []int{11, 12, 10, 13}, numbers)
}

func TestExecutor_Execute_PhoneFilter(t *testing.T) {
	opener := newMockStoreOpener()
	store := opener.store("NIE2V")
	store.headers = []domain.Order{
		{Number: 1, Customer: &domain.Party{Phone1: "070-383 35 67"}},
		{Number: 2, Customer: &domain.Party{Phone1: "0920-230088"}},
		{Number: 3, Customer: &domain.Party{Phone1: "0920-111111"}, Driver: &domain.Party{Phone3: "+46 70 111 22 33"}},
		{Number: 4},
	}

	filter := dayFilter()
	filter.Phones = []string{"+46703833567", "0701112233"}

	orders, err := newTestExecutor(opener, domain.DefaultQuerySettings()).
		Execute(context.Background(), "NIE2V", filter)
	require.NoError(t, err)

	numbers := make([]int, len(orders))
	for i, o := range orders {
		numbers[i] = o.Number
	}
	assert.ElementsMatch(t, []int{1, 3}, numbers)
}

func TestExecutor_Execute_NotInvoicedSkipsLogRange(t *testing.T) {
	opener := newMockStoreOpener()
	store := opener.store("NIE2V")
	store.headers = []domain.Order{{Number: 1}}

	filter := dayFilter()
	filter.Invoiced = domain.Bool(false)

	_, err := newTestExecutor(opener, domain.DefaultQuerySettings()).
		Execute(context.Background(), "NIE2V", filter)
	require.NoError(t, err)

	require.Len(t, store.headerQueries, 1)
	assert.False(t, store.headerQueries[0].Invoiced)
	require.Len(t, store.invoiceRanges, 1)
	assert.Nil(t, store.invoiceRanges[0][0])
	assert.Nil(t, store.invoiceRanges[0][1])
}

func TestExecutor_Execute_EmptyResultSkipsDetailQueries(t *testing.T) {
	opener := newMockStoreOpener()
	store := opener.store("NIE2V")

	orders, err := newTestExecutor(opener, domain.DefaultQuerySettings()).
		Execute(context.Background(), "NIE2V", dayFilter())

	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.NotNil(t, orders)
	assert.Empty(t, store.itemBatches)
	assert.Equal(t, 1, store.closeCount())
}

func TestExecutor_Execute_Errors(t *testing.T) {
	errBoom := errors.New("connection refused")

	t.Run("unknown environment", func(t *testing.T) {
		_, err := newTestExecutor(newMockStoreOpener(), domain.DefaultQuerySettings()).
			Execute(context.Background(), "NOPE", dayFilter())
		assert.ErrorIs(t, err, domain.ErrUnknownEnvironment)
	})

	t.Run("open failure", func(t *testing.T) {
		opener := newMockStoreOpener()
		opener.openErr["NIEM4"] = errBoom

		_, err := newTestExecutor(opener, domain.DefaultQuerySettings()).
			Execute(context.Background(), "NIEM4", dayFilter())

		var qerr *domain.EnvironmentQueryError
		require.ErrorAs(t, err, &qerr)
		assert.Equal(t, "NIEM4", qerr.Environment)
		assert.Equal(t, "connect", qerr.Stage)
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("line item failure closes the store", func(t *testing.T) {
		opener := newMockStoreOpener()
		store := opener.store("NIEM4")
		store.headers = []domain.Order{{Number: 1}}
		store.itemsErr = errBoom

		_, err := newTestExecutor(opener, domain.DefaultQuerySettings()).
			Execute(context.Background(), "NIEM4", dayFilter())

		var qerr *domain.EnvironmentQueryError
		require.ErrorAs(t, err, &qerr)
		assert.Equal(t, "line items", qerr.Stage)
		assert.Equal(t, 1, store.closeCount())
	})

	t.Run("header failure", func(t *testing.T) {
		opener := newMockStoreOpener()
		opener.store("NIEM4").headerErr = errBoom

		_, err := newTestExecutor(opener, domain.DefaultQuerySettings()).
			Execute(context.Background(), "NIEM4", dayFilter())
		assert.ErrorIs(t, err, errBoom)
	})
}

func TestChunk(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, chunk([]int{1, 2, 3, 4, 5}, 2))
	assert.Empty(t, chunk([]int{}, 3))
	assert.Equal(t, [][]int{{1}, {2}}, chunk([]int{1, 2}, 0))

	big := make([]int, 2500)
	chunks := chunk(big, domain.MaxBatchSize)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[2], 500)
}

func TestDistinct(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, distinct([]string{"a", "b", "a"}))
}
