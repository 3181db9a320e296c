package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driven"
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driving"
	"github.com/niemi-bil/infoflex-bridge/internal/logger"
	"github.com/niemi-bil/infoflex-bridge/internal/normalisers"
)

// Ensure Executor implements the interface.
var _ driving.OrderExecutor = (*Executor)(nil)

// Query stages reported in EnvironmentQueryError.
const (
	stageConnect   = "connect"
	stageHeaders   = "headers"
	stageLineItems = "line items"
	stageInvoices  = "invoices"
	stageVehicles  = "vehicles"
)

// Executor runs an order query against a single environment over one
// connection and enriches the result.
type Executor struct {
	registry   driving.EnvironmentRegistry
	opener     driven.StoreOpener
	classifier driving.Classifier
	normaliser driven.PartyNormaliser
	settings   domain.QuerySettings
}

// NewExecutor creates an executor.
func NewExecutor(
	registry driving.EnvironmentRegistry,
	opener driven.StoreOpener,
	classifier driving.Classifier,
	normaliser driven.PartyNormaliser,
	settings domain.QuerySettings,
) *Executor {
	settings.Normalise()
	return &Executor{
		registry:   registry,
		opener:     opener,
		classifier: classifier,
		normaliser: normaliser,
		settings:   settings,
	}
}

// Execute returns the enriched orders of one environment, newest first.
// The customer-type filter is not applied here; it is global.
func (e *Executor) Execute(ctx context.Context, envID string, filter domain.OrderFilter) ([]domain.Order, error) {
	env, err := e.registry.ConnectionFor(envID)
	if err != nil {
		return nil, err
	}

	store, err := e.opener.Open(ctx, env)
	if err != nil {
		return nil, &domain.EnvironmentQueryError{Environment: env.ID, Stage: stageConnect, Err: err}
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Warn("environment %s: close connection: %v", env.ID, cerr)
		}
	}()

	orders, err := e.headers(ctx, store, filter)
	if err != nil {
		return nil, &domain.EnvironmentQueryError{Environment: env.ID, Stage: stageHeaders, Err: err}
	}

	for i := range orders {
		orders[i].Environment = env.ID
		for _, p := range orders[i].Parties() {
			e.normaliser.Normalise(p)
		}
	}

	if filter.Selector() == domain.SelectByPhones {
		orders = filterByPhones(orders, filter.Phones)
	}
	if len(orders) == 0 {
		return []domain.Order{}, nil
	}

	numbers := make([]int, len(orders))
	for i := range orders {
		numbers[i] = orders[i].Number
	}

	items, err := e.lineItems(ctx, store, numbers)
	if err != nil {
		return nil, &domain.EnvironmentQueryError{Environment: env.ID, Stage: stageLineItems, Err: err}
	}

	var from, to = filter.From, filter.To
	if !filter.IsInvoiced() {
		from, to = nil, nil
	}
	invoices, err := e.invoices(ctx, store, numbers, from, to)
	if err != nil {
		return nil, &domain.EnvironmentQueryError{Environment: env.ID, Stage: stageInvoices, Err: err}
	}

	vehicles, err := e.vehicles(ctx, store, orders)
	if err != nil {
		return nil, &domain.EnvironmentQueryError{Environment: env.ID, Stage: stageVehicles, Err: err}
	}

	for i := range orders {
		o := &orders[i]
		o.LineItems = items[o.Number]
		if o.LineItems == nil {
			o.LineItems = []domain.LineItem{}
		}
		o.Invoices = invoices[o.Number]
		if o.Invoices == nil {
			o.Invoices = []domain.Invoice{}
		}
		o.SetLogSpan()
		o.Vehicle = vehicles[o.PlateKey()]
		e.classify(o)
	}

	logger.Debug("environment %s: %d orders", env.ID, len(orders))
	return orders, nil
}

// headers runs the header query, once per plate batch when the filter is
// driven by plates, and sorts the merged result.
func (e *Executor) headers(ctx context.Context, store driven.OrderStore, filter domain.OrderFilter) ([]domain.Order, error) {
	q := driven.HeaderQuery{
		From:     filter.From,
		To:       filter.To,
		Status:   strings.TrimSpace(filter.Status),
		Invoiced: filter.IsInvoiced(),
	}

	if filter.Selector() != domain.SelectByPlates {
		orders, err := store.OrderHeaders(ctx, q)
		if err != nil {
			return nil, err
		}
		sortOrders(orders)
		return orders, nil
	}

	plates := make([]string, 0, len(filter.Plates))
	for _, p := range filter.Plates {
		plates = append(plates, strings.ToUpper(strings.TrimSpace(p)))
	}

	var orders []domain.Order
	seen := make(map[int]bool)
	for _, batch := range chunk(distinct(plates), e.settings.BatchSize) {
		q.Plates = batch
		part, err := store.OrderHeaders(ctx, q)
		if err != nil {
			return nil, err
		}
		for _, o := range part {
			if seen[o.Number] {
				continue
			}
			seen[o.Number] = true
			orders = append(orders, o)
		}
	}
	sortOrders(orders)
	return orders, nil
}

func (e *Executor) lineItems(ctx context.Context, store driven.OrderStore, numbers []int) (map[int][]domain.LineItem, error) {
	byOrder := make(map[int][]domain.LineItem, len(numbers))
	for _, batch := range chunk(numbers, e.settings.BatchSize) {
		items, err := store.LineItems(ctx, batch)
		if err != nil {
			return nil, err
		}
		for _, li := range items {
			byOrder[li.OrderNumber] = append(byOrder[li.OrderNumber], li)
		}
	}
	for _, items := range byOrder {
		sort.SliceStable(items, func(i, j int) bool { return items[i].Row < items[j].Row })
	}
	return byOrder, nil
}

func (e *Executor) invoices(
	ctx context.Context, store driven.OrderStore, numbers []int, from, to *time.Time,
) (map[int][]domain.Invoice, error) {
	byOrder := make(map[int][]domain.Invoice, len(numbers))
	for _, batch := range chunk(numbers, e.settings.BatchSize) {
		invoices, err := store.Invoices(ctx, batch, from, to)
		if err != nil {
			return nil, err
		}
		for _, inv := range invoices {
			byOrder[inv.Number] = append(byOrder[inv.Number], inv)
		}
	}
	return byOrder, nil
}

// vehicles loads register entries for the distinct plates of orders, keyed
// by normalised plate. Orders sharing a plate share the vehicle.
func (e *Executor) vehicles(ctx context.Context, store driven.OrderStore, orders []domain.Order) (map[string]*domain.Vehicle, error) {
	plates := make([]string, 0, len(orders))
	for i := range orders {
		if p := strings.TrimSpace(orders[i].Plate); p != "" {
			plates = append(plates, p)
		}
	}

	byPlate := make(map[string]*domain.Vehicle)
	for _, batch := range chunk(distinct(plates), e.settings.BatchSize) {
		vehicles, err := store.Vehicles(ctx, batch)
		if err != nil {
			return nil, err
		}
		for i := range vehicles {
			v := vehicles[i]
			key := domain.NormalisePlate(v.Plate)
			if _, dup := byPlate[key]; !dup {
				byPlate[key] = &v
			}
		}
	}
	return byPlate, nil
}

// classify tags labor lines, derives the order's categories and backfills
// the vehicle category from the material sentinel.
func (e *Executor) classify(o *domain.Order) {
	categories := make([]string, 0)
	seen := make(map[string]bool)
	hasLabor := false
	hasSentinel := false

	for i := range o.LineItems {
		li := &o.LineItems[i]
		if strings.EqualFold(strings.TrimSpace(li.MaterialCode), e.settings.MaterialSentinelCode) {
			hasSentinel = true
		}
		if !li.IsLabor(e.settings.LaborType) {
			continue
		}
		hasLabor = true
		c := e.classifier.Classify(li.Text)
		if !c.Matched() {
			continue
		}
		li.MatchedKeyword = c.Keyword
		li.MatchedCategory = c.Category
		if !seen[c.Category] {
			seen[c.Category] = true
			categories = append(categories, c.Category)
		}
	}

	if hasLabor && len(categories) == 0 && e.settings.DefaultCategory != "" {
		categories = append(categories, e.settings.DefaultCategory)
	}
	o.Categories = categories

	if hasSentinel {
		o.Vehicle.BackfillCategory(e.settings.MaterialSentinelCategory)
	}
}

// sortOrders orders by date descending, then number descending.
func sortOrders(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i].Date, orders[j].Date
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return orders[i].Number > orders[j].Number
	})
}

// filterByPhones keeps orders where any phone of the customer, payer or
// driver matches one of phones after cleaning.
func filterByPhones(orders []domain.Order, phones []string) []domain.Order {
	wanted := make(map[string]bool, len(phones))
	for _, p := range phones {
		if key := normalisers.MatchKey(p); key != "" {
			wanted[key] = true
		}
	}
	if len(wanted) == 0 {
		return orders
	}

	kept := orders[:0]
	for _, o := range orders {
		if orderMatchesPhones(&o, wanted) {
			kept = append(kept, o)
		}
	}
	return kept
}

func orderMatchesPhones(o *domain.Order, wanted map[string]bool) bool {
	for key := range phoneKeys(o) {
		if wanted[key] {
			return true
		}
	}
	return false
}
