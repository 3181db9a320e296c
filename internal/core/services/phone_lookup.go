package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driving"
	"github.com/niemi-bil/infoflex-bridge/internal/logger"
	"github.com/niemi-bil/infoflex-bridge/internal/normalisers"
)

// Ensure PhoneLookupService implements the interface.
var _ driving.PhoneLookup = (*PhoneLookupService)(nil)

// PhoneLookupService matches many phone numbers against one order fetch.
type PhoneLookupService struct {
	query       driving.OrderQuery
	concurrency int
}

// NewPhoneLookupService creates a lookup service. Items are matched by at
// most concurrency workers.
func NewPhoneLookupService(query driving.OrderQuery, concurrency int) *PhoneLookupService {
	if concurrency < 1 {
		concurrency = domain.DefaultConcurrency
	}
	return &PhoneLookupService{query: query, concurrency: concurrency}
}

// indexedMatch keeps the item position so results can be ordered.
type indexedMatch struct {
	item  int
	order int
	match domain.PhoneMatch
}

// Lookup fetches orders once with defaults, widened to cover every item
// override, and then matches each item in memory.
func (s *PhoneLookupService) Lookup(
	ctx context.Context, items []domain.PhoneLookupItem, defaults domain.OrderFilter,
) ([]domain.PhoneMatch, error) {
	if len(items) == 0 {
		return nil, &domain.ValidationError{Field: "items", Err: domain.ErrEmptyPhoneList}
	}
	for _, item := range items {
		if strings.TrimSpace(item.Phone) == "" {
			return nil, &domain.ValidationError{Field: "phoneNumber", Err: domain.ErrInvalidInput}
		}
	}
	defaults.Plates, defaults.Phones = nil, nil
	if err := defaults.Validate(); err != nil {
		return nil, err
	}

	orders, err := s.query.Aggregate(ctx, widen(defaults, items))
	if err != nil {
		return nil, err
	}

	keys := make([]map[string]bool, len(orders))
	for i := range orders {
		keys[i] = phoneKeys(&orders[i])
	}

	var (
		mu      sync.Mutex
		matches []indexedMatch
	)

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for idx, item := range items {
		g.Go(func() error {
			found := s.match(idx, item, defaults, orders, keys)
			if len(found) == 0 {
				return nil
			}
			mu.Lock()
			matches = append(matches, found...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].item != matches[j].item {
			return matches[i].item < matches[j].item
		}
		return matches[i].order < matches[j].order
	})

	out := make([]domain.PhoneMatch, len(matches))
	for i, m := range matches {
		out[i] = m.match
	}
	logger.Debug("phone lookup: %d items, %d orders, %d matches", len(items), len(orders), len(out))
	return out, nil
}

// match filters orders for one item. It only reads shared state.
func (s *PhoneLookupService) match(
	idx int, item domain.PhoneLookupItem, defaults domain.OrderFilter,
	orders []domain.Order, keys []map[string]bool,
) []indexedMatch {
	ov := item.Override

	from, to := defaults.From, defaults.To
	if ov.From != nil {
		from = ov.From
	}
	if ov.To != nil {
		to = ov.To
	}
	if from != nil && to != nil && from.After(*to) {
		logger.Warn("phone lookup: skipping callId %s: from %s is after to %s",
			item.CallID, from.Format("2006-01-02"), to.Format("2006-01-02"))
		return nil
	}

	key := normalisers.MatchKey(item.Phone)
	if key == "" {
		return nil
	}

	env := firstNonEmpty(ov.Environment, defaults.Environment)
	status := firstNonEmpty(ov.Status, defaults.Status)
	customerType := ov.CustomerType
	if customerType == "" {
		customerType = defaults.CustomerType
	}

	var found []indexedMatch
	for i := range orders {
		o := &orders[i]
		if env != "" && !strings.EqualFold(o.Environment, env) {
			continue
		}
		if ov.From != nil && (o.Date == nil || o.Date.Before(*ov.From)) {
			continue
		}
		if ov.To != nil && (o.Date == nil || o.Date.After(*ov.To)) {
			continue
		}
		if status != "" && o.Status != "" && !strings.EqualFold(o.Status, status) {
			continue
		}
		if customerType != "" && o.Customer != nil && o.Customer.Type != "" && o.Customer.Type != customerType {
			continue
		}
		if ov.Invoiced != nil && *ov.Invoiced != (len(o.Invoices) > 0) {
			continue
		}
		if !keys[i][key] {
			continue
		}
		found = append(found, indexedMatch{
			item:  idx,
			order: i,
			match: domain.PhoneMatch{CallID: item.CallID, InputPhone: item.Phone, Order: *o},
		})
	}
	return found
}

// widen returns the fetch filter covering defaults and all overrides.
// Status and customer type are dropped from the fetch when any item
// overrides them; items re-apply them in memory.
func widen(defaults domain.OrderFilter, items []domain.PhoneLookupItem) domain.OrderFilter {
	fetch := defaults
	from, to := *defaults.From, *defaults.To
	for _, item := range items {
		ov := item.Override
		if ov.From != nil && ov.To != nil && ov.From.After(*ov.To) {
			continue
		}
		if ov.From != nil && ov.From.Before(from) {
			from = *ov.From
		}
		if ov.To != nil && ov.To.After(to) {
			to = *ov.To
		}
		if ov.Status != "" && !strings.EqualFold(ov.Status, defaults.Status) {
			fetch.Status = ""
		}
		if ov.CustomerType != "" && ov.CustomerType != defaults.CustomerType {
			fetch.CustomerType = ""
		}
		if ov.Environment != "" && defaults.Environment != "" &&
			!strings.EqualFold(ov.Environment, defaults.Environment) {
			fetch.Environment = ""
		}
	}
	fetch.From, fetch.To = &from, &to
	return fetch
}

// phoneKeys collects the match keys of every phone on the order.
func phoneKeys(o *domain.Order) map[string]bool {
	keys := make(map[string]bool)
	for _, p := range o.Parties() {
		for _, phone := range append(p.Phones(), p.MobilePhone) {
			if k := normalisers.MatchKey(phone); k != "" {
				keys[k] = true
			}
		}
	}
	return keys
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
