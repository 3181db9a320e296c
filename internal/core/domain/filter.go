package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Selector identifies which key an order query is driven by.
type Selector string

// Order query selectors.
const (
	SelectByDate   Selector = "date"
	SelectByPlates Selector = "plates"
	SelectByPhones Selector = "phones"
)

// OrderFilter describes one order query.
//
// Exactly one selector applies: plates win over phones, which win over a
// bare date range. Phones need a date range because they are matched in
// memory after the header query. Plates may carry an optional range.
type OrderFilter struct {
	From *time.Time
	To   *time.Time

	Plates []string
	Phones []string

	// Environment selects a single environment and wins over Environments.
	Environment  string
	Environments []string

	// Status matches the order status code exactly (e.g. "KON").
	Status string

	CustomerType CustomerType

	// Invoiced restricts to orders with invoice log entries in range.
	// Nil means the default, which is true.
	Invoiced *bool
}

// Selector returns the selector the filter is driven by.
func (f *OrderFilter) Selector() Selector {
	switch {
	case len(f.Plates) > 0:
		return SelectByPlates
	case len(f.Phones) > 0:
		return SelectByPhones
	default:
		return SelectByDate
	}
}

// IsInvoiced returns the effective invoiced flag.
func (f *OrderFilter) IsInvoiced() bool {
	if f.Invoiced == nil {
		return true
	}
	return *f.Invoiced
}

// HasRange reports whether both ends of the date range are set.
func (f *OrderFilter) HasRange() bool {
	return f.From != nil && f.To != nil
}

// Validate checks the filter before any I/O is attempted.
func (f *OrderFilter) Validate() error {
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return &ValidationError{Field: "from", Err: ErrInvalidDateRange}
	}
	if f.CustomerType != "" && !f.CustomerType.IsValid() {
		return &ValidationError{Field: "customerType", Err: ErrInvalidCustomerType}
	}

	switch f.Selector() {
	case SelectByPlates:
		for _, p := range f.Plates {
			if strings.TrimSpace(p) == "" {
				return &ValidationError{Field: "plates", Err: ErrEmptyPlate}
			}
		}
	case SelectByPhones, SelectByDate:
		if !f.HasRange() {
			return &ValidationError{Field: "from", Err: ErrMissingDateRange}
		}
	}
	return nil
}

// Bool returns a pointer to b, for the Invoiced field.
func Bool(b bool) *bool {
	return &b
}

// DayRange returns 00:00:00 to 23:59:59 of the given day in its location.
func DayRange(day time.Time) (time.Time, time.Time) {
	y, m, d := day.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	to := time.Date(y, m, d, 23, 59, 59, 0, day.Location())
	return from, to
}

// Date layouts accepted for filter bounds, most specific first.
var filterTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

const filterDateLayout = "2006-01-02"

// ParseFilterTime parses a filter bound given as a date or a timestamp.
// A bare date is the start of that day in loc, or its last second when
// endOfDay is set. Empty input yields nil.
func ParseFilterTime(field, value string, endOfDay bool, loc *time.Location) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	if day, err := time.ParseInLocation(filterDateLayout, value, loc); err == nil {
		from, to := DayRange(day)
		if endOfDay {
			return &to, nil
		}
		return &from, nil
	}
	for _, layout := range filterTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return &t, nil
		}
	}
	return nil, &ValidationError{Field: field, Err: fmt.Errorf("%w: %q is not a date", ErrInvalidInput, value)}
}

// FilterParams is the textual form of an OrderFilter as received from the
// command line, query strings or tool calls.
type FilterParams struct {
	From         string   `json:"from,omitempty"`
	To           string   `json:"to,omitempty"`
	Environment  string   `json:"environment,omitempty"`
	Environments []string `json:"environments,omitempty"`
	Plates       []string `json:"plates,omitempty"`
	Phones       []string `json:"phones,omitempty"`
	Status       string   `json:"status,omitempty"`
	CustomerType string   `json:"customerType,omitempty"`
	Invoiced     string   `json:"invoiced,omitempty"`
}

// Filter parses the params into a validated OrderFilter.
func (p FilterParams) Filter(loc *time.Location) (OrderFilter, error) {
	var f OrderFilter
	var err error

	if f.From, err = ParseFilterTime("from", p.From, false, loc); err != nil {
		return OrderFilter{}, err
	}
	if f.To, err = ParseFilterTime("to", p.To, true, loc); err != nil {
		return OrderFilter{}, err
	}
	if f.CustomerType, err = ParseCustomerType(p.CustomerType); err != nil {
		return OrderFilter{}, &ValidationError{Field: "customerType", Err: err}
	}
	if s := strings.TrimSpace(p.Invoiced); s != "" {
		b, perr := strconv.ParseBool(s)
		if perr != nil {
			return OrderFilter{}, &ValidationError{Field: "invoiced", Err: fmt.Errorf("%w: %q", ErrInvalidInput, s)}
		}
		f.Invoiced = &b
	}

	f.Environment = strings.ToUpper(strings.TrimSpace(p.Environment))
	f.Environments = splitList(p.Environments, true)
	f.Plates = p.Plates
	f.Phones = splitList(p.Phones, false)
	f.Status = strings.TrimSpace(p.Status)

	if err := f.Validate(); err != nil {
		return OrderFilter{}, err
	}
	return f, nil
}

// splitList flattens comma separated entries and drops blanks.
func splitList(values []string, upper bool) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if upper {
				part = strings.ToUpper(part)
			}
			out = append(out, part)
		}
	}
	return out
}
