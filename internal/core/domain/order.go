package domain

import (
	"strings"
	"time"
)

// Order is one order header with its attached sub-records. It belongs to
// exactly one environment; orders from different environments are never
// merged even when their numbers collide.
type Order struct {
	// Number is the document number (ORH_DOKN).
	Number int `json:"number"`

	// Environment is the source environment. Set once by the executor.
	Environment string `json:"environment"`

	CustomerNumber int        `json:"customerNumber"`
	Date           *time.Time `json:"date,omitempty"`
	Plate          string     `json:"plate,omitempty"`
	Status         string     `json:"status,omitempty"`
	DeliveryDate   *time.Time `json:"deliveryDate,omitempty"`
	Invoiced       string     `json:"invoiced,omitempty"`
	Name           string     `json:"name,omitempty"`
	TotalInclVAT   float64    `json:"totalInclVat"`
	Odometer       int        `json:"odometer,omitempty"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`

	// PayerNumber and DriverNumber are zero when the order has none.
	PayerNumber  int `json:"payerNumber,omitempty"`
	DriverNumber int `json:"driverNumber,omitempty"`

	Customer *Party   `json:"customer,omitempty"`
	Payer    *Party   `json:"payer,omitempty"`
	Driver   *Party   `json:"driver,omitempty"`
	Vehicle  *Vehicle `json:"vehicle,omitempty"`

	Invoices  []Invoice  `json:"invoices"`
	LineItems []LineItem `json:"lineItems"`

	// Categories is the distinct list of matched categories, in first-match order.
	Categories []string `json:"categories"`

	// FirstLogAt and LastLogAt span the invoice log timestamps of all invoices.
	FirstLogAt *time.Time `json:"firstLogAt,omitempty"`
	LastLogAt  *time.Time `json:"lastLogAt,omitempty"`
}

// Parties returns the non-nil parties of the order, customer first.
func (o *Order) Parties() []*Party {
	parties := make([]*Party, 0, 3)
	for _, p := range []*Party{o.Customer, o.Payer, o.Driver} {
		if p != nil {
			parties = append(parties, p)
		}
	}
	return parties
}

// CustomerType returns the classification of the ordering customer, or the
// empty type when the order has no customer record.
func (o *Order) CustomerType() CustomerType {
	if o.Customer == nil {
		return ""
	}
	return o.Customer.Type
}

// PlateKey is the grouping key used for fractional attribution.
func (o *Order) PlateKey() string {
	return NormalisePlate(o.Plate)
}

// NormalisePlate upper-cases a plate and drops spaces and dashes.
func NormalisePlate(plate string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(plate) {
		if r == ' ' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// LineItem is one priced row of an order.
type LineItem struct {
	OrderNumber  int        `json:"orderNumber"`
	Row          int        `json:"row"`
	Article      string     `json:"article,omitempty"`
	Text         string     `json:"text,omitempty"`
	Quantity     float64    `json:"quantity"`
	UnitPrice    float64    `json:"unitPrice"`
	Discount     float64    `json:"discount"`
	VAT          float64    `json:"vat"`
	TypeCode     string     `json:"typeCode,omitempty"`
	MaterialCode string     `json:"materialCode,omitempty"`
	SumExclVAT   float64    `json:"sumExclVat"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`

	MatchedKeyword  string `json:"matchedKeyword,omitempty"`
	MatchedCategory string `json:"matchedCategory,omitempty"`

	// Weight is this row's share of its vehicle group. Weights of a
	// non-empty plate group sum to 1.
	Weight float64 `json:"weight"`
}

// IsLabor reports whether the row is a labor entry with a non-zero quantity.
func (li *LineItem) IsLabor(laborType string) bool {
	return strings.EqualFold(strings.TrimSpace(li.TypeCode), laborType) && li.Quantity != 0
}

// Invoice is an invoice issued for an order. Invoice number equals order number.
type Invoice struct {
	Number int `json:"number"`

	VehicleNo    string     `json:"vehicleNo,omitempty"`
	Manufacturer string     `json:"manufacturer,omitempty"`
	Model        string     `json:"model,omitempty"`
	VIN          string     `json:"vin,omitempty"`
	RegisteredAt *time.Time `json:"registeredAt,omitempty"`
	ModelYear    int        `json:"modelYear,omitempty"`

	OwnerNumber  int    `json:"ownerNumber,omitempty"`
	OwnerName    string `json:"ownerName,omitempty"`
	PayerNumber  int    `json:"payerNumber,omitempty"`
	PayerName    string `json:"payerName,omitempty"`
	DriverNumber int    `json:"driverNumber,omitempty"`
	DriverName   string `json:"driverName,omitempty"`

	Logs []LogEntry `json:"logs"`

	// FirstLogAt and LastLogAt span this invoice's log timestamps. Set by
	// SetLogSpan.
	FirstLogAt *time.Time `json:"firstLogAt,omitempty"`
	LastLogAt  *time.Time `json:"lastLogAt,omitempty"`

	// TransferErrors counts log entries recorded with an error.
	TransferErrors int `json:"transferErrors"`
}

// LogEntry is one accounting transfer log row for an invoice.
type LogEntry struct {
	ID            int        `json:"id"`
	Timestamp     *time.Time `json:"timestamp,omitempty"`
	TransactionNo int        `json:"transactionNo,omitempty"`
	Description   string     `json:"description,omitempty"`
	ErrorCode     string     `json:"errorCode,omitempty"`
	ErrorMessage  string     `json:"errorMessage,omitempty"`
	LogType       int        `json:"logType,omitempty"`
	KeyNo         string     `json:"keyNo,omitempty"`
}

// HasError reports whether the transfer was logged with an error.
func (l *LogEntry) HasError() bool {
	return l.ErrorCode != "" || l.ErrorMessage != ""
}

// SetLogSpan recomputes the log span and error count of every invoice and
// the span of the order as a whole.
func (o *Order) SetLogSpan() {
	var all []LogEntry
	for i := range o.Invoices {
		inv := &o.Invoices[i]
		inv.FirstLogAt, inv.LastLogAt = logSpan(inv.Logs)
		inv.TransferErrors = 0
		for j := range inv.Logs {
			if inv.Logs[j].HasError() {
				inv.TransferErrors++
			}
		}
		all = append(all, inv.Logs...)
	}
	o.FirstLogAt, o.LastLogAt = logSpan(all)
}

// TransferErrors sums the error count of all invoices.
func (o *Order) TransferErrors() int {
	n := 0
	for i := range o.Invoices {
		n += o.Invoices[i].TransferErrors
	}
	return n
}

func logSpan(logs []LogEntry) (first, last *time.Time) {
	for i := range logs {
		ts := logs[i].Timestamp
		if ts == nil {
			continue
		}
		if first == nil || ts.Before(*first) {
			t := *ts
			first = &t
		}
		if last == nil || ts.After(*last) {
			t := *ts
			last = &t
		}
	}
	return first, last
}
