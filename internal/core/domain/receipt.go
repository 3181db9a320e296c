package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Paging defaults for goods receipt queries.
const (
	DefaultReceiptTake = 100
	MaxReceiptTake     = 1000
)

// GoodsReceipt is one supplier delivery (LAGINKHD) with its rows.
type GoodsReceipt struct {
	Environment   string       `json:"environment"`
	Number        int          `json:"number"`
	OrderDate     *time.Time   `json:"orderDate,omitempty"`
	Supplier      string       `json:"supplier,omitempty"`
	DeliveredAt   *time.Time   `json:"deliveredAt,omitempty"`
	Total         float64      `json:"total"`
	OrderType     string       `json:"orderType,omitempty"`
	SupplierRef   string       `json:"supplierRef,omitempty"`
	CustomerRef   string       `json:"customerRef,omitempty"`
	ReceivedBy    string       `json:"receivedBy,omitempty"`
	OrderedBy     string       `json:"orderedBy,omitempty"`
	CorrelationID string       `json:"correlationId,omitempty"`
	EOrderID      int          `json:"eOrderId,omitempty"`
	DeliveryCode  int          `json:"deliveryCode,omitempty"`
	CreatedBy     string       `json:"createdBy,omitempty"`
	CreatedAt     *time.Time   `json:"createdAt,omitempty"`
	UpdatedBy     string       `json:"updatedBy,omitempty"`
	UpdatedAt     *time.Time   `json:"updatedAt,omitempty"`
	Rows          []ReceiptRow `json:"rows"`
}

// ReceiptRow is one article line of a goods receipt (LAGINKRD).
type ReceiptRow struct {
	ReceiptNumber  int        `json:"receiptNumber"`
	Row            int        `json:"row"`
	Article        string     `json:"article,omitempty"`
	Description    string     `json:"description,omitempty"`
	Quantity       float64    `json:"quantity"`
	Price          float64    `json:"price"`
	Supplier       string     `json:"supplier,omitempty"`
	Remaining      float64    `json:"remaining"`
	Delivered      float64    `json:"delivered"`
	RowRef         string     `json:"rowRef,omitempty"`
	PurchaseOrder  string     `json:"purchaseOrder,omitempty"`
	Sum            float64    `json:"sum"`
	Status         int        `json:"status"`
	OrderRowNumber int        `json:"orderRowNumber,omitempty"`
	Type           string     `json:"type,omitempty"`
	ExternalItemID int        `json:"externalItemId,omitempty"`
	CreatedBy      string     `json:"createdBy,omitempty"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
	UpdatedBy      string     `json:"updatedBy,omitempty"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

// ReceiptQuery selects goods receipts by delivery date in one environment.
// Paging counts receipts, not rows.
type ReceiptQuery struct {
	Environment string
	From        time.Time
	To          time.Time
	Skip        int
	Take        int
}

// Validate checks the window and paging bounds.
func (q ReceiptQuery) Validate() error {
	if q.From.IsZero() || q.To.IsZero() {
		return &ValidationError{Field: "from", Err: ErrMissingDateRange}
	}
	if q.From.After(q.To) {
		return &ValidationError{Field: "from", Err: ErrInvalidDateRange}
	}
	if q.Skip < 0 {
		return &ValidationError{Field: "skip", Err: fmt.Errorf("%w: %d is negative", ErrInvalidInput, q.Skip)}
	}
	if q.Take < 1 || q.Take > MaxReceiptTake {
		return &ValidationError{
			Field: "take",
			Err:   fmt.Errorf("%w: %d is outside 1..%d", ErrInvalidInput, q.Take, MaxReceiptTake),
		}
	}
	return nil
}

// ReceiptParams is the textual form of a ReceiptQuery.
type ReceiptParams struct {
	From        string
	To          string
	Environment string
	Skip        string
	Take        string
}

// Query parses and validates the params. Empty skip and take fall back
// to 0 and DefaultReceiptTake.
func (p ReceiptParams) Query(loc *time.Location) (ReceiptQuery, error) {
	q := ReceiptQuery{
		Environment: NormaliseEnvironmentID(p.Environment),
		Take:        DefaultReceiptTake,
	}

	from, err := ParseFilterTime("from", p.From, false, loc)
	if err != nil {
		return ReceiptQuery{}, err
	}
	to, err := ParseFilterTime("to", p.To, true, loc)
	if err != nil {
		return ReceiptQuery{}, err
	}
	if from != nil {
		q.From = *from
	}
	if to != nil {
		q.To = *to
	}

	if q.Skip, err = pagingParam("skip", p.Skip, 0); err != nil {
		return ReceiptQuery{}, err
	}
	if q.Take, err = pagingParam("take", p.Take, DefaultReceiptTake); err != nil {
		return ReceiptQuery{}, err
	}

	if err := q.Validate(); err != nil {
		return ReceiptQuery{}, err
	}
	return q, nil
}

func pagingParam(field, value string, fallback int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &ValidationError{Field: field, Err: fmt.Errorf("%w: %q", ErrInvalidInput, value)}
	}
	return n, nil
}
