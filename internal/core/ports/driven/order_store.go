package driven

import (
	"context"
	"time"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
)

// HeaderQuery selects order headers in one environment.
type HeaderQuery struct {
	// From and To bound invoice log timestamps when Invoiced, otherwise
	// the order date. Both nil means unbounded.
	From *time.Time
	To   *time.Time

	// Plates restricts to these registration plates. At most one batch.
	Plates []string

	// Status matches the order status code exactly when non-empty.
	Status string

	// Invoiced restricts to orders with invoice log entries.
	Invoiced bool
}

// OrderStore reads raw records from one legacy database over one
// connection. Callers must keep IN lists within the configured batch size
// and must call Close when done.
type OrderStore interface {
	// OrderHeaders returns order headers with raw customer, payer and
	// driver records attached, newest first.
	OrderHeaders(ctx context.Context, q HeaderQuery) ([]domain.Order, error)

	// LineItems returns the line items of the given orders.
	LineItems(ctx context.Context, orderNumbers []int) ([]domain.LineItem, error)

	// Invoices returns invoices with their log entries for the given orders.
	// Log entries are restricted to [from, to] when both are set.
	Invoices(ctx context.Context, orderNumbers []int, from, to *time.Time) ([]domain.Invoice, error)

	// Vehicles returns vehicle register entries for the given plates.
	Vehicles(ctx context.Context, plates []string) ([]domain.Vehicle, error)

	// ReceiptHeaders returns the page of goods receipts delivered within
	// [q.From, q.To], ordered by receipt number. Rows are not loaded.
	ReceiptHeaders(ctx context.Context, q domain.ReceiptQuery) ([]domain.GoodsReceipt, error)

	// ReceiptRows returns the rows of the given receipts.
	ReceiptRows(ctx context.Context, receiptNumbers []int) ([]domain.ReceiptRow, error)

	// Close releases the connection.
	Close() error
}

// StoreOpener opens an OrderStore for an environment.
type StoreOpener interface {
	// Open acquires a connection to the environment's database.
	Open(ctx context.Context, env domain.Environment) (OrderStore, error)

	// Close releases all pooled resources.
	Close() error
}
