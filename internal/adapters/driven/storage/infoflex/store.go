package infoflex

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.OrderStore = (*Store)(nil)

// querier is the subset of *sql.Conn the store needs.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	Close() error
}

// Store reads one environment over one dedicated connection.
type Store struct {
	conn querier
}

func newStore(conn querier) *Store {
	return &Store{conn: conn}
}

// Close returns the connection to its pool.
func (s *Store) Close() error {
	return s.conn.Close()
}

// OrderHeaders returns headers with the raw customer, payer and driver
// records attached. An order with several log entries in range is
// returned once.
func (s *Store) OrderHeaders(ctx context.Context, q driven.HeaderQuery) ([]domain.Order, error) {
	stmt, args := headerSQL(q)
	rows, err := s.conn.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("querying order headers: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order //nolint:prealloc // size unknown from query
	for rows.Next() {
		o, err := scanHeader(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order headers: %w", err)
	}
	return orders, nil
}

func scanHeader(rows *sql.Rows) (*domain.Order, error) {
	var (
		o                                domain.Order
		number, customer                 sql.NullInt64
		plate, status, invoiced, name    sql.NullString
		total                            sql.NullFloat64
		odometer, payer, driver          sql.NullInt64
		date, delivery, created, updated dbTime
		parties                          [3]partyRow
	)

	dest := []any{
		&number, &customer, &date, &plate, &status, &delivery, &invoiced, &name,
		&total, &odometer, &created, &updated, &payer, &driver,
	}
	for i := range parties {
		dest = append(dest, parties[i].dest()...)
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scanning order header: %w", err)
	}

	o.Number = num(number)
	o.CustomerNumber = num(customer)
	o.Date = date.Ptr()
	o.Plate = str(plate)
	o.Status = str(status)
	o.DeliveryDate = delivery.Ptr()
	o.Invoiced = str(invoiced)
	o.Name = str(name)
	o.TotalInclVAT = amount(total)
	o.Odometer = num(odometer)
	o.CreatedAt = created.Ptr()
	o.UpdatedAt = updated.Ptr()
	o.PayerNumber = num(payer)
	o.DriverNumber = num(driver)
	o.Customer = parties[0].party()
	o.Payer = parties[1].party()
	o.Driver = parties[2].party()
	return &o, nil
}

// partyRow holds the raw KUNREG columns of one alias.
type partyRow struct {
	number                          sql.NullInt64
	name, addr1, addr2, postal, org sql.NullString
	tel1, tel2, tel3, email         sql.NullString
}

func (r *partyRow) dest() []any {
	return []any{
		&r.number, &r.name, &r.addr1, &r.addr2, &r.postal,
		&r.org, &r.tel1, &r.tel2, &r.tel3, &r.email,
	}
}

// party returns nil when the join found no register entry.
func (r *partyRow) party() *domain.Party {
	if !r.number.Valid {
		return nil
	}
	return &domain.Party{
		Number:        int(r.number.Int64),
		Name:          str(r.name),
		Address1:      str(r.addr1),
		Address2:      str(r.addr2),
		PostalAddress: str(r.postal),
		OrgNumber:     str(r.org),
		Phone1:        str(r.tel1),
		Phone2:        str(r.tel2),
		Phone3:        str(r.tel3),
		Email:         str(r.email),
	}
}

// LineItems returns the rows of the given orders.
func (s *Store) LineItems(ctx context.Context, orderNumbers []int) ([]domain.LineItem, error) {
	if len(orderNumbers) == 0 {
		return nil, nil
	}

	stmt := fmt.Sprintf(lineItemQuery, placeholders(len(orderNumbers)))
	rows, err := s.conn.QueryContext(ctx, stmt, intArgs(orderNumbers)...)
	if err != nil {
		return nil, fmt.Errorf("querying line items: %w", err)
	}
	defer rows.Close()

	var items []domain.LineItem //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			li                                domain.LineItem
			order, row                        sql.NullInt64
			article, text, typeCode, material sql.NullString
			qty, price, discount, vat, sum    sql.NullFloat64
			created, updated                  dbTime
		)
		if err := rows.Scan(&order, &row, &article, &text, &qty, &price, &discount, &vat,
			&typeCode, &material, &sum, &created, &updated); err != nil {
			return nil, fmt.Errorf("scanning line item: %w", err)
		}
		li.OrderNumber = num(order)
		li.Row = num(row)
		li.Article = str(article)
		li.Text = str(text)
		li.Quantity = amount(qty)
		li.UnitPrice = amount(price)
		li.Discount = amount(discount)
		li.VAT = amount(vat)
		li.TypeCode = str(typeCode)
		li.MaterialCode = str(material)
		li.SumExclVAT = amount(sum)
		li.CreatedAt = created.Ptr()
		li.UpdatedAt = updated.Ptr()
		items = append(items, li)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating line items: %w", err)
	}
	return items, nil
}

// Invoices returns one invoice per order number with its log entries in
// timestamp order.
func (s *Store) Invoices(ctx context.Context, orderNumbers []int, from, to *time.Time) ([]domain.Invoice, error) {
	if len(orderNumbers) == 0 {
		return nil, nil
	}

	stmt, args := invoiceSQL(orderNumbers, from, to)
	rows, err := s.conn.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("querying invoices: %w", err)
	}
	defer rows.Close()

	var invoices []domain.Invoice
	index := make(map[int]int)
	for rows.Next() {
		var (
			invoiceNo, modelYear, owner, payer, driver sql.NullInt64
			vehicle, manufacturer, model, vin          sql.NullString
			ownerName, payerName, driverName           sql.NullString
			registered, stamp                          dbTime
			logID, txn, logType                        sql.NullInt64
			desc, errCode, errMsg, keyNo               sql.NullString
		)
		if err := rows.Scan(&invoiceNo, &vehicle, &manufacturer, &model, &vin, &registered, &modelYear,
			&owner, &ownerName, &payer, &payerName, &driver, &driverName,
			&logID, &stamp, &txn, &desc, &errCode, &errMsg, &logType, &keyNo); err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		n := num(invoiceNo)
		i, ok := index[n]
		if !ok {
			invoices = append(invoices, domain.Invoice{
				Number:       n,
				VehicleNo:    str(vehicle),
				Manufacturer: str(manufacturer),
				Model:        str(model),
				VIN:          str(vin),
				RegisteredAt: registered.Ptr(),
				ModelYear:    num(modelYear),
				OwnerNumber:  num(owner),
				OwnerName:    str(ownerName),
				PayerNumber:  num(payer),
				PayerName:    str(payerName),
				DriverNumber: num(driver),
				DriverName:   str(driverName),
				Logs:         []domain.LogEntry{},
			})
			i = len(invoices) - 1
			index[n] = i
		}
		invoices[i].Logs = append(invoices[i].Logs, domain.LogEntry{
			ID:            num(logID),
			Timestamp:     stamp.Ptr(),
			TransactionNo: num(txn),
			Description:   str(desc),
			ErrorCode:     str(errCode),
			ErrorMessage:  str(errMsg),
			LogType:       num(logType),
			KeyNo:         str(keyNo),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoices: %w", err)
	}
	return invoices, nil
}

// Vehicles returns register entries for the given plates. Plates are
// compared upper-cased and trimmed.
func (s *Store) Vehicles(ctx context.Context, plates []string) ([]domain.Vehicle, error) {
	if len(plates) == 0 {
		return nil, nil
	}

	args := make([]any, len(plates))
	for i, p := range plates {
		args[i] = strings.ToUpper(strings.TrimSpace(p))
	}

	stmt := fmt.Sprintf(vehicleQuery, placeholders(len(plates)))
	rows, err := s.conn.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("querying vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []domain.Vehicle //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			plate, brand, model, category, fuel sql.NullString
			year                                sql.NullInt64
		)
		if err := rows.Scan(&plate, &brand, &model, &year, &category, &fuel); err != nil {
			return nil, fmt.Errorf("scanning vehicle: %w", err)
		}
		vehicles = append(vehicles, domain.Vehicle{
			Plate:    str(plate),
			Make:     str(brand),
			Model:    str(model),
			Year:     num(year),
			Category: str(category),
			Fuel:     str(fuel),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vehicles: %w", err)
	}
	return vehicles, nil
}

func intArgs(values []int) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
