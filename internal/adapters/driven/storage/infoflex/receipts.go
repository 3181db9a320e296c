package infoflex

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
)

const receiptHeaderQuery = `
SELECT
	h.ORDERNR,
	h.ORDERDATUM,
	h.LEV,
	h.INLEVDATUM,
	CAST(h.SUMMA AS DOUBLE PRECISION),
	h.ORDERTYP,
	h.LEVREF,
	h.KUNDREF,
	h.INLEV,
	h.BEST,
	h.CORRELATIONID,
	h.EORDERID,
	h.DELIVERYCODE,
	h.LAGINK_CREATED_BY,
	h.LAGINK_CREATED_AT,
	h.LAGINK_UPDATED_BY,
	h.LAGINK_UPDATED_AT
FROM LAGINKHD h
WHERE h.INLEVDATUM >= ?
  AND h.INLEVDATUM <= ?
ORDER BY h.ORDERNR`

const receiptRowQuery = `
SELECT
	ORDERNR,
	RADNR,
	ARTNR,
	BEN,
	CAST(ANTAL AS DOUBLE PRECISION),
	CAST(PRIS AS DOUBLE PRECISION),
	LEV,
	CAST(REST AS DOUBLE PRECISION),
	CAST(LEVERERAT AS DOUBLE PRECISION),
	RADREF,
	BESTNR,
	CAST(SUMMA AS DOUBLE PRECISION),
	CAST(STATUS AS INTEGER),
	ORDRADNR,
	TYP,
	ITEM_EXTERNAL_ID,
	LAGINKRD_CREATED_BY,
	LAGINKRD_CREATED_AT,
	LAGINKRD_UPDATED_BY,
	LAGINKRD_UPDATED_AT
FROM LAGINKRD
WHERE ORDERNR IN (%s)
ORDER BY ORDERNR, RADNR`

// ReceiptHeaders returns one page of goods receipts. Paging is applied
// while reading the cursor since FIRST/SKIP and OFFSET/FETCH are not
// portable across drivers.
func (s *Store) ReceiptHeaders(ctx context.Context, q domain.ReceiptQuery) ([]domain.GoodsReceipt, error) {
	if q.Take < 1 {
		return nil, nil
	}

	rows, err := s.conn.QueryContext(ctx, receiptHeaderQuery, q.From, q.To)
	if err != nil {
		return nil, fmt.Errorf("querying goods receipts: %w", err)
	}
	defer rows.Close()

	receipts := make([]domain.GoodsReceipt, 0, min(q.Take, domain.DefaultReceiptTake))
	for seen := 0; rows.Next(); seen++ {
		if seen < q.Skip {
			continue
		}
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, *r)
		if len(receipts) == q.Take {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating goods receipts: %w", err)
	}
	return receipts, nil
}

func scanReceipt(rows *sql.Rows) (*domain.GoodsReceipt, error) {
	var (
		number, eorder, delivery                 sql.NullInt64
		supplier, orderType, supplierRef         sql.NullString
		customerRef, receivedBy, orderedBy       sql.NullString
		correlation, createdBy, updatedBy        sql.NullString
		total                                    sql.NullFloat64
		orderDate, deliveredAt, created, updated dbTime
	)
	if err := rows.Scan(&number, &orderDate, &supplier, &deliveredAt, &total, &orderType,
		&supplierRef, &customerRef, &receivedBy, &orderedBy, &correlation, &eorder, &delivery,
		&createdBy, &created, &updatedBy, &updated); err != nil {
		return nil, fmt.Errorf("scanning goods receipt: %w", err)
	}
	return &domain.GoodsReceipt{
		Number:        num(number),
		OrderDate:     orderDate.Ptr(),
		Supplier:      str(supplier),
		DeliveredAt:   deliveredAt.Ptr(),
		Total:         amount(total),
		OrderType:     str(orderType),
		SupplierRef:   str(supplierRef),
		CustomerRef:   str(customerRef),
		ReceivedBy:    str(receivedBy),
		OrderedBy:     str(orderedBy),
		CorrelationID: str(correlation),
		EOrderID:      num(eorder),
		DeliveryCode:  num(delivery),
		CreatedBy:     str(createdBy),
		CreatedAt:     created.Ptr(),
		UpdatedBy:     str(updatedBy),
		UpdatedAt:     updated.Ptr(),
	}, nil
}

// ReceiptRows returns the rows of the given receipts in row order.
func (s *Store) ReceiptRows(ctx context.Context, receiptNumbers []int) ([]domain.ReceiptRow, error) {
	if len(receiptNumbers) == 0 {
		return nil, nil
	}

	stmt := fmt.Sprintf(receiptRowQuery, placeholders(len(receiptNumbers)))
	rows, err := s.conn.QueryContext(ctx, stmt, intArgs(receiptNumbers)...)
	if err != nil {
		return nil, fmt.Errorf("querying receipt rows: %w", err)
	}
	defer rows.Close()

	var out []domain.ReceiptRow //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			receipt, row, status, orderRow, external sql.NullInt64
			article, text, supplier, rowRef          sql.NullString
			purchase, typ, createdBy, updatedBy      sql.NullString
			qty, price, rest, delivered, sum         sql.NullFloat64
			created, updated                         dbTime
		)
		if err := rows.Scan(&receipt, &row, &article, &text, &qty, &price, &supplier, &rest, &delivered,
			&rowRef, &purchase, &sum, &status, &orderRow, &typ, &external,
			&createdBy, &created, &updatedBy, &updated); err != nil {
			return nil, fmt.Errorf("scanning receipt row: %w", err)
		}
		out = append(out, domain.ReceiptRow{
			ReceiptNumber:  num(receipt),
			Row:            num(row),
			Article:        str(article),
			Description:    str(text),
			Quantity:       amount(qty),
			Price:          amount(price),
			Supplier:       str(supplier),
			Remaining:      amount(rest),
			Delivered:      amount(delivered),
			RowRef:         str(rowRef),
			PurchaseOrder:  str(purchase),
			Sum:            amount(sum),
			Status:         num(status),
			OrderRowNumber: num(orderRow),
			Type:           str(typ),
			ExternalItemID: num(external),
			CreatedBy:      str(createdBy),
			CreatedAt:      created.Ptr(),
			UpdatedBy:      str(updatedBy),
			UpdatedAt:      updated.Ptr(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating receipt rows: %w", err)
	}
	return out, nil
}
