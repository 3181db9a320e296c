package infoflex

import (
	"strings"
	"time"

	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driven"
)

// partyColumns are the KUNREG columns read for every party alias.
var partyColumns = []string{
	"KUN_KUNR", "KUN_NAMN", "KUN_ADR1", "KUN_ADR2", "KUN_PADR",
	"KUN_ORGN", "KUN_TEL1", "KUN_TEL2", "KUN_TEL3", "KUN_EPOSTADRESS",
}

const headerColumns = `
	o.ORH_DOKN,
	o.ORH_KUNR,
	o.ORH_DOKD,
	o.ORH_RENR,
	o.ORH_STAT,
	o.ORH_LOVDAT,
	o.ORH_FAKTURERAD,
	o.ORH_NAMN,
	CAST(o.ORH_SUMMAINKL AS DOUBLE PRECISION),
	o.ORH_MILS,
	o.ORH_CREATED_AT,
	o.ORH_UPDATED_AT,
	CASE WHEN o.ORH_BETKUNR > 0 THEN o.ORH_BETKUNR ELSE NULL END,
	CASE WHEN o.ORH_DRIVER_NO > 0 THEN o.ORH_DRIVER_NO ELSE NULL END`

// invoiceJoin links orders to their invoices and the accounting log.
const invoiceJoin = `
	INNER JOIN INVOICEINDIVIDUAL i ON o.ORH_DOKN = i.INVOICE_NO
	INNER JOIN FORTNOX_LOG f ON CAST(i.INVOICE_NO AS VARCHAR(50)) = f.KEY_NO`

const partyJoins = `
	LEFT JOIN KUNREG c ON o.ORH_KUNR = c.KUN_KUNR
	LEFT JOIN KUNREG p ON o.ORH_BETKUNR = p.KUN_KUNR AND o.ORH_BETKUNR > 0
	LEFT JOIN KUNREG d ON o.ORH_DRIVER_NO = d.KUN_KUNR AND o.ORH_DRIVER_NO > 0`

const lineItemQuery = `
SELECT
	ORR_DOKN,
	ORR_RADNR,
	ORR_ARTKOD,
	ORR_BESKR,
	CAST(ORR_ANTAL AS DOUBLE PRECISION),
	CAST(ORR_PRIS AS DOUBLE PRECISION),
	CAST(ORR_RABATT AS DOUBLE PRECISION),
	CAST(ORR_MOMS AS DOUBLE PRECISION),
	ORR_KOD,
	ORR_MATKOD,
	CAST(ORR_SUMMA AS DOUBLE PRECISION),
	ORR_CREATED_AT,
	ORR_UPDATED_AT
FROM ORDRAD
WHERE ORR_DOKN IN (%s)
ORDER BY ORR_DOKN, ORR_RADNR`

const invoiceColumns = `
	i.INVOICE_NO,
	i.VEHICLE_NO,
	i.MANUFACTURER,
	i.MODEL,
	i.VIN,
	i.REGISTRATION_DATE,
	i.MODEL_YEAR,
	CASE WHEN i.OWNER_NO > 0 THEN i.OWNER_NO ELSE NULL END,
	i.OWNER_NAME,
	CASE WHEN i.PAYER_NO > 0 THEN i.PAYER_NO ELSE NULL END,
	i.PAYER_NAME,
	CASE WHEN i.DRIVER_NO > 0 THEN i.DRIVER_NO ELSE NULL END,
	i.DRIVER_NAME,
	f.ID,
	f.TIME_STAMP,
	f.TRANSACTION_NO,
	f.DESCRIPTION,
	f.ERROR_CODE,
	f.ERROR_MESSAGE,
	f.LOG_TYPE,
	f.KEY_NO`

const vehicleQuery = `
SELECT
	BIL_RENR,
	BIL_MARK,
	BIL_MODE,
	BIL_ARSM,
	BIL_VEHICLECAT,
	BIL_FUEL
FROM BILREG
WHERE UPPER(TRIM(BIL_RENR)) IN (%s)`

// placeholders returns n comma separated positional parameters.
func placeholders(n int) string {
	if n < 1 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// query is a SQL statement under construction with its arguments.
type query struct {
	sb    strings.Builder
	where []string
	args  []any
}

func (q *query) filter(cond string, args ...any) {
	q.where = append(q.where, cond)
	q.args = append(q.args, args...)
}

func (q *query) build(orderBy string) (string, []any) {
	if len(q.where) > 0 {
		q.sb.WriteString("\nWHERE ")
		q.sb.WriteString(strings.Join(q.where, "\n  AND "))
	}
	if orderBy != "" {
		q.sb.WriteString("\nORDER BY ")
		q.sb.WriteString(orderBy)
	}
	return q.sb.String(), q.args
}

// headerSQL builds the order header query. Invoiced orders are selected
// by their accounting log timestamps, others by order date.
func headerSQL(h driven.HeaderQuery) (string, []any) {
	q := &query{}
	q.sb.WriteString("SELECT DISTINCT")
	q.sb.WriteString(headerColumns)
	for _, alias := range []string{"c", "p", "d"} {
		for _, col := range partyColumns {
			q.sb.WriteString(",\n\t")
			q.sb.WriteString(alias + "." + col)
		}
	}
	q.sb.WriteString("\nFROM ORDHUV o")
	if h.Invoiced {
		q.sb.WriteString(invoiceJoin)
	}
	q.sb.WriteString(partyJoins)

	if h.Invoiced {
		q.filter("f.KEY_NO IS NOT NULL")
		q.filter("f.KEY_NO <> ''")
		rangeFilter(q, "f.TIME_STAMP", h.From, h.To)
	} else {
		rangeFilter(q, "o.ORH_DOKD", h.From, h.To)
	}
	if len(h.Plates) > 0 {
		args := make([]any, len(h.Plates))
		for i, p := range h.Plates {
			args[i] = strings.ToUpper(strings.TrimSpace(p))
		}
		q.filter("UPPER(TRIM(o.ORH_RENR)) IN ("+placeholders(len(args))+")", args...)
	}
	if h.Status != "" {
		q.filter("o.ORH_STAT = ?", h.Status)
	}

	return q.build("o.ORH_DOKD DESC, o.ORH_DOKN DESC")
}

// invoiceSQL builds the invoice and log query for a batch of orders.
func invoiceSQL(numbers []int, from, to *time.Time) (string, []any) {
	q := &query{}
	q.sb.WriteString("SELECT")
	q.sb.WriteString(invoiceColumns)
	q.sb.WriteString(`
FROM INVOICEINDIVIDUAL i
	INNER JOIN FORTNOX_LOG f ON CAST(i.INVOICE_NO AS VARCHAR(50)) = f.KEY_NO`)

	q.filter("i.INVOICE_NO IN ("+placeholders(len(numbers))+")", intArgs(numbers)...)
	q.filter("f.KEY_NO IS NOT NULL")
	q.filter("f.KEY_NO <> ''")
	rangeFilter(q, "f.TIME_STAMP", from, to)

	return q.build("i.INVOICE_NO, f.TIME_STAMP, f.ID")
}

func rangeFilter(q *query, column string, from, to *time.Time) {
	if from != nil {
		q.filter(column+" >= ?", *from)
	}
	if to != nil {
		q.filter(column+" <= ?", *to)
	}
}
