// Package infoflex reads orders from the legacy Infoflex databases.
//
// Each environment is a separate Firebird database with the same schema:
//
//   - ORDHUV: order headers, joined three times to KUNREG for the
//     customer, payer and driver
//   - ORDRAD: order rows
//   - INVOICEINDIVIDUAL and FORTNOX_LOG: invoices and their accounting
//     transfer log, joined on the invoice number as text
//   - BILREG: the vehicle register, keyed by plate
//
// Queries use positional ? parameters and only portable SQL so any
// database/sql driver can serve them. The Firebird driver is
// github.com/nakagami/firebirdsql. Numeric columns are cast to DOUBLE
// PRECISION so drivers return float64 rather than a decimal type.
//
// The databases are never written to.
package infoflex
