// Package domain holds the order bridge's entities and the rules that need
// nothing but the standard library.
//
// An Order is one Infoflex work order header with its line items, invoices,
// vehicle and three parties (customer, payer, driver). Each Environment is one
// Firebird database and the facility it serves. OrderFilter selects orders by
// date window, plates or phone numbers. KeywordTable maps labor text to
// service categories, and Subscriber is what reaches Rule.io.
//
// Every other package imports domain; domain imports none of them.
package domain
