// Package httpapi serves the order query and push operations as a JSON
// HTTP API.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driving"
)

// Errors returned when required ports are missing.
var (
	ErrMissingRegistry   = errors.New("httpapi: environment registry is required")
	ErrMissingClassifier = errors.New("httpapi: classifier is required")
	ErrMissingOrderQuery = errors.New("httpapi: order query is required")
)

// Ports aggregates the driving ports the API calls.
type Ports struct {
	Registry   driving.EnvironmentRegistry
	Classifier driving.Classifier
	Orders     driving.OrderQuery

	// Phones serves POST /orders/phones. Optional.
	Phones driving.PhoneLookup

	// Pusher serves POST /push. Optional.
	Pusher driving.Pusher

	// Subscribers serves POST /subscribers. Optional.
	Subscribers driving.SubscriberForwarder

	// Receipts serves GET /receipts. Optional.
	Receipts driving.GoodsReceipts

	// Scheduler serves /scheduled routes. Optional.
	Scheduler driving.Scheduler

	// MCP is mounted at /mcp. Optional.
	MCP http.Handler
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	switch {
	case p.Registry == nil:
		return ErrMissingRegistry
	case p.Classifier == nil:
		return ErrMissingClassifier
	case p.Orders == nil:
		return ErrMissingOrderQuery
	}
	return nil
}
