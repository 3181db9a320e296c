package mcp

import (
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driving"
)

// Ports are the services the MCP tools and resources call into. All three
// are required.
type Ports struct {
	// Registry lists environments and their facilities.
	Registry driving.EnvironmentRegistry

	// Classifier matches free text against the keyword table.
	Classifier driving.Classifier

	// Orders runs fan-out order queries.
	Orders driving.OrderQuery
}

// Validate reports the first missing port.
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
