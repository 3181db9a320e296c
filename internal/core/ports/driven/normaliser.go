package driven

import "github.com/niemi-bil/infoflex-bridge/internal/core/domain"

// PartyNormaliser derives the normalised fields of a customer register entry.
// Implementations must be pure and idempotent.
type PartyNormaliser interface {
	// Normalise recomputes the derived fields of p from its raw fields.
	Normalise(p *domain.Party)
}
