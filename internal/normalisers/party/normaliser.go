// Package party derives the normalised fields of a customer register entry.
package party

import (
	"strings"
	"time"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driven"
	"github.com/niemi-bil/infoflex-bridge/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.PartyNormaliser = (*Normaliser)(nil)

// Normaliser fills the derived fields of a Party from its raw fields.
type Normaliser struct {
	priority domain.PhonePriority
	now      func() time.Time
}

// New creates a party normaliser testing phone fields in the given priority.
func New(priority domain.PhonePriority) *Normaliser {
	if !priority.IsValid() {
		priority = domain.PhoneTel1First
	}
	return &Normaliser{priority: priority, now: time.Now}
}

// WithClock returns a copy of the normaliser that uses now for age checks.
func (n *Normaliser) WithClock(now func() time.Time) *Normaliser {
	c := *n
	c.now = now
	return &c
}

// Normalise recomputes every derived field. Calling it twice yields the
// same party.
func (n *Normaliser) Normalise(p *domain.Party) {
	if p == nil {
		return
	}

	p.Type, p.BirthDate = normalisers.ClassifyOrgNumber(p.OrgNumber, n.now())

	// A party carries either a split person name or a company name.
	p.FirstName, p.LastName, p.CompanyName = "", "", ""
	first, last, ok := normalisers.SplitName(p.Name)
	switch {
	case ok:
		p.FirstName, p.LastName = first, last
	case p.Type == domain.CustomerCompany:
		p.CompanyName = strings.TrimSpace(p.Name)
	}

	p.ZipCode, p.City = normalisers.SplitPostal(p.PostalAddress)
	p.MobilePhone = normalisers.FirstMobile(p.Phones(), n.priority.Order())
}
