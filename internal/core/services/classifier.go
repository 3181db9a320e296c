package services

import (
	"strings"
	"sync/atomic"

	"golang.org/x/text/unicode/norm"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driving"
)

// Ensure Classifier implements the interface.
var _ driving.Classifier = (*Classifier)(nil)

// Classifier matches free text against an ordered keyword table.
// The table is swapped atomically; a classification always sees one table.
type Classifier struct {
	table atomic.Pointer[domain.KeywordTable]
}

// NewClassifier creates a classifier over table.
func NewClassifier(table domain.KeywordTable) *Classifier {
	c := &Classifier{}
	c.SetTable(table)
	return c
}

// SetTable replaces the active keyword table.
func (c *Classifier) SetTable(table domain.KeywordTable) {
	c.table.Store(&table)
}

// Categories returns the active keyword table.
func (c *Classifier) Categories() []domain.KeywordCategory {
	return c.table.Load().Categories()
}

// Classify returns the first keyword found in text, walking categories in
// table order and keywords in category order. Matching is a case-insensitive
// substring test on NFC composed text, so a decomposed "Ä" still matches;
// text is padded with a leading space so space-prefixed keywords also match
// at the very start.
func (c *Classifier) Classify(text string) driving.Classification {
	if strings.TrimSpace(text) == "" {
		return driving.Classification{}
	}
	upper := " " + strings.ToUpper(norm.NFC.String(text))

	var result driving.Classification
	c.table.Load().Each(func(category, keyword string) bool {
		if keyword == "" || !strings.Contains(upper, strings.ToUpper(norm.NFC.String(keyword))) {
			return true
		}
		result = driving.Classification{Keyword: keyword, Category: category}
		return false
	})
	return result
}
