package driving

import "github.com/niemi-bil/infoflex-bridge/internal/core/domain"

// Classification is the result of matching free text against the keyword table.
type Classification struct {
	Keyword  string `json:"keyword,omitempty"`
	Category string `json:"category,omitempty"`
}

// Matched reports whether a category was found.
func (c Classification) Matched() bool {
	return c.Category != ""
}

// Classifier tags free text with a category via ordered keyword matching.
type Classifier interface {
	// Classify returns the first matching keyword and its category, or the
	// zero Classification when nothing matches.
	Classify(text string) Classification

	// Categories returns the active keyword table.
	Categories() []domain.KeywordCategory

	// SetTable replaces the active keyword table.
	SetTable(table domain.KeywordTable)
}
