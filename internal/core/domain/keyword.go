package domain

import (
	"strings"
	"unicode/utf8"
)

// MinInnerKeywordLen is the shortest keyword allowed to match inside a
// word. Shorter ones such as "AC" would hit "VACUUM".
const MinInnerKeywordLen = 3

// KeywordEntry is one keyword of a category. Short keywords carry a leading
// space so they only match at the start of a word.
type KeywordEntry struct {
	ID      int    `json:"id"`
	Keyword string `json:"keyword"`
}

// KeywordCategory is a named, ordered list of keywords.
type KeywordCategory struct {
	Category string         `json:"category"`
	Entries  []KeywordEntry `json:"entries"`
}

// KeywordTable is the ordered category table used to classify free text.
// A table is immutable once built; replace it instead of mutating it.
type KeywordTable struct {
	categories []KeywordCategory
}

// NewKeywordTable copies categories into an immutable table. Entry ids are
// assigned sequentially across the table in evaluation order.
func NewKeywordTable(categories []KeywordCategory) KeywordTable {
	out := make([]KeywordCategory, len(categories))
	id := 0
	for i, c := range categories {
		entries := make([]KeywordEntry, len(c.Entries))
		for j, e := range c.Entries {
			entries[j] = KeywordEntry{ID: id, Keyword: e.Keyword}
			id++
		}
		out[i] = KeywordCategory{Category: c.Category, Entries: entries}
	}
	return KeywordTable{categories: out}
}

// AnchorKeyword gives a keyword shorter than MinInnerKeywordLen a leading
// space so it only matches at the start of a word. It reports whether the
// keyword was changed.
func AnchorKeyword(k string) (string, bool) {
	if strings.HasPrefix(k, " ") {
		return k, false
	}
	trimmed := strings.TrimSpace(k)
	if trimmed == "" || utf8.RuneCountInString(trimmed) >= MinInnerKeywordLen {
		return k, false
	}
	return " " + trimmed, true
}

// KeywordTableFromLists builds a table from category names and keyword lists.
// Categories are evaluated in the order of names. Blank keywords are dropped
// and short ones anchored with AnchorKeyword.
func KeywordTableFromLists(names []string, keywords map[string][]string) KeywordTable {
	categories := make([]KeywordCategory, 0, len(names))
	for _, name := range names {
		c := KeywordCategory{Category: name}
		for _, k := range keywords[name] {
			if strings.TrimSpace(k) == "" {
				continue
			}
			k, _ = AnchorKeyword(k)
			c.Entries = append(c.Entries, KeywordEntry{Keyword: k})
		}
		categories = append(categories, c)
	}
	return NewKeywordTable(categories)
}

// Categories returns a copy of the categories in evaluation order.
func (t KeywordTable) Categories() []KeywordCategory {
	out := make([]KeywordCategory, len(t.categories))
	for i, c := range t.categories {
		out[i] = KeywordCategory{Category: c.Category, Entries: append([]KeywordEntry(nil), c.Entries...)}
	}
	return out
}

// Len returns the number of categories.
func (t KeywordTable) Len() int {
	return len(t.categories)
}

// Each calls fn for every keyword in evaluation order until fn returns false.
func (t KeywordTable) Each(fn func(category, keyword string) bool) {
	for _, c := range t.categories {
		for _, e := range c.Entries {
			if !fn(c.Category, e.Keyword) {
				return
			}
		}
	}
}

// DefaultKeywordTable returns the built-in workshop category table.
func DefaultKeywordTable() KeywordTable {
	return KeywordTableFromLists(
		[]string{"Reparation", "Felsökning", "AC", "Service", "Tillbehör", "Bromsar", "Däck", "CTC"},
		map[string][]string{
			"Reparation": {"REPARATION"},
			"Felsökning": {"DIAGNOS", "FELKOD", "AVLÄS", "FELSÖK", "MOTORLA", "UNDERSÖK", "USK"},
			"AC":         {" AC", "KONDENSOR", "KYLER", "KOMPRESSOR"},
			"Service":    {"SERVICE", "MÅNAD"},
			"Tillbehör": {
				"DRAG", "EXTRALJUS", "LEDRAMP", "LED-RAMP", " MV", "KUPEV", " MOK",
				"MOTORVÄRMARE", "KUPÉVÄRMARE",
			},
			"Bromsar": {"BROMS", "KLOSSAR", "SKIVOR"},
			"Däck":    {"DÄCK", "HJULINSTÄLLNING", "HJULSMATNING", "HJULSKIFT", "TPMS", "PUNK", "BALANS"},
			"CTC":     {"CTC"},
		},
	)
}
