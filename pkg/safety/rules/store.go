package rules

import (
	"sort"
	"strings"
)

// DefaultIncrement is the per-match weight used when a table does not set one.
const DefaultIncrement = 0.25

// Table is one category of phrases, grouped by subcategory. Every phrase found
// in a text adds Increment to the category score.
type Table struct {
	// Name is the category name (e.g. "toxicity", "gender").
	Name string `yaml:"name,omitempty"`

	// Increment is the score added per matched phrase.
	Increment float64 `yaml:"increment"`

	// Patterns maps subcategory name to its phrases.
	Patterns map[string][]string `yaml:"patterns"`
}

// Match is a single phrase found in a text.
type Match struct {
	Category    string
	Subcategory string
	Phrase      string
}

// ID returns the pattern identifier "<category>_<subcategory>_<phrase>".
func (m Match) ID() string {
	return m.Category + "_" + m.Subcategory + "_" + m.Phrase
}

// Store is an immutable set of phrase tables. It is safe for concurrent use;
// Merge returns a new Store and never modifies the receiver.
type Store struct {
	tables map[string]Table

	// subcategory keys per table, sorted, so matches come out in a stable order
	order map[string][]string
}

// New builds a Store from the given tables. The tables are deep-copied.
func New(tables ...Table) *Store {
	s := &Store{
		tables: make(map[string]Table, len(tables)),
		order:  make(map[string][]string, len(tables)),
	}
	for _, t := range tables {
		s.put(t)
	}
	return s
}

func (s *Store) put(t Table) {
	if t.Increment <= 0 {
		t.Increment = DefaultIncrement
	}
	cp := Table{
		Name:      t.Name,
		Increment: t.Increment,
		Patterns:  make(map[string][]string, len(t.Patterns)),
	}
	keys := make([]string, 0, len(t.Patterns))
	for sub, phrases := range t.Patterns {
		lowered := make([]string, 0, len(phrases))
		for _, p := range phrases {
			if p = Normalize(p); p != "" {
				lowered = append(lowered, p)
			}
		}
		cp.Patterns[sub] = lowered
		keys = append(keys, sub)
	}
	sort.Strings(keys)
	s.tables[t.Name] = cp
	s.order[t.Name] = keys
}

// Categories returns the category names held by the store, sorted.
func (s *Store) Categories() []string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table returns a copy of the named table.
func (s *Store) Table(category string) (Table, bool) {
	t, ok := s.tables[category]
	if !ok {
		return Table{}, false
	}
	return Table{Name: t.Name, Increment: t.Increment, Patterns: s.Lookup(category)}, true
}

// Lookup returns a copy of the subcategory -> phrases mapping of a category.
// Unknown categories yield an empty map.
func (s *Store) Lookup(category string) map[string][]string {
	t, ok := s.tables[category]
	if !ok {
		return map[string][]string{}
	}
	out := make(map[string][]string, len(t.Patterns))
	for sub, phrases := range t.Patterns {
		out[sub] = append([]string(nil), phrases...)
	}
	return out
}

// Subcategory returns the phrases of one subcategory.
func (s *Store) Subcategory(category, sub string) []string {
	return append([]string(nil), s.tables[category].Patterns[sub]...)
}

// Phrases returns every phrase of a category in stable order.
func (s *Store) Phrases(category string) []string {
	t := s.tables[category]
	var out []string
	for _, sub := range s.order[category] {
		out = append(out, t.Patterns[sub]...)
	}
	return out
}

// Increment returns the per-match weight of a category.
func (s *Store) Increment(category string) float64 {
	if t, ok := s.tables[category]; ok {
		return t.Increment
	}
	return DefaultIncrement
}

// Merge returns a new Store holding the receiver's tables with the phrases of
// the given tables appended. Existing categories keep their increment; new
// categories are added as given.
func (s *Store) Merge(tables ...Table) *Store {
	merged := make(map[string]Table, len(s.tables)+len(tables))
	for name, t := range s.tables {
		merged[name] = Table{Name: name, Increment: t.Increment, Patterns: s.Lookup(name)}
	}

	for _, t := range tables {
		existing, ok := merged[t.Name]
		if !ok {
			merged[t.Name] = t
			continue
		}
		patterns := existing.Patterns
		for sub, phrases := range t.Patterns {
			patterns[sub] = append(patterns[sub], phrases...)
		}
		merged[t.Name] = Table{Name: t.Name, Increment: existing.Increment, Patterns: patterns}
	}

	out := make([]Table, 0, len(merged))
	for _, t := range merged {
		out = append(out, t)
	}
	return New(out...)
}

// Match returns every phrase of the category contained in text. text must
// already be normalized (see Normalize). Subcategories are visited in sorted
// order and phrases in declaration order.
func (s *Store) Match(category, text string) []Match {
	t, ok := s.tables[category]
	if !ok {
		return nil
	}
	var matches []Match
	for _, sub := range s.order[category] {
		for _, phrase := range t.Patterns[sub] {
			if strings.Contains(text, phrase) {
				matches = append(matches, Match{Category: category, Subcategory: sub, Phrase: phrase})
			}
		}
	}
	return matches
}

// MatchSubcategory returns the phrases of one subcategory contained in text.
func (s *Store) MatchSubcategory(category, sub, text string) []string {
	var found []string
	for _, phrase := range s.tables[category].Patterns[sub] {
		if strings.Contains(text, phrase) {
			found = append(found, phrase)
		}
	}
	return found
}

// Contains reports whether any phrase of the category occurs in text.
func (s *Store) Contains(category, text string) bool {
	t := s.tables[category]
	for _, sub := range s.order[category] {
		for _, phrase := range t.Patterns[sub] {
			if strings.Contains(text, phrase) {
				return true
			}
		}
	}
	return false
}

// Score returns min(1, matches*increment) for the category along with the
// matches that produced it.
func (s *Store) Score(category, text string) (float64, []Match) {
	matches := s.Match(category, text)
	score := float64(len(matches)) * s.Increment(category)
	if score > 1 {
		score = 1
	}
	return score, matches
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")

// Normalize lowercases text and folds typographic apostrophes so phrase
// tables can be written with plain ASCII quotes.
func Normalize(text string) string {
	return apostrophes.Replace(strings.ToLower(strings.TrimSpace(text)))
}
