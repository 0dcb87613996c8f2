// Package toxicity scores harmful or abusive language in a reply.
package toxicity

import (
	"aiteddy-hq/guardian/pkg/safety/model"
	"aiteddy-hq/guardian/pkg/safety/rules"
)

// Analyzer scores text against the toxicity table of a rule store. Each toxic
// phrase present adds the table increment to the score, capped at 1.0.
type Analyzer struct {
	store *rules.Store
}

// NewAnalyzer creates a toxicity analyzer over store.
func NewAnalyzer(store *rules.Store) *Analyzer {
	return &Analyzer{store: store}
}

// Analyze scores text. The result lists every matched phrase as
// "toxicity_<subcategory>_<phrase>" and each matched subcategory once.
func (a *Analyzer) Analyze(text string) (*model.ToxicityResult, error) {
	if err := model.CheckText(text); err != nil {
		return nil, err
	}

	score, matches := a.store.Score(rules.CategoryToxicity, rules.Normalize(text))

	result := &model.ToxicityResult{
		ToxicityScore:    score,
		ToxicCategories:  make([]string, 0),
		DetectedPatterns: make([]string, 0, len(matches)),
		Confidence:       confidence(len(matches)),
	}

	seen := make(map[string]bool)
	for _, m := range matches {
		result.DetectedPatterns = append(result.DetectedPatterns, m.ID())
		if !seen[m.Subcategory] {
			seen[m.Subcategory] = true
			result.ToxicCategories = append(result.ToxicCategories, m.Subcategory)
		}
	}

	return result, nil
}

// confidence grows with the number of matches; a clean text is a confident
// negative.
func confidence(matches int) float64 {
	if matches == 0 {
		return 0.9
	}
	return model.Clamp01(0.4 + 0.3*float64(matches))
}
