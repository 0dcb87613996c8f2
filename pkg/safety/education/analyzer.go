// Package education scores the learning value of a reply.
//
// Privacy risk always dominates: a reply that touches personal information
// never scores as educational, whatever else it contains.
package education

import (
	"strings"

	"aiteddy-hq/guardian/pkg/safety/model"
	"aiteddy-hq/guardian/pkg/safety/rules"
)

const (
	interrogativeBonus = 0.2
	privacyPenalty     = 0.6
	privacyResidual    = 0.2
	youngChildAge      = 5
	youngChildBoost    = 0.1
)

// Options tune the analyzer.
type Options struct {
	// AgeBoost adds a small bonus for young children when the reply has any
	// educational signal and no privacy risk.
	AgeBoost bool
}

// Analyzer scores educational keywords, story markers, learning phrases and
// interrogative phrasing, then applies the privacy penalty.
type Analyzer struct {
	store *rules.Store
	opts  Options
}

// NewAnalyzer creates an educational value analyzer over store.
func NewAnalyzer(store *rules.Store, opts Options) *Analyzer {
	return &Analyzer{store: store, opts: opts}
}

// Analyze scores text for a child of the given age.
func (a *Analyzer) Analyze(text string, childAge int) (*model.EducationalValueResult, error) {
	if err := model.CheckText(text); err != nil {
		return nil, err
	}
	lower := rules.Normalize(text)

	result := &model.EducationalValueResult{
		LearningSignals: make([]string, 0),
		StorySignals:    make([]string, 0),
		PrivacyPatterns: make([]string, 0),
	}

	score := 0.0
	matches := 0

	for _, category := range []string{rules.CategoryEducational, rules.CategoryLearningPhrases} {
		found := a.store.Match(category, lower)
		score += float64(len(found)) * a.store.Increment(category)
		matches += len(found)
		for _, m := range found {
			result.LearningSignals = append(result.LearningSignals, m.Phrase)
		}
	}

	story := a.store.Match(rules.CategoryStory, lower)
	score += float64(len(story)) * a.store.Increment(rules.CategoryStory)
	matches += len(story)
	for _, m := range story {
		result.StorySignals = append(result.StorySignals, m.Phrase)
	}

	if strings.Contains(lower, "?") || a.store.Contains(rules.CategoryQuestionMarkers, lower) {
		result.Interrogative = true
		score += interrogativeBonus
		matches++
	}

	for _, m := range a.store.Match(rules.CategoryPrivacy, lower) {
		result.PrivacyPatterns = append(result.PrivacyPatterns, m.Phrase)
	}
	if len(result.PrivacyPatterns) > 0 {
		result.PrivacyRisk = true
		score -= privacyPenalty
		if score < 0 {
			score = 0
		}
		if score > privacyResidual {
			score = 0
		}
	}

	score = model.Clamp01(score)

	if a.opts.AgeBoost && childAge <= youngChildAge && matches > 0 && !result.PrivacyRisk {
		score = model.Clamp01(score + youngChildBoost)
		result.AgeBoostApplied = true
	}

	result.EducationalScore = score
	return result, nil
}
