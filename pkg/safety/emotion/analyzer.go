// Package emotion scores the emotional tone of a reply and of a conversation.
package emotion

import (
	"fmt"
	"sort"

	"aiteddy-hq/guardian/pkg/safety/model"
	"aiteddy-hq/guardian/pkg/safety/rules"
)

const (
	positiveThreshold = 0.2

	avoidedEmotionLimit   = 0.3
	avoidedEmotionPenalty = 0.5
)

// avoidedEmotions lists emotions that overwhelm children younger than the key.
var avoidedEmotions = []struct {
	under    int
	emotions []string
}{
	{under: 4, emotions: []string{"anger", "fear"}},
	{under: 5, emotions: []string{"anger"}},
}

// Analyzer scores sentiment, emotion classes, age appropriateness and
// emotional triggers.
type Analyzer struct {
	store *rules.Store

	emotions []string
	triggers []string
}

// NewAnalyzer creates an emotional impact analyzer over store.
func NewAnalyzer(store *rules.Store) *Analyzer {
	return &Analyzer{
		store:    store,
		emotions: sortedKeys(store.Lookup(rules.CategoryEmotions)),
		triggers: sortedKeys(store.Lookup(rules.CategoryTriggers)),
	}
}

// Analyze scores text for a child of the given age.
func (a *Analyzer) Analyze(text string, childAge int) (*model.EmotionalImpactResult, error) {
	if err := model.CheckText(text); err != nil {
		return nil, err
	}
	lower := rules.Normalize(text)

	pos, _ := a.store.Score(rules.CategoryPositive, lower)
	neg, _ := a.store.Score(rules.CategoryNegative, lower)

	result := &model.EmotionalImpactResult{
		IsPositive:        pos > positiveThreshold,
		PositiveScore:     pos,
		NegativeScore:     neg,
		OverallSentiment:  pos - neg,
		EmotionScores:     a.emotionScores(lower),
		PotentialTriggers: a.detectTriggers(lower),
	}
	result.AgeAppropriateness = a.ageAppropriateness(text, result.EmotionScores, childAge)
	result.Recommendations = a.recommend(result.EmotionScores, result.AgeAppropriateness, childAge)

	return result, nil
}

// emotionScores returns matches/len(class) for each emotion class.
func (a *Analyzer) emotionScores(lower string) map[string]float64 {
	scores := make(map[string]float64, len(a.emotions))
	for _, emotion := range a.emotions {
		words := a.store.Subcategory(rules.CategoryEmotions, emotion)
		if len(words) == 0 {
			scores[emotion] = 0
			continue
		}
		found := a.store.MatchSubcategory(rules.CategoryEmotions, emotion, lower)
		scores[emotion] = model.Clamp01(float64(len(found)) / float64(len(words)))
	}
	return scores
}

func (a *Analyzer) detectTriggers(lower string) []string {
	triggers := make([]string, 0)
	for _, name := range a.triggers {
		if len(a.store.MatchSubcategory(rules.CategoryTriggers, name, lower)) > 0 {
			triggers = append(triggers, name)
		}
	}
	return triggers
}

// ageAppropriateness penalizes complex vocabulary more heavily the younger the
// child, then halves the score for emotions the age should avoid.
func (a *Analyzer) ageAppropriateness(text string, emotions map[string]float64, childAge int) float64 {
	if childAge < 1 {
		childAge = 1
	}
	score := 1 - model.Clamp01(model.LongWordRatio(text)*12/float64(childAge))

	avoided := 0.0
	for _, rule := range avoidedEmotions {
		if childAge >= rule.under {
			continue
		}
		for _, e := range rule.emotions {
			avoided += emotions[e]
		}
		break
	}
	if avoided > avoidedEmotionLimit {
		score -= avoidedEmotionPenalty
	}
	return model.Clamp01(score)
}

func (a *Analyzer) recommend(emotions map[string]float64, appropriateness float64, childAge int) []string {
	recs := make([]string, 0)

	dominant, top := "", 0.0
	for _, name := range a.emotions {
		if emotions[name] > top {
			dominant, top = name, emotions[name]
		}
	}
	if top > 0.5 {
		switch {
		case dominant == "sadness" && top > 0.7:
			recs = append(recs, "Content contains high sadness - consider adding uplifting elements")
		case dominant == "fear" && childAge < 6:
			recs = append(recs, "Fear content detected - inappropriate for young children")
		case dominant == "anger" && childAge < 5:
			recs = append(recs, "Anger content detected - may overwhelm young children")
		}
	}

	if appropriateness < 0.5 {
		recs = append(recs, fmt.Sprintf("Content not suitable for age %d - consider simplification", childAge))
	}
	if emotions["joy"] < 0.2 {
		recs = append(recs, "Consider adding more positive, joyful elements")
	}
	return recs
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
