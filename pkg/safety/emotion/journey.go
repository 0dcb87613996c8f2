package emotion

import (
	"math"

	"aiteddy-hq/guardian/pkg/safety/rules"
)

// Sentiment trends reported by Journey.
const (
	TrendImproving        = "improving"
	TrendDeclining        = "declining"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// JourneyPoint is the emotional reading of one utterance.
type JourneyPoint struct {
	Turn      int                `json:"turn"`
	Emotions  map[string]float64 `json:"emotions"`
	Sentiment float64            `json:"sentiment"`
}

// JourneyResult summarizes how the tone of a conversation evolved.
type JourneyResult struct {
	Timeline        []JourneyPoint `json:"timeline"`
	Trend           string         `json:"trend"`
	Stability       float64        `json:"stability"`
	Recommendations []string       `json:"recommendations"`
}

// Journey reads the emotional tone of each utterance in history
// (most-recent-last) and reports the trend and stability across them.
func (a *Analyzer) Journey(history []string, childAge int) *JourneyResult {
	result := &JourneyResult{
		Timeline:        make([]JourneyPoint, 0, len(history)),
		Recommendations: make([]string, 0),
	}

	for i, text := range history {
		lower := rules.Normalize(text)
		pos, _ := a.store.Score(rules.CategoryPositive, lower)
		neg, _ := a.store.Score(rules.CategoryNegative, lower)
		result.Timeline = append(result.Timeline, JourneyPoint{
			Turn:      i,
			Emotions:  a.emotionScores(lower),
			Sentiment: pos - neg,
		})
	}

	result.Trend = trend(result.Timeline)
	result.Stability = stability(result.Timeline)

	if result.Trend == TrendDeclining {
		result.Recommendations = append(result.Recommendations, "Conversation sentiment declining - introduce positive elements")
	}
	if result.Stability < 0.5 {
		result.Recommendations = append(result.Recommendations, "High emotional volatility detected - maintain calm, stable tone")
	}
	if childAge <= 5 && result.Stability < 0.7 {
		result.Recommendations = append(result.Recommendations, "Young child showing emotional instability - extra care needed")
	}
	return result
}

func trend(timeline []JourneyPoint) string {
	if len(timeline) < 3 {
		return TrendInsufficientData
	}
	first, last := timeline[0].Sentiment, timeline[len(timeline)-1].Sentiment
	switch {
	case last > first+0.2:
		return TrendImproving
	case last < first-0.2:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// stability is one minus the mean absolute sentiment change between turns.
func stability(timeline []JourneyPoint) float64 {
	if len(timeline) < 2 {
		return 1
	}
	total := 0.0
	for i := 1; i < len(timeline); i++ {
		total += math.Abs(timeline[i].Sentiment - timeline[i-1].Sentiment)
	}
	return math.Max(0, 1-total/float64(len(timeline)-1))
}
