package bias

import (
	"sort"
	"time"

	"aiteddy-hq/guardian/pkg/safety/model"
)

// Report summarizes a set of bias results for reviewers.
type Report struct {
	TotalAnalyzed    int                     `json:"total_responses_analyzed"`
	BiasedDetected   int                     `json:"biased_responses_detected"`
	BiasRate         float64                 `json:"bias_rate"`
	GeneratedAt      time.Time               `json:"analysis_date"`
	CategoryCounts   map[model.BiasType]int  `json:"bias_breakdown"`
	RiskDistribution map[model.RiskLevel]int `json:"risk_distribution"`
	CommonPatterns   []string                `json:"common_patterns"`
	Recommendations  []string                `json:"recommendations"`
}

const commonPatternLimit = 10

// BuildReport aggregates results. It returns nil for an empty slice.
func BuildReport(results []*model.BiasAnalysisResult) *Report {
	if len(results) == 0 {
		return nil
	}

	r := &Report{
		TotalAnalyzed:    len(results),
		GeneratedAt:      time.Now().UTC(),
		CategoryCounts:   make(map[model.BiasType]int),
		RiskDistribution: make(map[model.RiskLevel]int),
	}

	patternCounts := make(map[string]int)
	for _, res := range results {
		if res == nil {
			continue
		}
		if res.HasBias {
			r.BiasedDetected++
		}
		for _, c := range res.BiasCategories {
			r.CategoryCounts[c]++
		}
		r.RiskDistribution[res.RiskLevel]++
		for _, p := range res.DetectedPatterns {
			patternCounts[p]++
		}
	}
	r.BiasRate = float64(r.BiasedDetected) / float64(r.TotalAnalyzed)
	r.CommonPatterns = topPatterns(patternCounts, commonPatternLimit)
	r.Recommendations = systemRecommendations(r.BiasRate)
	return r
}

// topPatterns orders by count, then name, so equal counts are stable.
func topPatterns(counts map[string]int, limit int) []string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > limit {
		names = names[:limit]
	}
	return names
}

func systemRecommendations(rate float64) []string {
	recs := make([]string, 0, 6)
	if rate > 0.3 {
		recs = append(recs, "HIGH PRIORITY: Implement additional bias training for AI model")
	}
	if rate > 0.1 {
		recs = append(recs, "MEDIUM PRIORITY: Review and update bias detection patterns")
	}
	return append(recs,
		"Implement regular bias audits",
		"Diversify training data sources",
		"Add human oversight for flagged content",
		"Provide bias awareness training for content reviewers",
	)
}
