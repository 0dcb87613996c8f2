package safety

import (
	"strings"

	"aiteddy-hq/guardian/pkg/config"
	"aiteddy-hq/guardian/pkg/safety/model"
	"aiteddy-hq/guardian/pkg/safety/rules"
)

const (
	educationalCategoryScore = 0.5
	negativeSentimentFloor   = -0.3
	strongNegativeSentiment  = -0.5
	youngChildAge            = 5
	degradedConfidenceFactor = 0.5
)

// Recommendation texts.
const (
	RecHighToxicity      = "High toxicity detected - content review recommended"
	RecContextConcern    = "Context safety concern - monitor conversation closely"
	RecNegativeEmotion   = "Negative emotional impact - add positive reinforcement"
	RecYoungChild        = "Extra caution needed for young child"
	RecPrivacy           = "Never ask a child for personal information"
	RecCriticalBehavior  = "Critical behavioral concern - escalate to a parent or guardian"
	RecAgeComplexity     = "Simplify the reply for the child's age"
	RecBlockedOnFailure  = "Content blocked due to analysis error"
	RecReviewAfterFailed = "Manual review required before showing this reply"
)

// Modification instructions, keyed by the concern that triggered them.
var modificationTemplates = map[string]struct{ instruction, reason string }{
	"toxicity":   {"remove inappropriate words", "toxic language above the configured threshold"},
	"privacy":    {"never ask for personal information", "reply requests personal details"},
	"behavioral": {"remove any request to keep secrets or to meet", "critical behavioral concern"},
	"emotional":  {"reframe negative language in a supportive tone", "negative emotional impact"},
	"age":        {"use shorter words and simpler sentences", "content too complex for the child's age"},
}

// ageLimit is the most complex content and the forbidden toxicity
// subcategories for one age. Ages past the table use its last entry.
type ageLimit struct {
	complexity float64
	forbidden  []string
}

var ageLimits = map[int]ageLimit{
	3: {0.2, []string{"fear", "violence", "adult"}},
	4: {0.3, []string{"violence", "adult"}},
	5: {0.4, []string{"adult"}},
	6: {0.5, nil},
	7: {0.6, nil},
	8: {0.7, nil},
}

func limitFor(age int) ageLimit {
	switch {
	case age < 3:
		return ageLimits[3]
	case age > 8:
		return ageLimits[8]
	default:
		return ageLimits[age]
	}
}

// analyses bundles the four analyzer outputs for the reduction step.
type analyses struct {
	toxicity  *model.ToxicityResult
	emotion   *model.EmotionalImpactResult
	education *model.EducationalValueResult
	context   *model.ContextAnalysisResult
}

// policy is the decision reduction. It is a pure function of its inputs.
type policy struct {
	cfg   config.SafetyConfig
	bands model.RiskBands
	store *rules.Store
}

func newPolicy(cfg config.SafetyConfig, store *rules.Store) policy {
	return policy{
		cfg: cfg,
		bands: model.RiskBands{
			Low:      cfg.ToxicityThreshold,
			Medium:   cfg.MediumRiskThreshold,
			High:     cfg.HighRiskThreshold,
			Critical: cfg.CriticalThreshold,
		},
		store: store,
	}
}

// decide fills the decision fields of r from a.
func (p policy) decide(r *ContentAnalysisResult, text string, childAge int, a analyses) {
	tox := a.toxicity.ToxicityScore
	critical := a.context.HasCriticalConcern()
	privacy := a.education.PrivacyRisk

	r.IsSafe = tox < p.cfg.HighRiskThreshold
	risk := p.bands.Band(tox)
	if critical || privacy {
		r.IsSafe = false
		risk = risk.AtLeast(model.RiskHigh)
	}
	if !a.context.ContextSafe {
		risk = risk.AtLeast(model.RiskMedium)
	}
	if !a.emotion.IsPositive && a.emotion.OverallSentiment < strongNegativeSentiment {
		risk = risk.AtLeast(model.RiskMedium)
	}
	r.OverallRiskLevel = risk

	lower := rules.Normalize(text)
	complexity := contentComplexity(text)
	r.AgeAppropriate = p.ageAppropriate(a, complexity, childAge)
	r.TargetAgeRange = targetAgeRange(complexity)
	r.ContentCategory = p.category(lower, a.education)
	r.ConfidenceScore = confidence(a)
	r.RequiredModifications = p.modifications(a, r.AgeAppropriate)
	r.SafetyRecommendations = p.recommendations(a, r.AgeAppropriate, childAge)
	r.ParentNotificationRequired = p.notify(risk, childAge)
}

func (p policy) notify(risk model.RiskLevel, childAge int) bool {
	if !p.cfg.NotifyParentsOnRisk {
		return false
	}
	if risk >= model.RiskHigh {
		return true
	}
	return p.cfg.EnableStrictMode && risk == model.RiskMedium && childAge <= youngChildAge
}

func (p policy) ageAppropriate(a analyses, complexity float64, childAge int) bool {
	if a.education.PrivacyRisk {
		return false
	}
	limit := limitFor(childAge)
	for _, forbidden := range limit.forbidden {
		for _, cat := range a.toxicity.ToxicCategories {
			if cat == forbidden {
				return false
			}
		}
	}
	return complexity <= limit.complexity
}

// category picks the first matching content kind. Educational value wins,
// then explicit markers, then questions.
func (p policy) category(lower string, edu *model.EducationalValueResult) model.ContentCategory {
	if edu.EducationalScore > educationalCategoryScore {
		return model.CategoryEducational
	}
	markers := []struct {
		sub string
		cat model.ContentCategory
	}{
		{"story", model.CategoryStory},
		{"game", model.CategoryGame},
		{"entertainment", model.CategoryEntertainment},
	}
	for _, m := range markers {
		if len(p.store.MatchSubcategory(rules.CategoryContentMarkers, m.sub, lower)) > 0 {
			return m.cat
		}
	}
	if strings.Contains(lower, "?") || p.store.Contains(rules.CategoryQuestionMarkers, lower) {
		return model.CategoryQuestion
	}
	return model.CategoryConversation
}

func (p policy) modifications(a analyses, ageOK bool) []Modification {
	mods := make([]Modification, 0)
	add := func(kind string, targets []string) {
		t := modificationTemplates[kind]
		mods = append(mods, Modification{Type: kind, Targets: targets, Instruction: t.instruction, Reason: t.reason})
	}

	if a.toxicity.ToxicityScore > p.cfg.ToxicityThreshold {
		add("toxicity", a.toxicity.DetectedPatterns)
	}
	if a.education.PrivacyRisk {
		add("privacy", a.education.PrivacyPatterns)
	}
	if a.context.HasCriticalConcern() {
		add("behavioral", a.context.CriticalConcerns)
	}
	if !a.emotion.IsPositive && a.emotion.OverallSentiment < negativeSentimentFloor {
		add("emotional", a.emotion.PotentialTriggers)
	}
	if !ageOK {
		add("age", nil)
	}
	return mods
}

func (p policy) recommendations(a analyses, ageOK bool, childAge int) []string {
	recs := make([]string, 0)
	tox := a.toxicity.ToxicityScore

	if tox >= p.cfg.HighRiskThreshold {
		recs = append(recs, RecHighToxicity)
	}
	if a.education.PrivacyRisk {
		recs = append(recs, RecPrivacy)
	}
	if a.context.HasCriticalConcern() {
		recs = append(recs, RecCriticalBehavior)
	}
	if !a.context.ContextSafe {
		recs = append(recs, RecContextConcern)
	}
	if !a.emotion.IsPositive && a.emotion.OverallSentiment < 0 {
		recs = append(recs, RecNegativeEmotion)
	}
	if childAge <= youngChildAge && tox > p.cfg.ToxicityThreshold {
		recs = append(recs, RecYoungChild)
	}
	if !ageOK {
		recs = append(recs, RecAgeComplexity)
	}
	return recs
}

// confidence averages toxicity confidence, conversation flow and how
// decided the sentiment is.
func confidence(a analyses) float64 {
	sentiment := a.emotion.OverallSentiment
	if sentiment < 0 {
		sentiment = -sentiment
	}
	return model.Clamp01((a.toxicity.Confidence + a.context.ConversationFlowScore + sentiment) / 3)
}

// contentComplexity blends mean word length, the share of words longer than
// six letters and sentence count into [0, 1].
func contentComplexity(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	letters, long := 0, 0
	for _, w := range words {
		n := len([]rune(w))
		letters += n
		if n > 6 {
			long++
		}
	}
	avgLen := float64(letters) / float64(len(words))
	longRatio := float64(long) / float64(len(words))
	sentences := strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?") + 1

	return model.Clamp01((avgLen/10 + longRatio + float64(sentences)/10) / 3)
}

func targetAgeRange(complexity float64) AgeRange {
	switch {
	case complexity <= 0.3:
		return AgeRange{Min: 3, Max: 6}
	case complexity <= 0.5:
		return AgeRange{Min: 4, Max: 8}
	case complexity <= 0.7:
		return AgeRange{Min: 6, Max: 10}
	default:
		return AgeRange{Min: 8, Max: 12}
	}
}
