package bias

import (
	"regexp"
	"strings"

	"aiteddy-hq/guardian/pkg/safety/model"
	"aiteddy-hq/guardian/pkg/safety/rules"
)

// Contextual bias signal names.
const (
	ContextAgeInappropriate        = "age_inappropriate"
	ContextGenderAssumption        = "gender_assumption"
	ContextCulturalInsensitivity   = "cultural_insensitivity"
	ContextAbilityAssumption       = "ability_assumption"
	ContextSocioeconomicAssumption = "socioeconomic_assumption"
)

// ContextSignals lists the contextual signals in reporting order.
var ContextSignals = []string{
	ContextAgeInappropriate,
	ContextGenderAssumption,
	ContextCulturalInsensitivity,
	ContextAbilityAssumption,
	ContextSocioeconomicAssumption,
}

const (
	youngChildAge      = 6
	complexWordAllowed = 3

	// personalWeight scales an assumption that touches something the caller
	// told us about the child.
	personalWeight = 1.5
)

// contextual scores bias that depends on who the reply is for rather than on
// the text alone.
func contextual(store *rules.Store, text string, cc model.ConversationContext) map[string]float64 {
	lower := rules.Normalize(text)
	out := make(map[string]float64, len(ContextSignals))
	for _, name := range ContextSignals {
		out[name] = 0
	}

	if cc.ChildAge < youngChildAge {
		if n := model.CountLongWords(strings.Fields(text)); n > complexWordAllowed {
			out[ContextAgeInappropriate] = model.Clamp01(float64(n) / 10)
		}
	}

	if cc.ChildGender != "" {
		out[ContextGenderAssumption], _ = store.Score(rules.CategoryGenderAssumption, lower)
	}
	out[ContextCulturalInsensitivity], _ = store.Score(rules.CategoryCulturalAssumption, lower)
	if cc.CulturalBackground != "" {
		out[ContextCulturalInsensitivity] = model.Clamp01(out[ContextCulturalInsensitivity] * personalWeight)
	}
	out[ContextAbilityAssumption], _ = store.Score(rules.CategoryAbilityAssumption, lower)
	if len(cc.AccessibilityNeeds) > 0 {
		out[ContextAbilityAssumption] = model.Clamp01(out[ContextAbilityAssumption] * personalWeight)
	}
	out[ContextSocioeconomicAssumption], _ = store.Score(rules.CategorySocioeconomicAssumption, lower)

	return out
}

var structuralPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"gendered_expectation", regexp.MustCompile(`\b(he|she) (should|must|needs to|has to)\b`)},
	{"comparative_bias", regexp.MustCompile(`\b(better than|worse than|superior to|inferior to)\b`)},
	{"absolutist_generalization", regexp.MustCompile(`\b(all|every|never|always|none)\s+\w+\s+(are|do|have)\b`)},
	{"exclusionary_language", regexp.MustCompile(`\b(only|just|merely|simply)\s+\w+\s+(can|should|are)\b`)},
}

// structural reports sentence shapes that tend to carry bias regardless of
// vocabulary.
func structural(text string) []string {
	lower := rules.Normalize(text)
	found := make([]string, 0)
	for _, p := range structuralPatterns {
		if p.re.MatchString(lower) {
			found = append(found, p.name)
		}
	}
	return found
}
