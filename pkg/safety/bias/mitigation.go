package bias

import "aiteddy-hq/guardian/pkg/safety/model"

// MitigationThreshold is the category score above which its suggestions apply.
const MitigationThreshold = 0.3

// FailSafeSuggestion is the only suggestion on a failed analysis.
const FailSafeSuggestion = "Analysis failed - manual review required"

var categoryMitigations = map[model.BiasType][]string{
	model.BiasGender: {
		"Use gender-neutral language (they/them instead of he/she)",
		"Avoid assuming activities based on gender",
		"Present diverse role models across genders",
		"Replace gendered expectations with individual preferences",
	},
	model.BiasCultural: {
		"Use inclusive language that respects all cultures",
		"Avoid assuming specific cultural practices",
		"Present diverse cultural perspectives",
		"Replace cultural assumptions with open questions",
	},
	model.BiasSocioeconomic: {
		"Avoid assumptions about family resources",
		"Suggest free or low-cost alternatives",
		"Focus on experiences rather than material possessions",
		"Use inclusive language about family situations",
	},
	model.BiasAbility: {
		"Use inclusive language for all abilities",
		"Avoid assumptions about physical or cognitive abilities",
		"Provide multiple ways to engage with content",
		"Replace ability assumptions with supportive alternatives",
	},
	model.BiasAge: {
		"Respect the child's current developmental stage",
		"Avoid dismissive age-based comments",
		"Provide age-appropriate but respectful responses",
		"Encourage growth without diminishing current abilities",
	},
	model.BiasEducational: {
		"Avoid assumptions about educational background",
		"Present multiple learning styles and approaches",
		"Focus on effort rather than innate ability",
		"Provide supportive learning environment",
	},
}

var contextualMitigations = map[string]string{
	ContextAgeInappropriate:        "Simplify vocabulary to suit the child's age",
	ContextGenderAssumption:        "Do not assume preferences from the child's gender",
	ContextCulturalInsensitivity:   "Avoid assuming the child's family traditions or culture",
	ContextAbilityAssumption:       "Offer ways to take part that do not depend on sight, hearing or mobility",
	ContextSocioeconomicAssumption: "Avoid suggesting purchases or assuming what the family owns",
}

// mitigations returns the category templates for every category above
// MitigationThreshold, followed by one line per triggered contextual signal.
func mitigations(scores map[model.BiasType]float64, ctxScores map[string]float64) []string {
	out := make([]string, 0)
	for _, bt := range model.ScoredBiasTypes {
		if scores[bt] > MitigationThreshold {
			out = append(out, categoryMitigations[bt]...)
		}
	}
	for _, name := range ContextSignals {
		if ctxScores[name] > 0 {
			out = append(out, contextualMitigations[name])
		}
	}
	return out
}
