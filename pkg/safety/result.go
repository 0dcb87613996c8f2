package safety

import (
	"encoding/json"
	"fmt"
	"time"

	"aiteddy-hq/guardian/pkg/safety/model"
)

// Metadata keys set on results.
const (
	MetaFailure         = "failure"
	MetaFailureStage    = "failure_stage"
	MetaTimeoutExceeded = "timeout_exceeded"
)

// AgeRange is an inclusive range of child ages.
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Modification is an instruction for whatever regenerates a safer reply.
// The engine never writes replacement text itself.
type Modification struct {
	// Type is the concern that triggered it (toxicity, privacy, behavioral,
	// emotional, age).
	Type string `json:"type"`

	// Targets lists the phrases the instruction applies to, if any.
	Targets []string `json:"targets,omitempty"`

	Instruction string `json:"instruction"`
	Reason      string `json:"reason"`
}

// ContentAnalysisResult is the content-safety decision for one reply.
type ContentAnalysisResult struct {
	AnalysisID string    `json:"analysis_id"`
	Timestamp  time.Time `json:"timestamp"`

	IsSafe           bool                  `json:"is_safe"`
	OverallRiskLevel model.RiskLevel       `json:"overall_risk_level"`
	ConfidenceScore  float64               `json:"confidence_score"`
	ContentCategory  model.ContentCategory `json:"content_category"`
	AgeAppropriate   bool                  `json:"age_appropriate"`
	TargetAgeRange   AgeRange              `json:"target_age_range"`

	Toxicity         *model.ToxicityResult         `json:"toxicity_result"`
	EmotionalImpact  *model.EmotionalImpactResult  `json:"emotional_impact"`
	EducationalValue *model.EducationalValueResult `json:"educational_value"`
	ContextAnalysis  *model.ContextAnalysisResult  `json:"context_analysis"`

	RequiredModifications      []Modification `json:"required_modifications"`
	SafetyRecommendations      []string       `json:"safety_recommendations"`
	ParentNotificationRequired bool           `json:"parent_notification_required"`

	ProcessingTimeMS float64           `json:"processing_time_ms"`
	Degraded         bool              `json:"degraded"`
	ModelVersions    map[string]string `json:"model_versions"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// ToJSON encodes the result.
func (r *ContentAnalysisResult) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// ToMap returns the result as a generic map with the same keys as ToJSON.
func (r *ContentAnalysisResult) ToMap() (map[string]any, error) {
	raw, err := r.ToJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode result map: %w", err)
	}
	return m, nil
}

// decision is the part of a result that must be identical for identical
// inputs. IDs, timings and anything derived from timings are left out.
type decision struct {
	IsSafe                     bool                          `json:"is_safe"`
	OverallRiskLevel           model.RiskLevel               `json:"overall_risk_level"`
	ContentCategory            model.ContentCategory         `json:"content_category"`
	AgeAppropriate             bool                          `json:"age_appropriate"`
	TargetAgeRange             AgeRange                      `json:"target_age_range"`
	Toxicity                   *model.ToxicityResult         `json:"toxicity_result"`
	EmotionalImpact            *model.EmotionalImpactResult  `json:"emotional_impact"`
	EducationalValue           *model.EducationalValueResult `json:"educational_value"`
	ContextAnalysis            *model.ContextAnalysisResult  `json:"context_analysis"`
	RequiredModifications      []Modification                `json:"required_modifications"`
	SafetyRecommendations      []string                      `json:"safety_recommendations"`
	ParentNotificationRequired bool                          `json:"parent_notification_required"`
}

// Fingerprint returns a canonical digest of the decision fields. Repeated
// analyses of the same input under the same rules share a fingerprint.
func (r *ContentAnalysisResult) Fingerprint() (string, error) {
	return model.Digest(decision{
		IsSafe:                     r.IsSafe,
		OverallRiskLevel:           r.OverallRiskLevel,
		ContentCategory:            r.ContentCategory,
		AgeAppropriate:             r.AgeAppropriate,
		TargetAgeRange:             r.TargetAgeRange,
		Toxicity:                   r.Toxicity,
		EmotionalImpact:            r.EmotionalImpact,
		EducationalValue:           r.EducationalValue,
		ContextAnalysis:            r.ContextAnalysis,
		RequiredModifications:      r.RequiredModifications,
		SafetyRecommendations:      r.SafetyRecommendations,
		ParentNotificationRequired: r.ParentNotificationRequired,
	})
}

// IntegratedSafetyResult pairs a content decision with an optional bias check.
type IntegratedSafetyResult struct {
	Content *ContentAnalysisResult    `json:"content_analysis"`
	Bias    *model.BiasAnalysisResult `json:"bias_analysis,omitempty"`
}

// IsCompletelySafe is true when the content is safe and no bias was found.
func (r *IntegratedSafetyResult) IsCompletelySafe() bool {
	if r == nil || r.Content == nil || !r.Content.IsSafe {
		return false
	}
	return r.Bias == nil || !r.Bias.HasBias
}

// Concerns lists everything a reviewer should look at, content first.
func (r *IntegratedSafetyResult) Concerns() []string {
	var out []string
	if r == nil || r.Content == nil {
		return out
	}
	c := r.Content
	if !c.IsSafe {
		out = append(out, "unsafe_content:"+c.OverallRiskLevel.String())
	}
	if c.Toxicity != nil {
		for _, cat := range c.Toxicity.ToxicCategories {
			out = append(out, "toxicity:"+cat)
		}
	}
	if c.EducationalValue != nil && c.EducationalValue.PrivacyRisk {
		out = append(out, "privacy_risk")
	}
	if c.ContextAnalysis != nil {
		for _, concern := range c.ContextAnalysis.CriticalConcerns {
			out = append(out, "behavioral:"+concern)
		}
	}
	if !c.AgeAppropriate {
		out = append(out, "age_inappropriate")
	}
	if r.Bias != nil && r.Bias.HasBias {
		for _, bt := range r.Bias.BiasCategories {
			out = append(out, "bias:"+string(bt))
		}
		if len(r.Bias.BiasCategories) == 0 {
			out = append(out, "bias")
		}
	}
	return out
}
