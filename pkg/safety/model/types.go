package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RiskLevel is an ordered severity classification. The zero value is RiskSafe
// and levels compare with the usual integer operators.
type RiskLevel int

const (
	RiskSafe RiskLevel = iota
	RiskLow
	RiskMedium
	RiskHigh
	RiskCritical
)

var riskNames = [...]string{"safe", "low_risk", "medium_risk", "high_risk", "critical"}

// String returns the wire name of the level (e.g. "high_risk").
func (r RiskLevel) String() string {
	if r < RiskSafe || r > RiskCritical {
		return fmt.Sprintf("risk(%d)", int(r))
	}
	return riskNames[r]
}

// AtLeast returns the higher of r and floor.
func (r RiskLevel) AtLeast(floor RiskLevel) RiskLevel {
	if r < floor {
		return floor
	}
	return r
}

// ParseRiskLevel parses a wire name back into a RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range riskNames {
		if name == s {
			return RiskLevel(i), nil
		}
	}
	return RiskSafe, fmt.Errorf("unknown risk level %q", s)
}

// MarshalJSON encodes the level as its wire name.
func (r RiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// MarshalText lets RiskLevel be used as a JSON map key.
func (r RiskLevel) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText parses a wire name.
func (r *RiskLevel) UnmarshalText(data []byte) error {
	lvl, err := ParseRiskLevel(string(data))
	if err != nil {
		return err
	}
	*r = lvl
	return nil
}

// UnmarshalJSON decodes a wire name.
func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	lvl, err := ParseRiskLevel(s)
	if err != nil {
		return err
	}
	*r = lvl
	return nil
}

// ContentCategory classifies what kind of reply is being analyzed.
type ContentCategory string

const (
	CategoryEducational   ContentCategory = "educational"
	CategoryEntertainment ContentCategory = "entertainment"
	CategoryConversation  ContentCategory = "conversation"
	CategoryStory         ContentCategory = "story"
	CategoryGame          ContentCategory = "game"
	CategoryQuestion      ContentCategory = "question"
)

// BiasType names a bias dimension.
type BiasType string

const (
	BiasGender        BiasType = "gender"
	BiasCultural      BiasType = "cultural"
	BiasSocioeconomic BiasType = "socioeconomic"
	BiasAbility       BiasType = "ability"
	BiasAge           BiasType = "age"
	BiasEducational   BiasType = "educational"
	BiasRacial        BiasType = "racial"
	BiasReligious     BiasType = "religious"
)

// ScoredBiasTypes are the categories that receive a score in every
// BiasAnalysisResult. Racial and religious signals are tracked as
// subcategories of the cultural table.
var ScoredBiasTypes = []BiasType{
	BiasGender,
	BiasCultural,
	BiasSocioeconomic,
	BiasAbility,
	BiasAge,
	BiasEducational,
}

// ConversationContext describes the child and the conversation a reply was
// produced in. It is owned by the caller and never mutated by the engine.
//
// Only ChildAge is required. Empty optional fields mean "unknown": an empty
// ChildGender disables gender-assumption checks and an empty history is
// treated as the first turn of a session. CulturalBackground and
// AccessibilityNeeds weigh the matching bias signals up; PreviousAIResponses
// and InteractionCount feed the conversation checks. TopicsDiscussed and
// SessionID are carried through to the audit trail only.
type ConversationContext struct {
	ChildAge            int           `json:"child_age"`
	ChildGender         string        `json:"child_gender,omitempty"`
	ChildName           string        `json:"child_name,omitempty"`
	CulturalBackground  string        `json:"cultural_background,omitempty"`
	AccessibilityNeeds  []string      `json:"accessibility_needs,omitempty"`
	ConversationHistory []string      `json:"conversation_history,omitempty"`
	PreviousAIResponses []string      `json:"previous_ai_responses,omitempty"`
	InteractionCount    int           `json:"interaction_count,omitempty"`
	SessionDuration     time.Duration `json:"session_duration,omitempty"`
	TopicsDiscussed     []string      `json:"topics_discussed,omitempty"`
	SessionID           string        `json:"session_id,omitempty"`
}

// Validate checks the required fields.
func (c ConversationContext) Validate() error {
	if c.ChildAge < 1 || c.ChildAge > 18 {
		return fmt.Errorf("child_age must be between 1 and 18, got %d", c.ChildAge)
	}
	return nil
}

// ToxicityResult holds the toxicity analysis of one reply.
type ToxicityResult struct {
	ToxicityScore    float64  `json:"toxicity_score"`
	ToxicCategories  []string `json:"toxic_categories"`
	DetectedPatterns []string `json:"detected_patterns"`
	Confidence       float64  `json:"confidence"`
}

// EmotionalImpactResult holds sentiment and emotion signals of one reply.
type EmotionalImpactResult struct {
	IsPositive         bool               `json:"is_positive"`
	PositiveScore      float64            `json:"positive_score"`
	NegativeScore      float64            `json:"negative_score"`
	OverallSentiment   float64            `json:"overall_sentiment"`
	EmotionScores      map[string]float64 `json:"emotion_scores"`
	AgeAppropriateness float64            `json:"age_appropriateness"`
	PotentialTriggers  []string           `json:"potential_triggers"`
	Recommendations    []string           `json:"recommendations"`
}

// EducationalValueResult holds the learning-value signals of one reply.
type EducationalValueResult struct {
	EducationalScore float64  `json:"educational_score"`
	LearningSignals  []string `json:"learning_signals"`
	StorySignals     []string `json:"story_signals"`
	Interrogative    bool     `json:"interrogative"`
	PrivacyRisk      bool     `json:"privacy_risk"`
	PrivacyPatterns  []string `json:"privacy_patterns"`
	AgeBoostApplied  bool     `json:"age_boost_applied"`
}

// ContextAnalysisResult holds the conversational-health signals.
type ContextAnalysisResult struct {
	ContextSafe           bool     `json:"context_safe"`
	ConversationFlowScore float64  `json:"conversation_flow_score"`
	TopicAppropriateness  float64  `json:"topic_appropriateness"`
	BehavioralConcerns    []string `json:"behavioral_concerns"`
	CriticalConcerns      []string `json:"critical_concerns"`
	ConversationQuality   float64  `json:"conversation_quality"`
}

// HasCriticalConcern reports whether any critical behavioral concern was found.
func (r *ContextAnalysisResult) HasCriticalConcern() bool {
	return r != nil && len(r.CriticalConcerns) > 0
}

// BiasAnalysisResult is the outcome of a bias check.
type BiasAnalysisResult struct {
	HasBias               bool                 `json:"has_bias"`
	OverallBiasScore      float64              `json:"overall_bias_score"`
	BiasScores            map[BiasType]float64 `json:"bias_scores"`
	ContextualBias        map[string]float64   `json:"contextual_bias"`
	DetectedPatterns      []string             `json:"detected_patterns"`
	BiasCategories        []BiasType           `json:"bias_categories"`
	MitigationSuggestions []string             `json:"mitigation_suggestions"`
	Confidence            float64              `json:"confidence"`
	RiskLevel             RiskLevel            `json:"risk_level"`
	Timestamp             time.Time            `json:"timestamp"`
	Method                string               `json:"method"`
	ProcessingTimeMS      float64              `json:"processing_time_ms"`
	Degraded              bool                 `json:"degraded"`
	Metadata              map[string]string    `json:"metadata,omitempty"`
}
