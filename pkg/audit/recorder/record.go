package recorder

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"aiteddy-hq/guardian/pkg/audit"
	"aiteddy-hq/guardian/pkg/safety"
	"aiteddy-hq/guardian/pkg/safety/model"
)

// ContentRecord builds the audit record for a content decision.
func ContentRecord(text string, cc model.ConversationContext, r *safety.ContentAnalysisResult, now time.Time) (*audit.Record, error) {
	digest, err := r.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("fingerprint content decision: %w", err)
	}

	record := &audit.Record{
		ID:              uuid.NewString(),
		AnalysisID:      r.AnalysisID,
		Kind:            audit.KindContent,
		AnalyzedAt:      r.Timestamp,
		RecordedAt:      now,
		SessionID:       cc.SessionID,
		ChildAge:        cc.ChildAge,
		TextDigest:      model.TextDigest(text),
		TextLength:      utf8.RuneCountInString(text),
		IsSafe:          r.IsSafe,
		RiskLevel:       r.OverallRiskLevel.String(),
		ContentCategory: string(r.ContentCategory),
		Concerns:        (&safety.IntegratedSafetyResult{Content: r}).Concerns(),
		ParentNotified:  r.ParentNotificationRequired,
		Degraded:        r.Degraded,
		Failure:         r.Metadata[safety.MetaFailure],
		ProcessingMS:    r.ProcessingTimeMS,
		DecisionDigest:  digest,
	}
	if r.Toxicity != nil {
		record.ToxicityScore = r.Toxicity.ToxicityScore
	}
	if record.AnalyzedAt.IsZero() {
		record.AnalyzedAt = now
	}
	return record, nil
}

// biasDecision is the part of a bias result that identifies the decision.
type biasDecision struct {
	HasBias          bool                       `json:"has_bias"`
	OverallBiasScore float64                    `json:"overall_bias_score"`
	BiasScores       map[model.BiasType]float64 `json:"bias_scores"`
	ContextualBias   map[string]float64         `json:"contextual_bias"`
	BiasCategories   []model.BiasType           `json:"bias_categories"`
	DetectedPatterns []string                   `json:"detected_patterns"`
	RiskLevel        model.RiskLevel            `json:"risk_level"`
	Method           string                     `json:"method"`
}

// BiasRecord builds the audit record for a bias check.
func BiasRecord(text string, cc model.ConversationContext, r *model.BiasAnalysisResult, now time.Time) (*audit.Record, error) {
	digest, err := model.Digest(biasDecision{
		HasBias:          r.HasBias,
		OverallBiasScore: r.OverallBiasScore,
		BiasScores:       r.BiasScores,
		ContextualBias:   r.ContextualBias,
		BiasCategories:   r.BiasCategories,
		DetectedPatterns: r.DetectedPatterns,
		RiskLevel:        r.RiskLevel,
		Method:           r.Method,
	})
	if err != nil {
		return nil, fmt.Errorf("fingerprint bias decision: %w", err)
	}

	concerns := make([]string, 0, len(r.BiasCategories))
	for _, bt := range r.BiasCategories {
		concerns = append(concerns, "bias:"+string(bt))
	}

	record := &audit.Record{
		ID:             uuid.NewString(),
		Kind:           audit.KindBias,
		AnalyzedAt:     r.Timestamp,
		RecordedAt:     now,
		SessionID:      cc.SessionID,
		ChildAge:       cc.ChildAge,
		TextDigest:     model.TextDigest(text),
		TextLength:     utf8.RuneCountInString(text),
		IsSafe:         !r.HasBias,
		RiskLevel:      r.RiskLevel.String(),
		HasBias:        r.HasBias,
		BiasScore:      r.OverallBiasScore,
		BiasMethod:     r.Method,
		Concerns:       concerns,
		Failure:        r.Metadata[safety.MetaFailure],
		ProcessingMS:   r.ProcessingTimeMS,
		DecisionDigest: digest,
	}
	if record.AnalyzedAt.IsZero() {
		record.AnalyzedAt = now
	}
	return record, nil
}
