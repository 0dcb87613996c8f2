package bias

import (
	"context"
	"fmt"
	"time"

	"aiteddy-hq/guardian/pkg/safety/model"
	"aiteddy-hq/guardian/pkg/safety/rules"
)

// Options hold the bias policy.
type Options struct {
	// Threshold: an overall score above it is biased.
	Threshold float64
	// PatternCountThreshold: more detected patterns than this is biased even
	// when no score crosses Threshold.
	PatternCountThreshold int
	// Bands map the overall score to a risk level.
	Bands model.RiskBands
}

// DefaultOptions returns the built-in bias policy.
func DefaultOptions() Options {
	return Options{
		Threshold:             0.3,
		PatternCountThreshold: 2,
		Bands:                 model.RiskBands{Low: 0.1, Medium: 0.25, High: 0.3, Critical: 0.7},
	}
}

// Detector combines a Scorer with contextual and structural checks into a
// BiasAnalysisResult. It is safe for concurrent use.
type Detector struct {
	scorer Scorer
	store  *rules.Store
	opts   Options
	now    func() time.Time
}

// NewDetector creates a detector. store provides the contextual assumption
// tables regardless of which scorer is used.
func NewDetector(scorer Scorer, store *rules.Store, opts Options) *Detector {
	return &Detector{scorer: scorer, store: store, opts: opts, now: time.Now}
}

// Method reports the active scoring method.
func (d *Detector) Method() string { return d.scorer.Method() }

// Analyze checks text for bias toward the child described by cc. The result
// shape is the same whichever scorer is active.
func (d *Detector) Analyze(ctx context.Context, text string, cc model.ConversationContext) (*model.BiasAnalysisResult, error) {
	start := d.now()

	if err := model.CheckText(text); err != nil {
		return nil, err
	}
	if err := cc.Validate(); err != nil {
		return nil, err
	}

	scores, err := d.scorer.Score(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%s scorer: %w", d.scorer.Method(), err)
	}

	ctxScores := contextual(d.store, text, cc)
	patterns := append(append(make([]string, 0, len(scores.Patterns)+4), scores.Patterns...), structural(text)...)

	overall := 0.0
	categories := make([]model.BiasType, 0)
	for _, bt := range model.ScoredBiasTypes {
		s := scores.Scores[bt]
		if s > 0 {
			categories = append(categories, bt)
		}
		if s > overall {
			overall = s
		}
	}
	for _, s := range ctxScores {
		if s > overall {
			overall = s
		}
	}
	overall = model.Clamp01(overall)

	return &model.BiasAnalysisResult{
		HasBias:               overall > d.opts.Threshold || len(patterns) > d.opts.PatternCountThreshold,
		OverallBiasScore:      overall,
		BiasScores:            scores.Scores,
		ContextualBias:        ctxScores,
		DetectedPatterns:      patterns,
		BiasCategories:        categories,
		MitigationSuggestions: mitigations(scores.Scores, ctxScores),
		Confidence:            d.scorer.Confidence(),
		RiskLevel:             d.opts.Bands.Band(overall),
		Timestamp:             start.UTC(),
		Method:                d.scorer.Method(),
		ProcessingTimeMS:      float64(d.now().Sub(start).Microseconds()) / 1000,
	}, nil
}

// FailSafe is the result reported when bias analysis could not complete:
// content is treated as biased and routed to manual review.
func FailSafe(err error, method string) *model.BiasAnalysisResult {
	return &model.BiasAnalysisResult{
		HasBias:               true,
		OverallBiasScore:      0.5,
		BiasScores:            map[model.BiasType]float64{},
		ContextualBias:        map[string]float64{},
		DetectedPatterns:      []string{"analysis_error: " + err.Error()},
		BiasCategories:        []model.BiasType{},
		MitigationSuggestions: []string{FailSafeSuggestion},
		Confidence:            0,
		RiskLevel:             model.RiskHigh,
		Timestamp:             time.Now().UTC(),
		Method:                method,
		Metadata:              map[string]string{"failure": err.Error()},
	}
}
