package safety

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"aiteddy-hq/guardian/pkg/config"
	"aiteddy-hq/guardian/pkg/safety/bias"
	"aiteddy-hq/guardian/pkg/safety/conversation"
	"aiteddy-hq/guardian/pkg/safety/education"
	"aiteddy-hq/guardian/pkg/safety/emotion"
	"aiteddy-hq/guardian/pkg/safety/model"
	"aiteddy-hq/guardian/pkg/safety/rules"
	"aiteddy-hq/guardian/pkg/safety/toxicity"
	"aiteddy-hq/guardian/pkg/telemetry/logging"
	"aiteddy-hq/guardian/pkg/telemetry/metrics"
	"aiteddy-hq/guardian/pkg/telemetry/tracing"
)

// ModelVersion is reported for every built-in analyzer.
const ModelVersion = "1.0.0"

// ToxicityAnalyzer scores toxic language.
type ToxicityAnalyzer interface {
	Analyze(text string) (*model.ToxicityResult, error)
}

// EmotionAnalyzer scores emotional impact for a child of a given age.
type EmotionAnalyzer interface {
	Analyze(text string, childAge int) (*model.EmotionalImpactResult, error)
}

// EducationAnalyzer scores educational value for a child of a given age.
type EducationAnalyzer interface {
	Analyze(text string, childAge int) (*model.EducationalValueResult, error)
}

// ContextAnalyzer scores the conversation a reply belongs to.
type ContextAnalyzer interface {
	Analyze(text string, cc model.ConversationContext) (*model.ContextAnalysisResult, error)
}

// BiasDetector checks a reply for bias.
type BiasDetector interface {
	Analyze(ctx context.Context, text string, cc model.ConversationContext) (*model.BiasAnalysisResult, error)
	Method() string
}

// Observer is told about every finished analysis. Implementations must not
// block; the audit recorder queues and returns.
type Observer interface {
	ObserveContent(ctx context.Context, text string, cc model.ConversationContext, r *ContentAnalysisResult)
	ObserveBias(ctx context.Context, text string, cc model.ConversationContext, r *model.BiasAnalysisResult)
}

// Deps are the optional collaborators of an Orchestrator. Nil analyzers are
// built from the rule store; nil telemetry is disabled.
type Deps struct {
	Toxicity  ToxicityAnalyzer
	Emotion   EmotionAnalyzer
	Education EducationAnalyzer
	Context   ContextAnalyzer
	Bias      BiasDetector

	Metrics  *metrics.Collector
	Observer Observer
	Tracer   trace.Tracer
	Logger   *slog.Logger
}

// Orchestrator runs the analyzers over a reply and reduces their results to
// one decision. It holds no per-request state and is safe for concurrent use.
type Orchestrator struct {
	cfg    config.SafetyConfig
	policy policy

	toxicity  ToxicityAnalyzer
	emotion   EmotionAnalyzer
	education EducationAnalyzer
	context   ContextAnalyzer
	bias      BiasDetector

	metrics  *metrics.Collector
	observer Observer
	tracer   trace.Tracer
	logger   *slog.Logger

	now func() time.Time
}

// New creates an orchestrator for cfg over the phrase tables in store.
func New(cfg config.SafetyConfig, store *rules.Store, deps Deps) *Orchestrator {
	o := &Orchestrator{
		cfg:       cfg,
		policy:    newPolicy(cfg, store),
		toxicity:  deps.Toxicity,
		emotion:   deps.Emotion,
		education: deps.Education,
		context:   deps.Context,
		bias:      deps.Bias,
		metrics:   deps.Metrics,
		observer:  deps.Observer,
		tracer:    deps.Tracer,
		logger:    deps.Logger,
		now:       time.Now,
	}

	if o.toxicity == nil {
		o.toxicity = toxicity.NewAnalyzer(store)
	}
	if o.emotion == nil {
		o.emotion = emotion.NewAnalyzer(store)
	}
	if o.education == nil {
		o.education = education.NewAnalyzer(store, education.Options{AgeBoost: cfg.EnableEducationalBoost})
	}
	if o.context == nil {
		o.context = conversation.NewAnalyzer(store)
	}
	if o.bias == nil {
		o.bias = bias.NewDetector(bias.NewPatternScorer(store), store, BiasOptions(cfg))
	}
	if o.tracer == nil {
		o.tracer = noop.NewTracerProvider().Tracer(tracing.DefaultTracerName)
	}
	if o.logger == nil {
		o.logger = logging.Nop()
	}
	o.logger = o.logger.With("component", "safety")

	return o
}

// BiasOptions derives the bias policy from the safety configuration.
func BiasOptions(cfg config.SafetyConfig) bias.Options {
	return bias.Options{
		Threshold:             cfg.BiasThreshold,
		PatternCountThreshold: cfg.BiasPatternCountThreshold,
		Bands: model.RiskBands{
			Low:      cfg.ToxicityThreshold,
			Medium:   cfg.MediumRiskThreshold,
			High:     cfg.HighRiskThreshold,
			Critical: cfg.CriticalThreshold,
		},
	}
}

// Config returns the safety configuration the orchestrator was built with.
func (o *Orchestrator) Config() config.SafetyConfig { return o.cfg }

// BiasMethod reports the active bias scoring method.
func (o *Orchestrator) BiasMethod() string { return o.bias.Method() }

// AnalyzeContent decides whether text is safe for the child described by cc.
// It always returns a result: any failure yields a fail-safe result that
// blocks the content.
func (o *Orchestrator) AnalyzeContent(ctx context.Context, text string, cc model.ConversationContext) *ContentAnalysisResult {
	return o.analyzeContent(ctx, text, cc, metrics.KindContent)
}

func (o *Orchestrator) analyzeContent(ctx context.Context, text string, cc model.ConversationContext, kind string) *ContentAnalysisResult {
	start := o.now()
	id := uuid.NewString()

	ctx = logging.WithAnalysisID(ctx, id)
	if cc.SessionID != "" {
		ctx = logging.WithSession(ctx, cc.SessionID)
	}
	ctx = logging.WithChildAge(ctx, cc.ChildAge)

	ctx, span := o.tracer.Start(ctx, "guardian.analyze_content")
	defer span.End()
	tracing.SetRequestAttributes(span, cc.SessionID, cc.ChildAge, len(text))

	result, err := o.evaluate(text, cc)
	if err != nil {
		result = o.failSafe(err)
		o.metrics.RecordFailure(kind)
		tracing.SetError(span, err)
		o.logger.ErrorContext(ctx, "content analysis failed, blocking reply", "error", err)
	}
	result.AnalysisID = id
	result.Timestamp = start.UTC()

	elapsed := o.now().Sub(start)
	result.ProcessingTimeMS = float64(elapsed.Microseconds()) / 1000
	if budget := o.cfg.MaxProcessingTime(); budget > 0 && elapsed > budget {
		result.Degraded = true
		result.ConfidenceScore *= degradedConfidenceFactor
		result.Metadata[MetaTimeoutExceeded] = fmt.Sprintf("%v: %.1fms > %.0fms", ErrTimeoutExceeded, result.ProcessingTimeMS, o.cfg.MaxProcessingTimeMS)
		o.metrics.RecordDegraded()
		o.logger.WarnContext(ctx, "content analysis exceeded processing budget",
			"processing_ms", result.ProcessingTimeMS,
			"budget_ms", o.cfg.MaxProcessingTimeMS)
	}

	tracing.SetDecisionAttributes(span, id, result.OverallRiskLevel.String(), string(result.ContentCategory), result.IsSafe, result.Degraded)
	tracing.SetStatus(span, err)

	o.metrics.RecordAnalysis(kind, result.OverallRiskLevel.String(), !result.IsSafe, elapsed)
	if o.observer != nil {
		o.observer.ObserveContent(ctx, text, cc, result)
	}

	if result.OverallRiskLevel >= model.RiskHigh {
		o.logger.WarnContext(ctx, "high risk reply detected",
			"risk_level", result.OverallRiskLevel.String(),
			"toxicity_score", result.Toxicity.ToxicityScore,
			"patterns", result.Toxicity.DetectedPatterns,
			"content_hash", model.TextDigest(text)[:16])
	} else {
		o.logger.DebugContext(ctx, "content analyzed",
			"risk_level", result.OverallRiskLevel.String(),
			"is_safe", result.IsSafe,
			"processing_ms", result.ProcessingTimeMS)
	}
	return result
}

// evaluate runs the analyzers and the policy.
func (o *Orchestrator) evaluate(text string, cc model.ConversationContext) (*ContentAnalysisResult, error) {
	if err := cc.Validate(); err != nil {
		return nil, &AnalysisError{Stage: StageValidate, Err: err}
	}
	if err := model.CheckText(text); err != nil {
		return nil, &AnalysisError{Stage: StageValidate, Err: err}
	}

	a, err := o.runAnalyzers(text, cc)
	if err != nil {
		return nil, err
	}

	r := &ContentAnalysisResult{
		Toxicity:         a.toxicity,
		EmotionalImpact:  a.emotion,
		EducationalValue: a.education,
		ContextAnalysis:  a.context,
		ModelVersions:    o.modelVersions(),
		Metadata:         make(map[string]string),
	}
	o.policy.decide(r, text, cc.ChildAge, a)
	return r, nil
}

// runAnalyzers fans the four analyzers out and waits for all of them. The
// first failure in stage order is returned.
func (o *Orchestrator) runAnalyzers(text string, cc model.ConversationContext) (analyses, error) {
	var (
		a    analyses
		wg   sync.WaitGroup
		errs [4]error
	)

	run := func(i int, stage string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					o.logger.Error("analyzer panicked", "stage", stage, "panic", p, "stack", string(debug.Stack()))
					errs[i] = &AnalysisError{Stage: stage, Err: fmt.Errorf("panic: %v", p)}
				}
			}()
			if err := fn(); err != nil {
				errs[i] = &AnalysisError{Stage: stage, Err: err}
			}
		}()
	}

	run(0, StageToxicity, func() (err error) {
		a.toxicity, err = o.toxicity.Analyze(text)
		if err == nil && a.toxicity == nil {
			err = errNoResult
		}
		return err
	})
	run(1, StageEmotion, func() (err error) {
		a.emotion, err = o.emotion.Analyze(text, cc.ChildAge)
		if err == nil && a.emotion == nil {
			err = errNoResult
		}
		return err
	})
	run(2, StageEducation, func() (err error) {
		a.education, err = o.education.Analyze(text, cc.ChildAge)
		if err == nil && a.education == nil {
			err = errNoResult
		}
		return err
	})
	run(3, StageConversation, func() (err error) {
		a.context, err = o.context.Analyze(text, cc)
		if err == nil && a.context == nil {
			err = errNoResult
		}
		return err
	})
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return analyses{}, err
		}
	}
	return a, nil
}

var errNoResult = errors.New("analyzer returned no result")

// failSafe is the result for content that could not be screened: unsafe,
// critical and escalated to a parent.
func (o *Orchestrator) failSafe(err error) *ContentAnalysisResult {
	stage := ""
	var ae *AnalysisError
	if errors.As(err, &ae) {
		stage = ae.Stage
	}
	return &ContentAnalysisResult{
		IsSafe:           false,
		OverallRiskLevel: model.RiskCritical,
		ConfidenceScore:  0,
		ContentCategory:  model.CategoryConversation,
		AgeAppropriate:   false,
		TargetAgeRange:   AgeRange{},
		Toxicity: &model.ToxicityResult{
			ToxicityScore:    1,
			ToxicCategories:  []string{},
			DetectedPatterns: []string{"analysis_error"},
			Confidence:       1,
		},
		EmotionalImpact: &model.EmotionalImpactResult{
			OverallSentiment:  -1,
			EmotionScores:     map[string]float64{},
			PotentialTriggers: []string{},
			Recommendations:   []string{},
		},
		EducationalValue: &model.EducationalValueResult{
			LearningSignals: []string{},
			StorySignals:    []string{},
			PrivacyPatterns: []string{},
		},
		ContextAnalysis: &model.ContextAnalysisResult{
			BehavioralConcerns: []string{},
			CriticalConcerns:   []string{},
		},
		RequiredModifications:      []Modification{},
		SafetyRecommendations:      []string{RecBlockedOnFailure, RecReviewAfterFailed},
		ParentNotificationRequired: true,
		ModelVersions:              o.modelVersions(),
		Metadata: map[string]string{
			MetaFailure:      err.Error(),
			MetaFailureStage: stage,
		},
	}
}

func (o *Orchestrator) modelVersions() map[string]string {
	return map[string]string{
		"toxicity_classifier":   ModelVersion,
		"emotional_analyzer":    ModelVersion,
		"educational_evaluator": ModelVersion,
		"context_analyzer":      ModelVersion,
		"bias_detector":         o.bias.Method() + "/" + ModelVersion,
	}
}

// DetectBias checks text for bias toward the child described by cc. A
// failed check yields a fail-safe result flagged for manual review.
func (o *Orchestrator) DetectBias(ctx context.Context, text string, cc model.ConversationContext) *model.BiasAnalysisResult {
	start := o.now()
	if cc.SessionID != "" {
		ctx = logging.WithSession(ctx, cc.SessionID)
	}

	ctx, span := o.tracer.Start(ctx, "guardian.detect_bias")
	defer span.End()
	tracing.SetRequestAttributes(span, cc.SessionID, cc.ChildAge, len(text))

	result, err := o.runBias(ctx, text, cc)
	if err != nil {
		result = bias.FailSafe(err, o.bias.Method())
		o.metrics.RecordFailure(metrics.KindBias)
		tracing.SetError(span, err)
		o.logger.ErrorContext(ctx, "bias analysis failed, flagging for review", "error", err)
	}
	elapsed := o.now().Sub(start)
	result.ProcessingTimeMS = float64(elapsed.Microseconds()) / 1000
	if budget := o.cfg.MaxProcessingTime(); budget > 0 && elapsed > budget {
		result.Degraded = true
		result.Confidence *= degradedConfidenceFactor
		if result.Metadata == nil {
			result.Metadata = make(map[string]string)
		}
		result.Metadata[MetaTimeoutExceeded] = fmt.Sprintf("%v: %.1fms > %.0fms", ErrTimeoutExceeded, result.ProcessingTimeMS, o.cfg.MaxProcessingTimeMS)
		o.metrics.RecordDegraded()
		o.logger.WarnContext(ctx, "bias analysis exceeded processing budget",
			"processing_ms", result.ProcessingTimeMS,
			"budget_ms", o.cfg.MaxProcessingTimeMS,
			"method", result.Method)
	}

	tracing.SetBiasAttributes(span, result.Method, result.HasBias, result.OverallBiasScore)
	tracing.SetStatus(span, err)

	o.metrics.RecordBias(result.HasBias, elapsed)
	if o.observer != nil {
		o.observer.ObserveBias(ctx, text, cc, result)
	}
	if result.HasBias {
		o.logger.InfoContext(ctx, "bias detected",
			"score", result.OverallBiasScore,
			"categories", result.BiasCategories,
			"method", result.Method)
	}
	return result
}

func (o *Orchestrator) runBias(ctx context.Context, text string, cc model.ConversationContext) (result *model.BiasAnalysisResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			o.logger.Error("bias detector panicked", "panic", p, "stack", string(debug.Stack()))
			result, err = nil, &AnalysisError{Stage: StageBias, Err: fmt.Errorf("panic: %v", p)}
		}
	}()
	result, err = o.bias.Analyze(ctx, text, cc)
	if err == nil && result == nil {
		err = errNoResult
	}
	if err != nil {
		return nil, &AnalysisError{Stage: StageBias, Err: err}
	}
	return result, nil
}

// AnalyzeIntegrated runs the content decision and the bias check
// concurrently.
func (o *Orchestrator) AnalyzeIntegrated(ctx context.Context, text string, cc model.ConversationContext) *IntegratedSafetyResult {
	ctx, span := o.tracer.Start(ctx, "guardian.analyze_integrated")
	defer span.End()

	var (
		wg     sync.WaitGroup
		result IntegratedSafetyResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		result.Content = o.analyzeContent(ctx, text, cc, metrics.KindIntegrated)
	}()
	go func() {
		defer wg.Done()
		result.Bias = o.DetectBias(ctx, text, cc)
	}()
	wg.Wait()

	return &result
}
