package safety

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"aiteddy-hq/guardian/pkg/config"
	"aiteddy-hq/guardian/pkg/safety/model"
	"aiteddy-hq/guardian/pkg/safety/rules"
	"aiteddy-hq/guardian/pkg/telemetry/metrics"
)

func testConfig(mutate func(*config.SafetyConfig)) config.SafetyConfig {
	cfg := config.Default().Safety
	if mutate != nil {
		mutate(&cfg)
	}
	return cfg
}

func newTestOrchestrator(mutate func(*config.SafetyConfig), deps Deps) *Orchestrator {
	return New(testConfig(mutate), rules.Default(), deps)
}

func child(age int) model.ConversationContext {
	return model.ConversationContext{ChildAge: age}
}

func TestAnalyzeContent_Scenarios(t *testing.T) {
	o := newTestOrchestrator(nil, Deps{})
	ctx := context.Background()

	t.Run("insults are blocked", func(t *testing.T) {
		r := o.AnalyzeContent(ctx, "You're stupid and ugly! I hate you!", child(6))
		if r.IsSafe {
			t.Error("IsSafe = true, want false")
		}
		if r.OverallRiskLevel < model.RiskHigh {
			t.Errorf("OverallRiskLevel = %v, want high_risk or critical", r.OverallRiskLevel)
		}
		if !r.ParentNotificationRequired {
			t.Error("parent notification not required for a high risk reply")
		}
		if !hasModification(r, "toxicity") {
			t.Errorf("modifications = %+v, want a toxicity instruction", r.RequiredModifications)
		}
	})

	t.Run("story for a young child passes", func(t *testing.T) {
		r := o.AnalyzeContent(ctx, "Once upon a time, there was a happy little bunny who loved to learn!", child(4))
		if !r.IsSafe {
			t.Errorf("IsSafe = false, want true (metadata %v)", r.Metadata)
		}
		if r.EducationalValue.EducationalScore <= 0.25 {
			t.Errorf("EducationalScore = %v, want > 0.25", r.EducationalValue.EducationalScore)
		}
		if r.OverallRiskLevel != model.RiskSafe {
			t.Errorf("OverallRiskLevel = %v, want safe", r.OverallRiskLevel)
		}
		if r.ContentCategory != model.CategoryStory {
			t.Errorf("ContentCategory = %v, want story", r.ContentCategory)
		}
		if !r.AgeAppropriate {
			t.Error("AgeAppropriate = false for a simple story")
		}
		if r.ParentNotificationRequired {
			t.Error("parent notification required for a safe reply")
		}
	})
}

func TestAnalyzeContent_PrivacyDominance(t *testing.T) {
	o := newTestOrchestrator(nil, Deps{})

	tests := []struct {
		name string
		text string
	}{
		{"address and phone", "What's your address and phone number?"},
		{"password with learning words", "Let's learn about numbers and colors! Tell me your password."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := o.AnalyzeContent(context.Background(), tt.text, child(7))
			if r.EducationalValue.EducationalScore > 0.25 {
				t.Errorf("EducationalScore = %v, want <= 0.25", r.EducationalValue.EducationalScore)
			}
			if r.IsSafe {
				t.Error("IsSafe = true despite privacy risk")
			}
			if r.OverallRiskLevel < model.RiskHigh {
				t.Errorf("OverallRiskLevel = %v, want at least high_risk", r.OverallRiskLevel)
			}
			if !hasModification(r, "privacy") {
				t.Errorf("modifications = %+v, want a privacy instruction", r.RequiredModifications)
			}
			if !contains(r.SafetyRecommendations, RecPrivacy) {
				t.Errorf("recommendations = %v", r.SafetyRecommendations)
			}
		})
	}
}

func TestAnalyzeContent_CriticalBehaviorForcesUnsafe(t *testing.T) {
	o := newTestOrchestrator(nil, Deps{})

	r := o.AnalyzeContent(context.Background(), "Let's meet at the park, come alone.", child(8))
	if r.Toxicity.ToxicityScore != 0 {
		t.Fatalf("ToxicityScore = %v, want 0", r.Toxicity.ToxicityScore)
	}
	if r.IsSafe {
		t.Error("IsSafe = true despite a meeting request")
	}
	if r.OverallRiskLevel != model.RiskHigh {
		t.Errorf("OverallRiskLevel = %v, want high_risk", r.OverallRiskLevel)
	}
	if !hasModification(r, "behavioral") {
		t.Errorf("modifications = %+v, want a behavioral instruction", r.RequiredModifications)
	}
}

func TestAnalyzeContent_ThresholdBoundary(t *testing.T) {
	texts := []string{
		"You are nice.",
		"You are nice but stupid.",
		"You are nice but stupid and ugly.",
		"You are nice but stupid and ugly, a loser.",
		"You are nice but stupid and ugly, a loser and an idiot.",
	}

	for _, high := range []float64{0.3, 0.5, 0.75} {
		o := newTestOrchestrator(func(c *config.SafetyConfig) {
			c.HighRiskThreshold = high
			if c.CriticalThreshold < high {
				c.CriticalThreshold = high
			}
		}, Deps{})

		for _, text := range texts {
			r := o.AnalyzeContent(context.Background(), text, child(9))
			want := r.Toxicity.ToxicityScore < high
			if r.IsSafe != want {
				t.Errorf("high=%v %q: IsSafe = %v, toxicity %v", high, text, r.IsSafe, r.Toxicity.ToxicityScore)
			}
		}
	}
}

func TestAnalyzeContent_Monotonic(t *testing.T) {
	o := newTestOrchestrator(nil, Deps{})
	texts := []string{
		"You are nice.",
		"You are nice but stupid.",
		"You are nice but stupid and ugly.",
		"You are nice but stupid and ugly, a loser.",
		"You are nice but stupid and ugly, a loser and an idiot.",
	}

	prevScore, prevRisk := -1.0, model.RiskSafe
	for _, text := range texts {
		r := o.AnalyzeContent(context.Background(), text, child(6))
		if r.Toxicity.ToxicityScore < prevScore {
			t.Errorf("%q: toxicity %v dropped below %v", text, r.Toxicity.ToxicityScore, prevScore)
		}
		if r.OverallRiskLevel < prevRisk {
			t.Errorf("%q: risk %v dropped below %v", text, r.OverallRiskLevel, prevRisk)
		}
		prevScore, prevRisk = r.Toxicity.ToxicityScore, r.OverallRiskLevel
	}
	if prevRisk != model.RiskCritical {
		t.Errorf("final risk = %v, want critical", prevRisk)
	}
}

func TestAnalyzeContent_Deterministic(t *testing.T) {
	o := newTestOrchestrator(nil, Deps{})
	cc := model.ConversationContext{
		ChildAge:            5,
		ConversationHistory: []string{"I like dogs", "Can we play a game?"},
	}
	text := "Let's play a guessing game about animals! What sound does a dog make?"

	first := o.AnalyzeContent(context.Background(), text, cc)
	fp1, err := first.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		r := o.AnalyzeContent(context.Background(), text, cc)
		fp, err := r.Fingerprint()
		if err != nil {
			t.Fatalf("Fingerprint() error = %v", err)
		}
		if fp != fp1 {
			t.Fatalf("run %d fingerprint differs", i)
		}
		if r.AnalysisID == first.AnalysisID {
			t.Error("AnalysisID reused across analyses")
		}
		if r.ConfidenceScore != first.ConfidenceScore {
			t.Errorf("ConfidenceScore = %v, want %v", r.ConfidenceScore, first.ConfidenceScore)
		}
	}
}

func TestAnalyzeContent_UnsafeContextRaisesRisk(t *testing.T) {
	o := newTestOrchestrator(nil, Deps{})
	cc := model.ConversationContext{
		ChildAge:            6,
		ConversationHistory: []string{"I'm a bit sad", "I am angry", "I hate it, it hurt"},
	}

	r := o.AnalyzeContent(context.Background(), "Let's count to three together.", cc)
	if r.ContextAnalysis.ContextSafe {
		t.Fatal("context should be unsafe for an escalating history")
	}
	if !r.IsSafe {
		t.Error("an unhealthy conversation alone must not block the reply")
	}
	if r.OverallRiskLevel != model.RiskMedium {
		t.Errorf("OverallRiskLevel = %v, want medium_risk", r.OverallRiskLevel)
	}
	if !contains(r.SafetyRecommendations, RecContextConcern) {
		t.Errorf("recommendations = %v", r.SafetyRecommendations)
	}
}

func TestAnalyzeContent_ParentNotification(t *testing.T) {
	const mediumText = "That was a terrible idea."

	tests := []struct {
		name   string
		mutate func(*config.SafetyConfig)
		age    int
		text   string
		want   bool
	}{
		{"strict mode young child medium risk", nil, 4, mediumText, true},
		{"strict mode older child medium risk", nil, 8, mediumText, false},
		{"lenient mode young child medium risk", func(c *config.SafetyConfig) { c.EnableStrictMode = false }, 4, mediumText, false},
		{"critical risk", nil, 8, "You're stupid and ugly! I hate you!", true},
		{"notifications disabled", func(c *config.SafetyConfig) { c.NotifyParentsOnRisk = false }, 8, "You're stupid and ugly! I hate you!", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOrchestrator(tt.mutate, Deps{})
			r := o.AnalyzeContent(context.Background(), tt.text, child(tt.age))
			if tt.text == mediumText && r.OverallRiskLevel != model.RiskMedium {
				t.Fatalf("OverallRiskLevel = %v, want medium_risk", r.OverallRiskLevel)
			}
			if r.ParentNotificationRequired != tt.want {
				t.Errorf("ParentNotificationRequired = %v, want %v", r.ParentNotificationRequired, tt.want)
			}
		})
	}
}

func TestAnalyzeContent_Category(t *testing.T) {
	o := newTestOrchestrator(nil, Deps{})

	tests := []struct {
		text string
		want model.ContentCategory
	}{
		{"Let's learn about numbers, letters, shapes and colors! Let's count every animal in the picture book.", model.CategoryEducational},
		{"Here is a tale about a brave knight.", model.CategoryStory},
		{"Want to solve a puzzle with me?", model.CategoryGame},
		{"Here is a silly joke for you.", model.CategoryEntertainment},
		{"Where did you go today?", model.CategoryQuestion},
		{"Okay, see you soon.", model.CategoryConversation},
	}
	for _, tt := range tests {
		r := o.AnalyzeContent(context.Background(), tt.text, child(7))
		if r.ContentCategory != tt.want {
			t.Errorf("%q: ContentCategory = %v, want %v (educational %v)", tt.text, r.ContentCategory, tt.want, r.EducationalValue.EducationalScore)
		}
	}
}

func TestAnalyzeContent_FailSafe(t *testing.T) {
	tests := []struct {
		name      string
		deps      Deps
		cc        model.ConversationContext
		text      string
		wantStage string
	}{
		{"invalid age", Deps{}, child(0), "Hello there!", StageValidate},
		{"malformed text", Deps{}, child(6), "bad \xff bytes", StageValidate},
		{"analyzer error", Deps{Toxicity: errToxicity{}}, child(6), "Hello there!", StageToxicity},
		{"analyzer panic", Deps{Emotion: panicEmotion{}}, child(6), "Hello there!", StageEmotion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := metrics.NewCollector(metrics.Options{}, prometheus.NewRegistry())
			tt.deps.Metrics = collector
			o := newTestOrchestrator(nil, tt.deps)

			r := o.AnalyzeContent(context.Background(), tt.text, tt.cc)
			if r.IsSafe {
				t.Error("IsSafe = true for a failed analysis")
			}
			if r.OverallRiskLevel != model.RiskCritical {
				t.Errorf("OverallRiskLevel = %v, want critical", r.OverallRiskLevel)
			}
			if !r.ParentNotificationRequired {
				t.Error("failed analysis must notify parents")
			}
			if r.Metadata[MetaFailure] == "" {
				t.Error("failure reason missing from metadata")
			}
			if r.Metadata[MetaFailureStage] != tt.wantStage {
				t.Errorf("failure stage = %q, want %q", r.Metadata[MetaFailureStage], tt.wantStage)
			}
			if r.AnalysisID == "" {
				t.Error("fail-safe result has no AnalysisID")
			}
			if collector.Snapshot().Failures[metrics.KindContent] != 1 {
				t.Errorf("failures = %v", collector.Snapshot().Failures)
			}
		})
	}
}

func TestAnalyzeContent_TimeoutDegrades(t *testing.T) {
	text := "Let's count the stars together!"
	baseline := newTestOrchestrator(nil, Deps{}).AnalyzeContent(context.Background(), text, child(6))

	collector := metrics.NewCollector(metrics.Options{}, nil)
	o := newTestOrchestrator(func(c *config.SafetyConfig) { c.MaxProcessingTimeMS = 500 }, Deps{Metrics: collector})
	o.now = steppingClock(time.Second)

	r := o.AnalyzeContent(context.Background(), text, child(6))
	if !r.Degraded {
		t.Fatal("Degraded = false after exceeding the processing budget")
	}
	if !strings.Contains(r.Metadata[MetaTimeoutExceeded], ErrTimeoutExceeded.Error()) {
		t.Errorf("metadata = %v", r.Metadata)
	}
	if r.IsSafe != baseline.IsSafe || r.OverallRiskLevel != baseline.OverallRiskLevel {
		t.Error("exceeding the budget changed the safety decision")
	}
	if r.ConfidenceScore >= baseline.ConfidenceScore {
		t.Errorf("ConfidenceScore = %v, want below %v", r.ConfidenceScore, baseline.ConfidenceScore)
	}
	if r.ProcessingTimeMS != 1000 {
		t.Errorf("ProcessingTimeMS = %v, want 1000", r.ProcessingTimeMS)
	}
	if collector.Snapshot().Degraded != 1 {
		t.Error("degraded analysis not counted")
	}
}

func TestDetectBias_TimeoutDegrades(t *testing.T) {
	collector := metrics.NewCollector(metrics.Options{}, nil)
	o := newTestOrchestrator(func(c *config.SafetyConfig) { c.MaxProcessingTimeMS = 10 },
		Deps{Bias: slowBias{delay: 60 * time.Millisecond}, Metrics: collector})

	r := o.DetectBias(context.Background(), "Let's count the stars together!", child(6))
	if !r.Degraded {
		t.Fatal("Degraded = false after exceeding the processing budget")
	}
	if !strings.Contains(r.Metadata[MetaTimeoutExceeded], ErrTimeoutExceeded.Error()) {
		t.Errorf("metadata = %v", r.Metadata)
	}
	if r.Confidence >= 0.9 {
		t.Errorf("Confidence = %v, want below 0.9", r.Confidence)
	}
	if r.HasBias {
		t.Error("exceeding the budget changed the bias decision")
	}
	if r.ProcessingTimeMS < 60 {
		t.Errorf("ProcessingTimeMS = %v, want at least 60", r.ProcessingTimeMS)
	}
	if collector.Snapshot().Degraded != 1 {
		t.Error("degraded bias check not counted")
	}

	integrated := o.AnalyzeIntegrated(context.Background(), "Let's count the stars together!", child(6))
	if !integrated.Bias.Degraded || integrated.Bias.Metadata[MetaTimeoutExceeded] == "" {
		t.Errorf("integrated bias result = %+v", integrated.Bias)
	}
}

func TestAnalyzeContent_ObserverAndMetrics(t *testing.T) {
	obs := &recordingObserver{}
	collector := metrics.NewCollector(metrics.Options{}, nil)
	o := newTestOrchestrator(nil, Deps{Observer: obs, Metrics: collector})

	o.AnalyzeContent(context.Background(), "You're stupid!", child(6))
	o.DetectBias(context.Background(), "Boys are naturally better at math than girls.", child(6))

	if len(obs.content) != 1 || len(obs.bias) != 1 {
		t.Fatalf("observer saw %d content, %d bias results", len(obs.content), len(obs.bias))
	}
	snap := collector.Snapshot()
	if snap.TotalAnalyses != 1 || snap.BiasChecks != 1 || snap.BiasDetected != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestDetectBias(t *testing.T) {
	o := newTestOrchestrator(nil, Deps{})

	t.Run("gender bias", func(t *testing.T) {
		r := o.DetectBias(context.Background(), "Boys are naturally better at math than girls.", child(6))
		if !r.HasBias {
			t.Error("HasBias = false")
		}
		if r.BiasScores[model.BiasGender] <= 0.3 {
			t.Errorf("gender score = %v, want > 0.3", r.BiasScores[model.BiasGender])
		}
		found := false
		for _, s := range r.MitigationSuggestions {
			if strings.Contains(strings.ToLower(s), "gender-neutral") {
				found = true
			}
		}
		if !found {
			t.Errorf("mitigations = %v, want gender-neutral guidance", r.MitigationSuggestions)
		}
	})

	t.Run("unbiased pass-through", func(t *testing.T) {
		r := o.DetectBias(context.Background(), "Let's learn about colors! What's your favorite color?", child(5))
		if r.HasBias {
			t.Errorf("HasBias = true, patterns %v", r.DetectedPatterns)
		}
		if r.OverallBiasScore >= 0.3 {
			t.Errorf("OverallBiasScore = %v, want < 0.3", r.OverallBiasScore)
		}
	})

	t.Run("detector failure", func(t *testing.T) {
		failing := newTestOrchestrator(nil, Deps{Bias: errBias{}})
		r := failing.DetectBias(context.Background(), "Hello", child(6))
		if !r.HasBias || r.RiskLevel != model.RiskHigh {
			t.Errorf("fail-safe bias result = %+v", r)
		}
		if r.Metadata["failure"] == "" {
			t.Error("failure reason missing")
		}
	})
}

func TestAnalyzeIntegrated(t *testing.T) {
	o := newTestOrchestrator(nil, Deps{})

	clean := o.AnalyzeIntegrated(context.Background(), "Let's learn about colors! What's your favorite color?", child(5))
	if !clean.IsCompletelySafe() {
		t.Errorf("clean reply not completely safe, concerns %v", clean.Concerns())
	}
	if len(clean.Concerns()) != 0 {
		t.Errorf("Concerns() = %v, want none", clean.Concerns())
	}

	biased := o.AnalyzeIntegrated(context.Background(), "Boys are naturally better at math than girls.", child(6))
	if !biased.Content.IsSafe {
		t.Error("biased but non-toxic reply should pass the content gate")
	}
	if biased.IsCompletelySafe() {
		t.Error("biased reply reported completely safe")
	}
	if !contains(biased.Concerns(), "bias:gender") {
		t.Errorf("Concerns() = %v, want bias:gender", biased.Concerns())
	}
}

func TestBatchAnalyze(t *testing.T) {
	o := newTestOrchestrator(func(c *config.SafetyConfig) { c.BatchConcurrency = 2 }, Deps{})
	texts := []string{
		"You're stupid and ugly! I hate you!",
		"Once upon a time, there was a happy little bunny who loved to learn!",
		"What's your address and phone number?",
		"Let's count to ten together.",
	}
	contexts := []model.ConversationContext{child(6), child(4), child(7), child(0)}

	results, err := o.BatchAnalyze(context.Background(), texts, contexts)
	if err != nil {
		t.Fatalf("BatchAnalyze() error = %v", err)
	}
	if len(results) != len(texts) {
		t.Fatalf("got %d results, want %d", len(results), len(texts))
	}

	for i := range texts {
		single := o.AnalyzeContent(context.Background(), texts[i], contexts[i])
		want, _ := single.Fingerprint()
		got, _ := results[i].Fingerprint()
		if got != want {
			t.Errorf("item %d differs from individual analysis", i)
		}
	}
	if results[3].Metadata[MetaFailure] == "" {
		t.Error("invalid item should carry a fail-safe result")
	}
	if !results[1].IsSafe {
		t.Error("a failing neighbour affected a valid item")
	}
}

func TestBatchAnalyze_LengthMismatch(t *testing.T) {
	o := newTestOrchestrator(nil, Deps{})
	_, err := o.BatchAnalyze(context.Background(), []string{"a", "b"}, []model.ConversationContext{child(5)})
	if !errors.Is(err, ErrBatchMismatch) || !errors.Is(err, ErrAnalysisFailed) {
		t.Errorf("err = %v, want ErrBatchMismatch", err)
	}

	_, err = o.BatchDetectBias(context.Background(), []string{"a"}, nil)
	if !errors.Is(err, ErrBatchMismatch) {
		t.Errorf("err = %v, want ErrBatchMismatch", err)
	}
}

func TestBatchDetectBias(t *testing.T) {
	o := newTestOrchestrator(nil, Deps{})
	texts := []string{
		"Boys are naturally better at math than girls.",
		"Let's learn about colors! What's your favorite color?",
	}
	results, err := o.BatchDetectBias(context.Background(), texts, []model.ConversationContext{child(6), child(5)})
	if err != nil {
		t.Fatal(err)
	}
	if !results[0].HasBias || results[1].HasBias {
		t.Errorf("HasBias = %v, %v; want true, false", results[0].HasBias, results[1].HasBias)
	}
}

func TestAnalysisError(t *testing.T) {
	cause := errors.New("boom")
	err := error(&AnalysisError{Stage: StageToxicity, Err: cause})

	if !errors.Is(err, ErrAnalysisFailed) {
		t.Error("AnalysisError does not match ErrAnalysisFailed")
	}
	if !errors.Is(err, cause) {
		t.Error("AnalysisError does not unwrap to its cause")
	}
	if err.Error() != "analysis failed at toxicity: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestContentAnalysisResult_ToMap(t *testing.T) {
	o := newTestOrchestrator(nil, Deps{})
	r := o.AnalyzeContent(context.Background(), "You're stupid!", child(6))

	m, err := r.ToMap()
	if err != nil {
		t.Fatalf("ToMap() error = %v", err)
	}
	if m["overall_risk_level"] != r.OverallRiskLevel.String() {
		t.Errorf("overall_risk_level = %v", m["overall_risk_level"])
	}
	if m["is_safe"] != r.IsSafe {
		t.Errorf("is_safe = %v", m["is_safe"])
	}
	if _, ok := m["toxicity_result"].(map[string]any); !ok {
		t.Errorf("toxicity_result = %T", m["toxicity_result"])
	}
}

func TestContentComplexity(t *testing.T) {
	simple := contentComplexity("The cat sat.")
	hard := contentComplexity("Photosynthesis transforms electromagnetic radiation into biochemical energy. Consequently, chlorophyll-containing organisms flourish.")
	if simple >= hard {
		t.Errorf("complexity simple=%v hard=%v", simple, hard)
	}
	if got := targetAgeRange(simple); got != (AgeRange{Min: 3, Max: 6}) {
		t.Errorf("targetAgeRange(simple) = %v", got)
	}
	if got := targetAgeRange(hard); got.Min < 6 {
		t.Errorf("targetAgeRange(hard) = %v", got)
	}
	if contentComplexity("") != 0 {
		t.Error("empty text should have zero complexity")
	}
}

// helpers

func hasModification(r *ContentAnalysisResult, kind string) bool {
	for _, m := range r.RequiredModifications {
		if m.Type == kind {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// steppingClock returns start on the first call and start+step afterwards.
func steppingClock(step time.Duration) func() time.Time {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	calls := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return start
		}
		return start.Add(step)
	}
}

type errToxicity struct{}

func (errToxicity) Analyze(string) (*model.ToxicityResult, error) {
	return nil, errors.New("classifier unavailable")
}

type panicEmotion struct{}

func (panicEmotion) Analyze(string, int) (*model.EmotionalImpactResult, error) {
	panic("lexicon corrupted")
}

type errBias struct{}

func (errBias) Analyze(context.Context, string, model.ConversationContext) (*model.BiasAnalysisResult, error) {
	return nil, errors.New("scorer down")
}

func (errBias) Method() string { return "pattern" }

type slowBias struct{ delay time.Duration }

func (b slowBias) Analyze(context.Context, string, model.ConversationContext) (*model.BiasAnalysisResult, error) {
	time.Sleep(b.delay)
	return &model.BiasAnalysisResult{
		BiasScores:     map[model.BiasType]float64{},
		ContextualBias: map[string]float64{},
		Confidence:     0.9,
		Method:         "embedding",
	}, nil
}

func (slowBias) Method() string { return "embedding" }

type recordingObserver struct {
	mu      sync.Mutex
	content []*ContentAnalysisResult
	bias    []*model.BiasAnalysisResult
}

func (r *recordingObserver) ObserveContent(_ context.Context, _ string, _ model.ConversationContext, res *ContentAnalysisResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content = append(r.content, res)
}

func (r *recordingObserver) ObserveBias(_ context.Context, _ string, _ model.ConversationContext, res *model.BiasAnalysisResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bias = append(r.bias, res)
}
