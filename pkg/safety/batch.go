package safety

import (
	"context"
	"fmt"
	"sync"

	"aiteddy-hq/guardian/pkg/safety/bias"
	"aiteddy-hq/guardian/pkg/safety/model"
	"aiteddy-hq/guardian/pkg/telemetry/metrics"
	"aiteddy-hq/guardian/pkg/telemetry/tracing"
)

// ErrBatchMismatch is returned when texts and contexts differ in length.
var ErrBatchMismatch = fmt.Errorf("%w: texts and contexts differ in length", ErrAnalysisFailed)

// BatchAnalyze analyzes texts[i] under contexts[i] concurrently and returns
// the results in input order. At most batch_concurrency items run at once.
// Each item is independent: a failed item gets a fail-safe result and the
// others are unaffected.
func (o *Orchestrator) BatchAnalyze(ctx context.Context, texts []string, contexts []model.ConversationContext) ([]*ContentAnalysisResult, error) {
	if len(texts) != len(contexts) {
		return nil, fmt.Errorf("%w (%d texts, %d contexts)", ErrBatchMismatch, len(texts), len(contexts))
	}

	ctx, span := o.tracer.Start(ctx, "guardian.batch_analyze")
	defer span.End()
	tracing.SetBatchAttributes(span, len(texts))

	results := make([]*ContentAnalysisResult, len(texts))
	o.fanOut(len(texts), func(i int) {
		defer func() {
			if p := recover(); p != nil {
				results[i] = o.failSafe(&AnalysisError{Stage: "batch", Err: fmt.Errorf("panic: %v", p)})
				o.metrics.RecordFailure(metrics.KindBatch)
			}
		}()
		results[i] = o.analyzeContent(ctx, texts[i], contexts[i], metrics.KindBatch)
	})

	o.metrics.RecordBatch(len(texts))
	return results, nil
}

// BatchDetectBias is the bias-check counterpart of BatchAnalyze.
func (o *Orchestrator) BatchDetectBias(ctx context.Context, texts []string, contexts []model.ConversationContext) ([]*model.BiasAnalysisResult, error) {
	if len(texts) != len(contexts) {
		return nil, fmt.Errorf("%w (%d texts, %d contexts)", ErrBatchMismatch, len(texts), len(contexts))
	}

	ctx, span := o.tracer.Start(ctx, "guardian.batch_detect_bias")
	defer span.End()
	tracing.SetBatchAttributes(span, len(texts))

	results := make([]*model.BiasAnalysisResult, len(texts))
	o.fanOut(len(texts), func(i int) {
		defer func() {
			if p := recover(); p != nil {
				results[i] = bias.FailSafe(fmt.Errorf("panic: %v", p), o.bias.Method())
				o.metrics.RecordFailure(metrics.KindBatch)
			}
		}()
		results[i] = o.DetectBias(ctx, texts[i], contexts[i])
	})

	o.metrics.RecordBatch(len(texts))
	return results, nil
}

// fanOut calls fn for every index in [0, n) with bounded concurrency and
// returns once all calls have finished.
func (o *Orchestrator) fanOut(n int, fn func(i int)) {
	limit := o.cfg.BatchConcurrency
	if limit < 1 {
		limit = 1
	}
	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(i)
		}(i)
	}
	wg.Wait()
}
