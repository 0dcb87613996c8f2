package guardian

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"aiteddy-hq/guardian/pkg/audit"
	"aiteddy-hq/guardian/pkg/audit/recorder"
	"aiteddy-hq/guardian/pkg/audit/retention"
	"aiteddy-hq/guardian/pkg/audit/storage"
	"aiteddy-hq/guardian/pkg/config"
	"aiteddy-hq/guardian/pkg/safety"
	"aiteddy-hq/guardian/pkg/safety/bias"
	"aiteddy-hq/guardian/pkg/safety/embedding"
	"aiteddy-hq/guardian/pkg/safety/model"
	"aiteddy-hq/guardian/pkg/safety/rules"
	"aiteddy-hq/guardian/pkg/telemetry/health"
	"aiteddy-hq/guardian/pkg/telemetry/logging"
	"aiteddy-hq/guardian/pkg/telemetry/metrics"
	"aiteddy-hq/guardian/pkg/telemetry/tracing"
)

// Options are optional overrides for New. Zero values build everything
// from the configuration.
type Options struct {
	// Logger replaces the logger built from telemetry.logging.
	Logger *slog.Logger

	// Registry receives the Prometheus collectors. Default: a private
	// registry.
	Registry *prometheus.Registry

	// TracerProvider replaces the global OpenTelemetry provider.
	TracerProvider trace.TracerProvider

	// Embedder replaces the HTTP embeddings client for the embedding scorer.
	Embedder bias.Embedder

	// Storage replaces the audit backend named in the configuration. It is
	// used only when audit is enabled, and the Service closes it.
	Storage audit.Storage
}

// pipeline is everything that changes when pattern packs are reloaded.
// It is immutable once published.
type pipeline struct {
	generation   uint64
	loadedAt     time.Time
	rules        *rules.Store
	orchestrator *safety.Orchestrator

	// canary runs the self-test without touching metrics or the audit trail.
	canary *safety.Orchestrator
}

// Service owns a configured engine and its supporting infrastructure:
// pattern-pack hot reload, the audit trail and health checks. It is safe
// for concurrent use. Analyses in flight during a reload finish on the
// pipeline they started with.
type Service struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *metrics.Collector
	tracer   trace.Tracer
	embedder bias.Embedder

	current    atomic.Pointer[pipeline]
	generation atomic.Uint64
	reloadMu   sync.Mutex

	store     audit.Storage
	recorder  *recorder.Recorder
	pruner    *retention.Pruner
	scheduler *retention.Scheduler
	watcher   *rules.Watcher

	health *health.Checker

	mu        sync.Mutex
	running   bool
	closeOnce sync.Once
	closeErr  error
}

// New builds a Service from cfg. The configuration must already be
// validated. When the embedding scorer is selected but its endpoint cannot
// be reached, the service falls back to the pattern scorer and reports the
// embedding check as failed.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("guardian: configuration is required")
	}

	logger := opts.Logger
	if logger == nil {
		var err error
		logger, err = logging.New(logging.Config{
			Level:     cfg.Telemetry.Logging.Level,
			Format:    cfg.Telemetry.Logging.Format,
			AddSource: cfg.Telemetry.Logging.AddSource,
			RedactPII: cfg.Telemetry.Logging.RedactPII,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	s := &Service{
		cfg:     cfg,
		logger:  logger.With("component", "guardian"),
		metrics: metrics.NewCollector(metrics.Options{Enabled: cfg.Telemetry.Metrics.Enabled}, opts.Registry),
		health:  health.New(health.DefaultCheckTimeout),
	}
	if opts.TracerProvider != nil {
		s.tracer = tracing.FromProvider(opts.TracerProvider, cfg.Telemetry.Tracing.ServiceName)
	} else {
		s.tracer = tracing.New(cfg.Telemetry.Tracing)
	}

	if cfg.Bias.Scorer == bias.MethodEmbedding {
		s.embedder = opts.Embedder
		if s.embedder == nil {
			client, err := embedding.NewClient(embedding.Options{
				BaseURL: cfg.Bias.Embedding.BaseURL,
				APIKey:  cfg.Bias.Embedding.APIKey,
				Model:   cfg.Bias.Embedding.Model,
				Timeout: cfg.Bias.Embedding.Timeout,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create embedding client: %w", err)
			}
			s.embedder = client
		}
	}

	if cfg.Audit.Enabled {
		if err := s.openAudit(opts.Storage, logger); err != nil {
			return nil, err
		}
	}

	p, err := s.build(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.current.Store(p)

	s.registerChecks()

	s.logger.Info("guardian initialized",
		"bias_method", p.orchestrator.BiasMethod(),
		"rules_path", cfg.Rules.Path,
		"audit_enabled", cfg.Audit.Enabled,
		"metrics_enabled", cfg.Telemetry.Metrics.Enabled,
	)
	return s, nil
}

func (s *Service) openAudit(store audit.Storage, logger *slog.Logger) error {
	if store == nil {
		var err error
		store, err = storage.Open(s.cfg.Audit, logger)
		if err != nil {
			return fmt.Errorf("failed to open audit storage: %w", err)
		}
	}
	s.store = store
	s.recorder = recorder.New(store, &recorder.Config{
		BufferSize: s.cfg.Audit.BufferSize,
		Logger:     logger,
	})
	s.pruner = retention.NewPruner(store, &retention.Config{
		RetentionDays: s.cfg.Audit.Retention.Days,
		Schedule:      s.cfg.Audit.Retention.Schedule,
		Logger:        logger,
	})
	s.scheduler = retention.NewScheduler(s.pruner)
	return nil
}

// build loads the pattern packs and assembles a new pipeline.
func (s *Service) build(ctx context.Context) (*pipeline, error) {
	store, err := rules.Load(rules.Default(), s.cfg.Rules.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load pattern packs: %w", err)
	}

	var observer safety.Observer
	if s.recorder != nil {
		observer = s.recorder
	}

	deps := safety.Deps{
		Bias:     bias.NewDetector(s.scorer(ctx, store), store, safety.BiasOptions(s.cfg.Safety)),
		Metrics:  s.metrics,
		Observer: observer,
		Tracer:   s.tracer,
		Logger:   s.logger,
	}

	return &pipeline{
		generation:   s.generation.Add(1),
		loadedAt:     time.Now().UTC(),
		rules:        store,
		orchestrator: safety.New(s.cfg.Safety, store, deps),
		canary:       safety.New(s.cfg.Safety, store, safety.Deps{Logger: logging.Nop()}),
	}, nil
}

// scorer picks the bias scorer once per pipeline. Embedding failures fall
// back to pattern scoring.
func (s *Service) scorer(ctx context.Context, store *rules.Store) bias.Scorer {
	if s.embedder == nil {
		return bias.NewPatternScorer(store)
	}
	es, err := bias.NewEmbeddingScorer(ctx, s.embedder, store)
	if err != nil {
		s.logger.Warn("embedding scorer unavailable, falling back to pattern scorer",
			"base_url", s.cfg.Bias.Embedding.BaseURL,
			"error", err,
		)
		return bias.NewPatternScorer(store)
	}
	return es
}

// Reload rebuilds the pipeline from the pattern packs on disk and swaps it
// in. On error the current pipeline stays active.
func (s *Service) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	p, err := s.build(ctx)
	if err != nil {
		s.logger.Error("pattern pack reload failed, keeping current rules", "error", err)
		return err
	}
	prev := s.current.Swap(p)
	s.logger.Info("pattern packs reloaded",
		"generation", p.generation,
		"previous_generation", prev.generation,
		"categories", len(p.rules.Categories()),
		"bias_method", p.orchestrator.BiasMethod(),
	)
	return nil
}

// Run starts background work (pattern watching and audit retention) and
// blocks until ctx is cancelled. It does not close the service.
func (s *Service) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("guardian: already running")
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if s.scheduler != nil {
		if err := s.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start audit retention: %w", err)
		}
		defer s.scheduler.Stop()
	}

	if s.cfg.Rules.Watch && s.cfg.Rules.Path != "" {
		w, err := rules.NewWatcher(s.cfg.Rules.Path, s.cfg.Rules.Debounce, s.logger)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.watcher = w
		s.mu.Unlock()
		defer w.Stop()
		return w.Watch(ctx, func() error { return s.Reload(ctx) })
	}

	<-ctx.Done()
	return nil
}

// Close flushes the audit trail and releases resources. It is safe to call
// more than once.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		w := s.watcher
		s.mu.Unlock()
		if w != nil {
			w.Stop()
		}
		if s.scheduler != nil {
			s.scheduler.Stop()
		}
		if s.recorder != nil {
			s.recorder.Close()
		}
		if s.store != nil {
			if err := s.store.Close(); err != nil {
				s.closeErr = fmt.Errorf("failed to close audit storage: %w", err)
			}
		}
		s.logger.Info("guardian stopped")
	})
	return s.closeErr
}

// AnalyzeContent decides whether text is safe for the child in cc.
func (s *Service) AnalyzeContent(ctx context.Context, text string, cc model.ConversationContext) *safety.ContentAnalysisResult {
	return s.current.Load().orchestrator.AnalyzeContent(ctx, text, cc)
}

// DetectBias checks text for bias.
func (s *Service) DetectBias(ctx context.Context, text string, cc model.ConversationContext) *model.BiasAnalysisResult {
	return s.current.Load().orchestrator.DetectBias(ctx, text, cc)
}

// AnalyzeIntegrated runs content and bias analysis together.
func (s *Service) AnalyzeIntegrated(ctx context.Context, text string, cc model.ConversationContext) *safety.IntegratedSafetyResult {
	return s.current.Load().orchestrator.AnalyzeIntegrated(ctx, text, cc)
}

// BatchAnalyze analyzes texts[i] under contexts[i].
func (s *Service) BatchAnalyze(ctx context.Context, texts []string, contexts []model.ConversationContext) ([]*safety.ContentAnalysisResult, error) {
	return s.current.Load().orchestrator.BatchAnalyze(ctx, texts, contexts)
}

// BatchDetectBias checks texts[i] for bias under contexts[i].
func (s *Service) BatchDetectBias(ctx context.Context, texts []string, contexts []model.ConversationContext) ([]*model.BiasAnalysisResult, error) {
	return s.current.Load().orchestrator.BatchDetectBias(ctx, texts, contexts)
}

// Config returns the service configuration.
func (s *Service) Config() *config.Config { return s.cfg }

// Logger returns the service logger.
func (s *Service) Logger() *slog.Logger { return s.logger }

// Metrics returns the metrics collector.
func (s *Service) Metrics() *metrics.Collector { return s.metrics }

// Rules returns the active pattern store.
func (s *Service) Rules() *rules.Store { return s.current.Load().rules }

// BiasMethod reports the active bias scoring method.
func (s *Service) BiasMethod() string { return s.current.Load().orchestrator.BiasMethod() }

// Generation counts pipeline builds; it increases on every successful reload.
func (s *Service) Generation() uint64 { return s.current.Load().generation }

// AuditStorage returns the audit backend, or nil when audit is disabled.
func (s *Service) AuditStorage() audit.Storage { return s.store }

// AuditStats returns the recorder counters. The zero value is returned when
// audit is disabled.
func (s *Service) AuditStats() recorder.Stats {
	if s.recorder == nil {
		return recorder.Stats{}
	}
	return s.recorder.Stats()
}

// PruneAudit applies the retention policy now.
func (s *Service) PruneAudit(ctx context.Context) (int64, error) {
	if s.pruner == nil {
		return 0, errors.New("guardian: audit is disabled")
	}
	return s.pruner.Prune(ctx)
}
