package recorder

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"aiteddy-hq/guardian/pkg/audit"
	"aiteddy-hq/guardian/pkg/safety"
	"aiteddy-hq/guardian/pkg/safety/model"
)

// Config contains configuration for the audit recorder.
type Config struct {
	// BufferSize is the capacity of the async write queue.
	// Default: 1000
	BufferSize int

	// WriteTimeout bounds a single storage write.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// EnqueueTimeout is how long an observation waits for room in a full
	// queue before the record is dropped. Zero never waits.
	EnqueueTimeout time.Duration

	// Logger receives recorder logs. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		BufferSize:   1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Stats are the recorder's lifetime counters.
type Stats struct {
	Written int64
	Dropped int64
	Failed  int64
}

// Recorder writes audit records in the background. It implements
// safety.Observer, so analysis never waits on storage: observations are
// queued and a full queue drops the record with a warning.
type Recorder struct {
	storage audit.Storage
	config  Config
	queue   chan *audit.Record
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	logger  *slog.Logger
	now     func() time.Time

	written atomic.Int64
	dropped atomic.Int64
	failed  atomic.Int64
}

var _ safety.Observer = (*Recorder)(nil)

// New starts a recorder writing to storage.
func New(storage audit.Storage, config *Config) *Recorder {
	cfg := DefaultConfig()
	if config != nil {
		cfg = config
	}
	c := *cfg
	if c.BufferSize <= 0 {
		c.BufferSize = 1000
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recorder{
		storage: storage,
		config:  c,
		queue:   make(chan *audit.Record, c.BufferSize),
		done:    make(chan struct{}),
		logger:  logger.With("component", "audit.recorder"),
		now:     time.Now,
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("audit recorder initialized",
		"buffer_size", c.BufferSize,
		"write_timeout", c.WriteTimeout,
	)
	return r
}

// ObserveContent queues the audit record for a content decision.
func (r *Recorder) ObserveContent(ctx context.Context, text string, cc model.ConversationContext, result *safety.ContentAnalysisResult) {
	if result == nil {
		return
	}
	record, err := ContentRecord(text, cc, result, r.now().UTC())
	if err != nil {
		r.failed.Add(1)
		r.logger.ErrorContext(ctx, "failed to build audit record", "analysis_id", result.AnalysisID, "error", err)
		return
	}
	r.enqueue(ctx, record)
}

// ObserveBias queues the audit record for a bias check.
func (r *Recorder) ObserveBias(ctx context.Context, text string, cc model.ConversationContext, result *model.BiasAnalysisResult) {
	if result == nil {
		return
	}
	record, err := BiasRecord(text, cc, result, r.now().UTC())
	if err != nil {
		r.failed.Add(1)
		r.logger.ErrorContext(ctx, "failed to build audit record", "kind", audit.KindBias, "error", err)
		return
	}
	r.enqueue(ctx, record)
}

// Record queues a prepared record. It returns audit.ErrClosed after Close
// and context.DeadlineExceeded when the queue stays full.
func (r *Recorder) Record(ctx context.Context, record *audit.Record) error {
	return r.enqueue(ctx, record)
}

func (r *Recorder) enqueue(ctx context.Context, record *audit.Record) error {
	select {
	case <-r.done:
		r.dropped.Add(1)
		r.logger.WarnContext(ctx, "recorder closed, dropping audit record", "record_id", record.ID)
		return audit.ErrClosed
	default:
	}

	if r.config.EnqueueTimeout <= 0 {
		select {
		case r.queue <- record:
			return nil
		default:
			return r.drop(ctx, record)
		}
	}

	timer := time.NewTimer(r.config.EnqueueTimeout)
	defer timer.Stop()
	select {
	case r.queue <- record:
		return nil
	case <-timer.C:
		return r.drop(ctx, record)
	case <-r.done:
		r.dropped.Add(1)
		return audit.ErrClosed
	}
}

func (r *Recorder) drop(ctx context.Context, record *audit.Record) error {
	r.dropped.Add(1)
	r.logger.WarnContext(ctx, "audit queue full, dropping record",
		"record_id", record.ID,
		"kind", record.Kind,
		"buffer_size", r.config.BufferSize,
	)
	return context.DeadlineExceeded
}

// Stats returns the current counters.
func (r *Recorder) Stats() Stats {
	return Stats{
		Written: r.written.Load(),
		Dropped: r.dropped.Load(),
		Failed:  r.failed.Load(),
	}
}

// Close stops accepting records, drains the queue and waits for pending
// writes. It does not close the storage.
func (r *Recorder) Close() error {
	r.once.Do(func() {
		r.logger.Info("shutting down audit recorder")
		close(r.done)
		r.wg.Wait()
		s := r.Stats()
		r.logger.Info("audit recorder shut down", "written", s.Written, "dropped", s.Dropped, "failed", s.Failed)
	})
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()
	for {
		select {
		case record := <-r.queue:
			r.write(record)
		case <-r.done:
			for {
				select {
				case record := <-r.queue:
					r.write(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(record *audit.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	if err := r.storage.Store(ctx, record); err != nil {
		r.failed.Add(1)
		r.logger.Error("failed to store audit record",
			"record_id", record.ID,
			"kind", record.Kind,
			"error", err,
		)
		return
	}
	r.written.Add(1)

	duration := time.Since(start)
	r.logger.Debug("audit record written",
		"record_id", record.ID,
		"kind", record.Kind,
		"risk_level", record.RiskLevel,
		"duration_ms", duration.Milliseconds(),
	)
	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow audit write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}
