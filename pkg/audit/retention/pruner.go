package retention

import (
	"context"
	"log/slog"
	"time"

	"aiteddy-hq/guardian/pkg/audit"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is how many days of audit records are kept. Zero or a
	// negative value keeps records forever.
	RetentionDays int

	// Schedule is a standard cron expression for the pruning job, e.g.
	// "0 3 * * *" for daily at 3 AM. Empty disables scheduling.
	Schedule string

	// Logger receives retention logs. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 30,
		Schedule:      "0 3 * * *",
	}
}

// Pruner deletes audit records older than the retention period.
type Pruner struct {
	storage audit.Storage
	config  Config
	logger  *slog.Logger
	now     func() time.Time
}

// NewPruner creates a pruner over storage.
func NewPruner(storage audit.Storage, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		storage: storage,
		config:  *config,
		logger:  logger.With("component", "audit.retention"),
		now:     time.Now,
	}
}

// Cutoff returns the oldest analysis time that survives a prune, and false
// when records are kept forever.
func (p *Pruner) Cutoff() (time.Time, bool) {
	if p.config.RetentionDays <= 0 {
		return time.Time{}, false
	}
	return p.now().UTC().AddDate(0, 0, -p.config.RetentionDays), true
}

// Prune deletes expired records and returns how many were removed.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	cutoff, ok := p.Cutoff()
	if !ok {
		p.logger.DebugContext(ctx, "retention disabled, nothing pruned",
			"retention_days", p.config.RetentionDays)
		return 0, nil
	}

	deleted, err := p.storage.Delete(ctx, &audit.Query{EndTime: &cutoff})
	if err != nil {
		return 0, &audit.RetentionError{RetentionDays: p.config.RetentionDays, Cause: err}
	}

	if deleted > 0 {
		p.logger.InfoContext(ctx, "audit pruning completed",
			"deleted_count", deleted,
			"cutoff_time", cutoff,
			"retention_days", p.config.RetentionDays,
		)
	} else {
		p.logger.DebugContext(ctx, "no audit records pruned",
			"cutoff_time", cutoff,
			"retention_days", p.config.RetentionDays,
		)
	}
	return deleted, nil
}
