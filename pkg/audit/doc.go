// Package audit keeps a durable trail of safety decisions.
//
// Every content decision and bias check can be written as a Record: the
// verdict, risk level, concern categories and a canonical digest of the
// decision. The reply itself is never stored, only its SHA-256 digest, so
// the trail can be kept alongside transcripts without duplicating children's
// conversations.
//
// Subpackages:
//
//   - storage: SQLite (pure Go or cgo driver) and in-memory backends
//   - recorder: an asynchronous writer that plugs into the orchestrator as
//     its Observer
//   - retention: age-based pruning on a cron schedule
//   - export: JSON, JSON lines and CSV writers
//
// Basic usage:
//
//	store, err := storage.Open(cfg.Audit, logger)
//	if err != nil {
//		return err
//	}
//	rec := recorder.New(store, &recorder.Config{BufferSize: cfg.Audit.BufferSize, Logger: logger})
//	defer rec.Close()
//
//	o := safety.New(cfg.Safety, rules.Default(), safety.Deps{Observer: rec})
package audit
