package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"aiteddy-hq/guardian/pkg/audit"
	"aiteddy-hq/guardian/pkg/config"
)

// Open returns the backend selected by cfg.Backend.
func Open(cfg config.AuditConfig, logger *slog.Logger) (audit.Storage, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStorage(), nil
	case "sqlite", "":
		if cfg.SQLite.Path != ":memory:" {
			if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
				if err := os.MkdirAll(dir, 0o750); err != nil {
					return nil, audit.NewStorageError(cfg.SQLite.Driver, "open", err)
				}
			}
		}
		sc := DefaultSQLiteConfig()
		sc.Path = cfg.SQLite.Path
		if cfg.SQLite.Driver != "" {
			sc.Driver = cfg.SQLite.Driver
		}
		if cfg.SQLite.BusyTimeout > 0 {
			sc.BusyTimeout = cfg.SQLite.BusyTimeout
		}
		sc.Logger = logger
		return NewSQLiteStorage(sc)
	default:
		return nil, fmt.Errorf("unsupported audit backend %q", cfg.Backend)
	}
}
