package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"aiteddy-hq/guardian/pkg/audit"
)

// Supported database/sql driver names.
const (
	// DriverPureGo is modernc.org/sqlite. It needs no cgo toolchain.
	DriverPureGo = "sqlite"

	// DriverCgo is github.com/mattn/go-sqlite3.
	DriverCgo = "sqlite3"
)

// SQLiteConfig configures the SQLite audit store.
type SQLiteConfig struct {
	// Driver selects the database/sql driver: DriverPureGo or DriverCgo.
	// Default: DriverPureGo
	Driver string

	// Path is the database file path. ":memory:" opens a private in-memory
	// database on a single connection.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool

	// BusyTimeout is how long a writer waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration

	// Logger receives storage lifecycle logs. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultSQLiteConfig returns the default configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Driver:       DriverPureGo,
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements audit.Storage on SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the database and creates the schema if needed.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	cfg := *config
	if cfg.Driver == "" {
		cfg.Driver = DriverPureGo
	}
	if cfg.Driver != DriverPureGo && cfg.Driver != DriverCgo {
		return nil, audit.NewStorageError(cfg.Driver, "open", fmt.Errorf("unsupported driver %q", cfg.Driver))
	}
	if cfg.Path == "" {
		return nil, audit.NewStorageError(cfg.Driver, "open", fmt.Errorf("path is required"))
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 10
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.Path == ":memory:" {
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "audit.storage.sqlite", "driver", cfg.Driver)

	db, err := sql.Open(cfg.Driver, dsn(&cfg))
	if err != nil {
		return nil, audit.NewStorageError(cfg.Driver, "open", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	s := &SQLiteStorage{db: db, config: &cfg, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("audit storage initialized",
		"path", cfg.Path,
		"wal_mode", cfg.WALMode,
		"max_open_conns", cfg.MaxOpenConns,
	)
	return s, nil
}

// dsn builds a connection string carrying the pragmas so every pooled
// connection gets them, not only the first one.
func dsn(cfg *SQLiteConfig) string {
	busy := cfg.BusyTimeout.Milliseconds()
	params := url.Values{}
	switch cfg.Driver {
	case DriverCgo:
		params.Set("_busy_timeout", fmt.Sprint(busy))
		if cfg.WALMode {
			params.Set("_journal_mode", "WAL")
		}
	default:
		params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy))
		if cfg.WALMode {
			params.Add("_pragma", "journal_mode(WAL)")
		}
	}
	return cfg.Path + "?" + params.Encode()
}

func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewStorageError(s.config.Driver, "create_schema", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return audit.NewStorageError(s.config.Driver, "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return audit.NewStorageError(s.config.Driver, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return audit.NewStorageError(s.config.Driver, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	s.logger.Debug("schema version verified", "version", version)
	return nil
}

// Store writes one record.
func (s *SQLiteStorage) Store(ctx context.Context, record *audit.Record) error {
	concerns, err := json.Marshal(record.Concerns)
	if err != nil {
		return audit.NewStorageError(s.config.Driver, "store", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO decisions ("+decisionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		record.ID, record.AnalysisID, record.Kind,
		record.AnalyzedAt.UTC().UnixNano(), record.RecordedAt.UTC().UnixNano(),
		record.SessionID, record.ChildAge,
		record.TextDigest, record.TextLength,
		record.IsSafe, record.RiskLevel, audit.RiskRank(record.RiskLevel), record.ContentCategory, record.ToxicityScore,
		record.HasBias, record.BiasScore, record.BiasMethod,
		string(concerns),
		record.ParentNotified, record.Degraded, record.Failure, record.ProcessingMS,
		record.DecisionDigest,
	)
	if err != nil {
		return audit.NewStorageError(s.config.Driver, "store", err)
	}
	return nil
}

// Query returns matching records ordered by analysis time.
func (s *SQLiteStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	if err := audit.Validate(query); err != nil {
		return nil, err
	}
	if query == nil {
		query = &audit.Query{}
	}

	where, args := buildWhereClause(query)
	sqlQuery := "SELECT " + decisionColumns + " FROM decisions"
	if where != "" {
		sqlQuery += " WHERE " + where
	}

	order := "DESC"
	if query.SortOrder == "asc" {
		order = "ASC"
	}
	sqlQuery += fmt.Sprintf(" ORDER BY analyzed_at %s, id ASC", order)

	switch {
	case query.Limit > 0:
		sqlQuery += fmt.Sprintf(" LIMIT %d", query.Limit)
	case query.Offset > 0:
		sqlQuery += " LIMIT -1"
	}
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, audit.NewStorageError(s.config.Driver, "query", err)
	}
	defer rows.Close()

	records := []*audit.Record{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, audit.NewStorageError(s.config.Driver, "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError(s.config.Driver, "query", err)
	}
	return records, nil
}

// Count returns the number of matching records.
func (s *SQLiteStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	if err := audit.Validate(query); err != nil {
		return 0, err
	}
	where, args := buildWhereClause(query)
	sqlQuery := "SELECT COUNT(*) FROM decisions"
	if where != "" {
		sqlQuery += " WHERE " + where
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, audit.NewStorageError(s.config.Driver, "count", err)
	}
	return count, nil
}

// Delete removes matching records. Pagination fields are ignored.
func (s *SQLiteStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	if err := audit.Validate(query); err != nil {
		return 0, err
	}
	where, args := buildWhereClause(query)
	sqlQuery := "DELETE FROM decisions"
	if where != "" {
		sqlQuery += " WHERE " + where
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, audit.NewStorageError(s.config.Driver, "delete", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError(s.config.Driver, "delete", err)
	}
	return count, nil
}

// Ping checks the database connection.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return audit.NewStorageError(s.config.Driver, "ping", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return audit.NewStorageError(s.config.Driver, "close", err)
	}
	s.logger.Info("audit storage closed")
	return nil
}

func buildWhereClause(query *audit.Query) (string, []any) {
	if query == nil {
		return "", nil
	}
	var conditions []string
	var args []any

	if query.StartTime != nil {
		conditions = append(conditions, "analyzed_at >= ?")
		args = append(args, query.StartTime.UTC().UnixNano())
	}
	if query.EndTime != nil {
		conditions = append(conditions, "analyzed_at <= ?")
		args = append(args, query.EndTime.UTC().UnixNano())
	}
	if query.SessionID != "" {
		conditions = append(conditions, "session_id = ?")
		args = append(args, query.SessionID)
	}
	if query.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, query.Kind)
	}
	if query.MinRisk != "" {
		conditions = append(conditions, "risk_rank >= ?")
		args = append(args, audit.RiskRank(query.MinRisk))
	}
	if query.UnsafeOnly {
		conditions = append(conditions, "is_safe = 0")
	}
	if query.BiasOnly {
		conditions = append(conditions, "has_bias = 1")
	}
	return strings.Join(conditions, " AND "), args
}

func scanRow(rows *sql.Rows) (*audit.Record, error) {
	var (
		record     audit.Record
		analyzedAt int64
		recordedAt int64
		riskRank   int
		concerns   string
	)
	err := rows.Scan(
		&record.ID, &record.AnalysisID, &record.Kind,
		&analyzedAt, &recordedAt,
		&record.SessionID, &record.ChildAge,
		&record.TextDigest, &record.TextLength,
		&record.IsSafe, &record.RiskLevel, &riskRank, &record.ContentCategory, &record.ToxicityScore,
		&record.HasBias, &record.BiasScore, &record.BiasMethod,
		&concerns,
		&record.ParentNotified, &record.Degraded, &record.Failure, &record.ProcessingMS,
		&record.DecisionDigest,
	)
	if err != nil {
		return nil, err
	}
	record.AnalyzedAt = time.Unix(0, analyzedAt).UTC()
	record.RecordedAt = time.Unix(0, recordedAt).UTC()
	if concerns != "" && concerns != "null" {
		if err := json.Unmarshal([]byte(concerns), &record.Concerns); err != nil {
			return nil, fmt.Errorf("decode concerns: %w", err)
		}
	}
	return &record, nil
}
