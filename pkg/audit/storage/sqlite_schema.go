package storage

// SchemaVersion is the current audit database schema version.
const SchemaVersion = 1

// Schema creates the audit tables. Timestamps are stored as Unix nanoseconds
// so both SQLite drivers read them back identically.
const Schema = `
CREATE TABLE IF NOT EXISTS decisions (
    id TEXT PRIMARY KEY,
    analysis_id TEXT,
    kind TEXT NOT NULL,

    analyzed_at INTEGER NOT NULL,
    recorded_at INTEGER NOT NULL,

    session_id TEXT,
    child_age INTEGER NOT NULL,

    text_digest TEXT NOT NULL,
    text_length INTEGER NOT NULL,

    is_safe INTEGER NOT NULL,
    risk_level TEXT NOT NULL,
    risk_rank INTEGER NOT NULL,
    content_category TEXT,
    toxicity_score REAL,

    has_bias INTEGER NOT NULL,
    bias_score REAL,
    bias_method TEXT,

    concerns TEXT,

    parent_notified INTEGER NOT NULL,
    degraded INTEGER NOT NULL,
    failure TEXT,
    processing_ms REAL,

    decision_digest TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decisions_analyzed_at ON decisions(analyzed_at);
CREATE INDEX IF NOT EXISTS idx_decisions_session_id ON decisions(session_id);
CREATE INDEX IF NOT EXISTS idx_decisions_risk_rank ON decisions(risk_rank);
CREATE INDEX IF NOT EXISTS idx_decisions_text_digest ON decisions(text_digest);
`

// InsertSchemaVersion records the schema version once.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion returns the newest applied schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const decisionColumns = `id, analysis_id, kind, analyzed_at, recorded_at, session_id, child_age,
	text_digest, text_length, is_safe, risk_level, risk_rank, content_category, toxicity_score,
	has_bias, bias_score, bias_method, concerns, parent_notified, degraded, failure, processing_ms,
	decision_digest`
