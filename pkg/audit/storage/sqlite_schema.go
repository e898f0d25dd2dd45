package storage

// SchemaVersion is the current audit database schema version.
const SchemaVersion = 1

// Schema creates the audit tables and indexes. The audit table is
// append-only by design: the application exposes no UPDATE or DELETE path
// against it.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_records (
	id TEXT PRIMARY KEY,
	application_id TEXT NOT NULL,
	application TEXT NOT NULL,
	policy TEXT NOT NULL,
	risk TEXT NOT NULL,
	content TEXT NOT NULL,
	disposition TEXT NOT NULL,
	evaluated_at TIMESTAMP NOT NULL,
	recorded_at TIMESTAMP NOT NULL,
	human_override TEXT,
	feedback_triggered INTEGER NOT NULL DEFAULT 0,
	feedback_loop TEXT
);

CREATE INDEX IF NOT EXISTS idx_audit_application_id ON audit_records(application_id);
CREATE INDEX IF NOT EXISTS idx_audit_disposition ON audit_records(disposition);
CREATE INDEX IF NOT EXISTS idx_audit_recorded_at ON audit_records(recorded_at);
CREATE INDEX IF NOT EXISTS idx_audit_feedback ON audit_records(feedback_triggered);

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// InsertSchemaVersion records the schema version, ignoring duplicates.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?);`

// GetSchemaVersion returns the highest applied schema version.
const GetSchemaVersion = `SELECT MAX(version) FROM schema_version;`
