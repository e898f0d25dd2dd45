package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"nexus-hq/arbiter/pkg/audit"
	"nexus-hq/arbiter/pkg/engine"
)

// SQLiteConfig contains configuration for the SQLite audit backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables write-ahead logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements audit.Storage using SQLite. Records are stored
// with their signal payloads serialized as JSON columns so the full
// decision context survives restarts.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite audit backend and initializes the
// schema.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "audit.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite audit storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets up the schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return audit.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return audit.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return audit.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil && err != sql.ErrNoRows {
		return audit.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return audit.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Append persists an audit record.
func (s *SQLiteStorage) Append(ctx context.Context, record *audit.Record) error {
	application, err := json.Marshal(record.Application)
	if err != nil {
		return audit.NewStorageError("sqlite", "append", err)
	}
	policy, err := json.Marshal(record.Policy)
	if err != nil {
		return audit.NewStorageError("sqlite", "append", err)
	}
	risk, err := json.Marshal(record.Risk)
	if err != nil {
		return audit.NewStorageError("sqlite", "append", err)
	}
	content, err := json.Marshal(record.Content)
	if err != nil {
		return audit.NewStorageError("sqlite", "append", err)
	}

	var override, feedback interface{}
	feedbackTriggered := 0
	if record.HumanOverride != nil {
		data, err := json.Marshal(record.HumanOverride)
		if err != nil {
			return audit.NewStorageError("sqlite", "append", err)
		}
		override = string(data)
	}
	if record.FeedbackLoop != nil {
		data, err := json.Marshal(record.FeedbackLoop)
		if err != nil {
			return audit.NewStorageError("sqlite", "append", err)
		}
		feedback = string(data)
		if record.FeedbackLoop.Triggered {
			feedbackTriggered = 1
		}
	}

	query := `
		INSERT INTO audit_records (
			id, application_id, application, policy, risk, content,
			disposition, evaluated_at, recorded_at,
			human_override, feedback_triggered, feedback_loop
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		record.ID, record.ApplicationID, string(application), string(policy), string(risk), string(content),
		string(record.Disposition), record.EvaluatedAt, record.RecordedAt,
		override, feedbackTriggered, feedback,
	)
	if err != nil {
		return audit.NewStorageError("sqlite", "append", err)
	}

	return nil
}

// Query retrieves audit records matching the query filters.
func (s *SQLiteStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	sqlQuery, args := s.buildSelect(query)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*audit.Record{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, audit.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// QueryStream streams audit records matching the query filters.
func (s *SQLiteStorage) QueryStream(ctx context.Context, query *audit.Query) (<-chan *audit.Record, <-chan error, error) {
	recordsCh := make(chan *audit.Record, 100)
	errCh := make(chan error, 1)

	sqlQuery, args := s.buildSelect(query)

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
		if err != nil {
			errCh <- audit.NewStorageError("sqlite", "query_stream", err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			record, err := scanRow(rows)
			if err != nil {
				errCh <- audit.NewStorageError("sqlite", "scan", err)
				return
			}

			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- record:
			}
		}

		if err := rows.Err(); err != nil {
			errCh <- audit.NewStorageError("sqlite", "query_stream", err)
		}
	}()

	return recordsCh, errCh, nil
}

// Count returns the number of records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)
	sqlQuery := "SELECT COUNT(*) FROM audit_records"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, audit.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Close releases resources held by the backend.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return audit.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("SQLite audit storage closed")
	return nil
}

// buildSelect builds the full SELECT statement with filters, ordering, and
// pagination.
func (s *SQLiteStorage) buildSelect(query *audit.Query) (string, []interface{}) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := `SELECT id, application_id, application, policy, risk, content,
		disposition, evaluated_at, recorded_at, human_override, feedback_loop
		FROM audit_records`
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	order := "DESC"
	if query.SortOrder == "asc" {
		order = "ASC"
	}
	sqlQuery += " ORDER BY recorded_at " + order

	// Limit 0 means no limit, matching the memory backend. SQLite requires
	// a LIMIT clause before OFFSET, so use -1 for unbounded.
	limit := -1
	if query.Limit > 0 {
		limit = query.Limit
	}
	if limit > 0 || query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	}
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	return sqlQuery, args
}

// buildWhereClause builds a WHERE clause (without the keyword) from the
// query filters, returning the clause and its arguments.
func buildWhereClause(query *audit.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if query.ApplicationID != "" {
		conditions = append(conditions, "application_id = ?")
		args = append(args, query.ApplicationID)
	}
	if query.Disposition != "" {
		conditions = append(conditions, "disposition = ?")
		args = append(args, string(query.Disposition))
	}
	if query.StartTime != nil {
		conditions = append(conditions, "recorded_at >= ?")
		args = append(args, *query.StartTime)
	}
	if query.EndTime != nil {
		conditions = append(conditions, "recorded_at <= ?")
		args = append(args, *query.EndTime)
	}
	if query.OverriddenOnly {
		conditions = append(conditions, "human_override IS NOT NULL")
	}
	if query.FeedbackTriggered != nil {
		if *query.FeedbackTriggered {
			conditions = append(conditions, "feedback_triggered = 1")
		} else {
			conditions = append(conditions, "feedback_triggered = 0")
		}
	}

	whereClause := ""
	for i, condition := range conditions {
		if i > 0 {
			whereClause += " AND "
		}
		whereClause += condition
	}
	return whereClause, args
}

// scanRow scans a database row into an audit.Record.
func scanRow(rows *sql.Rows) (*audit.Record, error) {
	var record audit.Record
	var application, policy, risk, content string
	var disposition string
	var override, feedback sql.NullString

	err := rows.Scan(
		&record.ID, &record.ApplicationID, &application, &policy, &risk, &content,
		&disposition, &record.EvaluatedAt, &record.RecordedAt, &override, &feedback,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(application), &record.Application); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(policy), &record.Policy); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(risk), &record.Risk); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(content), &record.Content); err != nil {
		return nil, err
	}

	record.Disposition = engine.Disposition(disposition)

	if override.Valid {
		var ho audit.HumanOverride
		if err := json.Unmarshal([]byte(override.String), &ho); err != nil {
			return nil, err
		}
		record.HumanOverride = &ho
	}
	if feedback.Valid {
		var fl audit.FeedbackLoop
		if err := json.Unmarshal([]byte(feedback.String), &fl); err != nil {
			return nil, err
		}
		record.FeedbackLoop = &fl
	}

	return &record, nil
}
