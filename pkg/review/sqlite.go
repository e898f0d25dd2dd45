package review

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"nexus-hq/arbiter/pkg/audit"
	"nexus-hq/arbiter/pkg/config"
	"nexus-hq/arbiter/pkg/engine"
)

// SQLiteQueue implements Queue with a SQLite-backed pending table, so a
// restart does not lose deferred applications. A process-wide mutex plus a
// transaction per resolve keeps enqueue/resolve pairs linearizable; SQLite
// only supports a single writer anyway.
type SQLiteQueue struct {
	db *sql.DB
	mu sync.Mutex
}

const queueSchema = `
CREATE TABLE IF NOT EXISTS review_queue (
	application_id TEXT PRIMARY KEY,
	result TEXT NOT NULL,
	application TEXT NOT NULL,
	governance TEXT NOT NULL,
	enqueued_at TIMESTAMP NOT NULL
);
`

// NewSQLiteQueue opens (or creates) a SQLite-backed review queue at path.
func NewSQLiteQueue(path string) (*SQLiteQueue, error) {
	if path == "" {
		return nil, fmt.Errorf("queue db path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(queueSchema); err != nil {
		db.Close()
		return nil, NewStorageError("sqlite", "create_schema", err)
	}

	return &SQLiteQueue{db: db}, nil
}

// Enqueue adds a pending entry keyed by the application id.
func (q *SQLiteQueue) Enqueue(ctx context.Context, result *engine.EngineResult, app *engine.LoanApplication, gov config.GovernanceConfig) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return NewStorageError("sqlite", "enqueue", err)
	}
	appJSON, err := json.Marshal(app)
	if err != nil {
		return NewStorageError("sqlite", "enqueue", err)
	}
	govJSON, err := json.Marshal(gov)
	if err != nil {
		return NewStorageError("sqlite", "enqueue", err)
	}

	var exists int
	err = q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM review_queue WHERE application_id = ?", app.ID).Scan(&exists)
	if err != nil {
		return NewStorageError("sqlite", "enqueue", err)
	}
	if exists > 0 {
		return &DuplicateEnqueueError{ApplicationID: app.ID}
	}

	_, err = q.db.ExecContext(ctx,
		"INSERT INTO review_queue (application_id, result, application, governance, enqueued_at) VALUES (?, ?, ?, ?, ?)",
		app.ID, string(resultJSON), string(appJSON), string(govJSON), time.Now().UTC())
	if err != nil {
		return NewStorageError("sqlite", "enqueue", err)
	}
	return nil
}

// Resolve finalizes and removes a pending entry inside one transaction.
func (q *SQLiteQueue) Resolve(ctx context.Context, applicationID string, decision audit.HumanDecision, justification string) (*audit.Record, error) {
	if !decision.Valid() {
		return nil, &InvalidDecisionError{Decision: string(decision)}
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, NewStorageError("sqlite", "resolve", err)
	}
	defer tx.Rollback()

	var resultJSON, appJSON, govJSON string
	var enqueuedAt time.Time
	err = tx.QueryRowContext(ctx,
		"SELECT result, application, governance, enqueued_at FROM review_queue WHERE application_id = ?",
		applicationID).Scan(&resultJSON, &appJSON, &govJSON, &enqueuedAt)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{ApplicationID: applicationID}
	}
	if err != nil {
		return nil, NewStorageError("sqlite", "resolve", err)
	}

	entry := &Entry{EnqueuedAt: enqueuedAt}
	if err := json.Unmarshal([]byte(resultJSON), &entry.Result); err != nil {
		return nil, NewStorageError("sqlite", "resolve", err)
	}
	if err := json.Unmarshal([]byte(appJSON), &entry.Application); err != nil {
		return nil, NewStorageError("sqlite", "resolve", err)
	}
	if err := json.Unmarshal([]byte(govJSON), &entry.Governance); err != nil {
		return nil, NewStorageError("sqlite", "resolve", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM review_queue WHERE application_id = ?", applicationID); err != nil {
		return nil, NewStorageError("sqlite", "resolve", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, NewStorageError("sqlite", "resolve", err)
	}

	return finalize(entry, decision, justification, time.Now().UTC()), nil
}

// Pending lists all pending entries, oldest first.
func (q *SQLiteQueue) Pending(ctx context.Context) ([]*Entry, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT result, application, governance, enqueued_at FROM review_queue ORDER BY enqueued_at ASC")
	if err != nil {
		return nil, NewStorageError("sqlite", "pending", err)
	}
	defer rows.Close()

	entries := []*Entry{}
	for rows.Next() {
		var resultJSON, appJSON, govJSON string
		entry := &Entry{}
		if err := rows.Scan(&resultJSON, &appJSON, &govJSON, &entry.EnqueuedAt); err != nil {
			return nil, NewStorageError("sqlite", "pending", err)
		}
		if err := json.Unmarshal([]byte(resultJSON), &entry.Result); err != nil {
			return nil, NewStorageError("sqlite", "pending", err)
		}
		if err := json.Unmarshal([]byte(appJSON), &entry.Application); err != nil {
			return nil, NewStorageError("sqlite", "pending", err)
		}
		if err := json.Unmarshal([]byte(govJSON), &entry.Governance); err != nil {
			return nil, NewStorageError("sqlite", "pending", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "pending", err)
	}
	return entries, nil
}

// Len returns the number of pending entries.
func (q *SQLiteQueue) Len(ctx context.Context) (int, error) {
	var count int
	if err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM review_queue").Scan(&count); err != nil {
		return 0, NewStorageError("sqlite", "len", err)
	}
	return count, nil
}

// Close releases resources held by the queue.
func (q *SQLiteQueue) Close() error {
	if err := q.db.Close(); err != nil {
		return NewStorageError("sqlite", "close", err)
	}
	return nil
}
