// Package storage provides audit log storage backends.
//
// Two implementations of audit.Storage are available:
//
//   - MemoryStorage: an in-memory append-only slice guarded by a
//     read-write mutex, for tests and ephemeral deployments.
//   - SQLiteStorage: a durable SQLite-backed store with WAL mode and
//     schema versioning, for single-instance production deployments.
//
// Neither backend exposes an update or delete path: the audit trail is
// append-only by design.
package storage
