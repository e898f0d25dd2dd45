// Package audit defines the append-only audit log for finalized lending
// decisions.
//
// Every evaluated application eventually yields exactly one Record: either
// directly, when arbitration auto-approves, or through human resolution of
// a review-queue entry. Records capture the full application snapshot and
// the signals the decision was based on, so the trail can be replayed
// without re-deriving a (possibly non-deterministic) risk estimate.
//
// The Storage interface has no update or delete operation. Corrections
// append a new record; history is never edited. Subpackage storage provides
// in-memory and SQLite backends, and subpackage recorder provides an async
// writer that retries failed appends until they succeed.
package audit
