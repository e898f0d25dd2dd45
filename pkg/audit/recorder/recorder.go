// Package recorder provides an asynchronous writer for audit records.
//
// Appends are decoupled from decision flow through a buffered channel and a
// background worker. A failed append is retried with exponential backoff
// until it succeeds: a disposition without an audit record is
// compliance-unsafe, so records are held rather than dropped. Close drains
// the channel and blocks until every buffered record is durably written.
package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"nexus-hq/arbiter/pkg/audit"
	"nexus-hq/arbiter/pkg/config"
)

// WriteObserver receives write outcomes for instrumentation. All methods
// must be safe for concurrent use.
type WriteObserver interface {
	RecordAuditWrite(status string, attempts int)
	SetRecorderBacklog(n int)
}

// Recorder writes audit records to storage asynchronously.
type Recorder struct {
	storage    audit.Storage
	cfg        config.RecorderConfig
	recordChan chan *audit.Record
	done       chan struct{}
	wg         sync.WaitGroup
	logger     *slog.Logger
	observer   WriteObserver
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithObserver attaches a write observer, typically the metrics collector.
func WithObserver(observer WriteObserver) Option {
	return func(r *Recorder) { r.observer = observer }
}

// New creates a recorder backed by the given storage and starts its
// background worker.
func New(storage audit.Storage, cfg config.RecorderConfig, opts ...Option) *Recorder {
	if cfg.Buffer <= 0 {
		cfg.Buffer = config.DefaultRecorderBuffer
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = config.DefaultRecorderWriteTimeout
	}
	if cfg.RetryInitial <= 0 {
		cfg.RetryInitial = config.DefaultRecorderRetryInitial
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = config.DefaultRecorderRetryMax
	}

	r := &Recorder{
		storage:    storage,
		cfg:        cfg,
		recordChan: make(chan *audit.Record, cfg.Buffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "audit.recorder"),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("audit recorder started",
		"buffer", cfg.Buffer,
		"write_timeout", cfg.WriteTimeout,
	)

	return r
}

// Record enqueues a finalized record for writing. It blocks if the buffer
// is full rather than dropping the record; the only failure mode is a
// cancelled context, in which case the caller still owns the record.
func (r *Recorder) Record(ctx context.Context, record *audit.Record) error {
	select {
	case r.recordChan <- record:
		r.logger.Debug("audit record enqueued",
			"record_id", record.ID,
			"application_id", record.ApplicationID,
		)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains the channel, writing every buffered record before returning.
func (r *Recorder) Close() error {
	r.logger.Info("shutting down audit recorder")
	close(r.done)
	r.wg.Wait()
	r.logger.Info("audit recorder shut down", "pending", len(r.recordChan))
	return nil
}

// worker drains the record channel and writes records to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					return
				}
			}
		}
	}
}

// writeFailure builds the structured error reported for a failed append
// attempt.
func writeFailure(record *audit.Record, attempt int, cause error) *audit.WriteFailureError {
	return &audit.WriteFailureError{
		RecordID:      record.ID,
		ApplicationID: record.ApplicationID,
		Attempts:      attempt,
		Cause:         cause,
	}
}

// writeRecord appends a single record, retrying with exponential backoff
// until the write succeeds. Records are never dropped.
func (r *Recorder) writeRecord(record *audit.Record) {
	backoff := r.cfg.RetryInitial
	attempt := 0

	for {
		attempt++

		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.WriteTimeout)
		err := r.storage.Append(ctx, record)
		cancel()

		if err == nil {
			if r.observer != nil {
				r.observer.RecordAuditWrite("success", attempt)
				r.observer.SetRecorderBacklog(len(r.recordChan))
			}
			if attempt > 1 {
				r.logger.Info("audit record written after retries",
					"record_id", record.ID,
					"application_id", record.ApplicationID,
					"attempts", attempt,
				)
			} else {
				r.logger.Debug("audit record written",
					"record_id", record.ID,
					"application_id", record.ApplicationID,
				)
			}
			return
		}

		r.logger.Error("audit append failed, retrying",
			"backoff", backoff,
			"error", writeFailure(record, attempt, err),
		)

		time.Sleep(backoff)
		backoff *= 2
		if backoff > r.cfg.RetryMax {
			backoff = r.cfg.RetryMax
		}
	}
}
