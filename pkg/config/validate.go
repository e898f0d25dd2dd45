package config

import (
	"fmt"
	"net"
	"strings"
)

// ValidationError represents a configuration validation failure with the
// offending field path and a human-readable message.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config field %q: %s", e.Field, e.Message)
}

// ValidationErrors aggregates multiple validation failures so operators see
// every problem in one pass instead of fixing them one at a time.
type ValidationErrors struct {
	Errors []*ValidationError
}

// Error implements the error interface.
func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d validation errors: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Validate checks the configuration for invalid values. It returns a
// ValidationErrors containing every failure found, or nil if the
// configuration is valid.
func Validate(cfg *Config) error {
	var errs []*ValidationError

	add := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Server
	if cfg.Server.ListenAddress != "" {
		if _, _, err := net.SplitHostPort(cfg.Server.ListenAddress); err != nil {
			add("server.listen_address", "invalid host:port: %v", err)
		}
	}
	if cfg.Server.ShutdownTimeout < 0 {
		add("server.shutdown_timeout", "must not be negative")
	}

	// Governance
	if cfg.Governance.MinCreditScore < 300 || cfg.Governance.MinCreditScore > 850 {
		add("governance.min_credit_score", "must be within [300, 850], got %d", cfg.Governance.MinCreditScore)
	}
	if cfg.Governance.MaxLoanAmount <= 0 {
		add("governance.max_loan_amount", "must be positive, got %d", cfg.Governance.MaxLoanAmount)
	}
	if cfg.Governance.AIConfidenceThreshold < 0 || cfg.Governance.AIConfidenceThreshold > 100 {
		add("governance.ai_confidence_threshold", "must be within [0, 100], got %d", cfg.Governance.AIConfidenceThreshold)
	}

	// Signals
	if cfg.Signals.Timeout <= 0 {
		add("signals.timeout", "must be positive, got %v", cfg.Signals.Timeout)
	}

	// Review queue
	switch cfg.Review.Backend {
	case "memory", "sqlite":
	default:
		add("review.backend", "unknown backend %q (expected \"memory\" or \"sqlite\")", cfg.Review.Backend)
	}
	if cfg.Review.Backend == "sqlite" && cfg.Review.Path == "" {
		add("review.path", "required when backend is \"sqlite\"")
	}

	// Audit
	switch cfg.Audit.Backend {
	case "memory", "sqlite":
	default:
		add("audit.backend", "unknown backend %q (expected \"memory\" or \"sqlite\")", cfg.Audit.Backend)
	}
	if cfg.Audit.Backend == "sqlite" && cfg.Audit.Path == "" {
		add("audit.path", "required when backend is \"sqlite\"")
	}
	if cfg.Audit.Recorder.Buffer < 0 {
		add("audit.recorder.buffer", "must not be negative")
	}
	if cfg.Audit.Recorder.RetryInitial > cfg.Audit.Recorder.RetryMax {
		add("audit.recorder.retry_initial", "must not exceed retry_max (%v > %v)",
			cfg.Audit.Recorder.RetryInitial, cfg.Audit.Recorder.RetryMax)
	}

	// Feedback
	if cfg.Feedback.Enabled && cfg.Feedback.OutputDir == "" {
		add("feedback.output_dir", "required when feedback export is enabled")
	}

	// Logging
	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		add("telemetry.logging.level", "unknown level %q", cfg.Telemetry.Logging.Level)
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		add("telemetry.logging.format", "unknown format %q", cfg.Telemetry.Logging.Format)
	}

	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}
