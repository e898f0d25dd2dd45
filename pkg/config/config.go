package config

import "time"

// Config is the root configuration structure for Nexus Arbiter.
// It contains all configuration sections for the HTTP API server, the
// governance policy knobs, signal providers, review queue, audit storage,
// feedback export, and telemetry settings.
type Config struct {
	// Server contains HTTP API server configuration including listen
	// address, timeouts, and graceful shutdown settings.
	Server ServerConfig `yaml:"server"`

	// Governance contains the lending policy knobs consumed by the
	// decision engine. Operators may mutate this section at runtime;
	// changes apply prospectively to subsequent evaluations only.
	Governance GovernanceConfig `yaml:"governance"`

	// Signals contains configuration for the risk and content signal
	// providers, including the per-signal timeout.
	Signals SignalsConfig `yaml:"signals"`

	// Review contains configuration for the review queue backend.
	Review ReviewConfig `yaml:"review"`

	// Audit contains configuration for audit record storage and the
	// async recorder.
	Audit AuditConfig `yaml:"audit"`

	// Feedback contains configuration for the scheduled feedback-loop
	// export used by the downstream retraining pipeline.
	Feedback FeedbackConfig `yaml:"feedback"`

	// Telemetry contains configuration for observability including
	// logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port for the API to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of
	// the response. A zero or negative value means no timeout.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown before in-flight requests are abandoned.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// GovernanceConfig contains the tunable lending policy configuration.
//
// A GovernanceConfig value is a snapshot: the decision engine receives it
// by value so a single evaluation always observes a consistent view even
// if an operator concurrently updates the live configuration.
type GovernanceConfig struct {
	// MinCreditScore is the minimum applicant credit score required by
	// the policy checklist.
	// Default: 600
	MinCreditScore int `yaml:"min_credit_score"`

	// MaxLoanAmount is the largest requested amount eligible for
	// automatic approval, in whole currency units.
	// Default: 50000
	MaxLoanAmount int64 `yaml:"max_loan_amount"`

	// AIConfidenceThreshold (0-100) is reserved for future use by the
	// content analyzer. It is plumbed through configuration but is not
	// consumed by any decision rule.
	// Default: 80
	AIConfidenceThreshold int `yaml:"ai_confidence_threshold"`

	// StrictIndustryChecking enables the restricted-industry policy rule.
	// When false the rule always passes.
	// Default: true
	StrictIndustryChecking bool `yaml:"strict_industry_checking"`

	// RestrictedIndustries is the set of industries that fail the
	// restricted-industry rule when StrictIndustryChecking is enabled.
	// Default: ["Gambling"]
	RestrictedIndustries []string `yaml:"restricted_industries"`

	// Watch enables automatic reloading of the configuration file when
	// it changes on disk. Reloads replace the live configuration
	// atomically; in-flight evaluations keep their snapshot.
	// Default: false
	Watch bool `yaml:"watch"`
}

// SignalsConfig contains configuration for the signal providers.
type SignalsConfig struct {
	// Timeout is the per-signal deadline for the risk estimator and
	// content analyzer. A signal that does not answer within this
	// window causes the evaluation to fail rather than proceed with
	// partial signals.
	// Default: 5s
	Timeout time.Duration `yaml:"timeout"`
}

// ReviewConfig contains configuration for the review queue backend.
type ReviewConfig struct {
	// Backend selects the queue implementation.
	// Options: "memory", "sqlite"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// Path is the SQLite database file path when Backend is "sqlite".
	// Default: "data/review.db"
	Path string `yaml:"path"`
}

// AuditConfig contains configuration for audit record storage.
type AuditConfig struct {
	// Backend selects the storage implementation.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// Path is the SQLite database file path when Backend is "sqlite".
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// Recorder contains async recorder settings.
	Recorder RecorderConfig `yaml:"recorder"`
}

// RecorderConfig contains configuration for the async audit recorder.
type RecorderConfig struct {
	// Buffer is the size of the async write channel.
	// Default: 1000
	Buffer int `yaml:"buffer"`

	// WriteTimeout is the per-attempt timeout for writing a record to
	// storage.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// RetryInitial is the initial backoff between failed write attempts.
	// Failed appends are retried until they succeed; audit records are
	// never dropped.
	// Default: 250ms
	RetryInitial time.Duration `yaml:"retry_initial"`

	// RetryMax is the backoff ceiling between failed write attempts.
	// Default: 10s
	RetryMax time.Duration `yaml:"retry_max"`
}

// FeedbackConfig contains configuration for the feedback-loop export.
type FeedbackConfig struct {
	// Enabled enables the scheduled export of feedback-triggered audit
	// records.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Schedule is a cron expression for the export schedule.
	// Example: "0 3 * * *" (daily at 3 AM)
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`

	// OutputDir is the directory export files are written to.
	// Default: "data/feedback/"
	OutputDir string `yaml:"output_dir"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging settings.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics settings.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log output.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII enables redaction of applicant-identifying values in
	// log attributes (emails, phone numbers, SSN-shaped strings).
	// Default: true
	RedactPII bool `yaml:"redact_pii"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled enables the /metrics endpoint and metric collection.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "arbiter"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem label.
	// Default: ""
	Subsystem string `yaml:"subsystem"`
}
