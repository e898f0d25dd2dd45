package config

import "time"

// Default values for all configuration sections.
const (
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultMinCreditScore        = 600
	DefaultMaxLoanAmount         = 50000
	DefaultAIConfidenceThreshold = 80

	DefaultSignalTimeout = 5 * time.Second

	DefaultReviewBackend = "memory"
	DefaultReviewPath    = "data/review.db"

	DefaultAuditBackend         = "sqlite"
	DefaultAuditPath            = "data/audit.db"
	DefaultRecorderBuffer       = 1000
	DefaultRecorderWriteTimeout = 5 * time.Second
	DefaultRecorderRetryInitial = 250 * time.Millisecond
	DefaultRecorderRetryMax     = 10 * time.Second

	DefaultFeedbackSchedule = "0 3 * * *"
	DefaultFeedbackOutput   = "data/feedback/"

	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsNamespace = "arbiter"
)

// DefaultRestrictedIndustries is the default restricted-industry set.
var DefaultRestrictedIndustries = []string{"Gambling"}

// ApplyDefaults fills in default values for any unset configuration fields.
// It is called by LoadConfig after parsing and may be called directly on
// hand-constructed configurations in tests.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Governance defaults
	if cfg.Governance.MinCreditScore == 0 {
		cfg.Governance.MinCreditScore = DefaultMinCreditScore
	}
	if cfg.Governance.MaxLoanAmount == 0 {
		cfg.Governance.MaxLoanAmount = DefaultMaxLoanAmount
	}
	if cfg.Governance.AIConfidenceThreshold == 0 {
		cfg.Governance.AIConfidenceThreshold = DefaultAIConfidenceThreshold
	}
	if cfg.Governance.RestrictedIndustries == nil {
		cfg.Governance.RestrictedIndustries = append([]string(nil), DefaultRestrictedIndustries...)
	}

	// Signal defaults
	if cfg.Signals.Timeout == 0 {
		cfg.Signals.Timeout = DefaultSignalTimeout
	}

	// Review queue defaults
	if cfg.Review.Backend == "" {
		cfg.Review.Backend = DefaultReviewBackend
	}
	if cfg.Review.Path == "" {
		cfg.Review.Path = DefaultReviewPath
	}

	// Audit defaults
	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = DefaultAuditBackend
	}
	if cfg.Audit.Path == "" {
		cfg.Audit.Path = DefaultAuditPath
	}
	if cfg.Audit.Recorder.Buffer == 0 {
		cfg.Audit.Recorder.Buffer = DefaultRecorderBuffer
	}
	if cfg.Audit.Recorder.WriteTimeout == 0 {
		cfg.Audit.Recorder.WriteTimeout = DefaultRecorderWriteTimeout
	}
	if cfg.Audit.Recorder.RetryInitial == 0 {
		cfg.Audit.Recorder.RetryInitial = DefaultRecorderRetryInitial
	}
	if cfg.Audit.Recorder.RetryMax == 0 {
		cfg.Audit.Recorder.RetryMax = DefaultRecorderRetryMax
	}

	// Feedback defaults
	if cfg.Feedback.Schedule == "" {
		cfg.Feedback.Schedule = DefaultFeedbackSchedule
	}
	if cfg.Feedback.OutputDir == "" {
		cfg.Feedback.OutputDir = DefaultFeedbackOutput
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// NewDefaultConfig returns a configuration populated entirely with defaults.
// Boolean fields that default to true are set explicitly because
// ApplyDefaults cannot distinguish false from unset.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Governance.StrictIndustryChecking = true
	cfg.Telemetry.Logging.RedactPII = true
	cfg.Telemetry.Metrics.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}
