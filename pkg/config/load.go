package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that behavior.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := NewDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow the
// naming convention ARBITER_SECTION_FIELD (e.g.,
// ARBITER_GOVERNANCE_MIN_CREDIT_SCORE) and always take precedence over
// file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate the final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables use the format ARBITER_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("ARBITER_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	overrideDuration("ARBITER_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	overrideDuration("ARBITER_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	overrideDuration("ARBITER_SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	overrideDuration("ARBITER_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	// Governance overrides
	overrideInt("ARBITER_GOVERNANCE_MIN_CREDIT_SCORE", &cfg.Governance.MinCreditScore)
	overrideInt64("ARBITER_GOVERNANCE_MAX_LOAN_AMOUNT", &cfg.Governance.MaxLoanAmount)
	overrideInt("ARBITER_GOVERNANCE_AI_CONFIDENCE_THRESHOLD", &cfg.Governance.AIConfidenceThreshold)
	overrideBool("ARBITER_GOVERNANCE_STRICT_INDUSTRY_CHECKING", &cfg.Governance.StrictIndustryChecking)
	if val := os.Getenv("ARBITER_GOVERNANCE_RESTRICTED_INDUSTRIES"); val != "" {
		parts := strings.Split(val, ",")
		industries := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				industries = append(industries, trimmed)
			}
		}
		cfg.Governance.RestrictedIndustries = industries
	}
	overrideBool("ARBITER_GOVERNANCE_WATCH", &cfg.Governance.Watch)

	// Signal overrides
	overrideDuration("ARBITER_SIGNALS_TIMEOUT", &cfg.Signals.Timeout)

	// Review queue overrides
	if val := os.Getenv("ARBITER_REVIEW_BACKEND"); val != "" {
		cfg.Review.Backend = val
	}
	if val := os.Getenv("ARBITER_REVIEW_PATH"); val != "" {
		cfg.Review.Path = val
	}

	// Audit overrides
	if val := os.Getenv("ARBITER_AUDIT_BACKEND"); val != "" {
		cfg.Audit.Backend = val
	}
	if val := os.Getenv("ARBITER_AUDIT_PATH"); val != "" {
		cfg.Audit.Path = val
	}
	overrideInt("ARBITER_AUDIT_RECORDER_BUFFER", &cfg.Audit.Recorder.Buffer)
	overrideDuration("ARBITER_AUDIT_RECORDER_WRITE_TIMEOUT", &cfg.Audit.Recorder.WriteTimeout)

	// Feedback overrides
	overrideBool("ARBITER_FEEDBACK_ENABLED", &cfg.Feedback.Enabled)
	if val := os.Getenv("ARBITER_FEEDBACK_SCHEDULE"); val != "" {
		cfg.Feedback.Schedule = val
	}
	if val := os.Getenv("ARBITER_FEEDBACK_OUTPUT_DIR"); val != "" {
		cfg.Feedback.OutputDir = val
	}

	// Telemetry overrides
	if val := os.Getenv("ARBITER_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("ARBITER_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	overrideBool("ARBITER_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
}

func overrideDuration(key string, dst *time.Duration) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

func overrideInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func overrideInt64(key string, dst *int64) {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			*dst = i
		}
	}
}

func overrideBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}
