package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("listen address = %s, want %s", cfg.Server.ListenAddress, DefaultListenAddress)
	}
	if cfg.Governance.MinCreditScore != DefaultMinCreditScore {
		t.Errorf("min credit score = %d, want %d", cfg.Governance.MinCreditScore, DefaultMinCreditScore)
	}
	if cfg.Governance.MaxLoanAmount != DefaultMaxLoanAmount {
		t.Errorf("max loan amount = %d, want %d", cfg.Governance.MaxLoanAmount, DefaultMaxLoanAmount)
	}
	if !cfg.Governance.StrictIndustryChecking {
		t.Error("strict industry checking should default to true")
	}
	if len(cfg.Governance.RestrictedIndustries) != 1 || cfg.Governance.RestrictedIndustries[0] != "Gambling" {
		t.Errorf("restricted industries = %v", cfg.Governance.RestrictedIndustries)
	}
	if cfg.Signals.Timeout != DefaultSignalTimeout {
		t.Errorf("signal timeout = %v, want %v", cfg.Signals.Timeout, DefaultSignalTimeout)
	}
	if cfg.Audit.Backend != "sqlite" {
		t.Errorf("audit backend = %s, want sqlite", cfg.Audit.Backend)
	}
	if cfg.Review.Backend != "memory" {
		t.Errorf("review backend = %s, want memory", cfg.Review.Backend)
	}
	if !cfg.Telemetry.Logging.RedactPII {
		t.Error("PII redaction should default to true")
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("default configuration should validate: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
server:
  listen_address: "0.0.0.0:9090"
governance:
  min_credit_score: 650
  max_loan_amount: 75000
  restricted_industries:
    - Gambling
    - Tobacco
signals:
  timeout: 2s
review:
  backend: sqlite
  path: /tmp/review.db
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("listen address = %s", cfg.Server.ListenAddress)
	}
	if cfg.Governance.MinCreditScore != 650 {
		t.Errorf("min credit score = %d, want 650", cfg.Governance.MinCreditScore)
	}
	if cfg.Governance.MaxLoanAmount != 75000 {
		t.Errorf("max loan amount = %d, want 75000", cfg.Governance.MaxLoanAmount)
	}
	if len(cfg.Governance.RestrictedIndustries) != 2 {
		t.Errorf("restricted industries = %v", cfg.Governance.RestrictedIndustries)
	}
	if cfg.Signals.Timeout != 2*time.Second {
		t.Errorf("signal timeout = %v", cfg.Signals.Timeout)
	}
	if cfg.Review.Backend != "sqlite" || cfg.Review.Path != "/tmp/review.db" {
		t.Errorf("review config = %+v", cfg.Review)
	}

	// unset sections keep their defaults
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("read timeout = %v, want default", cfg.Server.ReadTimeout)
	}
	if cfg.Audit.Recorder.Buffer != DefaultRecorderBuffer {
		t.Errorf("recorder buffer = %d, want default", cfg.Audit.Recorder.Buffer)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	path := writeConfigFile(t, `
governance:
  min_credit_score: 900
review:
  backend: postgres
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verrs *ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %T: %v", err, err)
	}
	if len(verrs.Errors) != 2 {
		t.Errorf("expected 2 validation errors, got %d: %v", len(verrs.Errors), verrs)
	}
	if !strings.Contains(err.Error(), "governance.min_credit_score") {
		t.Errorf("error should name the offending field: %v", err)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
governance:
  min_credit_score: 650
`)

	t.Setenv("ARBITER_GOVERNANCE_MIN_CREDIT_SCORE", "700")
	t.Setenv("ARBITER_GOVERNANCE_MAX_LOAN_AMOUNT", "100000")
	t.Setenv("ARBITER_GOVERNANCE_RESTRICTED_INDUSTRIES", "Gambling, Mining ,")
	t.Setenv("ARBITER_SERVER_LISTEN_ADDRESS", "127.0.0.1:9999")
	t.Setenv("ARBITER_SIGNALS_TIMEOUT", "750ms")
	t.Setenv("ARBITER_METRICS_ENABLED", "false")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides failed: %v", err)
	}

	if cfg.Governance.MinCreditScore != 700 {
		t.Errorf("env override lost: min credit score = %d", cfg.Governance.MinCreditScore)
	}
	if cfg.Governance.MaxLoanAmount != 100000 {
		t.Errorf("max loan amount = %d", cfg.Governance.MaxLoanAmount)
	}
	want := []string{"Gambling", "Mining"}
	if len(cfg.Governance.RestrictedIndustries) != len(want) {
		t.Fatalf("restricted industries = %v, want %v", cfg.Governance.RestrictedIndustries, want)
	}
	for i, industry := range want {
		if cfg.Governance.RestrictedIndustries[i] != industry {
			t.Errorf("restricted industries[%d] = %q, want %q", i, cfg.Governance.RestrictedIndustries[i], industry)
		}
	}
	if cfg.Server.ListenAddress != "127.0.0.1:9999" {
		t.Errorf("listen address = %s", cfg.Server.ListenAddress)
	}
	if cfg.Signals.Timeout != 750*time.Millisecond {
		t.Errorf("signal timeout = %v", cfg.Signals.Timeout)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("metrics should be disabled by env override")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
		field  string
	}{
		{
			name:   "bad listen address",
			mutate: func(cfg *Config) { cfg.Server.ListenAddress = "not-an-address" },
			field:  "server.listen_address",
		},
		{
			name:   "credit score too low",
			mutate: func(cfg *Config) { cfg.Governance.MinCreditScore = 100 },
			field:  "governance.min_credit_score",
		},
		{
			name:   "negative loan ceiling",
			mutate: func(cfg *Config) { cfg.Governance.MaxLoanAmount = -1 },
			field:  "governance.max_loan_amount",
		},
		{
			name:   "zero signal timeout",
			mutate: func(cfg *Config) { cfg.Signals.Timeout = 0 },
			field:  "signals.timeout",
		},
		{
			name:   "unknown audit backend",
			mutate: func(cfg *Config) { cfg.Audit.Backend = "dynamo" },
			field:  "audit.backend",
		},
		{
			name: "sqlite queue without path",
			mutate: func(cfg *Config) {
				cfg.Review.Backend = "sqlite"
				cfg.Review.Path = ""
			},
			field: "review.path",
		},
		{
			name: "retry initial above max",
			mutate: func(cfg *Config) {
				cfg.Audit.Recorder.RetryInitial = time.Minute
				cfg.Audit.Recorder.RetryMax = time.Second
			},
			field: "audit.recorder.retry_initial",
		},
		{
			name:   "unknown log level",
			mutate: func(cfg *Config) { cfg.Telemetry.Logging.Level = "trace" },
			field:  "telemetry.logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error should name %q: %v", tt.field, err)
			}
		})
	}
}

func TestGovernanceSnapshotIsolation(t *testing.T) {
	cfg := NewDefaultConfig()
	SetConfig(cfg)

	snapshot := Governance()
	snapshot.MinCreditScore = 999
	snapshot.RestrictedIndustries[0] = "mutated"

	current := Governance()
	if current.MinCreditScore == 999 {
		t.Error("snapshot mutation leaked into live configuration")
	}
	if current.RestrictedIndustries[0] == "mutated" {
		t.Error("snapshot slice shares backing array with live configuration")
	}
}

func TestUpdateGovernance(t *testing.T) {
	SetConfig(NewDefaultConfig())

	gov := Governance()
	gov.MinCreditScore = 640
	if err := UpdateGovernance(gov); err != nil {
		t.Fatalf("UpdateGovernance failed: %v", err)
	}
	if got := Governance().MinCreditScore; got != 640 {
		t.Errorf("min credit score = %d, want 640", got)
	}

	gov.MinCreditScore = 10
	if err := UpdateGovernance(gov); err == nil {
		t.Error("expected rejection of out-of-range governance update")
	}
	if got := Governance().MinCreditScore; got != 640 {
		t.Errorf("rejected update mutated config: min credit score = %d", got)
	}
}
