package config

import (
	"fmt"
	"sync"
)

var (
	// globalConfig holds the singleton configuration instance.
	globalConfig *Config

	// configMutex protects access to globalConfig.
	configMutex sync.RWMutex

	// initOnce ensures configuration is initialized only once.
	initOnce sync.Once
)

// Initialize loads configuration from the specified path with environment
// variable overrides and stores it as the global singleton configuration.
// This function should be called once at application startup; subsequent
// calls are ignored.
func Initialize(path string) error {
	var initErr error

	initOnce.Do(func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			initErr = err
			return
		}

		configMutex.Lock()
		globalConfig = cfg
		configMutex.Unlock()
	})

	return initErr
}

// GetConfig returns the global configuration instance, or nil if Initialize
// has not been called successfully. It is safe for concurrent use.
//
// For testing, prefer dependency injection with explicit Config instances
// over the global singleton.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// SetConfig sets the global configuration instance. It is intended for
// testing; use Initialize for normal configuration loading.
func SetConfig(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
}

// ReloadConfig reloads the configuration from the specified path and
// replaces the global instance only if loading and validation succeed.
// In-flight evaluations holding a GovernanceConfig snapshot are unaffected.
func ReloadConfig(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}

	configMutex.Lock()
	globalConfig = cfg
	configMutex.Unlock()

	return nil
}

// Governance returns a snapshot of the live governance section. The value
// is a copy: callers can evaluate an application against it without
// observing concurrent operator updates mid-evaluation.
func Governance() GovernanceConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	if globalConfig == nil {
		cfg := NewDefaultConfig()
		return snapshotGovernance(&cfg.Governance)
	}
	return snapshotGovernance(&globalConfig.Governance)
}

// UpdateGovernance atomically replaces the live governance section. The
// change applies prospectively: evaluations already holding a snapshot keep
// the old view, and the audit log is never retroactively reinterpreted.
func UpdateGovernance(gov GovernanceConfig) error {
	configMutex.Lock()
	defer configMutex.Unlock()
	if globalConfig == nil {
		return fmt.Errorf("configuration not initialized")
	}

	candidate := *globalConfig
	candidate.Governance = gov
	if err := Validate(&candidate); err != nil {
		return fmt.Errorf("governance update rejected: %w", err)
	}

	globalConfig.Governance = snapshotGovernance(&gov)
	return nil
}

// snapshotGovernance deep-copies a governance section so callers never
// share the RestrictedIndustries backing array with the live config.
func snapshotGovernance(gov *GovernanceConfig) GovernanceConfig {
	out := *gov
	out.RestrictedIndustries = append([]string(nil), gov.RestrictedIndustries...)
	return out
}
