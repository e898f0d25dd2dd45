// Package config provides configuration management for Nexus Arbiter.
//
// Configuration is loaded from a YAML file, merged with defaults, overridden
// by ARBITER_* environment variables, and validated before use. The package
// maintains a global singleton guarded by a read-write mutex. The governance
// section holds the lending policy knobs consumed by the decision engine; it
// is exposed through Governance(), which returns a copied snapshot so that a
// single evaluation always observes a consistent policy view even while an
// operator mutates the live configuration.
//
// When governance.watch is enabled, a fsnotify-based Watcher reloads the
// file on change with debouncing. Reloads replace the singleton atomically
// and never retroactively affect decisions already recorded in the audit
// log.
package config
