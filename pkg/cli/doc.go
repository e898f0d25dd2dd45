// Package cli provides shared helpers for the arbiter command: output
// formatting (text or JSON), typed command errors, and signal-aware
// contexts for graceful shutdown.
package cli
