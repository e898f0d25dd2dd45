// Arbiter is a lending-governance decision service.
//
// It evaluates small-business loan applications against a deterministic
// policy checklist, a heuristic risk estimate, and a content analysis of
// the stated loan purpose, arbitrating the three signals into either an
// automatic approval or a deferral to human review. Every finalized
// decision lands in an append-only audit log.
//
// Usage:
//
//	# Start the API server with default configuration
//	arbiter run
//
//	# Start with a custom configuration file
//	arbiter run --config /path/to/config.yaml
//
//	# Evaluate a batch of synthetic applications
//	arbiter batch --count 500
//
//	# Query the audit log
//	arbiter audit query --disposition HITL_REVIEW --limit 20
//
//	# Show version information
//	arbiter version
package main

func main() {
	Execute()
}
