// Package engine implements the decision-arbitration core of Nexus Arbiter.
//
// An evaluation combines three independent signals about a loan
// application:
//
//   - a deterministic, configuration-driven policy checklist (local)
//   - a probabilistic risk estimate with an explainability vector (pluggable)
//   - a semantic content analysis of the free-text purpose (pluggable)
//
// The signals have no ordering dependency: the risk estimator and content
// analyzer run concurrently under a bounded timeout, and Decide is the
// single fan-in point that arbitrates all three into a disposition.
//
// Arbitration is deliberately asymmetric: it returns AUTO_APPROVE or
// HITL_REVIEW, never AUTO_DECLINE. Policy failures route to a human
// reviewer rather than an automatic decline so that every binding "no" is
// made by a person with full context. Do not add a direct auto-decline
// path.
package engine
