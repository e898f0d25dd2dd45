// Package review implements the human-in-the-loop review queue.
//
// Applications arbitration cannot auto-approve are parked here, keyed by
// application id, until a reviewer resolves them with a binding APPROVED or
// DECLINED decision. Resolution is atomic with removal: an entry exists for
// an application id exactly until its audit record exists, never both.
//
// Each entry stores the original engine result so resolution can
// deterministically recompute what the engine would have decided on the
// same signals. When the reviewer's decision diverges from that
// counterfactual, the resulting audit record carries a feedback-loop
// marker for the downstream retraining pipeline.
package review
