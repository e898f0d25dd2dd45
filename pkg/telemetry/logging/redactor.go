package logging

import (
	"log/slog"
	"regexp"
)

// Applicant-identifying value shapes scrubbed from log attributes. Loan
// applications carry names and free-text descriptions, and reviewers type
// arbitrary justifications, so anything resembling contact or national-id
// data is masked before it reaches a sink.
var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(?:\+?\d{1,2}[\s.\-]?)?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}\b`)
	ssnPattern   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
)

const redactedPlaceholder = "[REDACTED]"

// Redact masks email addresses, phone numbers, and SSN-shaped strings in
// the given text.
func Redact(s string) string {
	s = emailPattern.ReplaceAllString(s, redactedPlaceholder)
	s = ssnPattern.ReplaceAllString(s, redactedPlaceholder)
	s = phonePattern.ReplaceAllString(s, redactedPlaceholder)
	return s
}

// redactAttr is a slog ReplaceAttr hook applying Redact to string values.
// Group and key names are left alone; only values can carry applicant
// input.
func redactAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		a.Value = slog.StringValue(Redact(a.Value.String()))
	}
	return a
}
