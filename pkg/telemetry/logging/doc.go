// Package logging configures structured logging for the service.
//
// Setup builds a slog handler from LoggingConfig (level, json or text
// format, optional source locations) and installs it as the process
// default. When PII redaction is enabled, string attribute values are
// scrubbed of email addresses, phone numbers, and SSN-shaped strings
// before they reach the log sink.
package logging
