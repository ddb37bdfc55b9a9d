// Package log provides structured protocol event logging for the client.
//
// Events are captured at three layers: transport (raw frames), wire (decoded
// envelopes) and channel (subscription lifecycle). Applications receive them
// through the Logger interface and decide where they go:
//
//   - NoopLogger discards everything (the default)
//   - SlogAdapter forwards to a log/slog logger for console output
//   - FileLogger appends CBOR-encoded events to a capture file
//   - MultiLogger fans out to several of the above
//
// Capture files use compact integer-keyed CBOR records; Reader streams them
// back with optional filtering.
//
// Logging must never disrupt the client: implementations swallow their own
// errors and are safe for concurrent use.
package log
