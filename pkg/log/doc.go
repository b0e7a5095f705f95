// Package log provides structured attempt logging for the login handshake.
//
// Each login attempt produces a short trace of events: state transitions,
// the request and reply frames, and the terminal outcome. The trace is
// separate from operational logging (slog); it is a machine-readable record
// for diagnosing failed logins after the fact.
//
// # Basic Usage
//
//	// During development: print events through slog
//	cfg.AttemptLogger = log.NewSlogAdapter(slog.Default())
//
//	// In the field: append to a binary file
//	cfg.AttemptLogger, _ = log.NewFileLogger("/var/log/imclient/login.alog")
//
//	// Both
//	cfg.AttemptLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Secrets
//
// Outbound request frames are recorded with the password redacted. The
// transport package performs the redaction before handing the frame to
// the logger; loggers never see the plaintext password.
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with integer keys (.alog).
// The imauth-log tool views, exports and summarizes them.
package log
