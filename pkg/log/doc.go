// Package log provides structured protocol logging for the Gecko client.
//
// This package defines the Logger interface and Event types for capturing
// protocol-level events at multiple layers (transport, protocol, session).
// It is separate from operational logging (slog) - protocol capture provides
// a complete machine-readable trace of every command sent to the target.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// For later analysis: write to binary file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("session.glog")
//
//	// Both: use MultiLogger
//	cfg.ProtocolLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Events are captured at multiple layers:
//   - Transport: Raw bytes written and read (FrameEvent)
//   - Protocol: Commands and chunk progress (CommandEvent, TransferEvent)
//   - Session: Connection and execution state changes (StateChangeEvent)
//
// Errors at any layer have a dedicated event type.
//
// # File Format
//
// Log files use CBOR encoding with .glog extension. The gecko-log CLI tool
// provides viewing and statistics.
package log
