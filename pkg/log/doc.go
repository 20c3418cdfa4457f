// Package log provides the structured diagnostic sink of the awareness bridge.
//
// Connection handles, single-shot requests, fence streams and the dispatch
// listener report what happened to them as Events through a Logger passed in
// explicitly. Nothing in the bridge logs to a global. This matters most for
// cleanup: a failed unregister or disconnect that runs after the caller
// already received its result can only be observed here.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	cfg.Logger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to a binary file
//	cfg.Logger, _ = log.NewFileLogger("/var/log/awareness/bridge.dlog")
//
//	// Both: use MultiLogger
//	cfg.Logger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Events are captured at several layers:
//   - Connection: handle lifecycle transitions (StateChangeEvent)
//   - Request: single-shot request outcomes
//   - Fence: registration, delivery and cleanup of condition monitors
//   - Dispatch: out-of-process envelope routing (DeliveryEvent)
//   - Transport: framed connections at the dispatch address
//
// Errors and informational notices (such as a same-name registration
// replacing an earlier one) have dedicated payloads.
//
// # File Format
//
// Log files are CBOR encoded with a .dlog extension. The awareness-log CLI
// views, filters and summarizes them.
package log
