// Package log provides structured trace logging of the accessory/engine
// boundary.
//
// Engines report every registration, controller access and event push as an
// Event. The trace is separate from operational logging (slog): it is a
// complete machine-readable record for debugging a session after the fact.
//
// # Basic Usage
//
//	// Console, via slog
//	eng := memory.New(memory.WithTrace(log.NewSlogAdapter(slog.Default())))
//
//	// Binary file
//	fl, _ := log.NewFileLogger("/var/log/hap/lightbulb.haplog")
//	eng := memory.New(memory.WithTrace(fl))
//
//	// Both
//	eng := memory.New(memory.WithTrace(log.NewMultiLogger(adapter, fl)))
//
// # Event Types
//
//   - Registration: engine init, accessory and service registration
//   - Access: controller reads, writes and subscription changes
//   - Notification: values pushed to subscribers
//   - Error: failures at any layer
//
// # File Format
//
// Trace files are a stream of CBOR-encoded events with integer keys, using
// the .haplog extension. The hap-log command views and summarizes them.
package log
