// Package logging provides structured logging for pulse.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// persistent context attributes. Every long-lived component (the aggregation
// engine, the search coordinator, each counter source) receives a child
// logger tagged with its component name, so a single log file can be
// filtered per component after the fact.
//
// # Rotation
//
// [NewLoggerWithRotation] renames pulse.log to pulse.log.1 once the next
// record would push it past MaxSizeMB, shifting older backups up and
// dropping the one beyond MaxBackups.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. Child loggers
// created via With* methods share the underlying writer safely.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/path/to/logdir", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("engine started", "window_ms", 200)
//
// # Context Propagation
//
//	engineLog := logger.WithComponent("aggregate")
//	attemptLog := logger.WithComponent("search").WithAttempt(7)
//	attemptLog.Warn("transport failed, retrying", "invocation", 2)
//
// Output:
//
//	{"time":"...","level":"WARN","msg":"transport failed, retrying","component":"search","attempt_id":7,"invocation":2}
//
// # Testing
//
// Use [NopLogger] to discard output, or [NewWriterLogger] to capture it:
//
//	var buf bytes.Buffer
//	logger := logging.NewWriterLogger(&buf, logging.LevelDebug)
//
// # Configuration
//
//	logging:
//	  level: info
//	  dir: ""          # empty logs to stderr
//	  max_size_mb: 10  # rotate pulse.log past this size; 0 disables
//	  max_backups: 3   # pulse.log.1 .. pulse.log.3
package logging
