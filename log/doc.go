// Package log provides a simple, leveled logging interface for the graphrag packages.
//
// The search engines, the prompt tuner and the vector stores all log through the
// Logger interface so applications can plug in their own logging backend. A
// DefaultLogger built on the standard library is used unless replaced.
//
// # Log Levels
//
// Five levels in order of increasing severity:
//
//   - LogLevelDebug: detailed debugging information
//   - LogLevelInfo: general informational messages
//   - LogLevelWarn: potentially problematic situations
//   - LogLevelError: failures that need attention
//   - LogLevelNone: disables all logging output
//
// # Example Usage
//
//	// Create a logger with INFO level
//	logger := log.NewDefaultLogger(log.LogLevelInfo)
//
//	logger.Info("search started")
//	logger.Debug("context tokens: %d", n)
//	logger.Error("map stage failed: %v", err)
//
// The package-level functions use a process-wide default logger:
//
//	log.SetLogLevel(log.LogLevelDebug)
//	log.Debug("selected %d entities", len(entities))
//
// # golog Integration
//
// For users who prefer the `github.com/kataras/golog` library, a minimal
// wrapper is provided:
//
//	glogger := golog.New()
//	glogger.SetPrefix("[graphrag] ")
//
//	logger := log.NewGologLogger(glogger)
//	logger.SetLevel(log.LogLevelDebug)
//
// Any type implementing the four printf-style methods of Logger can be used
// instead.
package log
