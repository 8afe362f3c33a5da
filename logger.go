package compose

// Logger defines the interface for engine logging.
// The engine uses structured logging with key-value pairs so implementing
// hosts can control how composition logs appear.
//
// The Logger interface uses variadic arguments in key-value pairs:
//
//	logger.Debug("message", "key1", "value1", "key2", "value2")
//
// This approach is compatible with popular structured logging libraries
// like slog, logrus, zap, and others. Resolution, build and flatten steps
// log at debug level; composition milestones log at info level.
type Logger interface {
	// Info logs an informational message with optional key-value pairs.
	Info(msg string, args ...any)

	// Error logs an error message with optional key-value pairs.
	Error(msg string, args ...any)

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, args ...any)

	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, args ...any)
}

// noopLogger discards everything. It is the default until a host supplies a
// logger through WithLogger.
type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Debug(string, ...any) {}

// NoopLogger returns a Logger that discards everything.
func NoopLogger() Logger {
	return noopLogger{}
}
