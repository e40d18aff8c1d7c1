package sysex

// Logger is an optional logging interface for decode diagnostics.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Warn(msg string, kv ...interface{})  { log.Println(msg, kv) }
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}

// DecodeConfig holds decoder settings.
type DecodeConfig struct {
	// StrictChecksum turns a CRC mismatch into an error instead of a warning
	StrictChecksum bool

	// Logger receives per-message diagnostics (optional)
	Logger Logger
}

func defaultDecodeConfig() DecodeConfig {
	return DecodeConfig{Logger: nopLogger{}}
}

// DecodeOption is a functional option for Decode and DecodeReader.
type DecodeOption func(*DecodeConfig)

// WithStrictChecksum makes Decode fail with *ChecksumMismatchError when the
// recovered firmware does not match the Metadata CRC. Default is false.
func WithStrictChecksum(strict bool) DecodeOption {
	return func(c *DecodeConfig) {
		c.StrictChecksum = strict
	}
}

// WithLogger sets a logger for decode diagnostics.
func WithLogger(logger Logger) DecodeOption {
	return func(c *DecodeConfig) {
		if logger != nil {
			c.Logger = logger
		}
	}
}
