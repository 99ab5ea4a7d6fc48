package monitoring

import "log"

// Logf is the package-level diagnostic logger for the analysis service. It
// defaults to log.Printf but may be replaced by SetLogger, so tests and
// embedders of the engine can redirect or mute diagnostics.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
