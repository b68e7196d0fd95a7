// Package logger defines the logging contract the dispatch pipeline depends
// on. Implementations live under infra/logger so core packages stay free of
// any concrete logging backend.
package logger

// Logger is implemented by every component-scoped logger handed to the
// engine, the CDR router and the infra adapters.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message with structured fields, used on hot paths where
	// formatting per call would be wasteful.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
