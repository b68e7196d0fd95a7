// Package logger provides the zerolog-backed implementation of the core
// logging contract.
package logger

import corelogger "github.com/chargenet/roaming/core/logger"

// Logger mirrors the core logger interface so infra packages need only one
// import.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// New returns a Logger scoped to the given component.
func New(component string) Logger {
	return NewZerologLogger(component)
}
