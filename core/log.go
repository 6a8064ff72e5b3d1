package core

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// Component identifies a subsystem for log filtering.
type Component string

const (
	ComponentRail     Component = "rail"
	ComponentTrigger  Component = "trigger"
	ComponentExtPower Component = "extpower"
	ComponentLink     Component = "link"
)

var (
	// logger discards everything until a target installs a writer.
	logger = slog.New(discardHandler{})

	logLevel = new(slog.LevelVar)

	logMutex sync.RWMutex
)

// SetLogger replaces the logger used by the rail stack.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(discardHandler{})
	}
	logMutex.Lock()
	defer logMutex.Unlock()
	logger = l
}

// SetLogWriter installs a text logger writing to w at the shared level.
// Firmware targets use it to route diagnostics to a UART or USB CDC port.
func SetLogWriter(w io.Writer) {
	SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel})))
}

// SetLogLevel sets the minimum level for loggers built by SetLogWriter.
func SetLogLevel(level slog.Level) {
	logLevel.Set(level)
}

func currentLogger() *slog.Logger {
	logMutex.RLock()
	defer logMutex.RUnlock()
	return logger
}

func logDebug(c Component, msg string, args ...any) {
	currentLogger().Debug(msg, append([]any{"component", string(c)}, args...)...)
}

func logInfo(c Component, msg string, args ...any) {
	currentLogger().Info(msg, append([]any{"component", string(c)}, args...)...)
}

func logWarn(c Component, msg string, args ...any) {
	currentLogger().Warn(msg, append([]any{"component", string(c)}, args...)...)
}

func logError(c Component, msg string, args ...any) {
	currentLogger().Error(msg, append([]any{"component", string(c)}, args...)...)
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
