// Package logger builds the structured loggers used throughout kvs.
//
// The engine, the shared-queue pool, and the server take a *zap.SugaredLogger
// at construction time rather than reaching for a package-level global,
// so tests can inject a no-op logger and callers embedding kvs can route
// output wherever they like.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-style logger scoped to the given service name.
// Output goes to stderr, matching the convention that log lines never
// interleave with the values a CLI prints to stdout.
func New(service string) *zap.SugaredLogger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.TimeKey = "ts"

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.Lock(os.Stderr),
		zapcore.InfoLevel,
	)

	return zap.New(core).Named(service).Sugar()
}

// NewDebug builds a logger like New, but at debug level.
func NewDebug(service string) *zap.SugaredLogger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.TimeKey = "ts"

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.Lock(os.Stderr),
		zapcore.DebugLevel,
	)

	return zap.New(core).Named(service).Sugar()
}

// Nop returns a logger that discards everything, for use in tests and
// embedders that don't want kvs writing to stderr on their behalf.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
