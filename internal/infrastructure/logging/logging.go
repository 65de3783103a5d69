// Package logging builds the shared zap logger.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns the process logger. Verbose mode switches to the development
// encoder with debug level enabled; otherwise logs are structured JSON at
// info level.
func New(verbose bool) *zap.Logger {
	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return zap.NewNop()
		}
		return logger
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
