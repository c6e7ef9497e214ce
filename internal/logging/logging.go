// Package logging builds the process logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects logger behavior.
type Options struct {
	// Verbose lowers the level to debug.
	Verbose bool

	// LogFile redirects log output into a file. The interactive player
	// sets this so log lines never interleave with terminal output.
	LogFile string
}

// New builds a production-style structured logger.
func New(opts Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if opts.Verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if opts.LogFile != "" {
		config.OutputPaths = []string{opts.LogFile}
		config.ErrorOutputPaths = []string{opts.LogFile}
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
