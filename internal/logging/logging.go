// Package logging builds the process-wide zap logger: human-readable
// console output on a terminal, JSON elsewhere, with a run id stamped on
// every line.
package logging

import (
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

// New constructs the logger. verbose enables debug-level trace lines
// (classification drop notes, per-event watch progress).
func New(verbose bool) (*zap.Logger, error) {
	var cfg zap.Config
	if isatty.IsTerminal(os.Stdout.Fd()) {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("run_id", uuid.NewString())), nil
}

// Discard returns a logger that drops everything. Used when the TUI owns
// the terminal.
func Discard() *zap.Logger {
	return zap.NewNop()
}
