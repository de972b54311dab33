// Package logging builds the structured, colorized loggers injected into pr2md components.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// Options selects how much diagnostic output a logger emits.
type Options struct {
	// Verbose enables verbose-only (debug) lines.
	Verbose bool
	// Quiet silences every line, including warnings and errors.
	Quiet bool
	// NoColor disables ANSI colors, e.g. when stderr is not a terminal.
	NoColor bool
}

// Level returns the minimum slog level for the options.
func (o Options) Level() slog.Level {
	if o.Verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// New constructs a slog.Logger backed by a tint handler.
func New(w io.Writer, opts Options) *slog.Logger {
	if opts.Quiet {
		return Discard()
	}
	if w == nil {
		w = os.Stderr
	}

	handler := tint.NewHandler(w, &tint.Options{
		Level:      opts.Level(),
		TimeFormat: "15:04:05",
		NoColor:    opts.NoColor,
	})
	return slog.New(handler)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns logger, or a discarding logger when logger is nil.
func OrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return Discard()
	}
	return logger
}
