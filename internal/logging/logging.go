// Package logging sets up the process-wide structured logger: log/slog
// handler backed by tint for colorized, human-readable output on a TTY,
// with go-isatty deciding whether to color and go-colorable making that
// color survive on Windows consoles. Grounded on the teacher's logging
// setup in cmd/mddb/main.go, generalized into its own package per
// SPEC_FULL.md's ambient stack.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/lmittmann/tint"
)

// New builds a slog.Logger writing to w (os.Stderr if nil) at the given
// level ("debug", "info", "warn", "error"; unknown values fall back to
// info). Output is colorized when w is a TTY.
func New(w io.Writer, level string) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	out := w
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
		out = colorable.NewColorable(f)
	}

	handler := tint.NewHandler(out, &tint.Options{
		Level:      parseLevel(level),
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	})
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
