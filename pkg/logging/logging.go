// Package logging builds the CLI's log/slog handler: a colorized stderr
// sink for interactive diagnostics and, when verbose output is requested,
// a second plain handler fanned out alongside it via samber/slog-multi
// Informational diagnostics (missing ambiguity peers, unresolvable names
// in comments) are slog.Warn calls through a logger built here, never
// errors.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	slogmulti "github.com/samber/slog-multi"
)

// New builds the logger every cmd subcommand injects into the core
// packages it drives (resolve.Lookup.Logger). Records go to a colorized
// handler writing to w: Info and above, or Debug and above when verbose is
// set. verbose also adds a second, uncolored Debug-level handler writing
// to the same w.
func New(w io.Writer, verbose bool) *slog.Logger {
	minLevel := slog.LevelInfo
	if verbose {
		minLevel = slog.LevelDebug
	}
	handlers := []slog.Handler{&colorHandler{w: w, minLevel: minLevel}}
	if verbose {
		handlers = append(handlers, slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slogmulti.Fanout(handlers...))
}

// colorHandler is a minimal slog.Handler that prefixes each record's level
// with a fatih/color code, rather than pulling in a full
// structured-logging color theme.
type colorHandler struct {
	w        io.Writer
	minLevel slog.Level
	attrs    []slog.Attr
	group    string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.minLevel
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	levelColor := colorForLevel(r.Level)
	fmt.Fprintf(h.w, "%s %s", levelColor.Sprint(r.Level.String()), r.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(h.w, " %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(h.w, " %s=%v", a.Key, a.Value)
		return true
	})
	fmt.Fprintln(h.w)
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.group = name
	return &next
}

func colorForLevel(level slog.Level) *color.Color {
	switch {
	case level >= slog.LevelError:
		return color.New(color.FgRed, color.Bold)
	case level >= slog.LevelWarn:
		return color.New(color.FgYellow)
	case level >= slog.LevelInfo:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgHiBlack)
	}
}
