package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"unicode"
)

const (
	clrReset  = "\033[0m"
	clrBold   = "\033[1m"
	clrRed    = "\033[31m"
	clrYellow = "\033[33m"
	clrCyan   = "\033[36m"
	clrGray   = "\033[90m"
	clrWhite  = "\033[97m"
)

// newLogger builds the process logger. Output always goes to w (stderr in
// main) so the stdio transport keeps stdout for JSON-RPC framing.
func newLogger(w io.Writer, level, format string) *slog.Logger {
	lvl := parseLevel(level)
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
	case "pretty":
		return slog.New(&prettyHandler{mu: new(sync.Mutex), out: w, level: lvl})
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// prettyHandler is a slog.Handler that formats log records with ANSI colors.
// Designed for interactive use: no timestamps, colored level indicators.
type prettyHandler struct {
	mu    *sync.Mutex // shared with handlers derived by WithAttrs
	out   io.Writer
	level slog.Level
	attrs []slog.Attr // pre-set attrs from WithAttrs
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &prettyHandler{mu: h.mu, out: h.out, level: h.level, attrs: newAttrs}
}

func (h *prettyHandler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var prefix, msgColor string
	switch {
	case r.Level >= slog.LevelError:
		prefix = clrRed + "  ✗ " + clrReset
		msgColor = clrRed
	case r.Level >= slog.LevelWarn:
		prefix = clrYellow + "  ⚠ " + clrReset
		msgColor = clrYellow
	case r.Level >= slog.LevelInfo:
		prefix = clrGray + "  → " + clrReset
		msgColor = clrWhite
	default:
		prefix = clrGray + "  · " + clrReset
		msgColor = clrGray
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString(msgColor)
	sb.WriteString(clrBold)
	sb.WriteString(r.Message)
	sb.WriteString(clrReset)

	writeAttr := func(a slog.Attr) bool {
		sb.WriteString("  ")
		sb.WriteString(clrGray)
		sb.WriteString(a.Key)
		sb.WriteString("=")
		sb.WriteString(clrReset)
		sb.WriteString(colorForValue(a))
		sb.WriteString(a.Value.String())
		sb.WriteString(clrReset)
		return true
	}

	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(writeAttr)

	sb.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprint(h.out, sb.String())
	return err
}

// colorForValue picks an ANSI color based on the attribute key and value.
func colorForValue(a slog.Attr) string {
	if a.Key == "error" {
		return clrRed
	}
	switch a.Key {
	case "vm", "template", "host", "datastore", "network", "datacenter", "compute", "tool":
		return clrCyan
	case "request_id", "task":
		return clrGray
	}
	if isNumericVal(a.Value.String()) {
		return clrYellow
	}
	return clrCyan
}

func isNumericVal(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !unicode.IsDigit(c) && c != '.' && c != '-' {
			return false
		}
	}
	return true
}
