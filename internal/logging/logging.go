// Package logging provides the colored slog handler used by the clusterkit
// command line.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var (
	errorColor = color.New(color.FgRed)
	warnColor  = color.New(color.FgYellow)
	infoColor  = color.New(color.FgBlue)
	debugColor = color.New(color.FgHiBlack)
)

// CLIHandler is a slog.Handler that prints one colored line per record:
// "[+] message: key=value ...".
type CLIHandler struct {
	mu     *sync.Mutex
	writer io.Writer
	level  slog.Leveler
	attrs  []string
	group  string
}

// NewCLIHandler returns a handler writing records at or above level to w.
func NewCLIHandler(w io.Writer, level slog.Leveler) *CLIHandler {
	return &CLIHandler{
		mu:     &sync.Mutex{},
		writer: w,
		level:  level,
	}
}

func (h *CLIHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *CLIHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(prefix(r.Level))
	sb.WriteString(r.Message)

	attrs := append(make([]string, 0, len(h.attrs)+r.NumAttrs()), h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, h.format(a))
		return true
	})
	if len(attrs) > 0 {
		sb.WriteString(": ")
		sb.WriteString(strings.Join(attrs, " "))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := levelColor(r.Level).Fprintln(h.writer, sb.String())
	return err
}

func (h *CLIHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append([]string(nil), h.attrs...)
	for _, a := range attrs {
		c.attrs = append(c.attrs, h.format(a))
	}
	return &c
}

func (h *CLIHandler) WithGroup(name string) slog.Handler {
	c := *h
	if c.group != "" {
		name = c.group + "." + name
	}
	c.group = name
	return &c
}

func (h *CLIHandler) format(a slog.Attr) string {
	key := a.Key
	if h.group != "" {
		key = h.group + "." + key
	}
	return fmt.Sprintf("%s=%v", key, a.Value)
}

func prefix(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "[!] "
	case level >= slog.LevelWarn:
		return "[-] "
	case level >= slog.LevelInfo:
		return "[+] "
	default:
		return "[.] "
	}
}

func levelColor(level slog.Level) *color.Color {
	switch {
	case level >= slog.LevelError:
		return errorColor
	case level >= slog.LevelWarn:
		return warnColor
	case level >= slog.LevelInfo:
		return infoColor
	default:
		return debugColor
	}
}

// NewCLILogger returns a logger writing to stderr at the named level.
func NewCLILogger(level string) *slog.Logger {
	return slog.New(NewCLIHandler(os.Stderr, ParseLogLevel(level)))
}

// SetDefaultCLILogger installs a CLI logger as the slog default.
func SetDefaultCLILogger(level string) {
	slog.SetDefault(NewCLILogger(level))
}

// ParseLogLevel converts a string log level to slog.Level.
// Defaults to slog.LevelInfo for unrecognized strings.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
