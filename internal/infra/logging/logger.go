// Package logging provides file-based logging for mdboard.
// Logs are appended to .mdboard/logs/mdboard.log as one line per record.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/runoshun/mdboard/internal/domain"
)

// ComponentKey is the attribute rendered in the component slot of a line.
const ComponentKey = "component"

// File is a lazily opened, append-only log file.
// Fields are ordered to minimize memory padding.
type File struct {
	file     *os.File
	boardDir string
	mu       sync.Mutex
}

var _ io.WriteCloser = (*File)(nil)

// NewFile creates a log file writer under boardDir.
// If boardDir is empty, writes are discarded.
func NewFile(boardDir string) *File {
	return &File{boardDir: boardDir}
}

// Write appends p to the log file, opening it on first use.
func (f *File) Write(p []byte) (int, error) {
	if f.boardDir == "" {
		return len(p), nil // Logging disabled
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		if err := os.MkdirAll(filepath.Join(f.boardDir, "logs"), 0o750); err != nil {
			return 0, fmt.Errorf("create logs directory: %w", err)
		}
		path := domain.LogPath(f.boardDir)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
		if err != nil {
			return 0, fmt.Errorf("open log file: %w", err)
		}
		f.file = file
	}
	return f.file.Write(p)
}

// Close closes the log file if it was opened.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a logger writing lines to the board's log file, and the file
// so the caller can close it.
func New(boardDir string, level slog.Level) (*slog.Logger, *File) {
	f := NewFile(boardDir)
	return slog.New(NewHandler(f, level)), f
}

// Handler is a slog.Handler producing one line per record:
//
//	[2025-12-30 09:32:51] [INFO] [filestore] message key=value
type Handler struct {
	w         io.Writer
	mu        *sync.Mutex
	level     slog.Leveler
	component string
	prefix    string
	attrs     []string
	now       func() time.Time
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler creates a line handler writing to w.
func NewHandler(w io.Writer, level slog.Leveler) *Handler {
	return &Handler{w: w, mu: &sync.Mutex{}, level: level, component: "global", now: time.Now}
}

// Enabled reports whether records at level are written.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes a record.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	t := r.Time
	if t.IsZero() {
		t = h.now()
	}
	component := h.component
	attrs := append([]string{}, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		if h.prefix == "" && a.Key == ComponentKey {
			component = a.Value.String()
			return true
		}
		attrs = appendAttr(attrs, h.prefix, a)
		return true
	})

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] [%s] %s",
		t.Format("2006-01-02 15:04:05"),
		levelToString(r.Level),
		component,
		r.Message,
	)
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(a)
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append([]string{}, h.attrs...)
	for _, a := range attrs {
		if h.prefix == "" && a.Key == ComponentKey {
			c.component = a.Value.String()
			continue
		}
		c.attrs = appendAttr(c.attrs, h.prefix, a)
	}
	return &c
}

// WithGroup returns a handler that qualifies later attribute keys.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

func appendAttr(dst []string, prefix string, a slog.Attr) []string {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			dst = appendAttr(dst, p, ga)
		}
		return dst
	}
	return append(dst, prefix+a.Key+"="+formatValue(a.Value))
}

func formatValue(v slog.Value) string {
	s := v.String()
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

func levelToString(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
