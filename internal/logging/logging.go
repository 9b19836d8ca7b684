package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config describes the desired logging configuration.
type Config struct {
	Level    string
	Format   string
	FilePath string
	// Rotation limits for FilePath. Zero values fall back to defaults.
	FileMaxSizeMB  int
	FileMaxFiles   int
	FileMaxAgeDays int
	// Console receives log output in addition to FilePath. Defaults to stdout.
	Console io.Writer
}

// handlerRef lets the manager replace the output handler while loggers that
// were derived with With or WithGroup keep working. Derivations are recorded
// in order and replayed onto whichever handler is current.
type handlerRef struct {
	current *atomic.Pointer[slog.Handler]
	ops     []func(slog.Handler) slog.Handler
}

func newHandlerRef(h slog.Handler) *handlerRef {
	r := &handlerRef{current: &atomic.Pointer[slog.Handler]{}}
	r.current.Store(&h)
	return r
}

func (r *handlerRef) swap(h slog.Handler) {
	r.current.Store(&h)
}

func (r *handlerRef) resolve() slog.Handler {
	h := *r.current.Load()
	for _, op := range r.ops {
		h = op(h)
	}
	return h
}

func (r *handlerRef) derive(op func(slog.Handler) slog.Handler) *handlerRef {
	ops := make([]func(slog.Handler) slog.Handler, 0, len(r.ops)+1)
	ops = append(ops, r.ops...)
	return &handlerRef{current: r.current, ops: append(ops, op)}
}

func (r *handlerRef) Enabled(ctx context.Context, level slog.Level) bool {
	return (*r.current.Load()).Enabled(ctx, level)
}

func (r *handlerRef) Handle(ctx context.Context, rec slog.Record) error {
	return r.resolve().Handle(ctx, rec)
}

func (r *handlerRef) WithAttrs(attrs []slog.Attr) slog.Handler {
	return r.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (r *handlerRef) WithGroup(name string) slog.Handler {
	if name == "" {
		return r
	}
	return r.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

// Manager owns the logger lifecycle and supports runtime reconfiguration.
type Manager struct {
	mu       sync.Mutex
	levelVar *slog.LevelVar
	ref      *handlerRef
	config   Config
	file     io.Closer
}

// NewManager creates a Manager and returns it along with a ready-to-use logger.
func NewManager(cfg Config) (*Manager, *slog.Logger) {
	m := &Manager{levelVar: &slog.LevelVar{}}
	m.levelVar.Set(parseLevel(cfg.Level))

	w, file := openOutput(cfg)
	m.ref = newHandlerRef(newHandler(w, m.levelVar, resolveFormat(cfg)))
	m.file = file
	m.config = cfg

	return m, slog.New(m.ref)
}

// Reconfigure applies a new configuration at runtime. A level change is
// applied in place; a format or output change swaps the handler.
func (m *Manager) Reconfigure(cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.levelVar.Set(parseLevel(cfg.Level))

	old := m.config
	if cfg.Format == old.Format && cfg.FilePath == old.FilePath &&
		cfg.FileMaxSizeMB == old.FileMaxSizeMB && cfg.FileMaxFiles == old.FileMaxFiles &&
		cfg.FileMaxAgeDays == old.FileMaxAgeDays && cfg.Console == old.Console {
		m.config = cfg
		return
	}

	if m.file != nil {
		m.file.Close() //nolint:errcheck
		m.file = nil
	}
	w, file := openOutput(cfg)
	h := newHandler(w, m.levelVar, resolveFormat(cfg))
	m.ref.swap(h)
	m.file = file
	m.config = cfg
}

// Config returns the current configuration snapshot.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Close releases the log file, if any.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.file == nil {
		return nil
	}
	err := m.file.Close()
	m.file = nil
	return err
}

func parseLevel(s string) slog.Level {
	switch s {
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

// openOutput returns the console writer, teed into a rotating file when
// FilePath is set. The returned closer is the file, or nil.
func openOutput(cfg Config) (io.Writer, io.Closer) {
	console := cfg.Console
	if console == nil {
		console = os.Stdout
	}
	if cfg.FilePath == "" {
		return console, nil
	}

	lj := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    orDefault(cfg.FileMaxSizeMB, 50),
		MaxBackups: orDefault(cfg.FileMaxFiles, 3),
		MaxAge:     orDefault(cfg.FileMaxAgeDays, 14),
	}
	return io.MultiWriter(console, lj), lj
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// resolveFormat maps "auto" to text when the console is a terminal and to
// json otherwise.
func resolveFormat(cfg Config) string {
	if cfg.Format != "auto" {
		return cfg.Format
	}
	console := cfg.Console
	if console == nil {
		console = os.Stdout
	}
	if f, ok := console.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // G115: fd fits in int
		return "text"
	}
	return "json"
}

func newHandler(w io.Writer, level slog.Leveler, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// ValidLevel reports whether s is a recognized log level.
func ValidLevel(s string) bool {
	switch s {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// ValidFormat reports whether s is a recognized log format.
func ValidFormat(s string) bool {
	return s == "text" || s == "json" || s == "auto"
}

// String returns a short summary for startup logs.
func (c Config) String() string {
	s := fmt.Sprintf("level=%s format=%s", c.Level, c.Format)
	if c.FilePath != "" {
		s += " file=" + c.FilePath
	}
	return s
}
