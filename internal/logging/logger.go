// Package logging provides file-based logging for repodoc.
// Logs are written to .repodoc/logs/ in the analyzed repository: one JSON log
// per invocation plus raw-output dumps of everything the backend CLI returned.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names a subsystem logger.
type Category string

const (
	CategoryCLI     Category = "cli"
	CategoryCopilot Category = "copilot"
	CategoryParser  Category = "parser"
	CategoryPrompt  Category = "prompt"
	CategoryScan    Category = "scan"
	CategoryStore   Category = "store"
	CategoryPublish Category = "publish"
)

// DumpKind selects the prefix of a raw-output file.
type DumpKind string

const (
	DumpOutput DumpKind = "output"
	DumpError  DumpKind = "error"
)

// Options configures New.
type Options struct {
	// Dir is the logs directory, usually <repo>/.repodoc/logs.
	Dir string
	// Verbose mirrors debug output to stderr.
	Verbose bool
	// Now overrides the clock for file naming.
	Now func() time.Time
}

// Logger bundles the zap logger with the directory raw dumps are written to.
type Logger struct {
	*zap.Logger
	dir  string
	now  func() time.Time
	file *os.File
	mu   sync.Mutex
}

// New creates the invocation log file and returns a logger teeing to it and,
// when verbose, to stderr. If the directory cannot be created, the returned
// logger only writes to stderr (or nowhere) and the error is reported.
func New(opts Options) (*Logger, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var cores []zapcore.Core
	if opts.Verbose {
		consoleCfg := zap.NewDevelopmentEncoderConfig()
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleCfg),
			zapcore.Lock(os.Stderr),
			zapcore.DebugLevel,
		))
	}

	l := &Logger{dir: opts.Dir, now: now}

	var setupErr error
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			setupErr = fmt.Errorf("failed to create logs directory: %w", err)
		} else {
			name := fmt.Sprintf("repodoc_%s.log", now().Format("20060102_150405"))
			f, err := os.OpenFile(filepath.Join(opts.Dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				setupErr = fmt.Errorf("failed to open log file: %w", err)
			} else {
				l.file = f
				fileCfg := zap.NewProductionEncoderConfig()
				fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
				cores = append(cores, zapcore.NewCore(
					zapcore.NewJSONEncoder(fileCfg),
					zapcore.AddSync(f),
					zapcore.DebugLevel,
				))
			}
		}
	}
	if setupErr != nil {
		l.dir = ""
	}

	if len(cores) == 0 {
		l.Logger = zap.NewNop()
	} else {
		l.Logger = zap.New(zapcore.NewTee(cores...)).Named("repodoc")
	}
	return l, setupErr
}

// Nop returns a logger that discards everything and never writes dumps.
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop(), now: time.Now}
}

// Category returns a named child logger for a subsystem.
func (l *Logger) Category(c Category) *zap.Logger {
	if l == nil || l.Logger == nil {
		return zap.NewNop()
	}
	return l.Named(string(c))
}

// Dir returns the logs directory, or "" when file logging is disabled.
func (l *Logger) Dir() string {
	if l == nil {
		return ""
	}
	return l.dir
}

// DumpRaw writes content to <kind>_<name>_<timestamp>.txt in the logs directory
// and returns its path. It is a no-op returning "" when file logging is disabled.
func (l *Logger) DumpRaw(kind DumpKind, name, content string) (string, error) {
	if l == nil || l.dir == "" {
		return "", nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now().Format("20060102_150405.000000")
	// Swap the fractional-second dot for an underscore: output_x_20250101_120000_123456.txt
	ts = ts[:15] + "_" + ts[16:]
	path := filepath.Join(l.dir, fmt.Sprintf("%s_%s_%s.txt", kind, name, ts))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write raw output: %w", err)
	}
	l.Info("Raw output saved", zap.String("path", path))
	return path, nil
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	if l.Logger != nil {
		_ = l.Sync()
	}
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}
