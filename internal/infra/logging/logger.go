// Package logging provides line-oriented logging for fieldsync.
// Entries go to a console writer (stderr) and, when configured, are also
// appended to a log file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/runoshun/gh-field-sync/internal/domain"
)

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

// Logger writes formatted entries to a console writer and an optional file.
// Fields are ordered to minimize memory padding.
type Logger struct {
	console  io.Writer
	file     *os.File
	now      func() time.Time
	filePath string
	mu       sync.Mutex
	level    slog.Level
	fileErr  bool
}

// New creates a new Logger. console may be nil to log only to filePath;
// an empty filePath disables file output.
func New(console io.Writer, filePath string, level slog.Level) *Logger {
	return &Logger{
		console:  console,
		filePath: filePath,
		level:    level,
		now:      time.Now,
	}
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ensureFile opens the log file on first use. Must be called with mu held.
func (l *Logger) ensureFile() (*os.File, error) {
	if l.file != nil {
		return l.file, nil
	}
	if dir := filepath.Dir(l.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(l.filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.file = f
	return f, nil
}

// Close closes the log file if it was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// formatLog formats a log entry.
// Format: [2025-12-30 09:32:51] [INFO] [I_kwDOA1] [propagate] message
func formatLog(t time.Time, level slog.Level, issueID domain.IssueID, category, msg string) string {
	scope := "global"
	if issueID != "" {
		scope = string(issueID)
	}
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n",
		t.Format("2006-01-02 15:04:05"),
		levelToString(level),
		scope,
		category,
		msg,
	)
}

func levelToString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// log writes one entry to every configured output.
// Entries from concurrent child updates are serialized so lines never interleave.
func (l *Logger) log(level slog.Level, issueID domain.IssueID, category, msg string) {
	if level < l.level {
		return
	}

	entry := formatLog(l.now(), level, issueID, category, msg)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.console != nil {
		_, _ = io.WriteString(l.console, entry)
	}
	if l.filePath == "" || l.fileErr {
		return
	}
	f, err := l.ensureFile()
	if err != nil {
		// Report once on the console, then stop retrying.
		l.fileErr = true
		if l.console != nil {
			_, _ = io.WriteString(l.console, formatLog(l.now(), slog.LevelWarn, "", "log", err.Error()))
		}
		return
	}
	_, _ = io.WriteString(f, entry)
}

// Info logs an info message.
func (l *Logger) Info(issueID domain.IssueID, category, msg string) {
	l.log(slog.LevelInfo, issueID, category, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(issueID domain.IssueID, category, msg string) {
	l.log(slog.LevelDebug, issueID, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(issueID domain.IssueID, category, msg string) {
	l.log(slog.LevelWarn, issueID, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(issueID domain.IssueID, category, msg string) {
	l.log(slog.LevelError, issueID, category, msg)
}
