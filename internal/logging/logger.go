// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Logger fans records out to the terminal presenter and to an optional
// diagnostic file sink.
type Logger struct {
	mu        sync.Mutex
	presenter *Presenter
	file      *clog.Logger
	runID     string
}

// New returns a Logger presenting records at INFO and above on the standard
// streams.
func New() *Logger {
	return &Logger{presenter: NewPresenter(LevelInfo), runID: uuid.NewString()}
}

// L is the package-level logger used by the helper functions below.
var L = New()

// SetPresenter replaces the terminal presenter. A nil presenter silences the
// terminal side.
func (l *Logger) SetPresenter(p *Presenter) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.presenter = p
}

// Presenter returns the current terminal presenter.
func (l *Logger) Presenter() *Presenter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.presenter
}

// SetThreshold changes the presenter's threshold.
func (l *Logger) SetThreshold(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.presenter != nil {
		l.presenter.Threshold = level
	}
}

// RunID identifies this process' records in the diagnostic log.
func (l *Logger) RunID() string {
	return l.runID
}

// SetFileSink sends every record at DEBUG and above to w in logfmt. A nil
// writer disables the sink.
func (l *Logger) SetFileSink(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if w == nil {
		l.file = nil
		return
	}
	l.file = clog.NewWithOptions(w, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           clog.DebugLevel,
		Formatter:       clog.LogfmtFormatter,
	}).With("run", l.runID)
}

// OpenFile appends the diagnostic log to path, creating parent directories
// as needed. The caller closes the returned file.
func (l *Logger) OpenFile(path string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("could not create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("could not open log file: %w", err)
	}
	l.SetFileSink(f)
	return f, nil
}

// Log records a message at level.
func (l *Logger) Log(level Level, msg string) {
	r := Record{Level: level, Message: msg, Time: time.Now()}

	l.mu.Lock()
	p, f := l.presenter, l.file
	l.mu.Unlock()

	if f != nil {
		f.Log(fileLevel(level), msg, "severity", level.String())
	}
	if p != nil {
		p.Emit(r)
	}
}

func fileLevel(level Level) clog.Level {
	switch {
	case level >= LevelError:
		return clog.ErrorLevel
	case level >= LevelWarning:
		return clog.WarnLevel
	case level >= LevelInfo:
		return clog.InfoLevel
	default:
		return clog.DebugLevel
	}
}

// Debugf logs a debug-level formatted message.
func Debugf(format string, v ...any) {
	L.Log(LevelDebug, fmt.Sprintf(format, v...))
}

// Infof logs an info-level formatted message.
func Infof(format string, v ...any) {
	L.Log(LevelInfo, fmt.Sprintf(format, v...))
}

// Successf logs a success-level formatted message.
func Successf(format string, v ...any) {
	L.Log(LevelSuccess, fmt.Sprintf(format, v...))
}

// Warnf logs a warning-level formatted message.
func Warnf(format string, v ...any) {
	L.Log(LevelWarning, fmt.Sprintf(format, v...))
}

// Errorf logs an error-level formatted message.
func Errorf(format string, v ...any) {
	L.Log(LevelError, fmt.Sprintf(format, v...))
}

// Criticalf logs a critical-level formatted message.
func Criticalf(format string, v ...any) {
	L.Log(LevelCritical, fmt.Sprintf(format, v...))
}
