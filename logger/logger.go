// Package logger configures the process-wide zerolog logger used across
// the module. Components accept a zerolog.Logger explicitly where it
// matters (e.g. per-request loggers with session_id attached) and fall
// back to Get() otherwise.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
)

var (
	once sync.Once
	log  zerolog.Logger
)

// GetLogLevel reads VOIDCORE_LOG_LEVEL as a zerolog.Level integer,
// defaulting to info when unset or unparsable.
func GetLogLevel() zerolog.Level {
	level, err := strconv.Atoi(os.Getenv("VOIDCORE_LOG_LEVEL"))
	if err != nil {
		return zerolog.InfoLevel
	}
	return zerolog.Level(level)
}

// Get returns the process-wide logger, initializing it on first use: a
// human-readable console writer on stderr, plus a daily-rotating JSON
// file writer under the module's state directory when one can be
// resolved (never fatal if it can't — stderr-only is a safe fallback).
func Get() zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		var output io.Writer = consoleWriter

		if stateHome, err := getStateHome(); err == nil {
			if fileWriter, err := newDailyRotatingLogWriter(stateHome); err == nil {
				output = zerolog.MultiLevelWriter(consoleWriter, fileWriter)
			}
		}

		log = zerolog.New(output).With().Timestamp().Logger().Level(GetLogLevel())
	})
	return log
}

// WithSession returns a child logger tagged with a session id, used by the
// service facade and agent loop so every log line from a turn can be
// correlated.
func WithSession(sessionID string) zerolog.Logger {
	return Get().With().Str("session_id", sessionID).Logger()
}

// getStateHome resolves the module's state directory: VOIDCORE_STATE_HOME
// if set, otherwise the XDG state home under an "assistant-core"
// subdirectory, creating it if necessary.
func getStateHome() (string, error) {
	if dir := os.Getenv("VOIDCORE_STATE_HOME"); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
		return dir, nil
	}

	dir := filepath.Join(xdg.StateHome, "assistant-core")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

const (
	logFilePrefix   = "assistant-core-"
	logFileSuffix   = ".log"
	maxLogFileCount = 7
)

// dailyRotatingLogWriter writes JSON log lines to a file named by the
// current date under stateHome, rolling over at midnight and pruning
// files beyond maxLogFileCount.
type dailyRotatingLogWriter struct {
	mu          sync.Mutex
	stateHome   string
	currentDate string
	file        *os.File
}

func newDailyRotatingLogWriter(stateHome string) (*dailyRotatingLogWriter, error) {
	w := &dailyRotatingLogWriter{stateHome: stateHome}
	if err := w.rotateIfNeeded(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *dailyRotatingLogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.rotateIfNeeded(); err != nil {
		return 0, err
	}
	return w.file.Write(p)
}

func (w *dailyRotatingLogWriter) rotateIfNeeded() error {
	today := time.Now().Format("2006-01-02")
	if w.currentDate == today && w.file != nil {
		return nil
	}

	if w.file != nil {
		w.file.Close()
	}

	fileName := logFilePrefix + today + logFileSuffix
	file, err := os.OpenFile(
		filepath.Join(w.stateHome, fileName),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY,
		0o644,
	)
	if err != nil {
		return err
	}

	w.file = file
	w.currentDate = today
	cleanupOldLogFiles(w.stateHome)
	return nil
}

func (w *dailyRotatingLogWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file != nil {
		err := w.file.Close()
		w.file = nil
		return err
	}
	return nil
}

var _ io.WriteCloser = (*dailyRotatingLogWriter)(nil)

func cleanupOldLogFiles(stateHome string) {
	entries, err := os.ReadDir(stateHome)
	if err != nil {
		return
	}

	var logFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, logFilePrefix) && strings.HasSuffix(name, logFileSuffix) {
			logFiles = append(logFiles, name)
		}
	}

	if len(logFiles) <= maxLogFileCount {
		return
	}

	sort.Strings(logFiles)
	for i := 0; i < len(logFiles)-maxLogFileCount; i++ {
		os.Remove(filepath.Join(stateHome, logFiles[i]))
	}
}
