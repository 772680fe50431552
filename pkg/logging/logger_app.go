package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	golog "github.com/fclairamb/go-log"
)

// AppLogger implements the go-log.Logger interface
type AppLogger struct {
	level   LogLevel
	logger  *log.Logger
	closer  io.Closer
	context []interface{}
}

// NewAppLogger creates a leveled logger writing to w, or to stderr when w
// is nil. If w is an io.Closer it is closed by Close.
func NewAppLogger(w io.Writer, level LogLevel) *AppLogger {
	l := &AppLogger{level: level}
	if w == nil {
		w = os.Stderr
	} else if c, ok := w.(io.Closer); ok {
		l.closer = c
	}
	l.logger = log.New(w, "", 0)
	return l
}

func (l *AppLogger) shouldLog(level LogLevel) bool {
	return levelRank[level] >= levelRank[l.level]
}

func (l *AppLogger) log(level LogLevel, message string, keyvals ...interface{}) {
	if !l.shouldLog(level) {
		return
	}

	all := append(append([]interface{}{}, l.context...), keyvals...)
	line := fmt.Sprintf("%s %s: %s", time.Now().UTC().Format("2006-01-02 15:04:05 -0700"), level, message)
	if kv := formatPairs(all); kv != "" {
		line += " " + kv
	}
	l.logger.Print(line)
}

// Debug implements go-log.Logger
func (l *AppLogger) Debug(message string, keyvals ...interface{}) {
	l.log(LogLevelDebug, message, keyvals...)
}

// Info implements go-log.Logger
func (l *AppLogger) Info(message string, keyvals ...interface{}) {
	l.log(LogLevelInfo, message, keyvals...)
}

// Warn implements go-log.Logger
func (l *AppLogger) Warn(message string, keyvals ...interface{}) {
	l.log(LogLevelWarn, message, keyvals...)
}

// Error implements go-log.Logger
func (l *AppLogger) Error(message string, keyvals ...interface{}) {
	l.log(LogLevelError, message, keyvals...)
}

// Panic implements go-log.Logger. It logs at panic level and does not panic.
func (l *AppLogger) Panic(message string, keyvals ...interface{}) {
	l.log(LogLevelPanic, message, keyvals...)
}

// With implements go-log.Logger; the returned logger prefixes keyvals to
// every record and shares the destination.
func (l *AppLogger) With(keyvals ...interface{}) golog.Logger {
	return &AppLogger{
		level:   l.level,
		logger:  l.logger,
		context: append(append([]interface{}{}, l.context...), keyvals...),
	}
}

// IsDebug returns true if the logger is at debug level
func (l *AppLogger) IsDebug() bool {
	return l.level == LogLevelDebug
}

// Close closes the underlying writer, if it owns one
func (l *AppLogger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
