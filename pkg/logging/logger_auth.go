package logging

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"
)

// AuthLogger records one line per authentication attempt. Passwords and
// stored hashes must never be passed as details.
type AuthLogger interface {
	LogAuth(operation string, user string, status string, details ...interface{})
	Close() error
}

type authLogger struct {
	logger *log.Logger
	closer io.Closer
}

// NewAuthLogger creates an auth logger writing to w. A nil w discards. If w
// is an io.Closer it is closed by Close.
func NewAuthLogger(w io.Writer) AuthLogger {
	l := &authLogger{}
	if w == nil {
		w = io.Discard
	} else if c, ok := w.(io.Closer); ok {
		l.closer = c
	}
	l.logger = log.New(w, "", 0)
	return l
}

// Close closes the underlying writer, if it owns one
func (l *authLogger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func (l *authLogger) LogAuth(operation string, user string, status string, details ...interface{}) {
	parts := []string{fmt.Sprintf("op=%s", formatValue(operation))}
	if user != "" {
		parts = append(parts, fmt.Sprintf("user=%s", formatValue(user)))
	}
	parts = append(parts, fmt.Sprintf("status=%s", formatValue(status)))
	if kv := formatPairs(details); kv != "" {
		parts = append(parts, kv)
	}

	timestamp := time.Now().UTC().Format("2006-01-02 15:04:05 -0700")
	l.logger.Printf("%s %s", timestamp, strings.Join(parts, " "))
}
