package logging

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// LogLevel represents the severity of a log message
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
	LogLevelPanic LogLevel = "panic"
)

var levelRank = map[LogLevel]int{
	LogLevelDebug: 0,
	LogLevelInfo:  1,
	LogLevelWarn:  2,
	LogLevelError: 3,
	LogLevelPanic: 4,
}

// ParseLevel validates a configured level. Empty means info.
func ParseLevel(s string) (LogLevel, error) {
	if s == "" {
		return LogLevelInfo, nil
	}
	level := LogLevel(strings.ToLower(s))
	if _, ok := levelRank[level]; !ok {
		return "", fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// DefaultMaxLogSize is the size at which the application log is rotated.
const DefaultMaxLogSize = 10 * 1024 * 1024

var (
	// App is the global application logger
	App *AppLogger
	// Auth is the global authentication attempt logger
	Auth AuthLogger
)

func init() {
	App = NewAppLogger(nil, LogLevelInfo)
	Auth = NewAuthLogger(nil)
}

// Options selects the log destinations. Empty paths discard auth records
// and send application logs to stderr.
type Options struct {
	Fs          afero.Fs
	AuthLogPath string
	AppLogPath  string
	Level       LogLevel
	MaxSize     int64
}

// Initialize replaces the global loggers.
func Initialize(opts Options) error {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Level == "" {
		opts.Level = LogLevelInfo
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxLogSize
	}

	var appWriter *RotatingWriter
	if opts.AppLogPath != "" {
		w, err := NewRotatingWriter(opts.Fs, opts.AppLogPath, opts.MaxSize)
		if err != nil {
			return fmt.Errorf("opening app log: %w", err)
		}
		appWriter = w
	}

	var authWriter afero.File
	if opts.AuthLogPath != "" {
		f, err := openAppend(opts.Fs, opts.AuthLogPath)
		if err != nil {
			if appWriter != nil {
				appWriter.Close()
			}
			return fmt.Errorf("opening auth log: %w", err)
		}
		authWriter = f
	}

	if appWriter != nil {
		App = NewAppLogger(appWriter, opts.Level)
	} else {
		App = NewAppLogger(nil, opts.Level)
	}
	if authWriter != nil {
		Auth = NewAuthLogger(authWriter)
	} else {
		Auth = NewAuthLogger(nil)
	}
	return nil
}

// formatValue formats a value for logfmt, quoting if necessary
func formatValue(v interface{}) string {
	s := fmt.Sprintf("%v", v)
	if s == "" || strings.ContainsAny(s, " =\"") {
		s = strings.ReplaceAll(s, "\"", "\\\"")
		return "\"" + s + "\""
	}
	return s
}

// formatPairs renders key/value pairs, dropping a trailing unpaired key.
func formatPairs(keyvals []interface{}) string {
	var parts []string
	for i := 0; i+1 < len(keyvals); i += 2 {
		parts = append(parts, fmt.Sprintf("%s=%s", toString(keyvals[i]), formatValue(toString(keyvals[i+1]))))
	}
	return strings.Join(parts, " ")
}

func toString(v interface{}) string {
	if v == nil {
		return ""
	}
	return strings.Join(strings.Fields(fmt.Sprintf("%v", v)), " ")
}
