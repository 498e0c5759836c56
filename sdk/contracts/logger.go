package contracts

import (
	"fmt"
	"strings"
	"time"
)

// LogLevel represents the severity level for logging.
type LogLevel int

const (
	// InfoLevel reports the outcome of every harness action.
	InfoLevel LogLevel = iota
	// DebugLevel adds per-frame detail such as raw bytes.
	DebugLevel
	// ErrorLevel reports failed sends and failed device access.
	ErrorLevel
	// WarnLevel reports aborted actions, e.g. a send with no port selected.
	WarnLevel
	// FatalLevel is reserved for unrecoverable startup failures.
	FatalLevel
)

var logLevelNames = map[LogLevel]string{
	InfoLevel:  "info",
	DebugLevel: "debug",
	ErrorLevel: "error",
	WarnLevel:  "warn",
	FatalLevel: "fatal",
}

// String returns the lower-case level name.
func (l LogLevel) String() string {
	if name, ok := logLevelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LogLevel(%d)", int(l))
}

// ParseLogLevel maps a level name (case-insensitive) to a LogLevel.
func ParseLogLevel(name string) (LogLevel, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return InfoLevel, nil
	}
	for level, n := range logLevelNames {
		if n == name {
			return level, nil
		}
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", name)
}

// LogDestination specifies where the log messages should be directed.
type LogDestination string

const (
	// ConsoleLog directs log messages to stderr.
	ConsoleLog LogDestination = "console"
	// FileLog appends log messages to a file.
	FileLog LogDestination = "file"
)

// Field builds a typed key/value pair attached to a log entry.
type Field interface {
	Bool(key string, val bool) Field
	Int(key string, val int) Field
	Float64(key string, val float64) Field
	String(key string, val string) Field
	Time(key string, val time.Time) Field
	Duration(key string, val time.Duration) Field
	Int64(key string, val int64) Field
	Error(key string, val error) Field
	Uint64(key string, val uint64) Field
	Uint8(key string, val uint8) Field
	Bytes(key string, val []byte) Field
}

// Logger provides leveled logging with structured fields.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	Field() Field

	SetLevel(level LogLevel)
	SetDestination(dest LogDestination, filePath ...string)
}
