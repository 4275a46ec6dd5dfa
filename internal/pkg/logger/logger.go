// Package logger writes structured JSON log lines with credential redaction.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log entry.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// ParseLevel maps a level name (case-insensitive) to a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	for l, name := range levelNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return l
		}
	}
	return INFO
}

// Logger provides structured JSON logging with optional secret redaction.
type Logger struct {
	level  Level
	mu     sync.Mutex
	redact bool
	out    io.Writer
	now    func() time.Time
}

var defaultLogger = &Logger{level: INFO, redact: true, out: os.Stderr, now: time.Now}

// SetLevel sets the minimum log level for the default logger.
func SetLevel(l Level) { defaultLogger.level = l }

// SetRedact enables or disables credential redaction for the default logger.
func SetRedact(r bool) { defaultLogger.redact = r }

// SetOutput redirects the default logger.
func SetOutput(w io.Writer) {
	defaultLogger.mu.Lock()
	defaultLogger.out = w
	defaultLogger.mu.Unlock()
}

// Debug emits a DEBUG-level structured log entry.
func Debug(msg string, fields ...interface{}) { defaultLogger.log(DEBUG, msg, fields...) }

// Info emits an INFO-level structured log entry.
func Info(msg string, fields ...interface{}) { defaultLogger.log(INFO, msg, fields...) }

// Warn emits a WARN-level structured log entry.
func Warn(msg string, fields ...interface{}) { defaultLogger.log(WARN, msg, fields...) }

// Error emits an ERROR-level structured log entry.
func Error(msg string, fields ...interface{}) { defaultLogger.log(ERROR, msg, fields...) }

// With returns a logger that adds the given key-value pairs to every entry.
// It shares output and settings with the default logger.
func With(fields ...interface{}) *Entry {
	return &Entry{fields: fields}
}

// Entry is a default-logger view carrying fixed fields, typically a run ID.
type Entry struct {
	fields []interface{}
}

func (e *Entry) Debug(msg string, fields ...interface{}) { e.emit(DEBUG, msg, fields) }
func (e *Entry) Info(msg string, fields ...interface{})  { e.emit(INFO, msg, fields) }
func (e *Entry) Warn(msg string, fields ...interface{})  { e.emit(WARN, msg, fields) }
func (e *Entry) Error(msg string, fields ...interface{}) { e.emit(ERROR, msg, fields) }

func (e *Entry) emit(level Level, msg string, fields []interface{}) {
	all := make([]interface{}, 0, len(e.fields)+len(fields))
	all = append(all, e.fields...)
	all = append(all, fields...)
	defaultLogger.log(level, msg, all...)
}

func (l *Logger) log(level Level, msg string, fields ...interface{}) {
	if level < l.level {
		return
	}

	entry := map[string]interface{}{
		"time":  l.now().UTC().Format(time.RFC3339),
		"level": levelNames[level],
		"msg":   msg,
	}

	// Parse key-value pairs from fields
	for i := 0; i < len(fields)-1; i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		val := fmt.Sprintf("%v", fields[i+1])
		if l.redact {
			val = redactValue(key, val)
		}
		entry[key] = val
	}

	data, _ := json.Marshal(entry)
	l.mu.Lock()
	fmt.Fprintln(l.out, string(data))
	l.mu.Unlock()
}
