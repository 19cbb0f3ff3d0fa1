package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

var levelColors = [...]string{
	"\033[36m",       // Cyan
	"\033[38;5;195m", // Pale Blue
	"\033[33m",       // Yellow
	"\033[31m",       // Red
	"\033[35m",       // Magenta
}

const colorReset = "\033[0m"

// String returns the string representation of the log level
func (l LogLevel) String() string {
	if l < DEBUG || l > FATAL {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// Color returns ANSI color codes for terminal output
func (l LogLevel) Color() string {
	if l < DEBUG || l > FATAL {
		return colorReset
	}
	return levelColors[l]
}

// sink is shared by a logger and every prefixed child so that level changes
// and writes stay consistent across them
type sink struct {
	mu          sync.Mutex
	level       LogLevel
	console     io.Writer
	file        io.Writer
	enableColor bool
	now         func() time.Time
}

// Logger writes leveled lines to the console and optionally a file
type Logger struct {
	sink   *sink
	prefix string
}

// Config holds logger configuration options
type Config struct {
	Level       string // "debug", "info", "warn", "error", "fatal"
	Output      io.Writer
	File        io.Writer // plain text copy of every line, no colors
	Prefix      string
	EnableColor bool
}

// DefaultConfig returns a default logger configuration
func DefaultConfig() Config {
	return Config{
		Level:       "info",
		Output:      os.Stdout,
		EnableColor: true,
	}
}

// ParseLevel converts a string level to LogLevel
func ParseLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return INFO
	}
}

// New creates a new Logger instance
func New(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Logger{
		sink: &sink{
			level:       ParseLevel(config.Level),
			console:     config.Output,
			file:        config.File,
			enableColor: config.EnableColor,
			now:         time.Now,
		},
		prefix: config.Prefix,
	}
}

// NewDefault creates a logger with default configuration
func NewDefault() *Logger {
	return New(DefaultConfig())
}

// OpenLogFile opens (or creates) dir/name-YYYY-MM-DD.log for appending
func OpenLogFile(dir, name string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.log", name, time.Now().Format("2006-01-02")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level LogLevel) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
}

// IsLevelEnabled checks if the given level is enabled
func (l *Logger) IsLevelEnabled(level LogLevel) bool {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return level >= l.sink.level
}

func (l *Logger) write(level LogLevel, message string) {
	s := l.sink
	s.mu.Lock()
	if level < s.level {
		s.mu.Unlock()
		return
	}

	prefix := ""
	if l.prefix != "" {
		prefix = "[" + l.prefix + "] "
	}
	line := fmt.Sprintf("%-5s %s %-24s%s", level, s.now().Format("2006-01-02 15:04:05.000"), prefix, message)

	if s.enableColor {
		fmt.Fprintln(s.console, level.Color()+line+colorReset)
	} else {
		fmt.Fprintln(s.console, line)
	}
	if s.file != nil {
		fmt.Fprintln(s.file, line)
	}
	s.mu.Unlock()

	if level == FATAL {
		os.Exit(1)
	}
}

// Debug logs a message at DEBUG level
func (l *Logger) Debug(args ...interface{}) { l.write(DEBUG, fmt.Sprint(args...)) }

// Debugf logs a formatted message at DEBUG level
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.write(DEBUG, fmt.Sprintf(format, args...))
}

// Info logs a message at INFO level
func (l *Logger) Info(args ...interface{}) { l.write(INFO, fmt.Sprint(args...)) }

// Infof logs a formatted message at INFO level
func (l *Logger) Infof(format string, args ...interface{}) {
	l.write(INFO, fmt.Sprintf(format, args...))
}

// Warn logs a message at WARN level
func (l *Logger) Warn(args ...interface{}) { l.write(WARN, fmt.Sprint(args...)) }

// Warnf logs a formatted message at WARN level
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.write(WARN, fmt.Sprintf(format, args...))
}

// Error logs a message at ERROR level
func (l *Logger) Error(args ...interface{}) { l.write(ERROR, fmt.Sprint(args...)) }

// Errorf logs a formatted message at ERROR level
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.write(ERROR, fmt.Sprintf(format, args...))
}

// Fatal logs a message at FATAL level and exits the program
func (l *Logger) Fatal(args ...interface{}) { l.write(FATAL, fmt.Sprint(args...)) }

// Fatalf logs a formatted message at FATAL level and exits the program
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.write(FATAL, fmt.Sprintf(format, args...))
}

// WithPrefix returns a child logger writing to the same outputs. Prefixes nest
// as parent:child.
func (l *Logger) WithPrefix(prefix string) *Logger {
	if l.prefix != "" {
		prefix = l.prefix + ":" + prefix
	}
	return &Logger{sink: l.sink, prefix: prefix}
}
