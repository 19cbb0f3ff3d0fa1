package logging

import (
	"os"
	"sync"
)

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

func init() {
	globalLogger = New(Config{
		Level:       os.Getenv("LOG_LEVEL"),
		Output:      os.Stdout,
		EnableColor: os.Getenv("LOG_COLOR") != "false",
	})
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// Configure replaces the global logger. Loggers obtained earlier through
// WithPrefix keep writing to the previous outputs.
func Configure(config Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = New(config)
}

// Debugf logs a formatted message at DEBUG level using the global logger
func Debugf(format string, args ...interface{}) { GetGlobalLogger().Debugf(format, args...) }

// Info logs a message at INFO level using the global logger
func Info(args ...interface{}) { GetGlobalLogger().Info(args...) }

// Infof logs a formatted message at INFO level using the global logger
func Infof(format string, args ...interface{}) { GetGlobalLogger().Infof(format, args...) }

// Warnf logs a formatted message at WARN level using the global logger
func Warnf(format string, args ...interface{}) { GetGlobalLogger().Warnf(format, args...) }

// Errorf logs a formatted message at ERROR level using the global logger
func Errorf(format string, args ...interface{}) { GetGlobalLogger().Errorf(format, args...) }

// Fatalf logs a formatted message at FATAL level using the global logger and exits the program
func Fatalf(format string, args ...interface{}) { GetGlobalLogger().Fatalf(format, args...) }

// WithPrefix returns a new logger with the specified prefix using the global logger
func WithPrefix(prefix string) *Logger {
	return GetGlobalLogger().WithPrefix(prefix)
}
