package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel string

const (
	DEBUG LogLevel = "DEBUG"
	INFO  LogLevel = "INFO"
	WARN  LogLevel = "WARN"
	ERROR LogLevel = "ERROR"
)

var levelRank = map[LogLevel]int{
	DEBUG: 0,
	INFO:  1,
	WARN:  2,
	ERROR: 3,
}

// ParseLogLevel maps a level name to a LogLevel, defaulting to INFO
func ParseLogLevel(name string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Logger provides leveled, component-tagged logging
type Logger struct {
	logger    *log.Logger
	minLevel  LogLevel
	component string
}

// NewLogger creates a logger that writes to the default output
func NewLogger(component string, minLevel LogLevel) *Logger {
	return NewLoggerWithWriter(component, minLevel, defaultOutput)
}

// NewLoggerWithWriter creates a logger that writes to w
func NewLoggerWithWriter(component string, minLevel LogLevel, w io.Writer) *Logger {
	return &Logger{
		logger:    log.New(w, "", 0),
		minLevel:  minLevel,
		component: component,
	}
}

func (l *Logger) shouldLog(level LogLevel) bool {
	return levelRank[level] >= levelRank[l.minLevel]
}

func (l *Logger) formatMessage(level LogLevel, message string) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	return fmt.Sprintf("[%s] [%s] [%s] %s", timestamp, level, l.component, message)
}

func (l *Logger) write(level LogLevel, message string, args []interface{}) {
	if !l.shouldLog(level) {
		return
	}
	l.logger.Println(l.formatMessage(level, fmt.Sprintf(message, args...)))
}

// Debug logs a debug message
func (l *Logger) Debug(message string, args ...interface{}) {
	l.write(DEBUG, message, args)
}

// Info logs an info message
func (l *Logger) Info(message string, args ...interface{}) {
	l.write(INFO, message, args)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, args ...interface{}) {
	l.write(WARN, message, args)
}

// Error logs an error message
func (l *Logger) Error(message string, args ...interface{}) {
	l.write(ERROR, message, args)
}

// Fatal logs an error message and exits the program
func (l *Logger) Fatal(message string, args ...interface{}) {
	l.logger.Fatalln(l.formatMessage(ERROR, fmt.Sprintf(message, args...)))
}

// WithComponent creates a new logger with a different component name
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		logger:    l.logger,
		minLevel:  l.minLevel,
		component: component,
	}
}

// Level returns the minimum level this logger emits
func (l *Logger) Level() LogLevel {
	return l.minLevel
}

var (
	defaultOutput io.Writer = os.Stdout
	defaultLogger           = NewLogger("app", INFO)
)

// SetDefaultLogLevel sets the log level for the default logger
func SetDefaultLogLevel(level LogLevel) {
	defaultLogger.minLevel = level
}

// SetDefaultOutput redirects the default logger and every logger created
// afterwards with NewLogger. The console uses it to keep log lines off the
// terminal it draws on.
func SetDefaultOutput(w io.Writer) {
	defaultOutput = w
	defaultLogger.logger.SetOutput(w)
}

// Default returns the process-wide logger
func Default() *Logger {
	return defaultLogger
}

// Debug logs a debug message using the default logger
func Debug(message string, args ...interface{}) {
	defaultLogger.Debug(message, args...)
}

// Info logs an info message using the default logger
func Info(message string, args ...interface{}) {
	defaultLogger.Info(message, args...)
}

// Warn logs a warning message using the default logger
func Warn(message string, args ...interface{}) {
	defaultLogger.Warn(message, args...)
}

// Error logs an error message using the default logger
func Error(message string, args ...interface{}) {
	defaultLogger.Error(message, args...)
}

// Fatal logs an error message and exits using the default logger
func Fatal(message string, args ...interface{}) {
	defaultLogger.Fatal(message, args...)
}
