package model

import "time"

// LogLevel is the level of a console log entry.
type LogLevel string

const (
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
	LogLevelSuccess LogLevel = "success"
)

// LogEntry is a single timestamped message of the log console.
type LogEntry struct {
	Sequence  uint64
	Level     LogLevel
	Message   string
	Timestamp time.Time
}
