// Package log provides a named, colored, leveled logger.
package log

import (
	"errors"
	"fmt"
	"io"
	stdlog "log"
)

// Color constants for logging
const (
	ColorRed     = "\033[31m"
	ColorGreen   = "\033[32m"
	ColorYellow  = "\033[33m"
	ColorBlue    = "\033[34m"
	ColorMagenta = "\033[35m"
	ColorCyan    = "\033[36m"
	ColorReset   = "\033[0m"
)

// Logger writes lines of the form "[NAME] [LEVEL] message".
type Logger struct {
	name  string
	color string
	out   *stdlog.Logger
}

// New creates a logger that tags every line with name, printed in color.
func New(name, color string, w io.Writer) (*Logger, error) {
	if name == "" {
		return nil, errors.New("logger name is required")
	}
	if w == nil {
		return nil, errors.New("logger writer is required")
	}

	return &Logger{
		name:  name,
		color: color,
		out:   stdlog.New(w, "", stdlog.LstdFlags),
	}, nil
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.print(ColorGreen, "INFO", msg)
}

// Warning logs a recoverable problem.
func (l *Logger) Warning(msg string) {
	l.print(ColorYellow, "WARNING", msg)
}

// Error logs a failure.
func (l *Logger) Error(msg string) {
	l.print(ColorRed, "ERROR", msg)
}

func (l *Logger) print(levelColor, level, msg string) {
	l.out.Print(fmt.Sprintf("%s[%s]%s %s[%s]%s %s", l.color, l.name, ColorReset, levelColor, level, ColorReset, msg))
}
