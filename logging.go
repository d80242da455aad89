package agentlens

import (
	"fmt"
	"log"
	"strings"
)

// Logger interface for structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// nopLogger discards all log output.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// stdLogger writes leveled key=value lines to a standard library logger.
type stdLogger struct {
	l *log.Logger
}

// NewStdLogger adapts a standard library logger to the Logger interface.
// Passing nil uses log.Default().
func NewStdLogger(l *log.Logger) Logger {
	if l == nil {
		l = log.Default()
	}
	return &stdLogger{l: l}
}

func (s *stdLogger) Debug(msg string, args ...any) { s.print("DEBUG", msg, args) }
func (s *stdLogger) Info(msg string, args ...any)  { s.print("INFO", msg, args) }
func (s *stdLogger) Warn(msg string, args ...any)  { s.print("WARN", msg, args) }
func (s *stdLogger) Error(msg string, args ...any) { s.print("ERROR", msg, args) }

func (s *stdLogger) print(level, msg string, args []any) {
	var b strings.Builder
	b.WriteString(level)
	b.WriteString(" ")
	b.WriteString(msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}
	s.l.Print(b.String())
}
