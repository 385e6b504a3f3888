// Package logging is a thin leveled wrapper over logrus, in the shape the
// teacher repo's own (unvendored) logging package is called from
// txscript/engine.go: logging.CPrint(level, msg, logging.LogFormat{...}).
package logging

import "github.com/sirupsen/logrus"

// Level mirrors the small set of levels the teacher calls with
// (logging.TRACE, logging.DEBUG, logging.ERROR); WARN and INFO round out
// the set for the tracer's own needs (solver retries, report milestones).
type Level int

const (
	TRACE Level = iota
	DEBUG
	INFO
	WARN
	ERROR
)

// LogFormat is a structured field map, same role as the teacher's
// logging.LogFormat argument to CPrint.
type LogFormat map[string]interface{}

// Logger wraps a *logrus.Logger. The zero value is not usable; use New.
type Logger struct {
	l *logrus.Logger
}

// New builds a Logger backed by a fresh logrus.Logger at the given level.
func New(level Level) *Logger {
	l := logrus.New()
	l.SetLevel(toLogrusLevel(level))
	return &Logger{l: l}
}

// NewNop returns a Logger that discards everything below ERROR, for tests
// that don't want trace-level opcode stepping in their output.
func NewNop() *Logger {
	return New(ERROR)
}

func toLogrusLevel(lv Level) logrus.Level {
	switch lv {
	case TRACE:
		return logrus.TraceLevel
	case DEBUG:
		return logrus.DebugLevel
	case INFO:
		return logrus.InfoLevel
	case WARN:
		return logrus.WarnLevel
	default:
		return logrus.ErrorLevel
	}
}

// CPrint logs msg at the given level with the supplied structured fields,
// matching the teacher's call shape exactly.
func (g *Logger) CPrint(level Level, msg string, fields LogFormat) {
	entry := g.l.WithFields(logrus.Fields(fields))
	switch level {
	case TRACE:
		entry.Trace(msg)
	case DEBUG:
		entry.Debug(msg)
	case INFO:
		entry.Info(msg)
	case WARN:
		entry.Warn(msg)
	default:
		entry.Error(msg)
	}
}
