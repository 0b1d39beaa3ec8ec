package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus logger tagged with the component name.
type Logger struct {
	*logrus.Logger
	component string
}

// New creates a JSON logger writing to stdout at the given level.
func New(component, level string) *Logger {
	return NewWithOutput(component, level, os.Stdout)
}

func NewWithOutput(component, level string, out io.Writer) *Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	log.SetOutput(out)
	log.SetLevel(ParseLevel(level))

	return &Logger{Logger: log, component: component}
}

// Discard returns a logger that drops everything, for tests.
func Discard() *Logger {
	return NewWithOutput("test", "error", io.Discard)
}

func ParseLevel(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Component returns an entry carrying the component field plus any extra ones.
func (l *Logger) Component(fields logrus.Fields) *logrus.Entry {
	entry := l.WithField("component", l.component)
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	return entry
}

// Named derives a logger for a sub-component sharing output and level.
func (l *Logger) Named(component string) *Logger {
	return &Logger{Logger: l.Logger, component: component}
}
