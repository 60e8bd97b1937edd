package logrus

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/raykavin/candleline/pkg/logger"
)

// LogrusAdapter exposes a logrus entry through logger.Logger
type LogrusAdapter struct {
	*logrus.Entry
}

// New builds a logrus backed logger writing text or JSON entries to out
func New(level string, jsonFormat bool, out io.Writer) (*LogrusAdapter, error) {
	l := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l.SetLevel(lvl)

	if out != nil {
		l.SetOutput(out)
	}

	if jsonFormat {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return &LogrusAdapter{logrus.NewEntry(l)}, nil
}

func (a *LogrusAdapter) WithField(key string, value any) logger.Logger {
	return &LogrusAdapter{a.Entry.WithField(key, value)}
}

func (a *LogrusAdapter) WithFields(fields map[string]any) logger.Logger {
	return &LogrusAdapter{a.Entry.WithFields(fields)}
}

func (a *LogrusAdapter) WithError(err error) logger.Logger {
	return &LogrusAdapter{a.Entry.WithError(err)}
}

func (a *LogrusAdapter) SetLevel(level logger.Level) {
	a.Entry.Logger.SetLevel(toLogrusLevel(level))
}

func (a *LogrusAdapter) GetLevel() logger.Level {
	switch a.Entry.Logger.GetLevel() {
	case logrus.TraceLevel:
		return logger.TraceLevel
	case logrus.DebugLevel:
		return logger.DebugLevel
	case logrus.InfoLevel:
		return logger.InfoLevel
	case logrus.WarnLevel:
		return logger.WarnLevel
	case logrus.ErrorLevel:
		return logger.ErrorLevel
	case logrus.FatalLevel:
		return logger.FatalLevel
	case logrus.PanicLevel:
		return logger.PanicLevel
	}
	return logger.NoLevel
}

// toLogrusLevel maps levels logrus lacks (disabled, no level) to panic, its quietest
func toLogrusLevel(level logger.Level) logrus.Level {
	switch level {
	case logger.TraceLevel:
		return logrus.TraceLevel
	case logger.DebugLevel:
		return logrus.DebugLevel
	case logger.InfoLevel:
		return logrus.InfoLevel
	case logger.WarnLevel:
		return logrus.WarnLevel
	case logger.ErrorLevel:
		return logrus.ErrorLevel
	case logger.FatalLevel:
		return logrus.FatalLevel
	}
	return logrus.PanicLevel
}
