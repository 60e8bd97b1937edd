package notification

import (
	"github.com/raykavin/candleline/pkg/core"
	"github.com/raykavin/candleline/pkg/logger"
)

// Log writes notifications to a logger
type Log struct {
	log logger.Logger
}

func NewLog(log logger.Logger) Log {
	return Log{log: log.WithField("component", "notification")}
}

func (l Log) Notify(text string) { l.log.Info(text) }
func (l Log) OnError(err error)  { l.log.WithError(err).Error("notification") }

// Multi fans a notification out to several notifiers
type Multi []core.Notifier

func (m Multi) Notify(text string) {
	for _, notifier := range m {
		notifier.Notify(text)
	}
}

func (m Multi) OnError(err error) {
	for _, notifier := range m {
		notifier.OnError(err)
	}
}
