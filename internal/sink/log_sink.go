package sink

import (
	"context"
	"log/slog"

	"github.com/central-university-dev/go-portal-realtime/internal/events"
)

type LogSink struct {
	lang     string
	fallback string
	logger   *slog.Logger
}

func NewLogSink(lang, fallback string, logger *slog.Logger) *LogSink {
	return &LogSink{
		lang:     lang,
		fallback: fallback,
		logger:   logger,
	}
}

func (s *LogSink) Deliver(_ context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.NotificationReceived:
		s.logger.Info("Новое уведомление",
			"id", e.Notification.ID,
			"category", e.Notification.Category,
			"text", formatNotification(&e.Notification, s.lang, s.fallback),
		)
	case events.StatusChanged:
		s.logger.Info("Изменился счётчик непрочитанных",
			"feed", e.Feed,
			"unread", e.UnreadCount,
			"previous", e.Previous,
		)
	default:
		s.logger.Info("Событие", "event", event.EventName())
	}

	return nil
}
