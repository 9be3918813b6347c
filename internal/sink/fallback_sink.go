package sink

import (
	"context"
	"log/slog"

	"github.com/central-university-dev/go-portal-realtime/internal/events"
)

type FallbackSink struct {
	primary   Sink
	secondary Sink
	logger    *slog.Logger
}

func NewFallbackSink(primary, secondary Sink, logger *slog.Logger) *FallbackSink {
	return &FallbackSink{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

func (s *FallbackSink) Deliver(ctx context.Context, event events.Event) error {
	err := s.primary.Deliver(ctx, event)
	if err == nil {
		return nil
	}

	s.logger.Warn("Основной получатель недоступен, переключаемся на резервный",
		"primaryError", err,
		"event", event.EventName(),
	)

	if fallbackErr := s.secondary.Deliver(ctx, event); fallbackErr != nil {
		return err
	}

	s.logger.Info("Событие доставлено через резервного получателя",
		"event", event.EventName(),
	)

	return nil
}

func (s *FallbackSink) Close() error {
	return closeAll(s.primary, s.secondary)
}
