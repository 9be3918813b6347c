package sink

import (
	"io"
	"log/slog"
	"strings"

	"go.uber.org/multierr"

	"github.com/central-university-dev/go-portal-realtime/internal/config"
	"github.com/central-university-dev/go-portal-realtime/internal/domain/errors"
)

type Factory struct {
	config *config.Config
	logger *slog.Logger
}

func NewFactory(cfg *config.Config, logger *slog.Logger) *Factory {
	return &Factory{
		config: cfg,
		logger: logger,
	}
}

// CreateSink собирает получателя по SINK_TRANSPORT, оборачивая его в FallbackSink,
// если включён резервный транспорт.
func (f *Factory) CreateSink() (Sink, error) {
	primary, err := f.create(f.config.SinkTransport)
	if err != nil {
		return nil, err
	}

	if !f.config.FallbackEnabled {
		return primary, nil
	}

	secondary, err := f.create(f.config.FallbackTransport)
	if err != nil {
		_ = closeAll(primary)
		return nil, err
	}

	f.logger.Info("Включён резервный получатель событий",
		"primary", f.config.SinkTransport,
		"secondary", f.config.FallbackTransport,
	)

	return NewFallbackSink(primary, secondary, f.logger), nil
}

func (f *Factory) create(transport string) (Sink, error) {
	sinkType := config.SinkType(strings.ToUpper(strings.TrimSpace(transport)))

	f.logger.Info("Создание получателя событий", "type", sinkType)

	switch sinkType {
	case config.LogSink:
		return NewLogSink(f.config.UILanguage, f.config.FallbackLanguage, f.logger), nil
	case config.KafkaSink:
		return NewKafkaSink(
			ParseBrokers(f.config.KafkaBrokers),
			f.config.TopicNotifications,
			f.config.TopicDeadLetterQueue,
			f.config.UILanguage,
			f.config.FallbackLanguage,
			f.logger,
		), nil
	case config.TelegramSink:
		return NewTelegramSink(
			f.config.TelegramBotToken,
			f.config.TelegramChatID,
			f.config.UILanguage,
			f.config.FallbackLanguage,
			f.logger,
		)
	default:
		return nil, &errors.ErrUnknownSinkType{SinkType: transport}
	}
}

// Close закрывает получателя, если он держит соединения.
func Close(s Sink) error {
	return closeAll(s)
}

func closeAll(sinks ...Sink) error {
	var err error

	for _, s := range sinks {
		if closer, ok := s.(io.Closer); ok {
			err = multierr.Append(err, closer.Close())
		}
	}

	return err
}
