package sink

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/central-university-dev/go-portal-realtime/internal/events"
)

// TelegramSender покрывает часть tgbotapi.BotAPI, нужную для отправки.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSink пересылает новые уведомления в чат Telegram.
// Изменения счётчика не пересылаются.
type TelegramSink struct {
	bot      TelegramSender
	chatID   int64
	lang     string
	fallback string
	logger   *slog.Logger
}

func NewTelegramSink(token string, chatID int64, lang, fallback string, logger *slog.Logger) (*TelegramSink, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании Telegram клиента: %w", err)
	}

	return NewTelegramSinkWithSender(bot, chatID, lang, fallback, logger), nil
}

func NewTelegramSinkWithSender(bot TelegramSender, chatID int64, lang, fallback string, logger *slog.Logger) *TelegramSink {
	return &TelegramSink{
		bot:      bot,
		chatID:   chatID,
		lang:     lang,
		fallback: fallback,
		logger:   logger,
	}
}

func (s *TelegramSink) Deliver(_ context.Context, event events.Event) error {
	received, ok := event.(events.NotificationReceived)
	if !ok {
		return nil
	}

	msg := tgbotapi.NewMessage(s.chatID, formatNotification(&received.Notification, s.lang, s.fallback))

	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("ошибка при отправке уведомления в Telegram: %w", err)
	}

	s.logger.Debug("Уведомление отправлено в Telegram",
		"id", received.Notification.ID,
		"chatID", s.chatID,
	)

	return nil
}
