package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/multierr"

	"github.com/central-university-dev/go-portal-realtime/internal/domain/models"
	"github.com/central-university-dev/go-portal-realtime/internal/events"
)

type KafkaSink struct {
	producer    *kafka.Writer
	dlqProducer *kafka.Writer
	lang        string
	fallback    string
	logger      *slog.Logger
	topic       string
	dlqTopic    string
}

// EventMessage описывает формат сообщения в топике уведомлений.
type EventMessage struct {
	Event        string               `json:"event"`
	Feed         string               `json:"feed,omitempty"`
	UnreadCount  int                  `json:"unreadCount"`
	Previous     int                  `json:"previous"`
	Notification *models.Notification `json:"notification,omitempty"`
	Text         string               `json:"text"`
	At           time.Time            `json:"at"`
}

func ParseBrokers(brokers string) []string {
	parts := strings.Split(brokers, ",")
	out := make([]string, 0, len(parts))

	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}

func newWriter(brokers []string, topic string, logger *slog.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Logger:       kafka.LoggerFunc(logger.Debug),
		ErrorLogger:  kafka.LoggerFunc(logger.Error),
	}
}

func NewKafkaSink(brokers []string, topic, dlqTopic, lang, fallback string, logger *slog.Logger) *KafkaSink {
	return &KafkaSink{
		producer:    newWriter(brokers, topic, logger),
		dlqProducer: newWriter(brokers, dlqTopic, logger),
		lang:        lang,
		fallback:    fallback,
		logger:      logger,
		topic:       topic,
		dlqTopic:    dlqTopic,
	}
}

func (s *KafkaSink) Deliver(ctx context.Context, event events.Event) error {
	message, key := s.toMessage(event)

	value, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации сообщения: %w", err)
	}

	s.logger.Debug("Отправка события в Kafka",
		"event", message.Event,
		"topic", s.topic,
	)

	err = s.producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  message.At,
	})
	if err != nil {
		s.logger.Error("Ошибка при отправке сообщения в Kafka",
			"error", err,
		)

		if dlqErr := s.SendToDLQ(ctx, value, err.Error()); dlqErr != nil {
			err = multierr.Append(err, dlqErr)
		}

		return fmt.Errorf("ошибка при отправке сообщения в Kafka: %w", err)
	}

	return nil
}

func (s *KafkaSink) SendToDLQ(ctx context.Context, message []byte, errMsg string) error {
	s.logger.Info("Отправка сообщения в DLQ",
		"error", errMsg,
		"topic", s.dlqTopic,
	)

	err := s.dlqProducer.WriteMessages(ctx, kafka.Message{
		Key:   []byte("error"),
		Value: message,
		Headers: []kafka.Header{
			{Key: "error", Value: []byte(errMsg)},
			{Key: "timestamp", Value: []byte(time.Now().Format(time.RFC3339))},
		},
		Time: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("ошибка при отправке сообщения в DLQ: %w", err)
	}

	return nil
}

func (s *KafkaSink) Close() error {
	return multierr.Combine(s.producer.Close(), s.dlqProducer.Close())
}

func (s *KafkaSink) toMessage(event events.Event) (EventMessage, string) {
	message := EventMessage{
		Event: event.EventName(),
		Text:  formatEvent(event, s.lang, s.fallback),
		At:    time.Now(),
	}

	switch e := event.(type) {
	case events.NotificationReceived:
		n := e.Notification
		message.Notification = &n

		if !n.CreatedAt.IsZero() {
			message.At = n.CreatedAt
		}

		return message, strconv.FormatInt(n.ID, 10)
	case events.StatusChanged:
		message.Feed = e.Feed
		message.UnreadCount = e.UnreadCount
		message.Previous = e.Previous

		if !e.At.IsZero() {
			message.At = e.At
		}

		return message, e.Feed
	default:
		return message, message.Event
	}
}
