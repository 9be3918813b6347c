package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/central-university-dev/go-portal-realtime/internal/common/metrics"
	"github.com/central-university-dev/go-portal-realtime/internal/domain/errors"
	"github.com/central-university-dev/go-portal-realtime/internal/domain/models"
)

// liveFeed описывает то, что диспетчеру нужно от ленты переписки.
type liveFeed interface {
	Name() string
	Connected() bool
	Send(frame any) error
	Append(record models.Message) bool
}

type typingFlusher interface {
	Flush()
}

// Dispatcher выбирает канал отправки: сокет, когда он открыт, иначе REST.
// Вложения всегда уходят через REST multipart.
type Dispatcher struct {
	applicationID int64
	api           MessageAPI
	feed          liveFeed
	typing        typingFlusher
	logger        *slog.Logger
}

func NewDispatcher(applicationID int64, api MessageAPI, feed liveFeed, typing typingFlusher, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		applicationID: applicationID,
		api:           api,
		feed:          feed,
		typing:        typing,
		logger:        logger,
	}
}

// Send отправляет сообщение. При отправке через сокет подтверждения нет и
// возвращается nil: запись придёт обратно кадром new_message.
func (d *Dispatcher) Send(ctx context.Context, text string, upload *models.Upload) (*models.Message, error) {
	d.typing.Flush()

	if upload != nil {
		return d.upload(ctx, text, upload)
	}

	if strings.TrimSpace(text) == "" {
		return nil, &errors.ErrInvalidValue{FieldName: "text", Value: text}
	}

	if d.feed.Connected() {
		err := d.feed.Send(models.SendMessageCommand{Type: models.FrameSendMessage, Text: text})
		if err == nil {
			metrics.RecordOutboundSend(d.feed.Name(), "socket", "success")
			return nil, nil
		}

		metrics.RecordOutboundSend(d.feed.Name(), "socket", "error")
		d.logger.Warn("Не удалось отправить сообщение через сокет, отправляем через REST", "error", err)
	}

	message, err := d.api.PostMessage(ctx, d.applicationID, text)
	if err != nil {
		metrics.RecordOutboundSend(d.feed.Name(), "rest", "error")
		return nil, err
	}

	metrics.RecordOutboundSend(d.feed.Name(), "rest", "success")
	d.feed.Append(*message)

	return message, nil
}

func (d *Dispatcher) upload(ctx context.Context, text string, upload *models.Upload) (*models.Message, error) {
	message, err := d.api.UploadMessage(ctx, d.applicationID, text, upload)
	if err != nil {
		metrics.RecordOutboundSend(d.feed.Name(), "rest_upload", "error")
		return nil, err
	}

	metrics.RecordOutboundSend(d.feed.Name(), "rest_upload", "success")

	// При открытом сокете запись придёт эхом new_message.
	if !d.feed.Connected() {
		d.feed.Append(*message)
	}

	return message, nil
}

// MarkRead помечает переписку прочитанной: кадром через сокет или POST без тела.
func (d *Dispatcher) MarkRead(ctx context.Context) error {
	if d.feed.Connected() {
		err := d.feed.Send(models.MarkReadCommand{Type: models.FrameMarkRead})
		if err == nil {
			metrics.RecordOutboundSend(d.feed.Name(), "socket", "success")
			return nil
		}

		metrics.RecordOutboundSend(d.feed.Name(), "socket", "error")
		d.logger.Warn("Не удалось отметить прочтение через сокет, отправляем через REST", "error", err)
	}

	if err := d.api.MarkRead(ctx, d.applicationID); err != nil {
		metrics.RecordOutboundSend(d.feed.Name(), "rest", "error")
		return err
	}

	metrics.RecordOutboundSend(d.feed.Name(), "rest", "success")

	return nil
}
