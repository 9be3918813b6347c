package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/central-university-dev/go-portal-realtime/internal/auth"
	"github.com/central-university-dev/go-portal-realtime/internal/config"
	"github.com/central-university-dev/go-portal-realtime/internal/domain/models"
)

type ChatClient struct {
	baseClient
}

func NewChatClient(cfg *config.Config, credentials auth.CredentialProvider, logger *slog.Logger) *ChatClient {
	return &ChatClient{
		baseClient: newBaseClient(cfg, credentials, logger, "portal_chat"),
	}
}

func (c *ChatClient) ListMessages(ctx context.Context, applicationID int64) ([]models.Message, error) {
	req, err := c.request(ctx, "/applications/{id}/messages/")
	if err != nil {
		return nil, err
	}

	resp, err := req.Get(c.url("/applications/%d/messages/", applicationID))
	if err != nil || !resp.IsSuccess() {
		return nil, fetchFailed("истории сообщений", resp, err)
	}

	return decodeList[models.Message](resp.Body())
}

func (c *ChatClient) PostMessage(ctx context.Context, applicationID int64, text string) (*models.Message, error) {
	req, err := c.request(ctx, "/applications/{id}/messages/")
	if err != nil {
		return nil, err
	}

	resp, err := req.
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"text": text}).
		Post(c.url("/applications/%d/messages/", applicationID))
	if err != nil || !resp.IsSuccess() {
		return nil, sendFailed(resp, err)
	}

	return decodeMessage(resp.Body())
}

func (c *ChatClient) UploadMessage(ctx context.Context, applicationID int64, text string, upload *models.Upload) (*models.Message, error) {
	req, err := c.request(ctx, "/applications/{id}/messages/")
	if err != nil {
		return nil, err
	}

	if text != "" {
		req.SetFormData(map[string]string{"text": text})
	}

	resp, err := req.
		SetMultipartField("file", upload.Name, upload.ContentType, upload.Content).
		Post(c.url("/applications/%d/messages/", applicationID))
	if err != nil || !resp.IsSuccess() {
		return nil, sendFailed(resp, err)
	}

	return decodeMessage(resp.Body())
}

func (c *ChatClient) ThreadStatus(ctx context.Context, applicationID int64) (*models.ThreadStatus, error) {
	req, err := c.request(ctx, "/applications/{id}/chat-status/")
	if err != nil {
		return nil, err
	}

	var status models.ThreadStatus

	resp, err := req.
		SetResult(&status).
		Get(c.url("/applications/%d/chat-status/", applicationID))
	if err != nil || !resp.IsSuccess() {
		return nil, fetchFailed("статуса переписки", resp, err)
	}

	return &status, nil
}

func (c *ChatClient) MarkRead(ctx context.Context, applicationID int64) error {
	req, err := c.request(ctx, "/applications/{id}/messages/mark-read/")
	if err != nil {
		return err
	}

	resp, err := req.Post(c.url("/applications/%d/messages/mark-read/", applicationID))
	if err != nil || !resp.IsSuccess() {
		return sendFailed(resp, err)
	}

	return nil
}

func decodeMessage(body []byte) (*models.Message, error) {
	var message models.Message
	if err := json.Unmarshal(body, &message); err != nil {
		return nil, fmt.Errorf("ошибка при разборе сообщения: %w", err)
	}

	return &message, nil
}
