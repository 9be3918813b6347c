package rest

import (
	"context"
	"log/slog"

	"github.com/central-university-dev/go-portal-realtime/internal/auth"
	"github.com/central-university-dev/go-portal-realtime/internal/config"
	"github.com/central-university-dev/go-portal-realtime/internal/domain/models"
)

type NotificationClient struct {
	baseClient
}

func NewNotificationClient(cfg *config.Config, credentials auth.CredentialProvider, logger *slog.Logger) *NotificationClient {
	return &NotificationClient{
		baseClient: newBaseClient(cfg, credentials, logger, "portal_notifications"),
	}
}

func (c *NotificationClient) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	req, err := c.request(ctx, "/notifications/")
	if err != nil {
		return nil, err
	}

	resp, err := req.Get(c.url("/notifications/"))
	if err != nil || !resp.IsSuccess() {
		return nil, fetchFailed("уведомлений", resp, err)
	}

	return decodeList[models.Notification](resp.Body())
}

func (c *NotificationClient) MarkRead(ctx context.Context, notificationID int64) error {
	req, err := c.request(ctx, "/notifications/{id}/mark-read/")
	if err != nil {
		return err
	}

	resp, err := req.Post(c.url("/notifications/%d/mark-read/", notificationID))
	if err != nil || !resp.IsSuccess() {
		return sendFailed(resp, err)
	}

	return nil
}

func (c *NotificationClient) MarkAllRead(ctx context.Context) error {
	req, err := c.request(ctx, "/notifications/mark-all-read/")
	if err != nil {
		return err
	}

	resp, err := req.Post(c.url("/notifications/mark-all-read/"))
	if err != nil || !resp.IsSuccess() {
		return sendFailed(resp, err)
	}

	return nil
}
