package notifications

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/central-university-dev/go-portal-realtime/internal/common/metrics"
	"github.com/central-university-dev/go-portal-realtime/internal/config"
	"github.com/central-university-dev/go-portal-realtime/internal/domain/models"
	"github.com/central-university-dev/go-portal-realtime/internal/events"
	"github.com/central-university-dev/go-portal-realtime/internal/realtime"
	"github.com/central-university-dev/go-portal-realtime/internal/realtime/reconcile"
)

const FeedName = "notifications"

type NotificationAPI interface {
	ListNotifications(ctx context.Context) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID int64) error
	MarkAllRead(ctx context.Context) error
}

// Localized содержит уведомление с заголовком и текстом на выбранном языке.
type Localized struct {
	ID        int64
	Category  models.NotificationCategory
	IsRead    bool
	CreatedAt time.Time
	Title     string
	Body      string
}

// Center ведёт глобальную ленту уведомлений пользователя со счётчиком непрочитанных.
type Center struct {
	api      NotificationAPI
	feed     *realtime.Feed[models.Notification]
	bus      *events.Bus
	fallback string
	logger   *slog.Logger

	mu     sync.Mutex
	unread int
}

func NewCenter(
	api NotificationAPI,
	bus *events.Bus,
	cache realtime.RecordCache[models.Notification],
	cfg *config.Config,
	opts realtime.Options,
) *Center {
	c := &Center{
		api:      api,
		bus:      bus,
		fallback: cfg.FallbackLanguage,
		logger:   opts.Logger.With("feed", FeedName),
	}

	c.feed = realtime.NewFeed(realtime.FeedSpec[models.Notification]{
		Name:       FeedName,
		SocketPath: "/ws/notifications/",
		Fetch:      api.ListNotifications,
		Accessors: reconcile.Accessors[models.Notification]{
			ID:       models.NotificationID,
			IsRead:   models.IsNotificationRead,
			MarkRead: models.MarkNotificationRead,
		},
		Frames: map[models.FrameType]realtime.FrameHandler{
			models.FrameNewNotification: c.onNewNotification,
			models.FrameUnreadCount:     c.onUnreadCount,
			models.FrameAllMarkedRead:   c.onAllMarkedRead,
		},
		PollInterval: cfg.NotificationPollInterval,
		Cache:        cache,
		CacheKey:     FeedName,
		OnRefresh:    c.recount,
	}, opts)

	return c
}

func (c *Center) Start(ctx context.Context) {
	c.feed.Start(ctx)
}

func (c *Center) Refresh(ctx context.Context) error {
	return c.feed.Refresh(ctx)
}

func (c *Center) Resume(ctx context.Context) {
	c.feed.Resume(ctx)
}

func (c *Center) Close() error {
	return c.feed.Close()
}

// MarkRead сразу помечает уведомление прочитанным локально и сообщает серверу
// через сокет или REST.
func (c *Center) MarkRead(ctx context.Context, notificationID int64) error {
	c.update(func(current int) int {
		if c.feed.Store().MarkRead([]int64{notificationID}) > 0 {
			return current - 1
		}

		return current
	})

	if c.feed.Connected() {
		err := c.feed.Send(models.MarkReadCommand{Type: models.FrameMarkRead, NotificationID: notificationID})
		if err == nil {
			metrics.RecordOutboundSend(FeedName, "socket", "success")
			return nil
		}

		metrics.RecordOutboundSend(FeedName, "socket", "error")
		c.logger.Warn("Не удалось отметить уведомление через сокет, отправляем через REST", "error", err)
	}

	if err := c.api.MarkRead(ctx, notificationID); err != nil {
		metrics.RecordOutboundSend(FeedName, "rest", "error")
		return err
	}

	metrics.RecordOutboundSend(FeedName, "rest", "success")

	return nil
}

func (c *Center) MarkAllRead(ctx context.Context) error {
	c.clearUnread()

	if c.feed.Connected() {
		err := c.feed.Send(models.MarkAllReadCommand{Type: models.FrameMarkAllRead})
		if err == nil {
			metrics.RecordOutboundSend(FeedName, "socket", "success")
			return nil
		}

		metrics.RecordOutboundSend(FeedName, "socket", "error")
		c.logger.Warn("Не удалось отметить все уведомления через сокет, отправляем через REST", "error", err)
	}

	if err := c.api.MarkAllRead(ctx); err != nil {
		metrics.RecordOutboundSend(FeedName, "rest", "error")
		return err
	}

	metrics.RecordOutboundSend(FeedName, "rest", "success")

	return nil
}

func (c *Center) Notifications() []models.Notification {
	return c.feed.Records()
}

// Localized возвращает уведомления на языке lang с запасным языком из конфигурации.
func (c *Center) Localized(lang string) []Localized {
	records := c.feed.Records()
	out := make([]Localized, 0, len(records))

	for i := range records {
		n := &records[i]
		translation := n.Localize(lang, c.fallback)

		out = append(out, Localized{
			ID:        n.ID,
			Category:  n.Category,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
			Title:     translation.Title,
			Body:      translation.Body,
		})
	}

	return out
}

func (c *Center) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.unread
}

func (c *Center) Loading() bool {
	return c.feed.Loading()
}

func (c *Center) Err() error {
	return c.feed.Err()
}

func (c *Center) Connected() bool {
	return c.feed.Connected()
}

func (c *Center) State() models.ConnectionState {
	return c.feed.State()
}

func (c *Center) PollingActive() bool {
	return c.feed.PollingActive()
}

func (c *Center) onNewNotification(data []byte) error {
	frame, err := realtime.DecodeFrame[models.NewNotificationFrame](data, models.FrameNewNotification)
	if err != nil {
		return err
	}

	var added bool

	c.update(func(current int) int {
		added = c.feed.Append(frame.Notification)
		if added && !frame.Notification.IsRead {
			return current + 1
		}

		return current
	})

	if added {
		c.bus.Publish(events.NotificationReceived{Notification: frame.Notification})
	}

	return nil
}

func (c *Center) onUnreadCount(data []byte) error {
	frame, err := realtime.DecodeFrame[models.UnreadCountFrame](data, models.FrameUnreadCount)
	if err != nil {
		return err
	}

	c.setUnread(frame.Count)

	return nil
}

func (c *Center) onAllMarkedRead(_ []byte) error {
	c.clearUnread()

	return nil
}

func (c *Center) clearUnread() {
	c.update(func(int) int {
		c.feed.Store().MarkAllRead()
		return 0
	})
}

// recount пересчитывает счётчик по списку после загрузки через REST.
func (c *Center) recount() {
	c.update(func(int) int { return c.feed.Store().CountUnread() })
}

func (c *Center) setUnread(count int) {
	c.update(func(int) int { return count })
}

// update меняет счётчик и публикует StatusChanged только если значение изменилось.
// next вызывается под мьютексом счётчика, поэтому изменение списка внутри next
// и пересчёт после загрузки не перемешиваются.
func (c *Center) update(next func(current int) int) {
	c.mu.Lock()
	previous := c.unread

	count := next(previous)
	if count < 0 {
		count = 0
	}

	c.unread = count
	c.mu.Unlock()

	if count == previous {
		return
	}

	c.bus.Publish(events.StatusChanged{
		Feed:        FeedName,
		UnreadCount: count,
		Previous:    previous,
		At:          time.Now(),
	})
}
