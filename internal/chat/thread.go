package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/central-university-dev/go-portal-realtime/internal/config"
	"github.com/central-university-dev/go-portal-realtime/internal/domain/models"
	"github.com/central-university-dev/go-portal-realtime/internal/realtime"
	"github.com/central-university-dev/go-portal-realtime/internal/realtime/ephemeral"
	"github.com/central-university-dev/go-portal-realtime/internal/realtime/outbound"
	"github.com/central-university-dev/go-portal-realtime/internal/realtime/reconcile"
)

type MessageAPI interface {
	ListMessages(ctx context.Context, applicationID int64) ([]models.Message, error)
	PostMessage(ctx context.Context, applicationID int64, text string) (*models.Message, error)
	UploadMessage(ctx context.Context, applicationID int64, text string, upload *models.Upload) (*models.Message, error)
	ThreadStatus(ctx context.Context, applicationID int64) (*models.ThreadStatus, error)
	MarkRead(ctx context.Context, applicationID int64) error
}

// Thread ведёт живую переписку по одной заявке.
type Thread struct {
	applicationID int64
	api           MessageAPI
	feed          *realtime.Feed[models.Message]
	typing        *ephemeral.TypingTracker
	presence      *ephemeral.PresenceTracker
	signal        *outbound.TypingSignal
	dispatcher    *Dispatcher
	logger        *slog.Logger

	mu          sync.RWMutex
	status      *models.ThreadStatus
	serverError string
}

const FeedName = "chat"

func NewThread(
	applicationID int64,
	api MessageAPI,
	cache realtime.RecordCache[models.Message],
	cfg *config.Config,
	opts realtime.Options,
) *Thread {
	logger := opts.Logger.With("application_id", applicationID)
	opts.Logger = logger

	t := &Thread{
		applicationID: applicationID,
		api:           api,
		typing:        ephemeral.NewTypingTracker(cfg.TypingExpiry, opts.AfterFunc),
		presence:      ephemeral.NewPresenceTracker(),
		logger:        logger,
	}

	t.feed = realtime.NewFeed(realtime.FeedSpec[models.Message]{
		Name:       FeedName,
		SocketPath: fmt.Sprintf("/ws/chat/%d/", applicationID),
		Fetch: func(ctx context.Context) ([]models.Message, error) {
			return api.ListMessages(ctx, applicationID)
		},
		Accessors: reconcile.Accessors[models.Message]{
			ID:       models.MessageID,
			IsRead:   models.IsMessageRead,
			MarkRead: models.MarkMessageRead,
		},
		Frames: map[models.FrameType]realtime.FrameHandler{
			models.FrameNewMessage:     t.onNewMessage,
			models.FrameTyping:         t.onTyping,
			models.FrameMessagesRead:   t.onMessagesRead,
			models.FramePresenceUpdate: t.onPresence,
			models.FrameError:          t.onServerError,
		},
		PollInterval: cfg.ChatPollInterval,
		Cache:        cache,
		CacheKey:     fmt.Sprintf("chat:%d", applicationID),
		OnClose:      t.onClose,
	}, opts)

	t.signal = outbound.NewTypingSignal(cfg.TypingDebounce, opts.AfterFunc, func(isTyping bool) error {
		return t.feed.Send(models.TypingCommand{Type: models.FrameTyping, IsTyping: isTyping})
	}, logger)

	t.dispatcher = NewDispatcher(applicationID, api, t.feed, t.signal, logger)

	return t
}

// Start загружает историю и статус переписки и подключает сокет.
func (t *Thread) Start(ctx context.Context) {
	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		t.loadStatus(ctx)
	}()

	t.feed.Start(ctx)
	wg.Wait()
}

func (t *Thread) loadStatus(ctx context.Context) {
	status, err := t.api.ThreadStatus(ctx, t.applicationID)
	if err != nil {
		t.logger.Warn("Не удалось получить статус переписки", "error", err)
		return
	}

	t.mu.Lock()
	t.status = status
	t.mu.Unlock()
}

func (t *Thread) Refresh(ctx context.Context) error {
	return t.feed.Refresh(ctx)
}

func (t *Thread) Resume(ctx context.Context) {
	t.feed.Resume(ctx)
}

func (t *Thread) Close() error {
	return t.feed.Close()
}

// onClose снимает признак набора и гасит таймеры до закрытия сокета.
func (t *Thread) onClose() error {
	t.signal.Flush()
	t.typing.Clear()

	return nil
}

func (t *Thread) Send(ctx context.Context, text string, upload *models.Upload) (*models.Message, error) {
	return t.dispatcher.Send(ctx, text, upload)
}

func (t *Thread) MarkRead(ctx context.Context) error {
	return t.dispatcher.MarkRead(ctx)
}

// Keystroke вызывается на каждое нажатие в поле ввода.
func (t *Thread) Keystroke() {
	t.signal.Keystroke()
}

func (t *Thread) Messages() []models.Message {
	return t.feed.Records()
}

func (t *Thread) Loading() bool {
	return t.feed.Loading()
}

func (t *Thread) Err() error {
	return t.feed.Err()
}

func (t *Thread) Connected() bool {
	return t.feed.Connected()
}

func (t *Thread) State() models.ConnectionState {
	return t.feed.State()
}

func (t *Thread) PollingActive() bool {
	return t.feed.PollingActive()
}

func (t *Thread) ReconnectPending() bool {
	return t.feed.ReconnectPending()
}

func (t *Thread) Status() *models.ThreadStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.status == nil {
		return nil
	}

	status := *t.status

	return &status
}

func (t *Thread) TypingUsers() []int64 {
	return t.typing.Active()
}

func (t *Thread) IsSomeoneTyping() bool {
	return t.typing.IsAnyoneTyping()
}

func (t *Thread) Presence() models.Presence {
	return t.presence.Get()
}

// LastServerError возвращает текст последнего кадра error от сервера.
func (t *Thread) LastServerError() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.serverError
}

func (t *Thread) onNewMessage(data []byte) error {
	frame, err := realtime.DecodeFrame[models.NewMessageFrame](data, models.FrameNewMessage)
	if err != nil {
		return err
	}

	t.feed.Append(frame.Message)

	if frame.Message.SenderID != 0 {
		t.typing.Stop(frame.Message.SenderID)
	}

	return nil
}

func (t *Thread) onTyping(data []byte) error {
	frame, err := realtime.DecodeFrame[models.TypingFrame](data, models.FrameTyping)
	if err != nil {
		return err
	}

	if frame.IsTyping {
		t.typing.Start(frame.UserID)
	} else {
		t.typing.Stop(frame.UserID)
	}

	return nil
}

func (t *Thread) onMessagesRead(data []byte) error {
	frame, err := realtime.DecodeFrame[models.MessagesReadFrame](data, models.FrameMessagesRead)
	if err != nil {
		return err
	}

	t.feed.Store().MarkRead(frame.MessageIDs)

	return nil
}

func (t *Thread) onPresence(data []byte) error {
	frame, err := realtime.DecodeFrame[models.PresenceUpdateFrame](data, models.FramePresenceUpdate)
	if err != nil {
		return err
	}

	t.presence.Set(models.Presence{Online: frame.IsOnline, LastSeen: frame.LastSeen})

	return nil
}

func (t *Thread) onServerError(data []byte) error {
	frame, err := realtime.DecodeFrame[models.ErrorFrame](data, models.FrameError)
	if err != nil {
		return err
	}

	t.logger.Warn("Сервер сообщил об ошибке в переписке", "message", frame.Message)

	t.mu.Lock()
	t.serverError = frame.Message
	t.mu.Unlock()

	return nil
}
