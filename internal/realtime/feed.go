package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/time/rate"

	"github.com/central-university-dev/go-portal-realtime/internal/auth"
	"github.com/central-university-dev/go-portal-realtime/internal/common/metrics"
	"github.com/central-university-dev/go-portal-realtime/internal/config"
	"github.com/central-university-dev/go-portal-realtime/internal/domain/errors"
	"github.com/central-university-dev/go-portal-realtime/internal/domain/models"
	"github.com/central-university-dev/go-portal-realtime/internal/realtime/reconcile"
	"github.com/central-university-dev/go-portal-realtime/internal/realtime/transport"
	"github.com/central-university-dev/go-portal-realtime/internal/scheduler"
)

// RecordCache хранит последний успешно загруженный список ленты.
type RecordCache[T any] interface {
	Get(ctx context.Context, key string) ([]T, error)
	Set(ctx context.Context, key string, records []T) error
}

// FrameHandler обрабатывает сырой кадр известного типа.
type FrameHandler func(data []byte) error

// FeedSpec задаёт конкретную ленту: путь сокета, загрузку через REST,
// идентичность записей и обработчики кадров.
type FeedSpec[T any] struct {
	Name         string
	SocketPath   string
	Fetch        func(ctx context.Context) ([]T, error)
	Accessors    reconcile.Accessors[T]
	Frames       map[models.FrameType]FrameHandler
	PollInterval time.Duration
	Cache        RecordCache[T]
	CacheKey     string

	// OnRefresh вызывается после каждой успешной загрузки через REST.
	OnRefresh func()
	// OnClose вызывается при закрытии ленты до закрытия сокета.
	OnClose func() error
}

// Options собирает общие для всех лент зависимости.
type Options struct {
	SocketBase        string
	Credentials       auth.CredentialProvider
	Dialer            transport.Dialer
	ReconnectMinDelay time.Duration
	ReconnectMaxDelay time.Duration
	ResumeInterval    time.Duration
	AfterFunc         AfterFunc
	Logger            *slog.Logger
}

func OptionsFromConfig(cfg *config.Config, credentials auth.CredentialProvider, logger *slog.Logger) Options {
	return Options{
		SocketBase:        SocketBase(cfg.WSBaseURL, cfg.APIBaseURL),
		Credentials:       credentials,
		Dialer:            transport.NewDialer(cfg.HTTPRequestTimeout),
		ReconnectMinDelay: cfg.ReconnectMinDelay,
		ReconnectMaxDelay: cfg.ReconnectMaxDelay,
		ResumeInterval:    cfg.ResumeRefreshInterval,
		AfterFunc:         StdAfterFunc,
		Logger:            logger,
	}
}

// Feed ведёт живую ленту с единым списком записей без дубликатов.
// Сокет служит основным каналом, опрос через REST запасным.
type Feed[T any] struct {
	spec    FeedSpec[T]
	store   *reconcile.Store[T]
	conn    *Connection
	poller  *scheduler.Poller
	limiter *rate.Limiter
	logger  *slog.Logger

	mu      sync.RWMutex
	loading bool
	err     error
	closed  bool
}

func NewFeed[T any](spec FeedSpec[T], opts Options) *Feed[T] {
	logger := opts.Logger.With("feed", spec.Name)

	f := &Feed[T]{
		spec:    spec,
		store:   reconcile.NewStore(spec.Accessors),
		limiter: rate.NewLimiter(rate.Every(opts.ResumeInterval), 1),
		logger:  logger,
	}

	f.poller = scheduler.NewPoller(spec.Name, spec.PollInterval, f.Refresh, opts.Logger)
	f.conn = NewConnection(ConnectionConfig{
		Feed:        spec.Name,
		SocketBase:  opts.SocketBase,
		SocketPath:  spec.SocketPath,
		Credentials: opts.Credentials,
		Dialer:      opts.Dialer,
		MinDelay:    opts.ReconnectMinDelay,
		MaxDelay:    opts.ReconnectMaxDelay,
		AfterFunc:   opts.AfterFunc,
		Logger:      opts.Logger,
	}, ConnectionHandlers{
		OnOpen:      f.onOpen,
		OnFrame:     f.dispatch,
		OnTransport: f.onTransport,
	})

	return f
}

// Start подключает сокет и загружает список через REST параллельно.
func (f *Feed[T]) Start(ctx context.Context) {
	f.mu.Lock()
	f.loading = true
	f.mu.Unlock()

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		f.conn.Connect(ctx)
	}()

	_ = f.Refresh(ctx)

	f.mu.Lock()
	f.loading = false
	f.mu.Unlock()

	wg.Wait()
}

// Refresh перезагружает список через REST.
// Ошибка становится видимой через Err только пока список пуст.
func (f *Feed[T]) Refresh(ctx context.Context) error {
	records, err := f.spec.Fetch(ctx)
	if err != nil {
		return f.handleFetchError(ctx, err)
	}

	f.store.Replace(records)
	f.setErr(nil)

	if f.spec.Cache != nil {
		if cacheErr := f.spec.Cache.Set(ctx, f.spec.CacheKey, f.store.Snapshot()); cacheErr != nil {
			f.logger.Warn("Не удалось сохранить ленту в кэш", "error", cacheErr)
		}
	}

	if f.spec.OnRefresh != nil {
		f.spec.OnRefresh()
	}

	return nil
}

func (f *Feed[T]) handleFetchError(ctx context.Context, err error) error {
	if f.store.Len() > 0 {
		f.logger.Warn("Ошибка при обновлении ленты, показываем прежние данные", "error", err)
		return err
	}

	if f.spec.Cache != nil {
		cached, cacheErr := f.spec.Cache.Get(ctx, f.spec.CacheKey)
		if cacheErr == nil && len(cached) > 0 {
			f.logger.Warn("REST недоступен, лента восстановлена из кэша",
				"error", err,
				"count", len(cached),
			)

			f.store.Replace(cached)
			f.setErr(nil)

			if f.spec.OnRefresh != nil {
				f.spec.OnRefresh()
			}

			return err
		}
	}

	f.logger.Error("Ошибка при загрузке ленты", "error", err)
	f.setErr(err)

	return err
}

// Resume вызывается при возвращении приложения на передний план.
// Если сокет не открыт, сразу переподключается и один раз обновляет список.
func (f *Feed[T]) Resume(ctx context.Context) {
	if f.isClosed() || f.conn.IsOpen() {
		return
	}

	f.conn.Connect(ctx)

	if !f.limiter.Allow() {
		f.logger.Debug("Обновление при возобновлении пропущено: слишком часто")
		return
	}

	_ = f.Refresh(ctx)
}

// Close закрывает сокет кодом 1000, отменяет переподключение и опрос.
func (f *Feed[T]) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}

	f.closed = true
	f.mu.Unlock()

	var err error

	if f.spec.OnClose != nil {
		err = multierr.Append(err, f.spec.OnClose())
	}

	err = multierr.Append(err, f.conn.Close())
	f.poller.Close()

	return err
}

// Append добавляет запись, пришедшую не из REST-загрузки. Сбрасывает ошибку загрузки.
func (f *Feed[T]) Append(record T) bool {
	added := f.store.Append(record)
	if added {
		f.setErr(nil)
	}

	return added
}

func (f *Feed[T]) Send(frame any) error {
	return f.conn.Send(frame)
}

func (f *Feed[T]) Store() *reconcile.Store[T] {
	return f.store
}

func (f *Feed[T]) Records() []T {
	return f.store.Snapshot()
}

func (f *Feed[T]) Loading() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.loading
}

func (f *Feed[T]) Err() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.err
}

func (f *Feed[T]) Connected() bool {
	return f.conn.IsOpen()
}

func (f *Feed[T]) State() models.ConnectionState {
	return f.conn.State()
}

func (f *Feed[T]) PollingActive() bool {
	return f.poller.Active()
}

func (f *Feed[T]) ReconnectPending() bool {
	return f.conn.ReconnectPending()
}

func (f *Feed[T]) Name() string {
	return f.spec.Name
}

func (f *Feed[T]) onOpen() {
	f.poller.Stop()
}

// onTransport включает опрос. После Close поллер сам откажется запускаться.
func (f *Feed[T]) onTransport(_ error) {
	f.poller.Start()
}

// dispatch разбирает тип кадра и передаёт его обработчику.
// Некорректные кадры логируются и отбрасываются, соединение не рвётся.
func (f *Feed[T]) dispatch(data []byte) {
	var envelope models.FrameEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		metrics.RecordFrame(f.spec.Name, "unknown", "error")
		f.logger.Error("Некорректный кадр из сокета", "error", err)

		return
	}

	handler, ok := f.spec.Frames[envelope.Type]
	if !ok {
		metrics.RecordFrame(f.spec.Name, "unknown", "ignored")
		f.logger.Debug("Кадр неизвестного типа пропущен", "type", envelope.Type)

		return
	}

	if err := handler(data); err != nil {
		metrics.RecordFrame(f.spec.Name, string(envelope.Type), "error")
		f.logger.Error("Ошибка при обработке кадра",
			"type", envelope.Type,
			"error", err,
		)

		return
	}

	metrics.RecordFrame(f.spec.Name, string(envelope.Type), "ok")
}

func (f *Feed[T]) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.err = err
}

func (f *Feed[T]) isClosed() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.closed
}

// DecodeFrame разбирает полезную нагрузку кадра.
func DecodeFrame[P any](data []byte, frameType models.FrameType) (P, error) {
	var payload P
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, &errors.ErrFrameDecode{Type: string(frameType), Cause: err}
	}

	return payload, nil
}
