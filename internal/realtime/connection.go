package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/central-university-dev/go-portal-realtime/internal/auth"
	"github.com/central-university-dev/go-portal-realtime/internal/common/metrics"
	"github.com/central-university-dev/go-portal-realtime/internal/domain/errors"
	"github.com/central-university-dev/go-portal-realtime/internal/domain/models"
	"github.com/central-university-dev/go-portal-realtime/internal/realtime/clock"
	"github.com/central-university-dev/go-portal-realtime/internal/realtime/transport"
)

type Timer = clock.Timer

// AfterFunc планирует f через d. В тестах подменяется, чтобы видеть созданные таймеры.
type AfterFunc = clock.AfterFunc

func StdAfterFunc(d time.Duration, f func()) Timer {
	return clock.Std(d, f)
}

// ConnectionHandlers задают реакции ленты на события сокета. Вызываются без удержания мьютекса.
type ConnectionHandlers struct {
	OnOpen      func()
	OnFrame     func(data []byte)
	OnTransport func(err error)
}

type ConnectionConfig struct {
	Feed        string
	SocketBase  string
	SocketPath  string
	Credentials auth.CredentialProvider
	Dialer      transport.Dialer
	MinDelay    time.Duration
	MaxDelay    time.Duration
	AfterFunc   AfterFunc
	Logger      *slog.Logger
}

// Connection следит за одним сокетом ленты: подключение, обнаружение обрыва,
// переподключение с экспоненциальной задержкой и намеренное закрытие.
type Connection struct {
	mu         sync.Mutex
	cfg        ConnectionConfig
	handlers   ConnectionHandlers
	logger     *slog.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	state      models.ConnectionState
	socket     transport.Socket
	backoff    retry.Backoff
	timer      Timer
	generation uint64
	closed     bool
}

func NewConnection(cfg ConnectionConfig, handlers ConnectionHandlers) *Connection {
	if cfg.AfterFunc == nil {
		cfg.AfterFunc = StdAfterFunc
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		cfg:      cfg,
		handlers: handlers,
		logger:   cfg.Logger.With("feed", cfg.Feed, "session", uuid.NewString()),
		ctx:      ctx,
		cancel:   cancel,
		state:    models.StateDisconnected,
		backoff:  newBackoff(cfg.MinDelay, cfg.MaxDelay),
	}
}

// Connect открывает сокет. Ничего не делает, если сокет уже открыт или открывается.
// Ошибки не возвращаются: без токена лента остаётся на REST, сбой подключения
// уходит в обычный путь переподключения.
func (c *Connection) Connect(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.state == models.StateOpen || c.state == models.StateConnecting {
		c.mu.Unlock()
		return
	}

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	c.generation++
	generation := c.generation
	c.state = models.StateConnecting
	c.mu.Unlock()

	token, err := c.cfg.Credentials.Token()
	if err != nil {
		c.logger.Warn("Подключение к сокету пропущено: нет действующего токена", "error", err)
		metrics.RecordSocketConnect(c.cfg.Feed, "skipped")

		c.mu.Lock()
		if c.generation == generation {
			c.state = models.StateDisconnected
		}
		c.mu.Unlock()

		return
	}

	url, err := SocketURL(c.cfg.SocketBase, c.cfg.SocketPath, token)
	if err != nil {
		c.logger.Error("Некорректный адрес сокета", "error", err)
		metrics.RecordSocketConnect(c.cfg.Feed, "skipped")

		c.mu.Lock()
		if c.generation == generation {
			c.state = models.StateDisconnected
		}
		c.mu.Unlock()

		return
	}

	socket, err := c.cfg.Dialer.Dial(ctx, url)
	if err != nil {
		metrics.RecordSocketConnect(c.cfg.Feed, "error")
		c.logger.Warn("Не удалось подключиться к сокету", "error", err)
		c.handleLoss(generation, models.CloseAbnormal, err)

		return
	}

	c.mu.Lock()
	if c.closed || c.generation != generation {
		c.mu.Unlock()
		_ = socket.Close(models.CloseNormal, "")

		return
	}

	c.socket = socket
	c.state = models.StateOpen
	c.backoff = newBackoff(c.cfg.MinDelay, c.cfg.MaxDelay)
	c.mu.Unlock()

	metrics.RecordSocketConnect(c.cfg.Feed, "success")
	c.logger.Info("Сокет подключен")

	if c.handlers.OnOpen != nil {
		c.handlers.OnOpen()
	}

	go c.readLoop(generation, socket)
}

func (c *Connection) readLoop(generation uint64, socket transport.Socket) {
	for {
		data, err := socket.ReadMessage()
		if err != nil {
			c.handleLoss(generation, transport.CloseCode(err), err)
			return
		}

		if !c.current(generation) {
			return
		}

		if c.handlers.OnFrame != nil {
			c.handlers.OnFrame(data)
		}
	}
}

func (c *Connection) current(generation uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return !c.closed && c.generation == generation
}

// handleLoss обрабатывает закрытие или ошибку сокета, который не закрывали намеренно.
// Код 1000 не переподключается, любой другой планирует ровно один таймер.
func (c *Connection) handleLoss(generation uint64, code int, cause error) {
	c.mu.Lock()
	if c.closed || c.generation != generation {
		c.mu.Unlock()
		return
	}

	c.socket = nil
	c.state = models.StateDisconnected

	var delay time.Duration

	scheduled := false

	if code != models.CloseNormal && c.timer == nil {
		delay, _ = c.backoff.Next()
		c.state = models.StateReconnectPending
		c.timer = c.cfg.AfterFunc(delay, c.reconnect)
		scheduled = true
	}
	c.mu.Unlock()

	if code == models.CloseNormal {
		c.logger.Info("Сервер закрыл сокет штатно, переподключения не будет")
	} else {
		c.logger.Warn("Соединение с сокетом потеряно",
			"code", code,
			"error", cause,
		)
	}

	if scheduled {
		metrics.RecordReconnectScheduled(c.cfg.Feed)
		c.logger.Info("Переподключение запланировано", "delay", delay.String())
	}

	if c.handlers.OnTransport != nil {
		c.handlers.OnTransport(cause)
	}
}

func (c *Connection) reconnect() {
	c.mu.Lock()
	c.timer = nil
	c.mu.Unlock()

	c.Connect(c.ctx)
}

// Send пишет кадр в открытый сокет. Подтверждения доставки нет.
func (c *Connection) Send(frame any) error {
	c.mu.Lock()
	socket := c.socket
	open := c.state == models.StateOpen
	c.mu.Unlock()

	if !open || socket == nil {
		return &errors.ErrNotConnected{Feed: c.cfg.Feed}
	}

	if err := socket.WriteJSON(frame); err != nil {
		c.logger.Warn("Ошибка при отправке кадра в сокет", "error", err)
		return err
	}

	return nil
}

// Close закрывает сокет кодом 1000 и отменяет отложенное переподключение.
// После Close соединение больше не открывается.
func (c *Connection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}

	c.closed = true
	c.generation++
	c.state = models.StateClosedIntentionally

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	socket := c.socket
	c.socket = nil
	c.mu.Unlock()

	c.cancel()

	if socket == nil {
		return nil
	}

	c.logger.Info("Закрытие сокета")

	return socket.Close(models.CloseNormal, "client teardown")
}

func (c *Connection) State() models.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

func (c *Connection) IsOpen() bool {
	return c.State() == models.StateOpen
}

func (c *Connection) ReconnectPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.timer != nil
}
