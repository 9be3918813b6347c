package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/central-university-dev/go-portal-realtime/internal/common/metrics"
)

// RefreshFunc перезагружает ленту через REST.
type RefreshFunc func(ctx context.Context) error

// Poller опрашивает REST на время, пока сокет недоступен.
// Start и Stop идемпотентны: повторный вызов ничего не меняет и возвращает false.
// После Close опрос больше не запускается.
type Poller struct {
	mu        sync.Mutex
	feed      string
	interval  time.Duration
	refresh   RefreshFunc
	logger    *slog.Logger
	scheduler *gocron.Scheduler
	cancel    context.CancelFunc
	closed    bool
}

func NewPoller(feed string, interval time.Duration, refresh RefreshFunc, logger *slog.Logger) *Poller {
	return &Poller{
		feed:     feed,
		interval: interval,
		refresh:  refresh,
		logger:   logger,
	}
}

func (p *Poller) Start() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.scheduler != nil {
		return false
	}

	// gocron v1 не перезапускается после Stop, поэтому планировщик каждый раз новый.
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	ctx, cancel := context.WithCancel(context.Background())

	_, err := scheduler.Every(p.interval).WaitForSchedule().Do(func() {
		p.run(ctx)
	})
	if err != nil {
		cancel()
		p.logger.Error("Ошибка при настройке опроса",
			"feed", p.feed,
			"error", err,
		)

		return false
	}

	scheduler.StartAsync()

	p.scheduler = scheduler
	p.cancel = cancel

	metrics.SetPollingActive(p.feed, true)
	p.logger.Info("Запуск опроса через REST",
		"feed", p.feed,
		"interval", p.interval.String(),
	)

	return true
}

func (p *Poller) Stop() bool {
	return p.stop(false)
}

// Close останавливает опрос насовсем. Вызывается при закрытии ленты.
func (p *Poller) Close() bool {
	return p.stop(true)
}

func (p *Poller) stop(terminal bool) bool {
	p.mu.Lock()
	if terminal {
		p.closed = true
	}

	scheduler, cancel := p.scheduler, p.cancel
	p.scheduler, p.cancel = nil, nil
	p.mu.Unlock()

	if scheduler == nil {
		return false
	}

	cancel()
	scheduler.Stop()

	metrics.SetPollingActive(p.feed, false)
	p.logger.Info("Остановка опроса через REST", "feed", p.feed)

	return true
}

func (p *Poller) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.scheduler != nil
}

func (p *Poller) run(ctx context.Context) {
	if err := p.refresh(ctx); err != nil {
		metrics.RecordPollingRun(p.feed, "error")

		if ctx.Err() == nil {
			p.logger.Warn("Ошибка при опросе через REST",
				"feed", p.feed,
				"error", err,
			)
		}

		return
	}

	metrics.RecordPollingRun(p.feed, "success")
}
