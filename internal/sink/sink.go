package sink

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/central-university-dev/go-portal-realtime/internal/common/metrics"
	"github.com/central-university-dev/go-portal-realtime/internal/events"
)

// Sink получает события лент и пересылает их во внешнюю систему.
type Sink interface {
	Deliver(ctx context.Context, event events.Event) error
}

const (
	defaultRelayBuffer  = 64
	defaultRelayTimeout = 10 * time.Second
)

// Relay отвязывает доставку от горутины, публикующей событие:
// обработчики шины вызываются из цикла чтения сокета и не должны ждать сеть.
type Relay struct {
	sink    Sink
	name    string
	queue   chan events.Event
	timeout time.Duration
	logger  *slog.Logger

	done chan struct{}
	once sync.Once
}

func NewRelay(sink Sink, name string, buffer int, timeout time.Duration, logger *slog.Logger) *Relay {
	if buffer <= 0 {
		buffer = defaultRelayBuffer
	}

	if timeout <= 0 {
		timeout = defaultRelayTimeout
	}

	return &Relay{
		sink:    sink,
		name:    name,
		queue:   make(chan events.Event, buffer),
		timeout: timeout,
		logger:  logger.With("sink", name),
		done:    make(chan struct{}),
	}
}

// Handle ставит событие в очередь. При переполненной очереди событие отбрасывается.
func (r *Relay) Handle(event events.Event) {
	select {
	case r.queue <- event:
	default:
		metrics.RecordSinkDelivery(r.name, event.EventName(), "dropped")
		r.logger.Warn("Очередь пересылки переполнена, событие отброшено", "event", event.EventName())
	}
}

// Run доставляет события до отмены ctx, затем дописывает то, что уже в очереди.
func (r *Relay) Run(ctx context.Context) {
	defer r.once.Do(func() { close(r.done) })

	for {
		select {
		case <-ctx.Done():
			r.drain()
			return
		case event := <-r.queue:
			r.deliver(ctx, event)
		}
	}
}

// Done закрывается после выхода из Run.
func (r *Relay) Done() <-chan struct{} {
	return r.done
}

func (r *Relay) drain() {
	for {
		select {
		case event := <-r.queue:
			r.deliver(context.Background(), event)
		default:
			return
		}
	}
}

func (r *Relay) deliver(ctx context.Context, event events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	if err := r.sink.Deliver(ctx, event); err != nil {
		metrics.RecordSinkDelivery(r.name, event.EventName(), "error")
		r.logger.Error("Ошибка при пересылке события",
			"event", event.EventName(),
			"error", err,
		)

		return
	}

	metrics.RecordSinkDelivery(r.name, event.EventName(), "success")
}
