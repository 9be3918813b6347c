package events

import (
	"sync"
	"time"

	"github.com/central-university-dev/go-portal-realtime/internal/domain/models"
)

type Event interface {
	EventName() string
}

// StatusChanged публикуется ровно один раз на каждое изменение счётчика непрочитанных.
type StatusChanged struct {
	Feed        string
	UnreadCount int
	Previous    int
	At          time.Time
}

func (StatusChanged) EventName() string {
	return "status_changed"
}

// NotificationReceived публикуется для каждого нового уведомления из сокета.
type NotificationReceived struct {
	Notification models.Notification
}

func (NotificationReceived) EventName() string {
	return "notification_received"
}

type Handler func(Event)

// Bus доставляет события синхронно в пределах процесса.
// Обработчики вызываются в горутине публикующего и не должны блокироваться надолго.
type Bus struct {
	mu       sync.RWMutex
	handlers map[uint64]Handler
	next     uint64
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[uint64]Handler),
	}
}

// Subscribe регистрирует обработчик и возвращает функцию отписки.
func (b *Bus) Subscribe(handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.handlers[id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		delete(b.handlers, id)
	}
}

func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers))

	for _, handler := range b.handlers {
		handlers = append(handlers, handler)
	}
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}
