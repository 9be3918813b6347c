package ephemeral

import (
	"slices"
	"sync"
	"time"

	"github.com/central-university-dev/go-portal-realtime/internal/realtime/clock"
)

const DefaultTypingExpiry = 3 * time.Second

type typingEntry struct {
	timer      clock.Timer
	generation uint64
}

// TypingTracker хранит набор собеседников, которые сейчас печатают.
// У каждого отправителя свой таймер истечения, который перезапускается на каждом "start".
type TypingTracker struct {
	mu         sync.Mutex
	expiry     time.Duration
	afterFunc  clock.AfterFunc
	active     map[int64]*typingEntry
	generation uint64
}

// NewTypingTracker создаёт трекер. Пустой afterFunc означает обычные таймеры time.AfterFunc.
func NewTypingTracker(expiry time.Duration, afterFunc clock.AfterFunc) *TypingTracker {
	if expiry <= 0 {
		expiry = DefaultTypingExpiry
	}

	return &TypingTracker{
		expiry:    expiry,
		afterFunc: clock.OrStd(afterFunc),
		active:    make(map[int64]*typingEntry),
	}
}

func (t *TypingTracker) Start(sender int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, ok := t.active[sender]; ok {
		entry.timer.Stop()
	}

	t.generation++
	generation := t.generation

	t.active[sender] = &typingEntry{
		timer:      t.afterFunc(t.expiry, func() { t.expire(sender, generation) }),
		generation: generation,
	}
}

func (t *TypingTracker) Stop(sender int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, ok := t.active[sender]; ok {
		entry.timer.Stop()
		delete(t.active, sender)
	}
}

// expire срабатывает по таймеру. Устаревший таймер не трогает перезапущенную запись.
func (t *TypingTracker) expire(sender int64, generation uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, ok := t.active[sender]; ok && entry.generation == generation {
		delete(t.active, sender)
	}
}

func (t *TypingTracker) Active() []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	senders := make([]int64, 0, len(t.active))
	for sender := range t.active {
		senders = append(senders, sender)
	}

	slices.Sort(senders)

	return senders
}

func (t *TypingTracker) IsAnyoneTyping() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.active) > 0
}

// Clear останавливает все таймеры. Вызывается при закрытии переписки.
func (t *TypingTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for sender, entry := range t.active {
		entry.timer.Stop()
		delete(t.active, sender)
	}
}
