// Package realtimetest подменяет таймеры переподключения и набора текста в тестах.
package realtimetest

import (
	"sync"
	"time"

	"github.com/central-university-dev/go-portal-realtime/internal/realtime/clock"
)

type Timer struct {
	clock   *Clock
	Delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *Timer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}

	t.stopped = true

	return true
}

// Clock записывает каждый запланированный таймер и запускает их только по команде.
type Clock struct {
	mu     sync.Mutex
	timers []*Timer
}

func NewClock() *Clock {
	return &Clock{}
}

func (c *Clock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	timer := &Timer{clock: c, Delay: d, fn: f}
	c.timers = append(c.timers, timer)

	return timer
}

// Scheduled возвращает задержки всех созданных таймеров по порядку.
func (c *Clock) Scheduled() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	delays := make([]time.Duration, 0, len(c.timers))
	for _, t := range c.timers {
		delays = append(delays, t.Delay)
	}

	return delays
}

func (c *Clock) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.timers)
}

// Pending возвращает число таймеров, которые не сработали и не отменены.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending := 0

	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			pending++
		}
	}

	return pending
}

// FireLast синхронно запускает последний таймер, если он ещё активен.
func (c *Clock) FireLast() bool {
	c.mu.Lock()
	last := len(c.timers) - 1
	c.mu.Unlock()

	return c.Fire(last)
}

// Fire синхронно запускает i-й созданный таймер, если он ещё активен.
func (c *Clock) Fire(i int) bool {
	c.mu.Lock()
	if i < 0 || i >= len(c.timers) {
		c.mu.Unlock()
		return false
	}

	timer := c.timers[i]
	if timer.stopped || timer.fired {
		c.mu.Unlock()
		return false
	}

	timer.fired = true
	c.mu.Unlock()

	timer.fn()

	return true
}
