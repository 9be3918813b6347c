package outbound

import (
	"log/slog"
	"sync"
	"time"

	"github.com/central-university-dev/go-portal-realtime/internal/realtime/clock"
)

const DefaultTypingDebounce = 2 * time.Second

// TypingSender отправляет собеседнику кадр "печатает"/"перестал печатать".
type TypingSender func(isTyping bool) error

// TypingSignal подавляет дребезг исходящего признака набора текста.
// Первый Keystroke шлёт "start", тишина дольше debounce шлёт "stop".
type TypingSignal struct {
	mu         sync.Mutex
	debounce   time.Duration
	afterFunc  clock.AfterFunc
	send       TypingSender
	logger     *slog.Logger
	typing     bool
	timer      clock.Timer
	generation uint64
}

func NewTypingSignal(
	debounce time.Duration,
	afterFunc clock.AfterFunc,
	send TypingSender,
	logger *slog.Logger,
) *TypingSignal {
	if debounce <= 0 {
		debounce = DefaultTypingDebounce
	}

	return &TypingSignal{
		debounce:  debounce,
		afterFunc: clock.OrStd(afterFunc),
		send:      send,
		logger:    logger,
	}
}

func (s *TypingSignal) Keystroke() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.typing {
		s.typing = true
		s.emit(true)
	}

	if s.timer != nil {
		s.timer.Stop()
	}

	s.generation++
	generation := s.generation
	s.timer = s.afterFunc(s.debounce, func() { s.expire(generation) })
}

// Flush немедленно шлёт "stop", если признак набора выставлен. Таймер при этом сбрасывается.
func (s *TypingSignal) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if s.typing {
		s.typing = false
		s.emit(false)
	}
}

func (s *TypingSignal) IsTyping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.typing
}

func (s *TypingSignal) expire(generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation || !s.typing {
		return
	}

	s.timer = nil
	s.typing = false
	s.emit(false)
}

// emit вызывается под мьютексом, чтобы start и stop уходили в порядке выставления флага.
// Ошибка отправки не откатывает флаг: соединение восстановится само.
func (s *TypingSignal) emit(isTyping bool) {
	if err := s.send(isTyping); err != nil {
		s.logger.Debug("Не удалось отправить признак набора текста",
			"is_typing", isTyping,
			"error", err,
		)
	}
}
