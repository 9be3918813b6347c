package reconcile

import (
	"sync"
)

// Accessors описывает, как store узнаёт идентичность записи и её флаг прочтения.
// MarkRead должен только выставлять флаг в true и сообщать, изменилось ли что-то.
type Accessors[T any] struct {
	ID       func(*T) int64
	IsRead   func(*T) bool
	MarkRead func(*T) bool
}

// Store хранит упорядоченный список долговременных записей без дубликатов.
// Записи только добавляются и помечаются прочитанными, удаления нет.
type Store[T any] struct {
	mu    sync.RWMutex
	acc   Accessors[T]
	items []T
	index map[int64]int
}

func NewStore[T any](acc Accessors[T]) *Store[T] {
	return &Store[T]{
		acc:   acc,
		items: make([]T, 0),
		index: make(map[int64]int),
	}
}

// Replace заменяет список результатом REST-загрузки.
// Уже прочитанные записи остаются прочитанными, а записи, которых нет в ответе,
// сохраняются в хвосте.
func (s *Store[T]) Replace(records []T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]T, 0, len(records)+len(s.items))
	index := make(map[int64]int, len(records)+len(s.items))

	for i := range records {
		record := records[i]
		id := s.acc.ID(&record)

		if _, ok := index[id]; ok {
			continue
		}

		if pos, ok := s.index[id]; ok && s.acc.IsRead(&s.items[pos]) {
			s.acc.MarkRead(&record)
		}

		index[id] = len(items)
		items = append(items, record)
	}

	for i := range s.items {
		id := s.acc.ID(&s.items[i])
		if _, ok := index[id]; ok {
			continue
		}

		index[id] = len(items)
		items = append(items, s.items[i])
	}

	s.items = items
	s.index = index
}

// Append добавляет запись в хвост, если записи с таким ID ещё нет.
func (s *Store[T]) Append(record T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.acc.ID(&record)
	if _, ok := s.index[id]; ok {
		return false
	}

	s.index[id] = len(s.items)
	s.items = append(s.items, record)

	return true
}

// MarkRead помечает прочитанными записи с указанными ID и возвращает число изменённых.
// Неизвестные ID игнорируются.
func (s *Store[T]) MarkRead(ids []int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0

	for _, id := range ids {
		pos, ok := s.index[id]
		if !ok {
			continue
		}

		if s.acc.MarkRead(&s.items[pos]) {
			changed++
		}
	}

	return changed
}

func (s *Store[T]) MarkAllRead() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0

	for i := range s.items {
		if s.acc.MarkRead(&s.items[i]) {
			changed++
		}
	}

	return changed
}

// Update применяет fn к записи с указанным ID. Флаг прочтения назад не откатывается.
func (s *Store[T]) Update(id int64, fn func(*T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return false
	}

	item := &s.items[pos]
	wasRead := s.acc.IsRead(item)

	fn(item)

	if wasRead {
		s.acc.MarkRead(item)
	}

	return true
}

func (s *Store[T]) Snapshot() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, len(s.items))
	copy(out, s.items)

	return out
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

func (s *Store[T]) Contains(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.index[id]

	return ok
}

func (s *Store[T]) CountUnread() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0

	for i := range s.items {
		if !s.acc.IsRead(&s.items[i]) {
			count++
		}
	}

	return count
}
