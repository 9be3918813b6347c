// Package transporttest содержит сокет и дайлер в памяти для тестов лент.
package transporttest

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/central-university-dev/go-portal-realtime/internal/realtime/transport"
)

type readResult struct {
	data []byte
	err  error
}

type Socket struct {
	in   chan readResult
	done chan struct{}
	once sync.Once

	mu        sync.Mutex
	written   []json.RawMessage
	closeCode int
	writeErr  error
}

func NewSocket() *Socket {
	return &Socket{
		in:   make(chan readResult, 64),
		done: make(chan struct{}),
	}
}

// Deliver имитирует входящий кадр от сервера.
func (s *Socket) Deliver(frame any) {
	data, err := json.Marshal(frame)
	if err != nil {
		panic(err)
	}

	s.in <- readResult{data: data}
}

func (s *Socket) DeliverRaw(data []byte) {
	s.in <- readResult{data: data}
}

// Drop имитирует закрытие со стороны сервера с указанным кодом.
func (s *Socket) Drop(code int) {
	s.in <- readResult{err: &websocket.CloseError{Code: code}}
}

// Fail имитирует сетевую ошибку без кадра закрытия.
func (s *Socket) Fail(err error) {
	s.in <- readResult{err: err}
}

func (s *Socket) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writeErr = err
}

func (s *Socket) ReadMessage() ([]byte, error) {
	select {
	case r := <-s.in:
		return r.data, r.err
	case <-s.done:
		return nil, net.ErrClosed
	}
}

func (s *Socket) WriteJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeErr != nil {
		return s.writeErr
	}

	if s.closeCode != 0 {
		return net.ErrClosed
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	s.written = append(s.written, data)

	return nil
}

func (s *Socket) Close(code int, _ string) error {
	s.mu.Lock()
	s.closeCode = code
	s.mu.Unlock()

	s.once.Do(func() { close(s.done) })

	return nil
}

// Written возвращает отправленные клиентом кадры.
func (s *Socket) Written() []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]json.RawMessage, len(s.written))
	copy(out, s.written)

	return out
}

// WrittenTypes возвращает поле type каждого отправленного кадра.
func (s *Socket) WrittenTypes() []string {
	frames := s.Written()
	types := make([]string, 0, len(frames))

	for _, frame := range frames {
		var envelope struct {
			Type string `json:"type"`
		}

		_ = json.Unmarshal(frame, &envelope)
		types = append(types, envelope.Type)
	}

	return types
}

func (s *Socket) CloseCode() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closeCode
}

var ErrDialRefused = errors.New("connection refused")

type Dialer struct {
	mu       sync.Mutex
	sockets  []*Socket
	urls     []string
	failures []error
}

func NewDialer() *Dialer {
	return &Dialer{}
}

// FailNext заставляет следующие n вызовов Dial вернуть ошибку.
func (d *Dialer) FailNext(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for range n {
		d.failures = append(d.failures, ErrDialRefused)
	}
}

func (d *Dialer) Dial(_ context.Context, url string) (transport.Socket, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.urls = append(d.urls, url)

	if len(d.failures) > 0 {
		err := d.failures[0]
		d.failures = d.failures[1:]

		return nil, err
	}

	socket := NewSocket()
	d.sockets = append(d.sockets, socket)

	return socket, nil
}

func (d *Dialer) DialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.urls)
}

func (d *Dialer) URLs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]string, len(d.urls))
	copy(out, d.urls)

	return out
}

// Last возвращает последний успешно открытый сокет.
func (d *Dialer) Last() *Socket {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.sockets) == 0 {
		return nil
	}

	return d.sockets[len(d.sockets)-1]
}

func (d *Dialer) Opened() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.sockets)
}
