package realtime_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-portal-realtime/internal/auth"
	domainerrors "github.com/central-university-dev/go-portal-realtime/internal/domain/errors"
	"github.com/central-university-dev/go-portal-realtime/internal/domain/models"
	"github.com/central-university-dev/go-portal-realtime/internal/realtime"
	"github.com/central-university-dev/go-portal-realtime/internal/realtime/realtimetest"
	"github.com/central-university-dev/go-portal-realtime/internal/realtime/transport/transporttest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type connectionFixture struct {
	conn       *realtime.Connection
	dialer     *transporttest.Dialer
	clock      *realtimetest.Clock
	opened     atomic.Int32
	transports atomic.Int32
	frames     chan []byte
}

func newConnectionFixture(credentials auth.CredentialProvider) *connectionFixture {
	f := &connectionFixture{
		dialer: transporttest.NewDialer(),
		clock:  realtimetest.NewClock(),
		frames: make(chan []byte, 16),
	}

	f.conn = realtime.NewConnection(realtime.ConnectionConfig{
		Feed:        "test",
		SocketBase:  "https://portal.example.com/api",
		SocketPath:  "/ws/notifications/",
		Credentials: credentials,
		Dialer:      f.dialer,
		MinDelay:    time.Second,
		MaxDelay:    30 * time.Second,
		AfterFunc:   f.clock.AfterFunc,
		Logger:      testLogger(),
	}, realtime.ConnectionHandlers{
		OnOpen:      func() { f.opened.Add(1) },
		OnFrame:     func(data []byte) { f.frames <- data },
		OnTransport: func(error) { f.transports.Add(1) },
	})

	return f
}

func TestConnection_ConnectOpensSocket(t *testing.T) {
	// Arrange
	f := newConnectionFixture(auth.StaticProvider("secret"))

	// Act
	f.conn.Connect(context.Background())

	// Assert
	assert.True(t, f.conn.IsOpen())
	assert.Equal(t, int32(1), f.opened.Load())
	require.Len(t, f.dialer.URLs(), 1)
	assert.Equal(t, "wss://portal.example.com/api/ws/notifications/?token=secret", f.dialer.URLs()[0])
}

func TestConnection_ConnectIsNoOpWhenOpen(t *testing.T) {
	// Arrange
	f := newConnectionFixture(auth.StaticProvider("secret"))
	f.conn.Connect(context.Background())

	// Act
	f.conn.Connect(context.Background())

	// Assert
	assert.Equal(t, 1, f.dialer.DialCount())
}

func TestConnection_MissingCredentialSkipsConnect(t *testing.T) {
	// Arrange
	f := newConnectionFixture(auth.StaticProvider(""))

	// Act
	f.conn.Connect(context.Background())

	// Assert
	assert.Equal(t, 0, f.dialer.DialCount())
	assert.Equal(t, models.StateDisconnected, f.conn.State())
	assert.Equal(t, 0, f.clock.Count())
	assert.Equal(t, int32(0), f.transports.Load())
}

func TestConnection_FramesDelivered(t *testing.T) {
	// Arrange
	f := newConnectionFixture(auth.StaticProvider("secret"))
	f.conn.Connect(context.Background())

	// Act
	f.dialer.Last().DeliverRaw([]byte(`{"type":"unread_count","count":2}`))

	// Assert
	select {
	case data := <-f.frames:
		assert.JSONEq(t, `{"type":"unread_count","count":2}`, string(data))
	case <-time.After(time.Second):
		t.Fatal("Кадр не был доставлен")
	}
}

func TestConnection_NormalServerCloseDoesNotReconnect(t *testing.T) {
	// Arrange
	f := newConnectionFixture(auth.StaticProvider("secret"))
	f.conn.Connect(context.Background())

	// Act
	f.dialer.Last().Drop(models.CloseNormal)

	// Assert
	assert.Eventually(t, func() bool {
		return f.conn.State() == models.StateDisconnected
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, f.clock.Count(), "Закрытие кодом 1000 не должно создавать таймер переподключения")
	assert.False(t, f.conn.ReconnectPending())
}

func TestConnection_AbnormalCloseSchedulesReconnectAtFloor(t *testing.T) {
	// Arrange
	f := newConnectionFixture(auth.StaticProvider("secret"))
	f.conn.Connect(context.Background())

	// Act
	f.dialer.Last().Drop(models.CloseAbnormal)

	// Assert
	assert.Eventually(t, func() bool {
		return f.clock.Count() == 1
	}, time.Second, 5*time.Millisecond)
	assert.LessOrEqual(t, f.clock.Scheduled()[0], time.Second)
	assert.Equal(t, models.StateReconnectPending, f.conn.State())
	assert.Equal(t, int32(1), f.transports.Load())

	require.True(t, f.clock.FireLast())
	assert.True(t, f.conn.IsOpen())
	assert.Equal(t, int32(2), f.opened.Load())
}

func TestConnection_NonCloseReadErrorIsTransportFailure(t *testing.T) {
	// Arrange
	f := newConnectionFixture(auth.StaticProvider("secret"))
	f.conn.Connect(context.Background())

	// Act
	f.dialer.Last().Fail(errors.New("connection reset by peer"))

	// Assert
	assert.Eventually(t, func() bool {
		return f.transports.Load() == 1 && f.clock.Count() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestConnection_BackoffDoublesAndResetsOnOpen(t *testing.T) {
	// Arrange
	f := newConnectionFixture(auth.StaticProvider("secret"))
	f.dialer.FailNext(3)

	// Act
	f.conn.Connect(context.Background())
	f.clock.FireLast()
	f.clock.FireLast()
	f.clock.FireLast()

	require.True(t, f.conn.IsOpen())

	f.dialer.Last().Drop(4000)

	// Assert
	assert.Eventually(t, func() bool {
		return f.clock.Count() == 4
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, time.Second}, f.clock.Scheduled())
}

func TestConnection_BackoffIsCapped(t *testing.T) {
	// Arrange
	f := newConnectionFixture(auth.StaticProvider("secret"))
	f.dialer.FailNext(8)

	// Act
	f.conn.Connect(context.Background())
	for range 7 {
		f.clock.FireLast()
	}

	// Assert
	scheduled := f.clock.Scheduled()
	require.Len(t, scheduled, 8)
	assert.Equal(t, 30*time.Second, scheduled[len(scheduled)-1])
	assert.Equal(t, 1, f.clock.Pending())
}

func TestConnection_DialFailureCountsAsTransportError(t *testing.T) {
	// Arrange
	f := newConnectionFixture(auth.StaticProvider("secret"))
	f.dialer.FailNext(1)

	// Act
	f.conn.Connect(context.Background())

	// Assert
	assert.Equal(t, int32(1), f.transports.Load())
	assert.Equal(t, 1, f.clock.Count())
	assert.Equal(t, models.StateReconnectPending, f.conn.State())
}

func TestConnection_CloseIsIntentional(t *testing.T) {
	// Arrange
	f := newConnectionFixture(auth.StaticProvider("secret"))
	f.conn.Connect(context.Background())
	socket := f.dialer.Last()

	// Act
	err := f.conn.Close()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, models.CloseNormal, socket.CloseCode())
	assert.Equal(t, models.StateClosedIntentionally, f.conn.State())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, f.clock.Count())
	assert.Equal(t, int32(0), f.transports.Load())

	f.conn.Connect(context.Background())
	assert.Equal(t, 1, f.dialer.DialCount(), "После Close соединение не должно открываться")
}

func TestConnection_CloseCancelsPendingReconnect(t *testing.T) {
	// Arrange
	f := newConnectionFixture(auth.StaticProvider("secret"))
	f.dialer.FailNext(1)
	f.conn.Connect(context.Background())
	require.Equal(t, 1, f.clock.Pending())

	// Act
	require.NoError(t, f.conn.Close())

	// Assert
	assert.Equal(t, 0, f.clock.Pending())
	assert.False(t, f.clock.FireLast())
}

func TestConnection_SendRequiresOpenSocket(t *testing.T) {
	// Arrange
	f := newConnectionFixture(auth.StaticProvider("secret"))

	// Act
	err := f.conn.Send(models.MarkAllReadCommand{Type: models.FrameMarkAllRead})

	// Assert
	require.ErrorIs(t, err, &domainerrors.ErrNotConnected{})
}

func TestConnection_SendWritesFrame(t *testing.T) {
	// Arrange
	f := newConnectionFixture(auth.StaticProvider("secret"))
	f.conn.Connect(context.Background())

	// Act
	err := f.conn.Send(models.SendMessageCommand{Type: models.FrameSendMessage, Text: "привет"})

	// Assert
	require.NoError(t, err)
	written := f.dialer.Last().Written()
	require.Len(t, written, 1)
	assert.JSONEq(t, `{"type":"send_message","text":"привет"}`, string(written[0]))
}

func TestSocketURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		want string
	}{
		{name: "http", base: "http://localhost:8000", want: "ws://localhost:8000/ws/chat/42/?token=t"},
		{name: "https со слешем", base: "https://portal.example.com/", want: "wss://portal.example.com/ws/chat/42/?token=t"},
		{name: "ws", base: "ws://10.0.0.1:9000", want: "ws://10.0.0.1:9000/ws/chat/42/?token=t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := realtime.SocketURL(tt.base, "/ws/chat/42/", "t")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := realtime.SocketURL("ftp://example.com", "/ws/", "t")
	assert.Error(t, err)
}

func TestSocketBase(t *testing.T) {
	assert.Equal(t, "wss://ws.example.com", realtime.SocketBase("wss://ws.example.com", "https://api.example.com/api"))
	assert.Equal(t, "https://api.example.com", realtime.SocketBase("", "https://api.example.com/api"))
	assert.True(t, strings.HasPrefix(realtime.SocketBase("", "http://localhost:8000/api/"), "http://localhost:8000"))
}
