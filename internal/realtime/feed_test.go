package realtime_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-portal-realtime/internal/auth"
	"github.com/central-university-dev/go-portal-realtime/internal/domain/models"
	"github.com/central-university-dev/go-portal-realtime/internal/realtime"
	"github.com/central-university-dev/go-portal-realtime/internal/realtime/realtimetest"
	"github.com/central-university-dev/go-portal-realtime/internal/realtime/reconcile"
	"github.com/central-university-dev/go-portal-realtime/internal/realtime/transport/transporttest"
)

var errBackendDown = errors.New("backend down")

type fakeFetcher struct {
	mu      sync.Mutex
	records []models.Message
	err     error
	calls   atomic.Int32
}

func (f *fakeFetcher) set(records []models.Message, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.records, f.err = records, err
}

func (f *fakeFetcher) fetch(_ context.Context) ([]models.Message, error) {
	f.calls.Add(1)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	out := make([]models.Message, len(f.records))
	copy(out, f.records)

	return out, nil
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]models.Message
}

func (c *memoryCache) Get(_ context.Context, key string) ([]models.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.data[key], nil
}

func (c *memoryCache) Set(_ context.Context, key string, records []models.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = records

	return nil
}

type feedFixture struct {
	feed    *realtime.Feed[models.Message]
	fetcher *fakeFetcher
	dialer  *transporttest.Dialer
	clock   *realtimetest.Clock
	closed  atomic.Int32
}

func newFeedFixture(cache realtime.RecordCache[models.Message]) *feedFixture {
	f := &feedFixture{
		fetcher: &fakeFetcher{},
		dialer:  transporttest.NewDialer(),
		clock:   realtimetest.NewClock(),
	}

	spec := realtime.FeedSpec[models.Message]{
		Name:       "feed_test",
		SocketPath: "/ws/chat/1/",
		Fetch:      f.fetcher.fetch,
		Accessors: reconcile.Accessors[models.Message]{
			ID:       models.MessageID,
			IsRead:   models.IsMessageRead,
			MarkRead: models.MarkMessageRead,
		},
		PollInterval: time.Minute,
		Cache:        cache,
		CacheKey:     "feed_test",
		OnClose: func() error {
			f.closed.Add(1)
			return nil
		},
	}

	spec.Frames = map[models.FrameType]realtime.FrameHandler{
		models.FrameNewMessage: func(data []byte) error {
			frame, err := realtime.DecodeFrame[models.NewMessageFrame](data, models.FrameNewMessage)
			if err != nil {
				return err
			}

			f.feed.Append(frame.Message)

			return nil
		},
	}

	f.feed = realtime.NewFeed(spec, realtime.Options{
		SocketBase:        "http://localhost:8000",
		Credentials:       auth.StaticProvider("secret"),
		Dialer:            f.dialer,
		ReconnectMinDelay: time.Second,
		ReconnectMaxDelay: 30 * time.Second,
		ResumeInterval:    time.Minute,
		AfterFunc:         f.clock.AfterFunc,
		Logger:            testLogger(),
	})

	return f
}

func TestFeed_StartLoadsAndConnects(t *testing.T) {
	// Arrange
	f := newFeedFixture(nil)
	f.fetcher.set([]models.Message{{ID: 1}, {ID: 2}}, nil)

	// Act
	f.feed.Start(context.Background())
	defer f.feed.Close()

	// Assert
	assert.False(t, f.feed.Loading())
	assert.NoError(t, f.feed.Err())
	assert.Len(t, f.feed.Records(), 2)
	assert.True(t, f.feed.Connected())
	assert.False(t, f.feed.PollingActive())
}

func TestFeed_InitialFailureSurfacesOnlyWhenEmpty(t *testing.T) {
	// Arrange
	f := newFeedFixture(nil)
	f.fetcher.set(nil, errBackendDown)

	// Act
	f.feed.Start(context.Background())
	defer f.feed.Close()

	// Assert
	require.ErrorIs(t, f.feed.Err(), errBackendDown)

	f.dialer.Last().Deliver(map[string]any{
		"type":    "new_message",
		"message": map[string]any{"id": 5, "text": "hi"},
	})

	assert.Eventually(t, func() bool {
		return f.feed.Err() == nil && len(f.feed.Records()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestFeed_RefreshFailureAfterDataIsNotSurfaced(t *testing.T) {
	// Arrange
	f := newFeedFixture(nil)
	f.fetcher.set([]models.Message{{ID: 1}}, nil)
	f.feed.Start(context.Background())
	defer f.feed.Close()

	f.fetcher.set(nil, errBackendDown)

	// Act
	err := f.feed.Refresh(context.Background())

	// Assert
	require.Error(t, err)
	assert.NoError(t, f.feed.Err())
	assert.Len(t, f.feed.Records(), 1)
}

func TestFeed_CacheFallbackOnInitialFailure(t *testing.T) {
	// Arrange
	cache := &memoryCache{data: map[string][]models.Message{
		"feed_test": {{ID: 3, Text: "из кэша"}},
	}}
	f := newFeedFixture(cache)
	f.fetcher.set(nil, errBackendDown)

	// Act
	f.feed.Start(context.Background())
	defer f.feed.Close()

	// Assert
	assert.NoError(t, f.feed.Err())
	require.Len(t, f.feed.Records(), 1)
	assert.Equal(t, "из кэша", f.feed.Records()[0].Text)
}

func TestFeed_SuccessfulRefreshWritesCache(t *testing.T) {
	// Arrange
	cache := &memoryCache{data: map[string][]models.Message{}}
	f := newFeedFixture(cache)
	f.fetcher.set([]models.Message{{ID: 1}, {ID: 2}}, nil)

	// Act
	f.feed.Start(context.Background())
	defer f.feed.Close()

	// Assert
	cached, err := cache.Get(context.Background(), "feed_test")
	require.NoError(t, err)
	assert.Len(t, cached, 2)
}

func TestFeed_TransportFailureTogglesPolling(t *testing.T) {
	// Arrange
	f := newFeedFixture(nil)
	f.fetcher.set([]models.Message{{ID: 1}}, nil)
	f.feed.Start(context.Background())
	defer f.feed.Close()

	// Act
	f.dialer.Last().Drop(models.CloseAbnormal)

	// Assert
	assert.Eventually(t, f.feed.PollingActive, time.Second, 5*time.Millisecond)
	assert.Eventually(t, f.feed.ReconnectPending, time.Second, 5*time.Millisecond)

	require.True(t, f.clock.FireLast())
	assert.True(t, f.feed.Connected())
	assert.False(t, f.feed.PollingActive())
}

func TestFeed_RepeatedFailuresKeepSinglePoller(t *testing.T) {
	// Arrange
	f := newFeedFixture(nil)
	f.dialer.FailNext(3)

	// Act
	f.feed.Start(context.Background())
	defer f.feed.Close()

	f.clock.FireLast()
	f.clock.FireLast()

	// Assert
	assert.True(t, f.feed.PollingActive())
	assert.Equal(t, 1, f.clock.Pending())
}

func TestFeed_MalformedFrameIsDropped(t *testing.T) {
	// Arrange
	f := newFeedFixture(nil)
	f.feed.Start(context.Background())
	defer f.feed.Close()

	socket := f.dialer.Last()

	// Act
	socket.DeliverRaw([]byte(`{not json`))
	socket.DeliverRaw([]byte(`{"type":"new_message","message":"oops"}`))
	socket.DeliverRaw([]byte(`{"type":"something_else"}`))
	socket.Deliver(map[string]any{"type": "new_message", "message": map[string]any{"id": 9}})

	// Assert
	assert.Eventually(t, func() bool {
		return len(f.feed.Records()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.True(t, f.feed.Connected())
}

func TestFeed_CloseTearsDownEverything(t *testing.T) {
	// Arrange
	f := newFeedFixture(nil)
	f.feed.Start(context.Background())
	socket := f.dialer.Last()
	socket.Drop(models.CloseAbnormal)
	require.Eventually(t, f.feed.PollingActive, time.Second, 5*time.Millisecond)

	// Act
	err := f.feed.Close()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, models.StateClosedIntentionally, f.feed.State())
	assert.False(t, f.feed.PollingActive())
	assert.Equal(t, 0, f.clock.Pending())
	assert.Equal(t, int32(1), f.closed.Load())

	require.NoError(t, f.feed.Close())
	assert.Equal(t, int32(1), f.closed.Load())
}

func TestFeed_CloseUsesNormalCode(t *testing.T) {
	// Arrange
	f := newFeedFixture(nil)
	f.feed.Start(context.Background())
	socket := f.dialer.Last()

	// Act
	require.NoError(t, f.feed.Close())

	// Assert
	assert.Equal(t, models.CloseNormal, socket.CloseCode())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, f.clock.Count())
}

func TestFeed_ResumeReconnectsAndRefreshesOnce(t *testing.T) {
	// Arrange
	f := newFeedFixture(nil)
	f.dialer.FailNext(3)
	f.feed.Start(context.Background())
	defer f.feed.Close()

	callsAfterStart := f.fetcher.calls.Load()

	// Act
	f.feed.Resume(context.Background())
	f.feed.Resume(context.Background())

	// Assert
	assert.Equal(t, 3, f.dialer.DialCount())
	assert.Equal(t, callsAfterStart+1, f.fetcher.calls.Load(), "Частые возобновления должны обновлять список не чаще раза в интервал")
}

func TestFeed_ResumeWhenOpenDoesNothing(t *testing.T) {
	// Arrange
	f := newFeedFixture(nil)
	f.feed.Start(context.Background())
	defer f.feed.Close()

	callsAfterStart := f.fetcher.calls.Load()

	// Act
	f.feed.Resume(context.Background())

	// Assert
	assert.Equal(t, 1, f.dialer.DialCount())
	assert.Equal(t, callsAfterStart, f.fetcher.calls.Load())
}
