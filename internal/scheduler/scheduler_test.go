package scheduler_test

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/central-university-dev/go-portal-realtime/internal/common/metrics"
	"github.com/central-university-dev/go-portal-realtime/internal/scheduler"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestPoller_RunsRefresh(t *testing.T) {
	var calls int32

	poller := scheduler.NewPoller("poller_runs", 100*time.Millisecond, func(_ context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, testLogger())

	poller.Start()
	defer poller.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestPoller_StartIsIdempotent(t *testing.T) {
	poller := scheduler.NewPoller("poller_idempotent", time.Minute, func(_ context.Context) error {
		return nil
	}, testLogger())

	first := poller.Start()
	second := poller.Start()

	assert.True(t, first)
	assert.False(t, second)
	assert.True(t, poller.Active())
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.PollingActive.WithLabelValues("poller_idempotent")))

	assert.True(t, poller.Stop())
	assert.False(t, poller.Stop())
	assert.False(t, poller.Active())
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.PollingActive.WithLabelValues("poller_idempotent")))
}

func TestPoller_StopPreventsFurtherRuns(t *testing.T) {
	var calls int32

	poller := scheduler.NewPoller("poller_stop", time.Second, func(_ context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, testLogger())

	poller.Start()
	poller.Stop()

	time.Sleep(1200 * time.Millisecond)

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestPoller_RestartAfterStop(t *testing.T) {
	var calls int32

	poller := scheduler.NewPoller("poller_restart", 100*time.Millisecond, func(_ context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, testLogger())

	poller.Start()
	poller.Stop()

	assert.True(t, poller.Start())
	defer poller.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestPoller_RefreshErrorIsContained(t *testing.T) {
	poller := scheduler.NewPoller("poller_error", 100*time.Millisecond, func(_ context.Context) error {
		return assert.AnError
	}, testLogger())

	poller.Start()
	defer poller.Stop()

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.PollingRunsTotal.WithLabelValues("poller_error", "error")) >= 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestPoller_StartAfterCloseRefused(t *testing.T) {
	poller := scheduler.NewPoller("poller_closed", time.Minute, func(_ context.Context) error {
		return nil
	}, testLogger())

	assert.True(t, poller.Start())
	assert.True(t, poller.Close())

	assert.False(t, poller.Start(), "Опрос не должен запускаться после закрытия ленты")
	assert.False(t, poller.Active())
	assert.False(t, poller.Close())
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.PollingActive.WithLabelValues("poller_closed")))
}

func TestPoller_CloseWithoutStartBlocksLaterStart(t *testing.T) {
	poller := scheduler.NewPoller("poller_closed_idle", time.Minute, func(_ context.Context) error {
		return nil
	}, testLogger())

	assert.False(t, poller.Close())
	assert.False(t, poller.Start())
	assert.False(t, poller.Active())
}
