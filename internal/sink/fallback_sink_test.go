package sink_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-portal-realtime/internal/domain/models"
	"github.com/central-university-dev/go-portal-realtime/internal/events"
	"github.com/central-university-dev/go-portal-realtime/internal/sink"
	"github.com/central-university-dev/go-portal-realtime/internal/sink/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newNotificationEvent() events.NotificationReceived {
	return events.NotificationReceived{Notification: models.Notification{ID: 99, Category: models.CategoryApplication}}
}

func TestFallbackSink_PrimarySuccess(t *testing.T) {
	// Arrange
	primaryMock := mocks.NewSink(t)
	secondaryMock := mocks.NewSink(t)

	fallbackSink := sink.NewFallbackSink(primaryMock, secondaryMock, testLogger())
	event := newNotificationEvent()

	primaryMock.On("Deliver", mock.Anything, event).Return(nil)

	// Act
	err := fallbackSink.Deliver(context.Background(), event)

	// Assert
	require.NoError(t, err)
	secondaryMock.AssertNotCalled(t, "Deliver")
}

func TestFallbackSink_PrimaryFailsSecondarySuccess(t *testing.T) {
	// Arrange
	primaryMock := mocks.NewSink(t)
	secondaryMock := mocks.NewSink(t)

	fallbackSink := sink.NewFallbackSink(primaryMock, secondaryMock, testLogger())
	event := newNotificationEvent()

	primaryMock.On("Deliver", mock.Anything, event).Return(errors.New("kafka unavailable"))
	secondaryMock.On("Deliver", mock.Anything, event).Return(nil)

	// Act
	err := fallbackSink.Deliver(context.Background(), event)

	// Assert
	require.NoError(t, err)
}

func TestFallbackSink_BothFail(t *testing.T) {
	// Arrange
	primaryMock := mocks.NewSink(t)
	secondaryMock := mocks.NewSink(t)

	fallbackSink := sink.NewFallbackSink(primaryMock, secondaryMock, testLogger())
	event := newNotificationEvent()

	primaryError := errors.New("primary sink failed")

	primaryMock.On("Deliver", mock.Anything, event).Return(primaryError)
	secondaryMock.On("Deliver", mock.Anything, event).Return(errors.New("secondary sink failed"))

	// Act
	err := fallbackSink.Deliver(context.Background(), event)

	// Assert
	require.Error(t, err)
	assert.Equal(t, primaryError, err)
}
