package cache_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/central-university-dev/go-portal-realtime/internal/cache"
	"github.com/central-university-dev/go-portal-realtime/internal/domain/models"
)

func TestRedisRecordCache(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционный тест в коротком режиме")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	redisContainer, err := redis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)

	defer func() {
		if err := redisContainer.Terminate(context.Background()); err != nil {
			t.Logf("Ошибка при остановке Redis контейнера: %v", err)
		}
	}()

	endpoint, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err)

	client, err := cache.NewRedisClient(ctx, endpoint, "", 0, logger)
	require.NoError(t, err)

	defer client.Close()

	notifications := cache.NewRedisRecordCache[models.Notification](client, "portal", 30*time.Second, logger)

	list := []models.Notification{
		{ID: 1, Category: models.CategorySystem, IsRead: true},
		{ID: 2, Category: models.CategoryApplication, Translations: []models.Translation{{Language: "ru", Title: "Заявка"}}},
	}

	cached, err := notifications.Get(ctx, "notifications")
	require.NoError(t, err)
	assert.Nil(t, cached)

	require.NoError(t, notifications.Set(ctx, "notifications", list))

	cached, err = notifications.Get(ctx, "notifications")
	require.NoError(t, err)
	require.Len(t, cached, 2)
	assert.Equal(t, list[1].Translations, cached[1].Translations)
	assert.True(t, cached[0].IsRead)

	require.NoError(t, notifications.Delete(ctx, "notifications"))

	cached, err = notifications.Get(ctx, "notifications")
	require.NoError(t, err)
	assert.Nil(t, cached)

	shortTTL := cache.NewRedisRecordCache[models.Message](client, "portal", time.Second, logger)
	require.NoError(t, shortTTL.Set(ctx, "chat:42", []models.Message{{ID: 7, Text: "привет"}}))

	messages, err := shortTTL.Get(ctx, "chat:42")
	require.NoError(t, err)
	require.Len(t, messages, 1)

	time.Sleep(2 * time.Second)

	messages, err = shortTTL.Get(ctx, "chat:42")
	require.NoError(t, err)
	assert.Nil(t, messages)
}
