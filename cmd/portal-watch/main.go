package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/central-university-dev/go-portal-realtime/internal/api/rest"
	"github.com/central-university-dev/go-portal-realtime/internal/auth"
	"github.com/central-university-dev/go-portal-realtime/internal/cache"
	"github.com/central-university-dev/go-portal-realtime/internal/chat"
	"github.com/central-university-dev/go-portal-realtime/internal/common/metrics"
	"github.com/central-university-dev/go-portal-realtime/internal/config"
	"github.com/central-university-dev/go-portal-realtime/internal/domain/models"
	"github.com/central-university-dev/go-portal-realtime/internal/events"
	"github.com/central-university-dev/go-portal-realtime/internal/notifications"
	"github.com/central-university-dev/go-portal-realtime/internal/realtime"
	"github.com/central-university-dev/go-portal-realtime/internal/sink"
	"github.com/central-university-dev/go-portal-realtime/pkg"
)

const cachePrefix = "portal"

type feeds struct {
	center *notifications.Center
	thread *chat.Thread
}

func (f *feeds) status() map[string]string {
	out := map[string]string{
		notifications.FeedName: string(f.center.State()),
	}

	if f.thread != nil {
		out[chat.FeedName] = string(f.thread.State())
	}

	return out
}

func (f *feeds) resume(ctx context.Context) {
	f.center.Resume(ctx)

	if f.thread != nil {
		f.thread.Resume(ctx)
	}
}

func (f *feeds) close(appLogger *slog.Logger) {
	if f.thread != nil {
		if err := f.thread.Close(); err != nil {
			appLogger.Error("Ошибка при закрытии чата", "error", err)
		}
	}

	if err := f.center.Close(); err != nil {
		appLogger.Error("Ошибка при закрытии центра уведомлений", "error", err)
	}
}

func connectRedis(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB, appLogger)
	if err != nil {
		appLogger.Error("Ошибка при подключении к Redis, работаем без кэша",
			"error", err,
		)

		return nil
	}

	return client
}

// waitForShutdown блокируется до SIGINT/SIGTERM. SIGHUP возобновляет ленты.
func waitForShutdown(ctx context.Context, f *feeds, appLogger *slog.Logger) {
	hupCh := make(chan os.Signal, 1)
	signal.Notify(hupCh, syscall.SIGHUP)

	defer signal.Stop(hupCh)

	for {
		select {
		case <-hupCh:
			appLogger.Info("Получен SIGHUP, возобновляем ленты")
			f.resume(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка запуска сервиса: %v\n", err)
		os.Exit(1)
	}
}

//nolint:funlen // Длина функции обусловлена необходимостью последовательной инициализации всех компонентов.
func run() error {
	cfg := config.LoadConfig()
	appLogger := pkg.NewLoggerWithLevel(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	credentials := auth.NewTokenProvider(cfg.AuthToken)
	if _, err := credentials.Token(); err != nil {
		appLogger.Warn("Токен недоступен, сокеты не будут подключены", "error", err)
	}

	redisClient := connectRedis(ctx, cfg, appLogger)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				appLogger.Error("Ошибка при закрытии соединения с Redis", "error", err)
			}
		}()
	}

	eventSink, err := sink.NewFactory(cfg, appLogger).CreateSink()
	if err != nil {
		appLogger.Error("Ошибка при создании получателя событий", "error", err)
		return fmt.Errorf("ошибка создания получателя событий: %w", err)
	}

	defer func() {
		if err := sink.Close(eventSink); err != nil {
			appLogger.Error("Ошибка при закрытии получателя событий", "error", err)
		}
	}()

	bus := events.NewBus()
	relay := sink.NewRelay(eventSink, cfg.SinkTransport, 0, cfg.HTTPRequestTimeout, appLogger)
	unsubscribe := bus.Subscribe(relay.Handle)

	relayCtx, stopRelay := context.WithCancel(context.Background())
	go relay.Run(relayCtx)

	opts := realtime.OptionsFromConfig(cfg, credentials, appLogger)

	var notificationCache realtime.RecordCache[models.Notification]
	if redisClient != nil {
		notificationCache = cache.NewRedisRecordCache[models.Notification](redisClient, cachePrefix, cfg.RedisCacheTTL, appLogger)
	}

	f := &feeds{
		center: notifications.NewCenter(
			rest.NewNotificationClient(cfg, credentials, appLogger),
			bus,
			notificationCache,
			cfg,
			opts,
		),
	}

	if cfg.ApplicationID != 0 {
		var messageCache realtime.RecordCache[models.Message]
		if redisClient != nil {
			messageCache = cache.NewRedisRecordCache[models.Message](redisClient, cachePrefix, cfg.RedisCacheTTL, appLogger)
		}

		f.thread = chat.NewThread(
			cfg.ApplicationID,
			rest.NewChatClient(cfg, credentials, appLogger),
			messageCache,
			cfg,
			opts,
		)
	}

	metricsServer := metrics.NewMetricsServer(cfg.MetricsPort, f.status, appLogger)

	go func() {
		if err := metricsServer.Start(ctx); err != nil {
			appLogger.Error("Ошибка сервера метрик", "error", err)
		}
	}()

	f.center.Start(ctx)
	appLogger.Info("Центр уведомлений запущен",
		"unread", f.center.UnreadCount(),
		"state", f.center.State(),
	)

	if f.thread != nil {
		f.thread.Start(ctx)
		appLogger.Info("Чат по заявке запущен",
			"applicationID", cfg.ApplicationID,
			"messages", len(f.thread.Messages()),
		)
	}

	waitForShutdown(ctx, f, appLogger)

	appLogger.Info("Получен сигнал завершения")

	f.close(appLogger)
	unsubscribe()
	stopRelay()

	select {
	case <-relay.Done():
	case <-time.After(5 * time.Second):
		appLogger.Warn("Не все события успели доставить до остановки")
	}

	appLogger.Info("Сервис успешно остановлен")

	return nil
}
