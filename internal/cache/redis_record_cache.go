package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisRecordCache хранит последний загруженный список ленты одним JSON-значением.
type RedisRecordCache[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisClient подключается к Redis и проверяет соединение.
func NewRedisClient(ctx context.Context, redisURL, password string, db int, logger *slog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ошибка при подключении к Redis: %w", err)
	}

	logger.Info("Соединение с Redis успешно установлено")

	return client, nil
}

func NewRedisRecordCache[T any](client *redis.Client, prefix string, ttl time.Duration, logger *slog.Logger) *RedisRecordCache[T] {
	return &RedisRecordCache[T]{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *RedisRecordCache[T]) key(key string) string {
	return c.prefix + ":" + key
}

// Get возвращает nil без ошибки, если ключа нет.
func (c *RedisRecordCache[T]) Get(ctx context.Context, key string) ([]T, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.logger.Debug("Кэш не найден", "key", key)
			return nil, nil
		}

		c.logger.Error("Ошибка при получении данных из Redis",
			"error", err,
			"key", key,
		)

		return nil, fmt.Errorf("ошибка при получении данных из Redis: %w", err)
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		c.logger.Error("Ошибка при десериализации данных из Redis",
			"error", err,
			"key", key,
		)

		return nil, fmt.Errorf("ошибка при десериализации данных из Redis: %w", err)
	}

	c.logger.Debug("Данные получены из кэша",
		"key", key,
		"count", len(records),
	)

	return records, nil
}

func (c *RedisRecordCache[T]) Set(ctx context.Context, key string, records []T) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации данных для Redis: %w", err)
	}

	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		c.logger.Error("Ошибка при сохранении данных в Redis",
			"error", err,
			"key", key,
		)

		return fmt.Errorf("ошибка при сохранении данных в Redis: %w", err)
	}

	c.logger.Debug("Данные сохранены в кэш",
		"key", key,
		"count", len(records),
		"ttl", c.ttl,
	)

	return nil
}

func (c *RedisRecordCache[T]) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("ошибка при удалении данных из Redis: %w", err)
	}

	return nil
}
