package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/central-university-dev/go-linkchecker/internal/domain/models"
)

type RedisResultCache struct {
	client    *redis.Client
	ttl       time.Duration
	logger    *slog.Logger
	keyPrefix string
}

func NewRedisResultCache(
	ctx context.Context,
	redisURL, password string,
	db int,
	ttl time.Duration,
	logger *slog.Logger,
) (*RedisResultCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ошибка при подключении к Redis: %w", err)
	}

	logger.Info("Соединение с Redis для кэша результатов успешно установлено")

	return &RedisResultCache{
		client:    client,
		ttl:       ttl,
		logger:    logger,
		keyPrefix: "check:result:",
	}, nil
}

// Get возвращает nil без ошибки, если результата нет или он устарел.
func (c *RedisResultCache) Get(ctx context.Context, rawURL string) (*models.CheckResult, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+rawURL).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("ошибка при получении результата из Redis: %w", err)
	}

	var result models.CheckResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("ошибка при десериализации данных из Redis: %w", err)
	}

	c.logger.Debug("Результат проверки взят из кэша", "url", rawURL)

	return &result, nil
}

func (c *RedisResultCache) Set(ctx context.Context, rawURL string, result *models.CheckResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации данных для Redis: %w", err)
	}

	if err := c.client.Set(ctx, c.keyPrefix+rawURL, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка при сохранении результата в Redis: %w", err)
	}

	return nil
}

func (c *RedisResultCache) Delete(ctx context.Context, rawURL string) error {
	if err := c.client.Del(ctx, c.keyPrefix+rawURL).Err(); err != nil {
		return fmt.Errorf("ошибка при удалении результата из Redis: %w", err)
	}

	return nil
}

func (c *RedisResultCache) Close() error {
	return c.client.Close()
}
