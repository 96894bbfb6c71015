package cache_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/central-university-dev/go-linkchecker/internal/checkservice/cache"
	"github.com/central-university-dev/go-linkchecker/internal/domain/models"
)

func TestRedisResultCache(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционный тест в коротком режиме")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	redisC, redisPort := startRedisContainer(t)
	defer func() {
		if err := redisC.Terminate(context.Background()); err != nil {
			t.Logf("Ошибка при остановке Redis контейнера: %v", err)
		}
	}()

	ctx := context.Background()
	redisURL := "localhost:" + redisPort

	resultCache, err := cache.NewRedisResultCache(ctx, redisURL, "", 0, 30*time.Second, logger)
	require.NoError(t, err)

	defer resultCache.Close()

	target := "https://example.com/page?a=1"

	cached, err := resultCache.Get(ctx, target)
	require.NoError(t, err)
	assert.Nil(t, cached)

	ok := true
	length := models.ContentLength(42)
	result := &models.CheckResult{
		URL:           target,
		Status:        200,
		OK:            &ok,
		StatusText:    "OK",
		Method:        "HEAD",
		ResponseTime:  15,
		ContentLength: &length,
	}

	require.NoError(t, resultCache.Set(ctx, target, result))

	cached, err = resultCache.Get(ctx, target)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, result, cached)

	require.NoError(t, resultCache.Delete(ctx, target))

	cached, err = resultCache.Get(ctx, target)
	require.NoError(t, err)
	assert.Nil(t, cached)

	shortTTL, err := cache.NewRedisResultCache(ctx, redisURL, "", 0, time.Second, logger)
	require.NoError(t, err)

	defer shortTTL.Close()

	require.NoError(t, shortTTL.Set(ctx, target, result))

	time.Sleep(2 * time.Second)

	cached, err = shortTTL.Get(ctx, target)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestNewRedisResultCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := cache.NewRedisResultCache(ctx, "localhost:1", "", 0, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func startRedisContainer(t *testing.T) (container testcontainers.Container, port string) {
	ctx := context.Background()

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)

	mappedPort, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return redisC, mappedPort.Port()
}
