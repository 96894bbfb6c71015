package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"

	"github.com/central-university-dev/go-linkchecker/internal/checkservice"
	"github.com/central-university-dev/go-linkchecker/internal/checkservice/cache"
	"github.com/central-university-dev/go-linkchecker/internal/common/metrics"
	"github.com/central-university-dev/go-linkchecker/internal/config"
	"github.com/central-university-dev/go-linkchecker/pkg"
)

func gracefulShutdown(
	ctx context.Context,
	server *checkservice.Server,
	metricsServer *metrics.MetricsServer,
	resultCache *cache.RedisResultCache,
	stopCh <-chan struct{},
	appLogger *slog.Logger,
) error {
	<-stopCh
	appLogger.Info("Получен сигнал завершения")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var err error

	err = multierr.Append(err, server.Shutdown(shutdownCtx))
	err = multierr.Append(err, metricsServer.Stop(shutdownCtx))

	if resultCache != nil {
		err = multierr.Append(err, resultCache.Close())
	}

	if err != nil {
		appLogger.Error("Ошибка при остановке сервиса", "error", err)
		return err
	}

	appLogger.Info("Сервис успешно остановлен")

	return nil
}

func startServers(
	ctx context.Context,
	server *checkservice.Server,
	metricsServer *metrics.MetricsServer,
	stopCh chan<- struct{},
	appLogger *slog.Logger,
) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	stop := make(chan struct{}, 3)

	go func() {
		select {
		case sig := <-sigCh:
			appLogger.Info("Получен системный сигнал",
				"signal", sig.String(),
			)
		case <-stop:
		}

		close(stopCh)
	}()

	go func() {
		if err := server.Start(); err != nil {
			appLogger.Error("Ошибка при запуске HTTP сервера", "error", err)
			stop <- struct{}{}
		}
	}()

	go func() {
		if err := metricsServer.Start(ctx); err != nil {
			appLogger.Error("Ошибка при запуске сервера метрик", "error", err)
		}
	}()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка запуска сервиса: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadConfig()
	appLogger := pkg.NewLogger(os.Stdout, cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		resultCache *cache.RedisResultCache
		handlerCache checkservice.ResultCache
	)

	if cfg.CacheEnabled {
		var err error

		resultCache, err = cache.NewRedisResultCache(ctx, cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB, cfg.RedisCacheTTL, appLogger)
		if err != nil {
			appLogger.Error("Ошибка при подключении к Redis для кэша результатов",
				"error", err,
			)

			appLogger.Warn("Продолжаем без кэша результатов")
		} else {
			handlerCache = resultCache
		}
	} else {
		appLogger.Info("Кэш результатов отключён в конфигурации")
	}

	prober := checkservice.NewProber(cfg, appLogger)
	handler := checkservice.NewHandler(prober, handlerCache, cfg.MaxBatchURLs, cfg.ProbeBatchDelay, appLogger)
	server := checkservice.NewServer(ctx, cfg, handler, appLogger)

	metricsServer := metrics.NewMetricsServer(cfg.MetricsPort, nil, appLogger)

	stopCh := make(chan struct{})

	startServers(ctx, server, metricsServer, stopCh, appLogger)

	appLogger.Info("Сервис проверки ссылок запущен",
		"health", "http://"+server.Addr()+"/health",
		"check", "http://"+server.Addr()+"/check?url=https://example.com",
		"batch", "POST http://"+server.Addr()+"/check-batch",
	)

	return gracefulShutdown(ctx, server, metricsServer, resultCache, stopCh, appLogger)
}
