package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

type HealthProber interface {
	Health(ctx context.Context) bool
}

// HealthMonitor периодически опрашивает сервис проверки. Первый опрос
// выполняется сразу при запуске.
type HealthMonitor struct {
	scheduler *gocron.Scheduler
	prober    HealthProber
	logger    *slog.Logger
	interval  time.Duration
	timeout   time.Duration
}

func NewHealthMonitor(prober HealthProber, interval, timeout time.Duration, logger *slog.Logger) *HealthMonitor {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	if timeout <= 0 {
		timeout = interval
	}

	return &HealthMonitor{
		scheduler: scheduler,
		prober:    prober,
		logger:    logger,
		interval:  interval,
		timeout:   timeout,
	}
}

func (m *HealthMonitor) Start() {
	m.logger.Info("Запуск мониторинга сервиса проверки",
		"interval", m.interval.String(),
	)

	_, err := m.scheduler.Every(m.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		online := m.prober.Health(ctx)
		m.logger.Debug("Состояние сервиса проверки", "online", online)
	})

	if err != nil {
		m.logger.Error("Ошибка при настройке мониторинга",
			"error", err,
		)

		return
	}

	m.scheduler.StartAsync()
}

func (m *HealthMonitor) Stop() {
	m.logger.Info("Остановка мониторинга сервиса проверки")
	m.scheduler.Stop()
}
