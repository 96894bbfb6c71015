package checkservice

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/central-university-dev/go-linkchecker/internal/common/middleware"
	"github.com/central-university-dev/go-linkchecker/internal/config"
)

const serviceName = "checker"

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer оборачивает обработчики в middleware: восстановление после паники,
// CORS, метрики запросов и ограничение частоты по IP.
func NewServer(ctx context.Context, cfg *config.Config, handler *Handler, logger *slog.Logger) *Server {
	rateLimiter := middleware.NewRateLimiterMiddleware(ctx, cfg.RateLimitRequests, cfg.RateLimitWindow, logger)
	metricsMiddleware := middleware.NewMetricsMiddleware(serviceName, "/health", "/check", "/check-batch")

	var h http.Handler = handler.Routes()
	h = rateLimiter.Middleware(h)
	h = metricsMiddleware.Middleware(h)
	h = middleware.CORS(h)
	h = middleware.Recover(logger)(h)

	writeTimeout := time.Duration(cfg.MaxBatchURLs)*(cfg.ProbeBatchTimeout+cfg.ProbeBatchDelay) + 10*time.Second
	if single := cfg.ProbeHeadTimeout + cfg.ProbeGetTimeout + 10*time.Second; single > writeTimeout {
		writeTimeout = single
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(cfg.CheckerHost, strconv.Itoa(cfg.CheckerServerPort)),
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      writeTimeout,
		},
		logger: logger,
	}
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start блокируется до остановки сервера.
func (s *Server) Start() error {
	s.logger.Info("Запуск сервиса проверки ссылок",
		"addr", s.httpServer.Addr,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("ошибка запуска сервиса проверки: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
