package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/central-university-dev/go-linkchecker/internal/common/metrics"
	"github.com/central-university-dev/go-linkchecker/internal/domain/models"
)

const tracerName = "github.com/central-university-dev/go-linkchecker/internal/scheduler"

const checkFailedMessage = "Check failed"

type LinkChecker interface {
	CheckOne(ctx context.Context, link *models.Link) *models.Link
}

// ResultSink принимает готовые записи; сопоставление идёт по URL.
type ResultSink interface {
	Apply(result *models.Link) bool
}

type ProgressObserver interface {
	OnProgress(checked, total int)
	OnBatchComplete(batchNum int, counts models.Counts)
}

// BatchScheduler проверяет ссылки пачками: внутри пачки все проверки идут
// параллельно, следующая пачка стартует только после завершения предыдущей и паузы.
type BatchScheduler struct {
	checker   LinkChecker
	sink      ResultSink
	batchSize int
	delay     time.Duration
	logger    *slog.Logger
	tracer    trace.Tracer
}

func NewBatchScheduler(
	checker LinkChecker,
	sink ResultSink,
	batchSize int,
	delay time.Duration,
	logger *slog.Logger,
) *BatchScheduler {
	return &BatchScheduler{
		checker:   checker,
		sink:      sink,
		batchSize: batchSize,
		delay:     delay,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
	}
}

func (s *BatchScheduler) RunBatches(ctx context.Context, links []*models.Link, observer ProgressObserver) error {
	if s.batchSize <= 0 || len(links) == 0 {
		return nil
	}

	ctx, span := s.tracer.Start(ctx, "scheduler.RunBatches", trace.WithAttributes(
		attribute.Int("links.total", len(links)),
		attribute.Int("batch.size", s.batchSize),
	))
	defer span.End()

	total := len(links)

	current := make([]*models.Link, total)
	for i, link := range links {
		current[i] = link.Clone()
	}

	s.logger.Info("Начало пакетной проверки ссылок",
		"total", total,
		"batchSize", s.batchSize,
		"delay", s.delay.String(),
	)

	checked := 0
	batchNum := 1

	for start := 0; start < total; start += s.batchSize {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("Проверка прервана", "checked", checked, "total", total)
			return err
		}

		end := min(start+s.batchSize, total)
		batch := current[start:end]

		s.logger.Debug("Обработка пачки",
			"batch", batchNum,
			"size", len(batch),
			"offset", start,
		)

		results := s.processOneBatch(ctx, batch, batchNum)

		for i, result := range results {
			current[start+i] = result

			if !s.sink.Apply(result) {
				s.logger.Warn("Результат проверки не сопоставлен ни с одной записью", "url", result.URL)
			}
		}

		checked += len(batch)

		if observer != nil {
			observer.OnProgress(checked, total)
			observer.OnBatchComplete(batchNum, models.CountLinks(current))
		}

		if err := s.wait(ctx); err != nil {
			s.logger.Warn("Проверка прервана", "checked", checked, "total", total)
			return err
		}

		batchNum++
	}

	counts := models.CountLinks(current)
	s.logger.Info("Пакетная проверка завершена",
		"total", total,
		"success", counts.Success,
		"error", counts.Error,
	)

	return nil
}

func (s *BatchScheduler) processOneBatch(ctx context.Context, batch []*models.Link, batchNum int) []*models.Link {
	start := time.Now()
	results := make([]*models.Link, len(batch))
	wg := sync.WaitGroup{}

	for i, link := range batch {
		wg.Add(1)

		go func(i int, link *models.Link) {
			defer wg.Done()

			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("Сбой при проверке ссылки",
						"batch", batchNum,
						"url", link.URL,
						"panic", r,
					)

					results[i] = failedRecord(link)
				}
			}()

			result := s.checker.CheckOne(ctx, link)
			if result == nil {
				result = failedRecord(link)
			}

			results[i] = result
		}(i, link)
	}

	wg.Wait()
	metrics.RecordBatch(time.Since(start))

	return results
}

func (s *BatchScheduler) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func failedRecord(link *models.Link) *models.Link {
	failed := link.Clone()
	failed.Status = models.StatusError
	failed.StatusCode = nil
	failed.Error = checkFailedMessage
	failed.Method = models.MethodFailed

	return failed
}
