package checker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/central-university-dev/go-linkchecker/internal/common/httputil"
	"github.com/central-university-dev/go-linkchecker/internal/common/metrics"
	"github.com/central-university-dev/go-linkchecker/internal/config"
	domainerrors "github.com/central-university-dev/go-linkchecker/internal/domain/errors"
	"github.com/central-university-dev/go-linkchecker/internal/domain/models"
)

const tracerName = "github.com/central-university-dev/go-linkchecker/internal/checker"

// Client обращается к локальному сервису проверки ссылок.
// Запрос к /check никогда не повторяется: одна проверка равна одному запросу.
type Client struct {
	checkHTTP  *resty.Client
	healthHTTP *resty.Client
	batchHTTP  *resty.Client

	baseURL      string
	policy       SuccessPolicy
	maxBatchURLs int
	online       atomic.Bool

	tracer trace.Tracer
	logger *slog.Logger
}

func NewClient(cfg *config.Config, policy SuccessPolicy, logger *slog.Logger) *Client {
	batchTimeout := time.Duration(cfg.MaxBatchURLs) * (cfg.ProbeBatchTimeout + cfg.ProbeBatchDelay)

	return &Client{
		checkHTTP: httputil.CreateResilientHTTPClient(cfg, logger, "checker", httputil.ClientOptions{
			Timeout:    cfg.CheckRequestTimeout,
			RetryCount: -1,
		}),
		healthHTTP: httputil.CreateResilientHTTPClient(cfg, logger, "checker_health", httputil.ClientOptions{
			Timeout:    cfg.HealthTimeout,
			RetryCount: -1,
		}),
		batchHTTP: httputil.CreateResilientHTTPClient(cfg, logger, "checker_batch", httputil.ClientOptions{
			Timeout:    batchTimeout,
			RetryCount: -1,
		}),
		baseURL:      strings.TrimRight(cfg.CheckerBaseURL, "/"),
		policy:       policy,
		maxBatchURLs: cfg.MaxBatchURLs,
		tracer:       otel.Tracer(tracerName),
		logger:       logger,
	}
}

func (c *Client) Online() bool {
	return c.online.Load()
}

// Health опрашивает /health и запоминает результат. Сервис считается
// доступным, только если ответ разбирается как {"status":"ok"}.
func (c *Client) Health(ctx context.Context) bool {
	online := c.probeHealth(ctx)

	prev := c.online.Swap(online)
	metrics.SetServiceOnline(online)

	if prev != online {
		if online {
			c.logger.Info("Сервис проверки доступен", "baseURL", c.baseURL)
		} else {
			c.logger.Warn("Сервис проверки недоступен", "baseURL", c.baseURL)
		}
	}

	return online
}

func (c *Client) probeHealth(ctx context.Context) bool {
	resp, err := c.healthHTTP.R().
		SetContext(ctx).
		Get(c.baseURL + "/health")
	if err != nil {
		c.logger.Debug("Ошибка проверки состояния сервиса", "error", err)
		return false
	}

	var health models.HealthResponse
	if err := json.Unmarshal(resp.Body(), &health); err != nil {
		return false
	}

	return health.Status == "ok"
}

// CheckOne проверяет одну ссылку и возвращает новую запись. Ошибки не
// возвращаются: любой сбой превращается в запись со статусом error.
func (c *Client) CheckOne(ctx context.Context, link *models.Link) *models.Link {
	ctx, span := c.tracer.Start(ctx, "checker.CheckOne", trace.WithAttributes(
		attribute.String("link.url", link.URL),
		attribute.String("link.type", string(link.Type)),
	))
	defer span.End()

	start := time.Now()
	result := link.Clone()
	result.Note = ""

	if !c.online.Load() {
		var zero int64

		result.Status = models.StatusError
		result.StatusCode = nil
		result.ResponseTime = &zero
		result.Method = models.MethodOffline
		result.Error = (&domainerrors.ErrServiceOffline{BaseURL: c.baseURL}).Error()

		span.SetStatus(codes.Error, result.Error)
		metrics.RecordLinkCheck(string(link.Type), string(result.Status), 0)

		return result
	}

	data, err := c.check(ctx, link.URL)
	elapsed := time.Since(start)

	if err != nil {
		rt := elapsed.Milliseconds()

		result.Status = models.StatusError
		result.StatusCode = nil
		result.ResponseTime = &rt
		result.Method = models.MethodError
		result.Error = err.Error()

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordLinkCheck(string(link.Type), string(result.Status), elapsed)

		c.logger.Debug("Ошибка обращения к сервису проверки",
			"url", link.URL,
			"error", err,
		)

		return result
	}

	status := data.Status
	rt := data.ResponseTime

	result.StatusCode = &status
	result.ResponseTime = &rt
	result.Method = models.MethodPrefix + data.Method
	result.Error = ""

	switch {
	case data.StatusText != "":
		result.Note = data.StatusText
	case data.Error != "":
		result.Note = "Error: " + data.Error
	}

	if c.policy.IsSuccess(data) {
		result.Status = models.StatusSuccess
	} else {
		result.Status = models.StatusError
		result.Error = data.Error

		if result.Error == "" {
			result.Error = (&domainerrors.ErrServiceStatus{StatusCode: status}).Error()
		}
	}

	span.SetAttributes(
		attribute.Int("http.status_code", status),
		attribute.String("link.status", string(result.Status)),
	)
	metrics.RecordLinkCheck(string(link.Type), string(result.Status), elapsed)

	return result
}

func (c *Client) check(ctx context.Context, rawURL string) (*models.CheckResult, error) {
	resp, err := c.checkHTTP.R().
		SetContext(ctx).
		SetQueryParam("url", rawURL).
		Get(c.baseURL + "/check")
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса к сервису проверки: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, &domainerrors.ErrServiceStatus{StatusCode: resp.StatusCode()}
	}

	var data models.CheckResult
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, &domainerrors.ErrMalformedResponse{Cause: err}
	}

	return &data, nil
}

// CheckBatch отправляет список URL в /check-batch. Оставлен для совместимости
// с сервисом; конвейер проверяет ссылки по одной через CheckOne.
func (c *Client) CheckBatch(ctx context.Context, urls []string) ([]models.CheckResult, error) {
	if len(urls) > c.maxBatchURLs {
		return nil, &domainerrors.ErrTooManyURLs{Count: len(urls), Max: c.maxBatchURLs}
	}

	if urls == nil {
		urls = []string{}
	}

	resp, err := c.batchHTTP.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.BatchCheckRequest{URLs: urls}).
		Post(c.baseURL + "/check-batch")
	if err != nil {
		return nil, fmt.Errorf("ошибка пакетного запроса к сервису проверки: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, &domainerrors.ErrServiceStatus{StatusCode: resp.StatusCode()}
	}

	var data models.BatchCheckResponse
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, &domainerrors.ErrMalformedResponse{Cause: err}
	}

	return data.Results, nil
}
