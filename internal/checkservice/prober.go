package checkservice

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/central-university-dev/go-linkchecker/internal/common/metrics"
	"github.com/central-university-dev/go-linkchecker/internal/config"
	domainerrors "github.com/central-university-dev/go-linkchecker/internal/domain/errors"
	"github.com/central-university-dev/go-linkchecker/internal/domain/models"
)

const (
	methodHead   = "HEAD"
	methodGet    = "GET"
	methodDirect = "direct"

	maxRedirects = 20
)

// Prober выполняет запросы к проверяемым сайтам. Ответы не читаются:
// для результата хватает статуса и заголовков.
type Prober struct {
	client       *resty.Client
	headTimeout  time.Duration
	getTimeout   time.Duration
	batchTimeout time.Duration
	logger       *slog.Logger
}

func NewProber(cfg *config.Config, logger *slog.Logger) *Prober {
	client := resty.New().
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects)).
		SetHeader("User-Agent", cfg.ProbeUserAgent).
		SetHeader("Accept", "*/*")

	return &Prober{
		client:       client,
		headTimeout:  cfg.ProbeHeadTimeout,
		getTimeout:   cfg.ProbeGetTimeout,
		batchTimeout: cfg.ProbeBatchTimeout,
		logger:       logger,
	}
}

// Probe проверяет URL запросом HEAD, а при сетевой ошибке повторяет его через GET.
// Ответ с любым HTTP-статусом считается полученным и GET не вызывает.
func (p *Prober) Probe(ctx context.Context, rawURL string) models.CheckResult {
	start := time.Now()

	if err := validateURL(rawURL); err != nil {
		return failure(rawURL, err, "TypeError", start)
	}

	method := methodHead

	resp, err := p.do(ctx, http.MethodHead, rawURL, p.headTimeout)
	if err != nil {
		p.logger.Debug("HEAD не удался, пробуем GET", "url", rawURL, "error", err)

		method = methodGet
		resp, err = p.do(ctx, http.MethodGet, rawURL, p.getTimeout)
	}

	if err != nil {
		metrics.RecordProbe(method, "failure", time.Since(start))
		return failure(rawURL, err, errorType(err), start)
	}

	metrics.RecordProbe(method, "response", time.Since(start))

	status := resp.StatusCode()
	ok := status >= 200 && status < 300

	result := models.CheckResult{
		URL:          rawURL,
		Status:       status,
		OK:           &ok,
		StatusText:   http.StatusText(status),
		Method:       method,
		ResponseTime: time.Since(start).Milliseconds(),
		Headers:      flattenHeaders(resp.Header()),
		ContentType:  resp.Header().Get("Content-Type"),
	}

	if length, err := strconv.ParseInt(resp.Header().Get("Content-Length"), 10, 64); err == nil {
		cl := models.ContentLength(length)
		result.ContentLength = &cl
	}

	if method == methodGet {
		hasContent := true
		result.HasContent = &hasContent
	}

	return result
}

// ProbeHead одиночный HEAD-запрос для пакетной проверки.
func (p *Prober) ProbeHead(ctx context.Context, rawURL string) models.CheckResult {
	start := time.Now()

	if err := validateURL(rawURL); err != nil {
		return failure(rawURL, err, "", start)
	}

	resp, err := p.do(ctx, http.MethodHead, rawURL, p.batchTimeout)
	if err != nil {
		metrics.RecordProbe(methodHead, "failure", time.Since(start))
		return failure(rawURL, err, "", start)
	}

	metrics.RecordProbe(methodHead, "response", time.Since(start))

	status := resp.StatusCode()
	ok := status >= 200 && status < 300

	return models.CheckResult{
		URL:          rawURL,
		Status:       status,
		OK:           &ok,
		Method:       methodHead,
		ResponseTime: time.Since(start).Milliseconds(),
	}
}

func (p *Prober) do(ctx context.Context, method, rawURL string, timeout time.Duration) (*resty.Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Execute(method, rawURL)
	if err != nil {
		return nil, err
	}

	if body := resp.RawBody(); body != nil {
		body.Close()
	}

	return resp, nil
}

func validateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return &domainerrors.ErrInvalidURL{URL: rawURL}
	}

	return nil
}

func failure(rawURL string, err error, errType string, start time.Time) models.CheckResult {
	return models.CheckResult{
		URL:          rawURL,
		Error:        err.Error(),
		ErrorType:    errType,
		Status:       0,
		ResponseTime: time.Since(start).Milliseconds(),
		Method:       methodDirect,
	}
}

func errorType(err error) string {
	var netErr net.Error

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "TimeoutError"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "TimeoutError"
	case errors.Is(err, context.Canceled):
		return "AbortError"
	default:
		return "FetchError"
	}
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for key, values := range h {
		out[strings.ToLower(key)] = strings.Join(values, ", ")
	}

	return out
}
