package checkservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/central-university-dev/go-linkchecker/internal/common/metrics"
	"github.com/central-university-dev/go-linkchecker/internal/domain/models"
)

type LinkProber interface {
	Probe(ctx context.Context, rawURL string) models.CheckResult
	ProbeHead(ctx context.Context, rawURL string) models.CheckResult
}

// ResultCache кэш результатов /check. Ошибки кэша не влияют на ответ.
type ResultCache interface {
	Get(ctx context.Context, rawURL string) (*models.CheckResult, error)
	Set(ctx context.Context, rawURL string, result *models.CheckResult) error
}

type Handler struct {
	prober       LinkProber
	cache        ResultCache
	maxBatchURLs int
	batchDelay   time.Duration
	logger       *slog.Logger
}

// NewHandler создаёт обработчики сервиса проверки. cache может быть nil.
func NewHandler(
	prober LinkProber,
	cache ResultCache,
	maxBatchURLs int,
	batchDelay time.Duration,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		prober:       prober,
		cache:        cache,
		maxBatchURLs: maxBatchURLs,
		batchDelay:   batchDelay,
		logger:       logger,
	}
}

func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /check", h.handleCheck)
	mux.HandleFunc("POST /check-batch", h.handleCheckBatch)

	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:  "ok",
		Message: "Link checker server is running",
	})
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		status := 0
		elapsed := time.Since(start).Milliseconds()

		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
			Error:        "URL parameter is required",
			Status:       &status,
			ResponseTime: &elapsed,
		})

		return
	}

	if cached := h.lookup(r.Context(), rawURL); cached != nil {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	result := h.prober.Probe(r.Context(), rawURL)

	h.logger.Debug("Ссылка проверена",
		"url", rawURL,
		"status", result.Status,
		"method", result.Method,
		"responseTime", result.ResponseTime,
	)

	if result.OK != nil && *result.OK {
		h.store(r.Context(), rawURL, &result)
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCheckBatch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URLs json.RawMessage `json:"urls"`
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "URLs must be an array")
		return
	}

	var urls []string

	raw := bytes.TrimSpace(body.URLs)
	if len(raw) == 0 || raw[0] != '[' || json.Unmarshal(raw, &urls) != nil {
		writeError(w, http.StatusBadRequest, "URLs must be an array")
		return
	}

	if len(urls) > h.maxBatchURLs {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Maximum %d URLs per batch", h.maxBatchURLs))
		return
	}

	results := make([]models.CheckResult, 0, len(urls))

	for _, u := range urls {
		results = append(results, h.prober.ProbeHead(r.Context(), u))

		if !sleep(r.Context(), h.batchDelay) {
			h.logger.Warn("Пакетная проверка прервана клиентом", "checked", len(results), "total", len(urls))
			return
		}
	}

	writeJSON(w, http.StatusOK, models.BatchCheckResponse{Results: results})
}

func (h *Handler) lookup(ctx context.Context, rawURL string) *models.CheckResult {
	if h.cache == nil {
		return nil
	}

	cached, err := h.cache.Get(ctx, rawURL)
	if err != nil {
		h.logger.Warn("Ошибка чтения кэша результатов", "url", rawURL, "error", err)
		metrics.RecordCacheLookup("error")

		return nil
	}

	if cached == nil {
		metrics.RecordCacheLookup("miss")
		return nil
	}

	metrics.RecordCacheLookup("hit")

	return cached
}

func (h *Handler) store(ctx context.Context, rawURL string, result *models.CheckResult) {
	if h.cache == nil {
		return
	}

	if err := h.cache.Set(ctx, rawURL, result); err != nil {
		h.logger.Warn("Ошибка записи в кэш результатов", "url", rawURL, "error", err)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}
