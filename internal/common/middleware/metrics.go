package middleware

import (
	"net/http"
	"time"

	"github.com/central-university-dev/go-linkchecker/internal/common/metrics"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

type MetricsMiddleware struct {
	serviceName string
	endpoints   map[string]struct{}
}

// NewMetricsMiddleware записывает метрики запросов. Пути вне endpoints
// попадают под метку "other", чтобы не раздувать кардинальность.
func NewMetricsMiddleware(serviceName string, endpoints ...string) *MetricsMiddleware {
	known := make(map[string]struct{}, len(endpoints))
	for _, e := range endpoints {
		known[e] = struct{}{}
	}

	return &MetricsMiddleware{
		serviceName: serviceName,
		endpoints:   known,
	}
}

func (m *MetricsMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		metrics.RecordHTTPRequest(
			m.serviceName,
			r.Method,
			m.endpoint(r.URL.Path),
			rw.statusCode,
			time.Since(start),
		)
	})
}

func (m *MetricsMiddleware) endpoint(path string) string {
	if len(m.endpoints) == 0 {
		return path
	}

	if _, ok := m.endpoints[path]; ok {
		return path
	}

	return "other"
}
