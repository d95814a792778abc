// metrics.go — Prometheus HTTP метрики для Storage API.
// Регистрирует метрики: sa_http_requests_total, sa_http_request_duration_seconds.
// Бизнес-метрики загрузок обновляются из сервисного слоя.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sa_http_requests_total",
			Help: "Общее количество HTTP-запросов к Storage API",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sa_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к Storage API в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Бизнес-метрики (экспортируются для обновления из сервисного слоя)
var (
	// UploadsTotal — общее количество загрузок по результату.
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sa_uploads_total",
			Help: "Общее количество загрузок файлов по результату",
		},
		[]string{"result"},
	)

	// UploadedBytes — суммарный объём успешно загруженных данных.
	UploadedBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sa_uploaded_bytes_total",
			Help: "Суммарный объём успешно загруженных данных в байтах",
		},
	)

	// LoginsTotal — количество логинов по результату.
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sa_logins_total",
			Help: "Количество обменов учётных данных на токен по результату",
		},
		[]string{"result"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			// Пути фиксированные (без path-параметров),
			// нормализация не требуется
			httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
