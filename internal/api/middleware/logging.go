// logging.go — middleware структурированного логирования HTTP-запросов.
package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// RequestLogger возвращает middleware, логирующее каждый HTTP-запрос:
// метод, путь, статус, длительность, адрес клиента.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			logger.Info("HTTP запрос",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}
