// handler.go — APIHandler собирает доменные handlers Storage API
// и регистрирует маршруты в chi-роутере.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// APIHandler — единый handler для всех endpoints.
type APIHandler struct {
	auth    *AuthHandler
	upload  *UploadHandler
	info    *InfoHandler
	health  *HealthHandler
	metrics http.Handler
}

// NewAPIHandler создаёт единый handler для всех endpoints.
// metrics — обработчик /metrics (promhttp).
func NewAPIHandler(
	auth *AuthHandler,
	upload *UploadHandler,
	info *InfoHandler,
	health *HealthHandler,
	metrics http.Handler,
) *APIHandler {
	return &APIHandler{
		auth:    auth,
		upload:  upload,
		info:    info,
		health:  health,
		metrics: metrics,
	}
}

// RegisterRoutes регистрирует все маршруты Storage API.
func (h *APIHandler) RegisterRoutes(router chi.Router) {
	router.Get("/", h.info.Info)
	router.Post("/token", h.auth.Token)
	router.Post("/upload", h.upload.Upload)
	router.Get("/health/live", h.health.HealthLive)
	router.Get("/health/ready", h.health.HealthReady)
	router.Method(http.MethodGet, "/metrics", h.metrics)
}

// writeJSON вспомогательная функция для записи JSON-ответа.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}
