// info.go — обработчик GET / с информацией о сервисе.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/deadtrees/storage-api/internal/config"
)

// InfoResponse — ответ GET /.
type InfoResponse struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Version     string         `json:"version"`
	Endpoints   []EndpointInfo `json:"endpoints"`
}

// EndpointInfo — описание одного endpoint'а.
type EndpointInfo struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// InfoHandler — обработчик информационного endpoint'а.
type InfoHandler struct {
	version string
}

// NewInfoHandler создаёт обработчик информационного endpoint'а.
func NewInfoHandler() *InfoHandler {
	return &InfoHandler{version: config.Version}
}

// Info обрабатывает GET /.
// Возвращает имя сервиса и список endpoints с абсолютными URL.
func (h *InfoHandler) Info(w http.ResponseWriter, r *http.Request) {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	base := fmt.Sprintf("%s://%s", scheme, r.Host)

	resp := InfoResponse{
		Name:        "Storage API",
		Description: "Сервис приёма файлов: аутентифицированная загрузка с регистрацией метаданных.",
		Version:     h.version,
		Endpoints: []EndpointInfo{
			{URL: base + "/", Description: "Информация о сервисе."},
			{URL: base + "/token", Description: "Обмен учётных данных на токен сессии."},
			{URL: base + "/upload", Description: "Загрузка файла с метаданными."},
			{URL: base + "/health/live", Description: "Liveness probe."},
			{URL: base + "/health/ready", Description: "Readiness probe."},
			{URL: base + "/metrics", Description: "Prometheus метрики."},
		},
	}

	writeJSON(w, http.StatusOK, resp)
}
