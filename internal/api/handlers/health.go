// health.go — обработчики health endpoints для Kubernetes probes.
package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/deadtrees/storage-api/internal/config"
)

// statusFail — строковая константа для статуса "fail" в health checks.
const statusFail = "fail"

// ReadinessChecker — проверка готовности одной зависимости.
// Возвращает статус ("ok", "fail", "degraded") и сообщение.
type ReadinessChecker interface {
	CheckReady() (status string, message string)
}

// HealthHandler реализует health endpoints: /health/live, /health/ready.
type HealthHandler struct {
	version string
	// uploadDir — путь к директории загрузок (для проверки FS)
	uploadDir string
	// checkers — именованные проверки внешних зависимостей
	// (postgres, identity-провайдер)
	checkers map[string]ReadinessChecker
}

// NewHealthHandler создаёт обработчик health endpoints.
func NewHealthHandler(uploadDir string, checkers map[string]ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		version:   config.Version,
		uploadDir: uploadDir,
		checkers:  checkers,
	}
}

// HealthLive обрабатывает GET /health/live.
// Возвращает 200, если процесс жив. Не проверяет зависимости.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.version,
		"service":   "storage-api",
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthReady обрабатывает GET /health/ready.
// Проверяет: запись в директорию загрузок и все зарегистрированные
// проверки зависимостей. Любой fail → 503.
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	overallStatus := "ok"
	httpStatus := http.StatusOK

	checks := map[string]any{}

	// Проверка файловой системы
	fsCheck := h.checkFilesystem()
	checks["filesystem"] = fsCheck
	if fsCheck["status"] != "ok" {
		overallStatus = statusFail
		httpStatus = http.StatusServiceUnavailable
	}

	// Проверки внешних зависимостей
	for name, checker := range h.checkers {
		status, message := checker.CheckReady()
		checks[name] = map[string]any{
			"status":  status,
			"message": message,
		}
		if status == statusFail {
			overallStatus = statusFail
			httpStatus = http.StatusServiceUnavailable
		} else if status != "ok" && overallStatus == "ok" {
			overallStatus = "degraded"
		}
	}

	resp := map[string]any{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.version,
		"checks":    checks,
	}

	writeJSON(w, httpStatus, resp)
}

// checkFilesystem проверяет, что директория загрузок доступна на запись.
func (h *HealthHandler) checkFilesystem() map[string]any {
	probe := filepath.Join(h.uploadDir, ".health-probe")

	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return map[string]any{
			"status":  statusFail,
			"message": "директория загрузок недоступна на запись: " + err.Error(),
		}
	}
	_ = os.Remove(probe)

	return map[string]any{
		"status":  "ok",
		"message": "директория загрузок доступна на запись",
	}
}
