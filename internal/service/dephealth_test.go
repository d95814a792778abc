package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TestNewDephealthService проверяет создание сервиса мониторинга
// с изолированным Prometheus registry.
func TestNewDephealthService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc, err := NewDephealthServiceWithRegisterer(
		"storage-api",
		"test-group",
		"identity-provider",
		srv.URL+"/auth/v1/health",
		time.Second,
		testLogger(),
		prometheus.NewRegistry(),
	)
	if err != nil {
		t.Fatalf("ошибка создания dephealth-сервиса: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.Start(ctx); err != nil {
		t.Fatalf("ошибка запуска мониторинга: %v", err)
	}
	svc.Stop()
}
