package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

// saEnvKeys — все переменные окружения SA_* для чистого теста.
var saEnvKeys = []string{
	"SA_PORT", "SA_UPLOAD_DIR",
	"SA_IDENTITY_URL", "SA_IDENTITY_KEY",
	"SA_DB_HOST", "SA_DB_PORT", "SA_DB_NAME", "SA_DB_USER",
	"SA_DB_PASSWORD", "SA_DB_SSL_MODE", "SA_METADATA_TABLE",
	"SA_LOG_LEVEL", "SA_LOG_FORMAT", "SA_SHUTDOWN_TIMEOUT",
	"SA_DEPHEALTH_CHECK_INTERVAL", "SA_DEPHEALTH_GROUP", "SA_DEPHEALTH_DEP_NAME",
}

// setEnv очищает все SA_* переменные и устанавливает переданные.
// Восстановление выполняется через t.Setenv / os.Unsetenv в cleanup.
func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()

	for _, k := range saEnvKeys {
		if v, ok := os.LookupEnv(k); ok {
			t.Setenv(k, v) // регистрирует восстановление
			os.Unsetenv(k)
		}
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

// requiredEnv возвращает минимальный набор обязательных переменных.
func requiredEnv() map[string]string {
	return map[string]string{
		"SA_UPLOAD_DIR":   "/data/uploads",
		"SA_IDENTITY_URL": "https://identity.example.com",
		"SA_IDENTITY_KEY": "service-key",
		"SA_DB_HOST":      "localhost",
		"SA_DB_NAME":      "metadata",
		"SA_DB_USER":      "storage",
		"SA_DB_PASSWORD":  "secret",
	}
}

// TestLoad_Defaults проверяет значения по умолчанию.
func TestLoad_Defaults(t *testing.T) {
	setEnv(t, requiredEnv())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("ошибка загрузки конфигурации: %v", err)
	}

	if cfg.Port != 8000 {
		t.Errorf("Port: ожидалось 8000, получено %d", cfg.Port)
	}
	if cfg.DBPort != 5432 {
		t.Errorf("DBPort: ожидалось 5432, получено %d", cfg.DBPort)
	}
	if cfg.DBSSLMode != "disable" {
		t.Errorf("DBSSLMode: ожидалось disable, получено %s", cfg.DBSSLMode)
	}
	if cfg.MetadataTable != "uploads" {
		t.Errorf("MetadataTable: ожидалось uploads, получено %s", cfg.MetadataTable)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel: ожидалось info, получено %v", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat: ожидалось json, получено %s", cfg.LogFormat)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout: ожидалось 5s, получено %v", cfg.ShutdownTimeout)
	}
	if cfg.DephealthCheckInterval != 15*time.Second {
		t.Errorf("DephealthCheckInterval: ожидалось 15s, получено %v", cfg.DephealthCheckInterval)
	}
	if cfg.DephealthGroup != "storage-api" {
		t.Errorf("DephealthGroup: ожидалось storage-api, получено %s", cfg.DephealthGroup)
	}
}

// TestLoad_MissingRequired проверяет ошибку при отсутствии обязательной переменной.
func TestLoad_MissingRequired(t *testing.T) {
	for _, missing := range []string{"SA_UPLOAD_DIR", "SA_IDENTITY_URL", "SA_IDENTITY_KEY", "SA_DB_HOST", "SA_DB_NAME", "SA_DB_USER", "SA_DB_PASSWORD"} {
		t.Run(missing, func(t *testing.T) {
			vars := requiredEnv()
			delete(vars, missing)
			setEnv(t, vars)

			if _, err := Load(); err == nil {
				t.Errorf("ожидалась ошибка при отсутствии %s", missing)
			}
		})
	}
}

// TestLoad_CustomValues проверяет переопределение значений.
func TestLoad_CustomValues(t *testing.T) {
	vars := requiredEnv()
	vars["SA_PORT"] = "9090"
	vars["SA_DB_PORT"] = "5433"
	vars["SA_METADATA_TABLE"] = "drone_uploads"
	vars["SA_LOG_LEVEL"] = "debug"
	vars["SA_LOG_FORMAT"] = "text"
	vars["SA_SHUTDOWN_TIMEOUT"] = "30s"
	setEnv(t, vars)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("ошибка загрузки конфигурации: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port: ожидалось 9090, получено %d", cfg.Port)
	}
	if cfg.DBPort != 5433 {
		t.Errorf("DBPort: ожидалось 5433, получено %d", cfg.DBPort)
	}
	if cfg.MetadataTable != "drone_uploads" {
		t.Errorf("MetadataTable: получено %s", cfg.MetadataTable)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel: ожидалось debug, получено %v", cfg.LogLevel)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout: ожидалось 30s, получено %v", cfg.ShutdownTimeout)
	}
}

// TestLoad_InvalidValues проверяет отклонение некорректных значений.
func TestLoad_InvalidValues(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
	}{
		{"некорректный порт", "SA_PORT", "abc"},
		{"порт вне диапазона", "SA_PORT", "70000"},
		{"некорректный уровень логов", "SA_LOG_LEVEL", "verbose"},
		{"некорректный формат логов", "SA_LOG_FORMAT", "xml"},
		{"некорректный SSL-режим", "SA_DB_SSL_MODE", "maybe"},
		{"некорректная длительность", "SA_SHUTDOWN_TIMEOUT", "30 seconds"},
		{"SQL-инъекция в имени таблицы", "SA_METADATA_TABLE", "uploads; DROP TABLE users"},
		{"имя таблицы с заглавными", "SA_METADATA_TABLE", "Uploads"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vars := requiredEnv()
			vars[tc.key] = tc.val
			setEnv(t, vars)

			if _, err := Load(); err == nil {
				t.Errorf("%s=%q: ожидалась ошибка", tc.key, tc.val)
			}
		})
	}
}

// TestDatabaseDSN проверяет формирование строки подключения.
func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db.example.com",
		DBPort:     5433,
		DBName:     "metadata",
		DBUser:     "storage",
		DBPassword: "secret",
		DBSSLMode:  "require",
	}

	want := "host=db.example.com port=5433 dbname=metadata user=storage password=secret sslmode=require"
	if got := cfg.DatabaseDSN(); got != want {
		t.Errorf("DSN:\nожидалось %s\nполучено  %s", want, got)
	}
}
