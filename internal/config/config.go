// Пакет config — загрузка и валидация конфигурации Storage API
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Storage API.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration

	// --- Хранилище файлов ---

	// Путь к директории загрузок
	UploadDir string

	// --- Identity-провайдер ---

	// Базовый URL identity-провайдера (GoTrue-совместимый API)
	IdentityURL string
	// Сервисный API-ключ identity-провайдера
	IdentityKey string

	// --- PostgreSQL (хранилище метаданных) ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string
	// Имя таблицы метаданных
	MetadataTable string

	// --- topologymetrics ---

	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration
	// Имя группы в метриках (SA_DEPHEALTH_GROUP)
	DephealthGroup string
	// Имя зависимости (identity-провайдера) в метриках
	DephealthDepName string
}

// metadataTablePattern — допустимое имя таблицы метаданных.
var metadataTablePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// SA_PORT — порт HTTP-сервера (по умолчанию 8000)
	cfg.Port, err = getEnvInt("SA_PORT", 8000)
	if err != nil {
		return nil, fmt.Errorf("SA_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("SA_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// SA_UPLOAD_DIR — обязательный
	cfg.UploadDir, err = getEnvRequired("SA_UPLOAD_DIR")
	if err != nil {
		return nil, err
	}

	// SA_IDENTITY_URL — обязательный
	cfg.IdentityURL, err = getEnvRequired("SA_IDENTITY_URL")
	if err != nil {
		return nil, err
	}

	// SA_IDENTITY_KEY — обязательный
	cfg.IdentityKey, err = getEnvRequired("SA_IDENTITY_KEY")
	if err != nil {
		return nil, err
	}

	// SA_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("SA_DB_HOST")
	if err != nil {
		return nil, err
	}

	// SA_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("SA_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("SA_DB_PORT: %w", err)
	}

	// SA_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("SA_DB_NAME")
	if err != nil {
		return nil, err
	}

	// SA_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("SA_DB_USER")
	if err != nil {
		return nil, err
	}

	// SA_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("SA_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// SA_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("SA_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("SA_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// SA_METADATA_TABLE — имя таблицы метаданных (по умолчанию uploads)
	cfg.MetadataTable = getEnvDefault("SA_METADATA_TABLE", "uploads")
	if !metadataTablePattern.MatchString(cfg.MetadataTable) {
		return nil, fmt.Errorf("SA_METADATA_TABLE: недопустимое имя таблицы %q", cfg.MetadataTable)
	}

	// SA_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("SA_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("SA_LOG_LEVEL: %w", err)
	}

	// SA_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("SA_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("SA_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// SA_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("SA_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SA_SHUTDOWN_TIMEOUT: %w", err)
	}

	// SA_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("SA_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SA_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// SA_DEPHEALTH_GROUP — имя группы в метриках (по умолчанию "storage-api")
	cfg.DephealthGroup = getEnvDefault("SA_DEPHEALTH_GROUP", "storage-api")

	// SA_DEPHEALTH_DEP_NAME — имя зависимости в метриках (по умолчанию "identity-provider")
	cfg.DephealthDepName = getEnvDefault("SA_DEPHEALTH_DEP_NAME", "identity-provider")

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 6h)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
