// Точка входа Storage API — сервис приёма файлов системы DeadTrees.
// Загружает конфигурацию, применяет миграции и подключается к PostgreSQL,
// создаёт файловое хранилище и клиент identity-провайдера, собирает
// сервисный слой и API handlers, запускает topologymetrics и HTTP-сервер
// с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deadtrees/storage-api/internal/api/handlers"
	"github.com/deadtrees/storage-api/internal/config"
	"github.com/deadtrees/storage-api/internal/database"
	"github.com/deadtrees/storage-api/internal/identity"
	"github.com/deadtrees/storage-api/internal/repository"
	"github.com/deadtrees/storage-api/internal/server"
	"github.com/deadtrees/storage-api/internal/service"
	"github.com/deadtrees/storage-api/internal/storage/filestore"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Storage API запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("upload_dir", cfg.UploadDir),
	)

	if os.Getenv("SA_DEPHEALTH_GROUP") == "" {
		logger.Warn("SA_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 5. Файловое хранилище
	store, err := filestore.New(cfg.UploadDir)
	if err != nil {
		logger.Error("Ошибка инициализации файлового хранилища",
			slog.String("upload_dir", cfg.UploadDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// 6. Клиент identity-провайдера
	idClient := identity.New(cfg.IdentityURL, cfg.IdentityKey, nil, logger)
	logger.Info("Identity клиент создан", slog.String("url", cfg.IdentityURL))

	// 7. Repository
	uploadRepo, err := repository.NewUploadRepository(pool, cfg.MetadataTable)
	if err != nil {
		logger.Error("Ошибка создания repository",
			slog.String("table", cfg.MetadataTable),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// 8. Сервисный слой
	uploadSvc := service.NewUploadService(idClient, store, uploadRepo, logger)

	// 9. Readiness checkers (PostgreSQL + identity-провайдер)
	checkers := map[string]handlers.ReadinessChecker{
		"database": database.NewReadinessChecker(pool),
		"identity": idClient,
	}

	// 10. API handlers
	apiHandler := handlers.NewAPIHandler(
		handlers.NewAuthHandler(idClient, logger),
		handlers.NewUploadHandler(uploadSvc),
		handlers.NewInfoHandler(),
		handlers.NewHealthHandler(cfg.UploadDir, checkers),
		promhttp.Handler(),
	)

	// 11. topologymetrics — мониторинг identity-провайдера
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"storage-api",
		cfg.DephealthGroup,
		cfg.DephealthDepName,
		cfg.IdentityURL+"/auth/v1/health",
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 12. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, apiHandler)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 13. Graceful shutdown фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Storage API остановлен")
}
