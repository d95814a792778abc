// upload.go — сервис загрузки файлов: последовательность
// аутентификация → валидация → генерация идентификатора →
// проверка коллизии → запись → хэш → вставка метаданных.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apierrors "github.com/deadtrees/storage-api/internal/api/errors"
	"github.com/deadtrees/storage-api/internal/api/middleware"
	"github.com/deadtrees/storage-api/internal/domain/model"
	"github.com/deadtrees/storage-api/internal/identity"
	"github.com/deadtrees/storage-api/internal/repository"
	"github.com/deadtrees/storage-api/internal/storage/filestore"
)

// acquisitionDateLayouts — принимаемые форматы acquisition_date.
// ISO-8601 с зоной, без зоны и дата без времени.
var acquisitionDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UploadParams — параметры загрузки файла.
type UploadParams struct {
	// Token — bearer-токен из заголовка Authorization
	Token string
	// Reader — поток данных файла
	Reader io.Reader
	// FileName — оригинальное имя файла от клиента
	FileName string
	// ContentType — MIME-тип, заявленный клиентом (может быть пустым)
	ContentType string
	// Platform — платформа съёмки (строка формы, валидируется)
	Platform string
	// License — лицензия (строка формы, валидируется)
	License string
	// AcquisitionDate — момент съёмки (строка формы, валидируется)
	AcquisitionDate string
}

// UploadError — ошибка загрузки с HTTP-кодом.
type UploadError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UploadService — сервис загрузки файлов.
type UploadService struct {
	auth   Authenticator
	store  *filestore.FileStore
	repo   repository.UploadRepository
	logger *slog.Logger

	// newID — генератор идентификатора загрузки.
	// Подменяется в тестах для детерминированных путей.
	newID func() string
}

// NewUploadService создаёт сервис загрузки файлов.
func NewUploadService(
	auth Authenticator,
	store *filestore.FileStore,
	repo repository.UploadRepository,
	logger *slog.Logger,
) *UploadService {
	return &UploadService{
		auth:   auth,
		store:  store,
		repo:   repo,
		logger: logger.With(slog.String("component", "upload_service")),
		newID:  func() string { return uuid.New().String() },
	}
}

// Upload выполняет загрузку файла.
//
// Поток:
//  1. VerifyToken — до любого I/O
//  2. Валидация platform, license, acquisition_date — до любого I/O
//  3. Генерация identifier (UUID) и композиция target_path
//  4. Проверка коллизии target_path — fail, не overwrite
//  5. Запись потока на диск с измерением copy_time
//  6. SHA-256 по файлу на диске (повторное чтение)
//  7. Сборка записи (upload_date = now UTC, status = pending)
//  8. Вставка метаданных; при отказе файл остаётся на диске
//
// Ретраев нет, каждый отказ немедленно прерывает запрос.
func (s *UploadService) Upload(ctx context.Context, params UploadParams) (*model.UploadRecord, *UploadError) {
	// 1. Аутентификация — до любого обращения к хранилищам
	userID, err := s.auth.VerifyToken(ctx, params.Token)
	if err != nil {
		middleware.UploadsTotal.WithLabelValues("unauthorized").Inc()
		if !errors.Is(err, identity.ErrAuthentication) {
			// Любой отказ проверки токена — 401, не 5xx
			s.logger.Warn("Неожиданная ошибка проверки токена",
				slog.String("error", err.Error()),
			)
		}
		return nil, &UploadError{
			StatusCode: 401,
			Code:       apierrors.CodeUnauthorized,
			Message:    "Невалидный или просроченный токен",
		}
	}

	// 2. Валидация закрытых перечислений и даты — до любого I/O
	platform, err := model.ParsePlatform(params.Platform)
	if err != nil {
		middleware.UploadsTotal.WithLabelValues("invalid").Inc()
		return nil, &UploadError{
			StatusCode: 400,
			Code:       apierrors.CodeValidationError,
			Message:    err.Error(),
		}
	}

	license, err := model.ParseLicense(params.License)
	if err != nil {
		middleware.UploadsTotal.WithLabelValues("invalid").Inc()
		return nil, &UploadError{
			StatusCode: 400,
			Code:       apierrors.CodeValidationError,
			Message:    err.Error(),
		}
	}

	acquisitionDate, err := parseAcquisitionDate(params.AcquisitionDate)
	if err != nil {
		middleware.UploadsTotal.WithLabelValues("invalid").Inc()
		return nil, &UploadError{
			StatusCode: 400,
			Code:       apierrors.CodeValidationError,
			Message:    err.Error(),
		}
	}

	// 3. Генерируем identifier и компонуем target_path
	identifier := s.newID()
	targetPath := s.store.TargetPath(identifier, params.FileName)

	// 4. Проверка коллизии. Политика — fail, не rename и не overwrite.
	// Вероятность коллизии UUID пренебрежимо мала, но проверка обязательна.
	if s.store.Exists(targetPath) {
		middleware.UploadsTotal.WithLabelValues("conflict").Inc()
		return nil, &UploadError{
			StatusCode: 409,
			Code:       apierrors.CodeConflict,
			Message:    fmt.Sprintf("Файл уже существует: %s", targetPath),
		}
	}

	// 5. Запись потока на диск с измерением copy_time.
	// При ошибке частичный файл удаляется внутри Save.
	saved, err := s.store.Save(params.Reader, targetPath)
	if err != nil {
		middleware.UploadsTotal.WithLabelValues("storage_error").Inc()
		s.logger.Error("Ошибка записи файла",
			slog.String("identifier", identifier),
			slog.String("target_path", targetPath),
			slog.String("error", err.Error()),
		)
		return nil, &UploadError{
			StatusCode: 500,
			Code:       apierrors.CodeStorageError,
			Message:    fmt.Sprintf("Ошибка записи файла: %s", err.Error()),
		}
	}

	// 6. SHA-256 по байтам на диске, не по исходному потоку:
	// хэш валидирует persisted-артефакт и ловит порчу при записи
	contentHash, err := s.store.ComputeChecksum(targetPath)
	if err != nil {
		middleware.UploadsTotal.WithLabelValues("storage_error").Inc()
		s.logger.Error("Ошибка вычисления хэша",
			slog.String("identifier", identifier),
			slog.String("target_path", targetPath),
			slog.String("error", err.Error()),
		)
		return nil, &UploadError{
			StatusCode: 500,
			Code:       apierrors.CodeStorageError,
			Message:    fmt.Sprintf("Ошибка вычисления хэша файла: %s", err.Error()),
		}
	}

	// 7. Сборка записи
	record := &model.UploadRecord{
		UserID:          userID,
		AcquisitionDate: acquisitionDate,
		UploadDate:      time.Now().UTC(),
		FileName:        filestore.SanitizeFilename(params.FileName),
		ContentType:     params.ContentType,
		FileSize:        saved.Size,
		TargetPath:      targetPath,
		CopyTime:        saved.CopyTime.Seconds(),
		Identifier:      identifier,
		ContentHash:     contentHash,
		Platform:        platform,
		License:         license,
		Status:          model.StatusPending,
	}

	// 8. Вставка метаданных. При отказе файл на диске НЕ удаляется —
	// осознанно задокументированное поведение (осиротевший файл
	// остаётся для ручного разбора), ошибка хранилища
	// пробрасывается вызывающему для диагностики.
	if err := s.repo.Insert(ctx, record); err != nil {
		middleware.UploadsTotal.WithLabelValues("storage_error").Inc()
		s.logger.Error("Ошибка вставки метаданных, файл остаётся на диске",
			slog.String("identifier", identifier),
			slog.String("target_path", targetPath),
			slog.String("error", err.Error()),
		)
		return nil, &UploadError{
			StatusCode: 500,
			Code:       apierrors.CodeStorageError,
			Message:    fmt.Sprintf("Ошибка вставки метаданных: %s", err.Error()),
		}
	}

	// Метрики
	middleware.UploadsTotal.WithLabelValues("success").Inc()
	middleware.UploadedBytes.Add(float64(saved.Size))

	s.logger.Info("Файл загружен",
		slog.String("identifier", identifier),
		slog.String("file_name", record.FileName),
		slog.Int64("file_size", record.FileSize),
		slog.String("content_hash", contentHash),
		slog.String("user_id", userID),
		slog.String("platform", string(platform)),
		slog.Float64("copy_time", record.CopyTime),
	)

	return record, nil
}

// parseAcquisitionDate парсит acquisition_date в одном из принимаемых форматов.
// Время без зоны трактуется как UTC.
func parseAcquisitionDate(value string) (time.Time, error) {
	for _, layout := range acquisitionDateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("некорректная acquisition_date %q, ожидается ISO-8601", value)
}
