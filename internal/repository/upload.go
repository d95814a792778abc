package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/deadtrees/storage-api/internal/domain/model"
)

// UploadRepository — доступ к таблице метаданных загрузок.
// Запись создаётся один раз при загрузке; обновления и удаления
// выполняет downstream-обработка, не этот сервис.
type UploadRepository interface {
	// Insert создаёт запись метаданных загрузки.
	Insert(ctx context.Context, rec *model.UploadRecord) error
	// GetByIdentifier возвращает запись по UUID загрузки.
	GetByIdentifier(ctx context.Context, identifier string) (*model.UploadRecord, error)
	// List возвращает записи страницей, новые первыми.
	List(ctx context.Context, limit, offset int) ([]*model.UploadRecord, error)
	// Count возвращает количество записей.
	Count(ctx context.Context) (int, error)
}

// uploadRepo — реализация UploadRepository.
type uploadRepo struct {
	db    DBTX
	table string
}

// NewUploadRepository создаёт репозиторий метаданных загрузок.
// table — имя таблицы из конфигурации (SA_METADATA_TABLE),
// валидированное на старте.
func NewUploadRepository(db DBTX, table string) (UploadRepository, error) {
	if !ValidTableName(table) {
		return nil, fmt.Errorf("недопустимое имя таблицы метаданных: %q", table)
	}
	return &uploadRepo{db: db, table: table}, nil
}

func (r *uploadRepo) Insert(ctx context.Context, rec *model.UploadRecord) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (identifier, user_id, acquisition_date, upload_date, file_name,
			content_type, file_size, target_path, copy_time, content_hash,
			platform, license, status, file_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`, r.table)

	_, err := r.db.Exec(ctx, query,
		rec.Identifier, rec.UserID, rec.AcquisitionDate, rec.UploadDate, rec.FileName,
		rec.ContentType, rec.FileSize, rec.TargetPath, rec.CopyTime, rec.ContentHash,
		string(rec.Platform), string(rec.License), string(rec.Status), rec.FileID(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: загрузка с таким идентификатором уже зарегистрирована", ErrConflict)
		}
		return fmt.Errorf("ошибка вставки метаданных загрузки: %w", err)
	}
	return nil
}

// uploadColumns — список колонок для SELECT (порядок совпадает со scanUpload).
const uploadColumns = `identifier, user_id, acquisition_date, upload_date, file_name,
		content_type, file_size, target_path, copy_time, content_hash,
		platform, license, status`

// scanUpload сканирует строку в UploadRecord.
func scanUpload(row pgx.Row) (*model.UploadRecord, error) {
	rec := &model.UploadRecord{}
	var platform, license, status string
	err := row.Scan(
		&rec.Identifier, &rec.UserID, &rec.AcquisitionDate, &rec.UploadDate, &rec.FileName,
		&rec.ContentType, &rec.FileSize, &rec.TargetPath, &rec.CopyTime, &rec.ContentHash,
		&platform, &license, &status,
	)
	if err != nil {
		return nil, err
	}
	rec.Platform = model.Platform(platform)
	rec.License = model.License(license)
	rec.Status = model.Status(status)
	return rec, nil
}

func (r *uploadRepo) GetByIdentifier(ctx context.Context, identifier string) (*model.UploadRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE identifier = $1`, uploadColumns, r.table)

	rec, err := scanUpload(r.db.QueryRow(ctx, query, identifier))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения метаданных загрузки: %w", err)
	}
	return rec, nil
}

func (r *uploadRepo) List(ctx context.Context, limit, offset int) ([]*model.UploadRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY upload_date DESC
		LIMIT $1 OFFSET $2`, uploadColumns, r.table)

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка загрузок: %w", err)
	}
	defer rows.Close()

	var result []*model.UploadRecord
	for rows.Next() {
		rec, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования загрузки: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

func (r *uploadRepo) Count(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.table)

	var count int
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта загрузок: %w", err)
	}
	return count, nil
}
