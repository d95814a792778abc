// Пакет model — доменные модели Storage API.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Platform — платформа съёмки исходных данных.
type Platform string

// Допустимые платформы.
const (
	PlatformDrone     Platform = "drone"
	PlatformAirborne  Platform = "airborne"
	PlatformSatellite Platform = "satellite"
)

// ParsePlatform валидирует строку платформы.
// Возвращает ошибку для значений вне закрытого перечисления.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case PlatformDrone, PlatformAirborne, PlatformSatellite:
		return Platform(s), nil
	default:
		return "", fmt.Errorf("недопустимая платформа %q, допустимые: drone, airborne, satellite", s)
	}
}

// License — лицензия загружаемых данных.
type License string

// Допустимые лицензии.
const (
	LicenseCCBY   License = "cc-by"
	LicenseCCBYSA License = "cc-by-sa"
)

// ParseLicense валидирует строку лицензии.
func ParseLicense(s string) (License, error) {
	switch License(s) {
	case LicenseCCBY, LicenseCCBYSA:
		return License(s), nil
	default:
		return "", fmt.Errorf("недопустимая лицензия %q, допустимые: cc-by, cc-by-sa", s)
	}
}

// Status — статус обработки загруженного файла.
// Storage API всегда создаёт записи в статусе pending;
// дальнейшие переходы выполняет downstream-обработка.
type Status string

// Допустимые статусы.
const (
	StatusPending     Status = "pending"
	StatusProcessing  Status = "processing"
	StatusErrored     Status = "errored"
	StatusProcessed   Status = "processed"
	StatusAudited     Status = "audited"
	StatusAuditFailed Status = "audit_failed"
)

// ParseStatus валидирует строку статуса.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusProcessing, StatusErrored,
		StatusProcessed, StatusAudited, StatusAuditFailed:
		return Status(s), nil
	default:
		return "", fmt.Errorf("недопустимый статус %q", s)
	}
}

// UploadRecord — метаданные одной загрузки.
// Запись создаётся ровно один раз в конце успешной загрузки
// и этим компонентом никогда не изменяется и не удаляется.
type UploadRecord struct {
	// UserID — идентификатор загрузившего (из токена сессии)
	UserID string `json:"user_id"`
	// AcquisitionDate — момент съёмки исходных данных (задаёт клиент)
	AcquisitionDate time.Time `json:"acquisition_date"`
	// UploadDate — момент загрузки (задаёт сервер, UTC)
	UploadDate time.Time `json:"upload_date"`
	// FileName — оригинальное имя файла от клиента (не доверенное)
	FileName string `json:"file_name"`
	// ContentType — MIME-тип, заявленный клиентом (не доверенный)
	ContentType string `json:"content_type"`
	// FileSize — размер в байтах, измеренный сервером из потока
	FileSize int64 `json:"file_size"`
	// TargetPath — путь файла на диске сервера
	TargetPath string `json:"target_path"`
	// CopyTime — длительность записи на диск в секундах
	CopyTime float64 `json:"copy_time"`
	// Identifier — серверный UUID загрузки, единственный источник
	// уникальности TargetPath
	Identifier string `json:"identifier"`
	// ContentHash — SHA-256 файла на диске, lowercase hex
	ContentHash string `json:"content_hash"`
	// Platform — платформа съёмки
	Platform Platform `json:"platform"`
	// License — лицензия данных
	License License `json:"license"`
	// Status — статус обработки, всегда pending при создании
	Status Status `json:"status"`
}

// FileID — логический ключ артефакта на диске: {identifier}_{file_name}.
func (r *UploadRecord) FileID() string {
	return fmt.Sprintf("%s_%s", r.Identifier, r.FileName)
}

// MarshalJSON сериализует запись с вычисляемым полем file_id
// и датами в формате ISO-8601 (RFC 3339).
func (r *UploadRecord) MarshalJSON() ([]byte, error) {
	type alias UploadRecord
	return json.Marshal(struct {
		*alias
		AcquisitionDate string `json:"acquisition_date"`
		UploadDate      string `json:"upload_date"`
		FileID          string `json:"file_id"`
	}{
		alias:           (*alias)(r),
		AcquisitionDate: r.AcquisitionDate.UTC().Format(time.RFC3339),
		UploadDate:      r.UploadDate.UTC().Format(time.RFC3339),
		FileID:          r.FileID(),
	})
}
