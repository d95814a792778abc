// Пакет filestore — операции с файлами в директории загрузок.
// Обеспечивает композицию целевого пути {identifier}_{file_name},
// проверку коллизий, измеряемую streaming-запись и повторное
// чтение с подсчётом SHA-256.
package filestore

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStore — управление файлами в директории загрузок.
type FileStore struct {
	// uploadDir — корневая директория загрузок (SA_UPLOAD_DIR)
	uploadDir string
}

// SaveResult — результат записи файла на диск.
type SaveResult struct {
	// TargetPath — абсолютный путь записанного файла
	TargetPath string
	// Size — размер записанных данных в байтах
	Size int64
	// CopyTime — длительность записи
	CopyTime time.Duration
}

// New создаёт новый FileStore. Создаёт директорию загрузок,
// если она не существует.
func New(uploadDir string) (*FileStore, error) {
	if err := os.MkdirAll(uploadDir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию загрузок %s: %w", uploadDir, err)
	}

	return &FileStore{uploadDir: uploadDir}, nil
}

// TargetPath компонует путь файла на диске: {uploadDir}/{identifier}_{fileName}.
// Имя файла предварительно очищается от path-разделителей (SanitizeFilename),
// схема именования {identifier}_{file_name} при этом сохраняется —
// на неё полагаются downstream-потребители.
func (fs *FileStore) TargetPath(identifier, fileName string) string {
	return filepath.Join(fs.uploadDir, fmt.Sprintf("%s_%s", identifier, SanitizeFilename(fileName)))
}

// Exists проверяет существование файла по абсолютному пути.
func (fs *FileStore) Exists(targetPath string) bool {
	_, err := os.Stat(targetPath)
	return err == nil
}

// Save записывает данные из reader в targetPath, измеряя длительность записи.
//
// Паттерн: temp файл → запись → fsync → atomic rename.
// При любой ошибке temp файл удаляется — полузаписанный файл
// никогда не появляется под целевым именем.
func (fs *FileStore) Save(reader io.Reader, targetPath string) (*SaveResult, error) {
	tmpPath := targetPath + ".tmp"

	start := time.Now()

	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	size, err := io.Copy(f, reader)
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка записи данных: %w", err)
	}

	// fsync для гарантии записи на диск
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	// Атомарный rename
	if err := os.Rename(tmpPath, targetPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return &SaveResult{
		TargetPath: targetPath,
		Size:       size,
		CopyTime:   time.Since(start),
	}, nil
}

// ComputeChecksum вычисляет SHA-256 хэш файла на диске (lowercase hex).
// Хэш считается по байтам как они persisted, а не как получены,
// поэтому файл читается повторно с диска.
func (fs *FileStore) ComputeChecksum(targetPath string) (string, error) {
	f, err := os.Open(targetPath)
	if err != nil {
		return "", fmt.Errorf("ошибка открытия файла %s: %w", targetPath, err)
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("ошибка вычисления checksum %s: %w", targetPath, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Remove удаляет файл с диска (best effort при откате).
// Возвращает nil, если файл уже не существует.
func (fs *FileStore) Remove(targetPath string) error {
	err := os.Remove(targetPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления файла %s: %w", targetPath, err)
	}
	return nil
}

// UploadDir возвращает путь к директории загрузок.
func (fs *FileStore) UploadDir() string {
	return fs.uploadDir
}

// SanitizeFilename убирает path-разделители и traversal-последовательности
// из клиентского имени файла. Берётся только базовое имя,
// ".." схлопывается, пустой результат заменяется на "file".
func SanitizeFilename(name string) string {
	// Клиентские имена могут содержать разделители обеих платформ
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")

	if name == "" || name == "." || name == "/" {
		return "file"
	}
	return name
}
