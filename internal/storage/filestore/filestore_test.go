package filestore

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNew_CreatesDirectory проверяет создание директории загрузок.
func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")

	fs, err := New(dir)
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	if fs.UploadDir() != dir {
		t.Errorf("ожидался путь %s, получен %s", dir, fs.UploadDir())
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("директория не создана: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("путь не является директорией")
	}
}

// TestTargetPath проверяет схему именования {identifier}_{file_name}.
func TestTargetPath(t *testing.T) {
	dir := t.TempDir()
	fs, err := New(dir)
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	got := fs.TargetPath("a1b2c3", "photo.jpg")
	want := filepath.Join(dir, "a1b2c3_photo.jpg")
	if got != want {
		t.Errorf("ожидался путь %s, получен %s", want, got)
	}
}

// TestTargetPath_SanitizesFilename проверяет, что клиентское имя
// с path-компонентами не выводит путь за пределы директории загрузок.
func TestTargetPath_SanitizesFilename(t *testing.T) {
	dir := t.TempDir()
	fs, err := New(dir)
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	cases := []string{
		"../../etc/passwd",
		"/etc/passwd",
		"..\\..\\windows\\system32",
		"dir/sub/photo.jpg",
	}

	for _, name := range cases {
		got := fs.TargetPath("id", name)
		if filepath.Dir(got) != dir {
			t.Errorf("%q: путь вышел за пределы директории загрузок: %s", name, got)
		}
		if strings.Contains(filepath.Base(got), "..") {
			t.Errorf("%q: имя содержит traversal-последовательность: %s", name, got)
		}
	}
}

// TestSave проверяет запись файла и измерение copy_time.
func TestSave(t *testing.T) {
	fs, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	content := []byte("Hello, World! Тестовые данные для проверки.")
	targetPath := fs.TargetPath("test-id-001", "data.bin")

	result, err := fs.Save(bytes.NewReader(content), targetPath)
	if err != nil {
		t.Fatalf("ошибка сохранения: %v", err)
	}

	if result.Size != int64(len(content)) {
		t.Errorf("размер: ожидалось %d, получено %d", len(content), result.Size)
	}
	if result.TargetPath != targetPath {
		t.Errorf("путь: ожидалось %s, получено %s", targetPath, result.TargetPath)
	}
	if result.CopyTime <= 0 {
		t.Error("copy_time должен быть положительным")
	}

	// Проверяем содержимое на диске
	data, err := os.ReadFile(targetPath)
	if err != nil {
		t.Fatalf("файл не найден на диске: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Error("содержимое файла не совпадает с записанным")
	}

	// Временный файл не должен остаться
	if _, err := os.Stat(targetPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("временный файл не удалён после записи")
	}
}

// TestSave_FailedWriteLeavesNoFile проверяет, что при ошибке чтения
// источника полузаписанный файл не появляется под целевым именем.
func TestSave_FailedWriteLeavesNoFile(t *testing.T) {
	fs, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	targetPath := fs.TargetPath("fail-id", "broken.bin")

	if _, err := fs.Save(&failingReader{}, targetPath); err == nil {
		t.Fatal("ожидалась ошибка записи")
	}

	if _, err := os.Stat(targetPath); !os.IsNotExist(err) {
		t.Error("целевой файл не должен существовать после ошибки")
	}
	if _, err := os.Stat(targetPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("временный файл не удалён после ошибки")
	}
}

// TestComputeChecksum проверяет SHA-256 по persisted байтам.
func TestComputeChecksum(t *testing.T) {
	fs, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	content := []byte("checksum test content")
	targetPath := fs.TargetPath("sum-id", "sum.bin")
	if _, err := fs.Save(bytes.NewReader(content), targetPath); err != nil {
		t.Fatalf("ошибка сохранения: %v", err)
	}

	got, err := fs.ComputeChecksum(targetPath)
	if err != nil {
		t.Fatalf("ошибка вычисления checksum: %v", err)
	}

	sum := sha256.Sum256(content)
	want := hex.EncodeToString(sum[:])
	if got != want {
		t.Errorf("checksum: ожидалось %s, получено %s", want, got)
	}
}

// TestExists проверяет детектирование коллизии целевого пути.
func TestExists(t *testing.T) {
	fs, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	targetPath := fs.TargetPath("exists-id", "a.txt")
	if fs.Exists(targetPath) {
		t.Error("файл ещё не записан, Exists должен вернуть false")
	}

	if _, err := fs.Save(bytes.NewReader([]byte("x")), targetPath); err != nil {
		t.Fatalf("ошибка сохранения: %v", err)
	}

	if !fs.Exists(targetPath) {
		t.Error("файл записан, Exists должен вернуть true")
	}
}

// TestRemove проверяет удаление, включая идемпотентность.
func TestRemove(t *testing.T) {
	fs, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	targetPath := fs.TargetPath("rm-id", "a.txt")
	if _, err := fs.Save(bytes.NewReader([]byte("x")), targetPath); err != nil {
		t.Fatalf("ошибка сохранения: %v", err)
	}

	if err := fs.Remove(targetPath); err != nil {
		t.Fatalf("ошибка удаления: %v", err)
	}
	if fs.Exists(targetPath) {
		t.Error("файл не удалён")
	}

	// Повторное удаление — не ошибка
	if err := fs.Remove(targetPath); err != nil {
		t.Errorf("удаление несуществующего файла не должно возвращать ошибку: %v", err)
	}
}

// TestSanitizeFilename проверяет очистку клиентских имён.
func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"photo.jpg", "photo.jpg"},
		{"dir/photo.jpg", "photo.jpg"},
		{"..\\..\\photo.jpg", "photo.jpg"},
		{"../../etc/passwd", "passwd"},
		{"", "file"},
		{".", "file"},
		{"/", "file"},
	}

	for _, tc := range cases {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Errorf("SanitizeFilename(%q): ожидалось %q, получено %q", tc.in, tc.want, got)
		}
	}
}

// failingReader всегда возвращает ошибку чтения.
type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, os.ErrClosed
}
