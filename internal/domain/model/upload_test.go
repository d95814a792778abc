package model

import (
	"encoding/json"
	"testing"
	"time"
)

// TestParsePlatform проверяет закрытое перечисление платформ.
func TestParsePlatform(t *testing.T) {
	valid := []string{"drone", "airborne", "satellite"}
	for _, s := range valid {
		p, err := ParsePlatform(s)
		if err != nil {
			t.Errorf("ParsePlatform(%q): неожиданная ошибка: %v", s, err)
		}
		if string(p) != s {
			t.Errorf("ParsePlatform(%q): получено %q", s, p)
		}
	}

	invalid := []string{"", "Drone", "DRONE", "uav", "drone ", "sattelite"}
	for _, s := range invalid {
		if _, err := ParsePlatform(s); err == nil {
			t.Errorf("ParsePlatform(%q): ожидалась ошибка", s)
		}
	}
}

// TestParseLicense проверяет закрытое перечисление лицензий.
func TestParseLicense(t *testing.T) {
	valid := []string{"cc-by", "cc-by-sa"}
	for _, s := range valid {
		l, err := ParseLicense(s)
		if err != nil {
			t.Errorf("ParseLicense(%q): неожиданная ошибка: %v", s, err)
		}
		if string(l) != s {
			t.Errorf("ParseLicense(%q): получено %q", s, l)
		}
	}

	invalid := []string{"", "CC-BY", "cc_by", "mit", "cc-by-nc"}
	for _, s := range invalid {
		if _, err := ParseLicense(s); err == nil {
			t.Errorf("ParseLicense(%q): ожидалась ошибка", s)
		}
	}
}

// TestParseStatus проверяет закрытое перечисление статусов.
func TestParseStatus(t *testing.T) {
	valid := []string{"pending", "processing", "errored", "processed", "audited", "audit_failed"}
	for _, s := range valid {
		if _, err := ParseStatus(s); err != nil {
			t.Errorf("ParseStatus(%q): неожиданная ошибка: %v", s, err)
		}
	}

	if _, err := ParseStatus("done"); err == nil {
		t.Error("ParseStatus(\"done\"): ожидалась ошибка")
	}
}

// TestFileID проверяет композицию логического ключа {identifier}_{file_name}.
func TestFileID(t *testing.T) {
	r := &UploadRecord{
		Identifier: "123e4567-e89b-12d3-a456-426614174000",
		FileName:   "forest.tif",
	}

	want := "123e4567-e89b-12d3-a456-426614174000_forest.tif"
	if got := r.FileID(); got != want {
		t.Errorf("FileID: ожидалось %q, получено %q", want, got)
	}
}

// TestMarshalJSON проверяет наличие file_id и ISO-8601 дат.
func TestMarshalJSON(t *testing.T) {
	r := &UploadRecord{
		UserID:          "user-1",
		AcquisitionDate: time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC),
		UploadDate:      time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC),
		FileName:        "forest.tif",
		ContentType:     "image/tiff",
		FileSize:        2048,
		TargetPath:      "/data/uploads/abc_forest.tif",
		CopyTime:        0.125,
		Identifier:      "abc",
		ContentHash:     "deadbeef",
		Platform:        PlatformDrone,
		License:         LicenseCCBY,
		Status:          StatusPending,
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("ошибка сериализации: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("ошибка разбора JSON: %v", err)
	}

	if decoded["file_id"] != "abc_forest.tif" {
		t.Errorf("file_id: получено %v", decoded["file_id"])
	}
	if decoded["acquisition_date"] != "2026-03-15T10:30:00Z" {
		t.Errorf("acquisition_date: получено %v", decoded["acquisition_date"])
	}
	if decoded["upload_date"] != "2026-03-16T08:00:00Z" {
		t.Errorf("upload_date: получено %v", decoded["upload_date"])
	}
	if decoded["status"] != "pending" {
		t.Errorf("status: получено %v", decoded["status"])
	}
	if decoded["file_size"] != float64(2048) {
		t.Errorf("file_size: получено %v", decoded["file_size"])
	}
}
