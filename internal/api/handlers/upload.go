// upload.go — обработчик POST /upload.
// Multipart form: file (обязательно) + поля platform, license,
// acquisition_date; bearer-токен в заголовке Authorization.
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	apierrors "github.com/deadtrees/storage-api/internal/api/errors"
	"github.com/deadtrees/storage-api/internal/service"
)

// multipartMemoryLimit — буфер парсинга multipart form в памяти.
// Файлы больше лимита прозрачно уходят во временные файлы.
const multipartMemoryLimit = 32 << 20 // 32 MB

// UploadHandler — обработчик endpoint'а загрузки.
type UploadHandler struct {
	uploadSvc *service.UploadService
}

// NewUploadHandler создаёт обработчик endpoint'а загрузки.
func NewUploadHandler(uploadSvc *service.UploadService) *UploadHandler {
	return &UploadHandler{uploadSvc: uploadSvc}
}

// Upload обрабатывает POST /upload.
// Успех — 201 с сериализованной записью метаданных.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Извлекаем bearer-токен. Без токена запрос отклоняется
	// до какого-либо чтения тела.
	token, ok := bearerToken(r)
	if !ok {
		apierrors.Unauthorized(w, "Требуется Bearer-токен в заголовке Authorization")
		return
	}

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		apierrors.ValidationError(w, fmt.Sprintf("Ошибка парсинга multipart: %s", err.Error()))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apierrors.ValidationError(w, "Поле 'file' обязательно")
		return
	}
	defer file.Close()

	record, uploadErr := h.uploadSvc.Upload(r.Context(), service.UploadParams{
		Token:           token,
		Reader:          file,
		FileName:        header.Filename,
		ContentType:     header.Header.Get("Content-Type"),
		Platform:        r.FormValue("platform"),
		License:         r.FormValue("license"),
		AcquisitionDate: r.FormValue("acquisition_date"),
	})
	if uploadErr != nil {
		apierrors.WriteError(w, uploadErr.StatusCode, uploadErr.Code, uploadErr.Message)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// bearerToken извлекает bearer-токен из заголовка Authorization.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
