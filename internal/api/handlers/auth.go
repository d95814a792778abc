// auth.go — обработчик POST /token.
// Обмен учётных данных (form-encoded username/password) на токен сессии
// через внешний identity-провайдер.
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	apierrors "github.com/deadtrees/storage-api/internal/api/errors"
	"github.com/deadtrees/storage-api/internal/api/middleware"
	"github.com/deadtrees/storage-api/internal/identity"
	"github.com/deadtrees/storage-api/internal/service"
)

// TokenResponse — ответ POST /token.
type TokenResponse struct {
	AccessToken string `json:"access_token"` //nolint:gosec // G117: структура токена OAuth2
	TokenType   string `json:"token_type"`
}

// AuthHandler — обработчик аутентификационных endpoints.
type AuthHandler struct {
	auth   service.Authenticator
	logger *slog.Logger
}

// NewAuthHandler создаёт обработчик аутентификационных endpoints.
func NewAuthHandler(auth service.Authenticator, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger.With(slog.String("component", "auth_handler")),
	}
}

// Token обрабатывает POST /token.
// Form-encoded поля: username, password.
// Отказ провайдера всегда отдаётся как 401 без деталей,
// чтобы не раскрывать существование пользователя.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		apierrors.ValidationError(w, fmt.Sprintf("Ошибка парсинга формы: %s", err.Error()))
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		apierrors.ValidationError(w, "Поля 'username' и 'password' обязательны")
		return
	}

	session, err := h.auth.Login(r.Context(), username, password)
	if err != nil {
		middleware.LoginsTotal.WithLabelValues("failure").Inc()
		if !errors.Is(err, identity.ErrAuthentication) {
			h.logger.Warn("Неожиданная ошибка логина",
				slog.String("error", err.Error()),
			)
		}
		apierrors.Unauthorized(w, "Неверные учётные данные")
		return
	}

	middleware.LoginsTotal.WithLabelValues("success").Inc()

	writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken: session.AccessToken,
		TokenType:   session.TokenType,
	})
}
