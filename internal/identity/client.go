// Пакет identity — HTTP-клиент к внешнему identity-провайдеру
// (GoTrue-совместимый API: Supabase Auth).
// Операции: Login (обмен логина/пароля на токен сессии),
// VerifyToken (разрешение bearer-токена в идентификатор пользователя).
// Каждая операция завершается sign-out короткоживущей сессии
// провайдера на всех путях выхода.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ErrAuthentication — неуспешная аутентификация: неверные учётные данные,
// невалидный или просроченный токен, недоступность провайдера.
// Вызывающий код обязан трактовать её как 401, не раскрывая деталей.
var ErrAuthentication = errors.New("аутентификация не пройдена")

// Client — HTTP-клиент к identity-провайдеру.
type Client struct {
	baseURL string // Базовый URL провайдера (без trailing slash)
	apiKey  string // Сервисный API-ключ (заголовок apikey)

	httpClient *http.Client
	logger     *slog.Logger
}

// New создаёт клиент к identity-провайдеру.
// baseURL — базовый URL (например, https://auth.example.com).
// apiKey — сервисный ключ для заголовка apikey.
// httpClient — HTTP-клиент (nil → клиент с таймаутом 30s).
func New(baseURL, apiKey string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "identity_client")),
	}
}

// --- Endpoints ---

func (c *Client) tokenEndpoint() string {
	return c.baseURL + "/auth/v1/token?grant_type=password"
}

func (c *Client) userEndpoint() string {
	return c.baseURL + "/auth/v1/user"
}

func (c *Client) logoutEndpoint() string {
	return c.baseURL + "/auth/v1/logout"
}

// Login обменивает логин/пароль на токен сессии.
// При любом отказе провайдера возвращает ErrAuthentication без деталей,
// чтобы не раскрывать существование пользователя.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	body, err := json.Marshal(loginRequest{Email: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("сериализация запроса логина: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenEndpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("создание запроса логина: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Identity-провайдер недоступен при логине",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: провайдер недоступен", ErrAuthentication)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // тело не нужно
		c.logger.Debug("Identity-провайдер отклонил учётные данные",
			slog.Int("status", resp.StatusCode),
		)
		return nil, ErrAuthentication
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("декодирование ответа логина: %w", err)
	}
	if session.AccessToken == "" {
		return nil, ErrAuthentication
	}
	if session.TokenType == "" {
		session.TokenType = "bearer"
	}

	// Сессия провайдера короткоживущая: закрываем её сразу после обмена.
	// Выданный access token остаётся валиден до истечения срока.
	c.signOut(ctx, session.AccessToken)

	return &session, nil
}

// VerifyToken разрешает bearer-токен в идентификатор пользователя.
// Невалидный или просроченный токен, как и недоступность провайдера,
// возвращают ErrAuthentication: для вызывающего это всегда 401, не 5xx.
func (c *Client) VerifyToken(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userEndpoint(), nil)
	if err != nil {
		return "", fmt.Errorf("создание запроса проверки токена: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)

	// Sign-out сессии на всех путях выхода
	defer c.signOut(ctx, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Identity-провайдер недоступен при проверке токена",
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("%w: провайдер недоступен", ErrAuthentication)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // тело не нужно
		return "", ErrAuthentication
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("%w: некорректный ответ провайдера", ErrAuthentication)
	}
	if user.ID == "" {
		return "", fmt.Errorf("%w: отсутствует идентификатор пользователя", ErrAuthentication)
	}

	return user.ID, nil
}

// signOut закрывает сессию провайдера (best effort).
// Ошибки не прерывают основную операцию: access token stateless,
// незакрытая сессия не влияет на корректность, только на гигиену.
func (c *Client) signOut(ctx context.Context, token string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.logoutEndpoint(), nil)
	if err != nil {
		return
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Sign-out сессии не выполнен",
			slog.String("error", err.Error()),
		)
		return
	}
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // тело не нужно
	resp.Body.Close()
}

// CheckReady проверяет доступность identity-провайдера.
// Реализует handlers.ReadinessChecker.
func (c *Client) CheckReady() (string, string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/health", nil)
	if err != nil {
		return "fail", fmt.Sprintf("identity-провайдер: %v", err)
	}
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "fail", fmt.Sprintf("identity-провайдер недоступен: %v", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // тело не нужно

	if resp.StatusCode != http.StatusOK {
		return "fail", fmt.Sprintf("identity-провайдер вернул статус %d", resp.StatusCode)
	}
	return "ok", "identity-провайдер доступен"
}
