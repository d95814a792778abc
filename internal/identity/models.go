// Пакет identity — HTTP-клиент к внешнему identity-провайдеру.
// models.go — модели данных провайдера.
package identity

// loginRequest — тело запроса password grant.
// GoTrue принимает email в роли логина.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session — сессия, выданная провайдером после логина.
type Session struct {
	AccessToken string `json:"access_token"` //nolint:gosec // G117: структура токена OAuth2
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// User — пользователь identity-провайдера.
// Из ответа используется только идентификатор.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
