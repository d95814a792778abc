// Пакет service — бизнес-логика Storage API.
// auth.go — контракт аутентификатора.
package service

import (
	"context"

	"github.com/deadtrees/storage-api/internal/identity"
)

// Authenticator — фасад над внешним identity-провайдером.
// Upload-путь зависит только от этого контракта, что позволяет
// подставлять test double вместо реального провайдера.
type Authenticator interface {
	// Login обменивает логин/пароль на токен сессии.
	Login(ctx context.Context, username, password string) (*identity.Session, error)
	// VerifyToken разрешает bearer-токен в идентификатор пользователя.
	VerifyToken(ctx context.Context, token string) (string, error)
}

// Проверка на этапе компиляции
var _ Authenticator = (*identity.Client)(nil)
