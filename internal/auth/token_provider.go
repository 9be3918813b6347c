package auth

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/central-university-dev/go-portal-realtime/internal/domain/errors"
)

// CredentialProvider отдаёт bearer-токен текущего пользователя.
type CredentialProvider interface {
	Token() (string, error)
}

// TokenProvider хранит токен в памяти и отбраковывает истёкшие JWT до подключения.
// Подпись не проверяется: это делает сервер.
type TokenProvider struct {
	mu    sync.RWMutex
	token string
	now   func() time.Time
}

func NewTokenProvider(token string) *TokenProvider {
	return &TokenProvider{
		token: token,
		now:   time.Now,
	}
}

func (p *TokenProvider) SetToken(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.token = token
}

func (p *TokenProvider) Token() (string, error) {
	p.mu.RLock()
	token := p.token
	p.mu.RUnlock()

	if token == "" {
		return "", &errors.ErrMissingCredential{}
	}

	if err := p.checkExpiry(token); err != nil {
		return "", err
	}

	return token, nil
}

func (p *TokenProvider) checkExpiry(token string) error {
	claims := jwt.RegisteredClaims{}

	// Непрозрачные (не JWT) токены пропускаем как есть.
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil
	}

	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(p.now()) {
		return &errors.ErrCredentialExpired{Cause: jwt.ErrTokenExpired}
	}

	return nil
}

// StaticProvider удобен для тестов и для токена из конфигурации.
type StaticProvider string

func (s StaticProvider) Token() (string, error) {
	if s == "" {
		return "", &errors.ErrMissingCredential{}
	}

	return string(s), nil
}
