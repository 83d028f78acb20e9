package middleware

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/integrations/identityservice"
)

type userContextKey struct{}
type tokenContextKey struct{}

// WithUser кладет аутентифицированного пользователя в контекст
func WithUser(ctx context.Context, user *identityservice.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext возвращает аутентифицированного пользователя из контекста
// Возвращает false, если запрос не прошёл через Auth middleware
func UserFromContext(ctx context.Context) (*identityservice.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*identityservice.User)
	return user, ok
}

// WithToken кладет bearer-токен запроса в контекст
// Токен нужен для pass-through операций (logout)
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFromContext возвращает bearer-токен запроса из контекста
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey{}).(string)
	return token, ok
}
