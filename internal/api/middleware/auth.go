package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/identityservice"
)

const (
	msgMissingToken    = "отсутствует токен авторизации"
	msgUnauthenticated = "пользователь не аутентифицирован"
	msgAdminOnly       = "операция доступна только администратору"
)

// IdentityClient интерфейс клиента IdentityService
type IdentityClient interface {
	CurrentUser(ctx context.Context, token string) (*identityservice.User, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Auth резолвит bearer-токен через IdentityService и кладет пользователя в контекст
// Запросы без валидного токена отклоняются с 401
func Auth(client IdentityClient, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				logger.Warn("%s %s - Missing bearer token", r.Method, r.URL.Path)
				handlers.RespondUnauthorized(w, msgMissingToken)
				return
			}

			user, err := client.CurrentUser(r.Context(), token)
			if err != nil {
				if errors.Is(err, identityservice.ErrUnauthenticated) {
					logger.Warn("%s %s - Unauthenticated request", r.Method, r.URL.Path)
					handlers.RespondUnauthorized(w, msgUnauthenticated)
					return
				}
				logger.Error("%s %s - IdentityService error: %v", r.Method, r.URL.Path, err)
				handlers.RespondInternalError(w)
				return
			}

			ctx := WithUser(r.Context(), user)
			ctx = WithToken(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Admin пропускает только пользователей с ролью администратора
// Должен стоять после Auth
func Admin(logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				logger.Error("%s %s - Admin middleware used without Auth", r.Method, r.URL.Path)
				handlers.RespondUnauthorized(w, msgUnauthenticated)
				return
			}

			if !user.IsAdmin() {
				logger.Warn("%s %s - Admin access denied for user=%s", r.Method, r.URL.Path, user.ID)
				handlers.RespondForbidden(w, msgAdminOnly)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractBearerToken извлекает токен из заголовка Authorization
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
