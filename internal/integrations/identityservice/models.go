package identityservice

import "github.com/google/uuid"

// Роли пользователей в IdentityService
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User модель пользователя из IdentityService
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// IsAdmin returns true if the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ErrorResponse модель ошибки от IdentityService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
