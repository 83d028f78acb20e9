package logout

import (
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
)

const msgMissingToken = "требуется аутентификация"

type Handler struct {
	client IdentityClient
	logger Logger
}

func NewHandler(client IdentityClient, logger Logger) *Handler {
	return &Handler{
		client: client,
		logger: logger,
	}
}

// Handle POST /api/v1/auth/logout
// Сессией владеет IdentityService, поэтому запрос проксируется ему.
// Ошибка выхода не фатальна: токен истечёт сам
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		h.logger.Warn("POST /auth/logout - Missing token in context")
		handlers.RespondUnauthorized(w, msgMissingToken)
		return
	}

	if err := h.client.SignOut(r.Context(), token); err != nil {
		h.logger.Warn("POST /auth/logout - SignOut failed: %v", err)
	} else {
		h.logger.Info("POST /auth/logout - Session terminated")
	}

	w.WriteHeader(http.StatusNoContent)
}
