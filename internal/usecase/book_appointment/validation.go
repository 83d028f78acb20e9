package book_appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID == uuid.Nil {
		return fmt.Errorf("%w: userID is required", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	return nil
}

// validateStartTime проверяет, что время начала строго в будущем
// с учетом grace-периода: start > now - grace
func validateStartTime(start, now time.Time, grace time.Duration) error {
	if !start.After(now.Add(-grace)) {
		return ErrStartInPast
	}
	return nil
}
