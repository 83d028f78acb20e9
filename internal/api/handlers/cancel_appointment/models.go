package cancel_appointment

import (
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// CancelAppointmentRequest HTTP request model
// Тело запроса опционально: отмена без причины допустима
type CancelAppointmentRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CancelAppointmentRequest) ToServiceRequest(requester models.Requester) *models.CancelAppointmentRequest {
	return &models.CancelAppointmentRequest{
		Requester: requester,
		Reason:    r.Reason,
	}
}
