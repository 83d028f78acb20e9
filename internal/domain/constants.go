package domain

// Business validation constants
const (
	MinServiceDurationMinutes   = 5
	MaxServiceDurationMinutes   = 480 // 8 hours
	MaxServiceNameLength        = 200
	MaxCancellationReasonLength = 500
)

// ActiveStatuses список статусов, при которых запись занимает свой слот
// Используется при проверке пересечений и при защите каталога от удаления
var ActiveStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
}
