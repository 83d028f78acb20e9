package domain

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// IsValid returns true if the status is one of the known statuses
func (s AppointmentStatus) IsValid() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCancelled
}

// CanTransition проверяет допустимость перехода статуса
// Разрешены только pending→confirmed, pending→cancelled, confirmed→cancelled;
// cancelled - терминальный статус
func CanTransition(from, to AppointmentStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCancelled
	default:
		return false
	}
}

// TransitionSources возвращает статусы, из которых допустим переход в to
// Используется хранилищем для условных обновлений: UPDATE применяется только
// если текущий статус строки все ещё допускает переход
func TransitionSources(to AppointmentStatus) []AppointmentStatus {
	var sources []AppointmentStatus
	for _, from := range []AppointmentStatus{StatusPending, StatusConfirmed, StatusCancelled} {
		if CanTransition(from, to) {
			sources = append(sources, from)
		}
	}
	return sources
}

// Appointment represents a booked appointment in the system
type Appointment struct {
	ID        int64
	UserID    uuid.UUID // идентификатор пользователя из IdentityService
	ServiceID int64
	StartTime time.Time
	EndTime   time.Time // StartTime + длительность услуги на момент создания
	Status    AppointmentStatus

	// Denormalized data for history
	ServiceName  string
	ServicePrice float64

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the appointment occupies its slot (not cancelled)
func (a *Appointment) IsActive() bool {
	return a.Status != StatusCancelled
}

// IsCancelled returns true if the appointment has been cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == StatusCancelled
}

// CanBeCancelled returns true if the appointment can be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// Overlaps проверяет пересечение записи с интервалом [start, end)
// Интервалы полуоткрытые: смежные записи (end == start) не пересекаются
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartTime.Before(end) && a.EndTime.After(start)
}

// AppointmentsFilter фильтр для административной выборки записей
type AppointmentsFilter struct {
	ServiceID        *int64             // Фильтр по услуге (опционально)
	From             *time.Time         // Начало периода (опционально)
	To               *time.Time         // Конец периода (опционально)
	Status           *AppointmentStatus // Фильтр по статусу (опционально)
	IncludeCancelled bool               // Включать ли отменённые записи
}
