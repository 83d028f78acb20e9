package book_appointment

import (
	"time"

	"github.com/google/uuid"
)

// Request модель запроса на создание записи
type Request struct {
	UserID    uuid.UUID // Идентификатор пользователя из IdentityService
	ServiceID int64     // ID услуги из каталога
	StartTime time.Time // Время начала записи
}

// Response модель ответа с созданной записью
type Response struct {
	ID        int64     // ID созданной записи
	UserID    uuid.UUID // Идентификатор пользователя
	ServiceID int64     // ID услуги
	StartTime time.Time // Время начала
	EndTime   time.Time // Время окончания (StartTime + длительность услуги)
	Status    string    // Статус записи (pending при создании)

	// Денормализованные данные услуги
	ServiceName  string
	ServicePrice float64

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}
