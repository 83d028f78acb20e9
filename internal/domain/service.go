package domain

import "time"

// Service represents a bookable service in the catalog
// Имя и длительность считаются неизменяемыми, пока на услугу ссылается
// хотя бы одна неотменённая запись (каталог не поддерживает update)
type Service struct {
	ID              int64
	Name            string
	DurationMinutes int
	Price           float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Duration returns the service duration as time.Duration
func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}
