package book_appointment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена в каталоге
	ErrServiceNotFound = errors.New("book_appointment: service not found")

	// ErrStartInPast возвращается, когда время начала не в будущем
	// (с учетом настраиваемого grace-периода)
	ErrStartInPast = errors.New("book_appointment: start time must be in the future")

	// ErrSlotConflict возвращается, когда интервал пересекается с существующей
	// неотменённой записью той же услуги
	ErrSlotConflict = errors.New("book_appointment: slot conflicts with existing appointments")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("book_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("book_appointment: internal error")
)

// SlotConflictError ошибка пересечения слота с перечислением конфликтующих записей
// Оборачивает ErrSlotConflict, поэтому matchable через errors.Is(err, ErrSlotConflict)
type SlotConflictError struct {
	ConflictingIDs []int64
}

// Error реализует интерфейс error
func (e *SlotConflictError) Error() string {
	ids := make([]string, len(e.ConflictingIDs))
	for i, id := range e.ConflictingIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("%v: appointment ids [%s]", ErrSlotConflict, strings.Join(ids, ", "))
}

// Unwrap позволяет errors.Is находить сентинель ErrSlotConflict
func (e *SlotConflictError) Unwrap() error {
	return ErrSlotConflict
}
