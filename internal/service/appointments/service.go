package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// Service сервис для работы с записями на услуги
// Создание записей выполняет отдельный usecase book_appointment,
// здесь - чтение, отмена и подтверждение
type Service struct {
	appointmentRepo AppointmentRepository
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(appointmentRepo AppointmentRepository, logger Logger) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		logger:          logger,
	}
}

// GetByID получает запись по ID
// Пользователь может видеть только свою запись, администратор - любую
func (s *Service) GetByID(ctx context.Context, id int64, requester models.Requester) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for user=%s", id, requester.UserID)

	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if err := s.checkAccess(appt, requester); err != nil {
		s.logger.Warn("GetByID: access denied for user=%s to appointment id=%d", requester.UserID, id)
		return nil, err
	}

	return models.FromDomainAppointment(appt), nil
}

// GetUserAppointments получает историю записей пользователя
// Опционально фильтрует по статусу
func (s *Service) GetUserAppointments(ctx context.Context, req *models.GetUserAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetUserAppointments: fetching appointments for user=%s, status=%v",
		req.Requester.UserID, req.Status)

	var domainStatus *domain.AppointmentStatus
	if req.Status != nil {
		status, err := models.ToDomainAppointmentStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserAppointments: invalid status=%s for user=%s", *req.Status, req.Requester.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	appointments, err := s.appointmentRepo.GetByUserID(ctx, req.Requester.UserID, domainStatus)
	if err != nil {
		s.logger.Error("GetUserAppointments: repository error for user=%s: %v", req.Requester.UserID, err)
		return nil, fmt.Errorf("%w: GetUserAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserAppointments: successfully fetched %d appointments for user=%s",
		len(appointments), req.Requester.UserID)
	return models.FromDomainAppointmentList(appointments), nil
}

// GetAllAppointments получает записи всех пользователей с гибкой фильтрацией
// Доступно только администратору
func (s *Service) GetAllAppointments(ctx context.Context, req *models.GetAllAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetAllAppointments: fetching appointments for admin=%s", req.Requester.UserID)

	if !req.Requester.IsAdmin {
		s.logger.Warn("GetAllAppointments: user=%s is not an admin", req.Requester.UserID)
		return nil, ErrAccessDenied
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetAllAppointments: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	appointments, err := s.appointmentRepo.GetAllWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetAllAppointments: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetAllAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetAllAppointments: successfully fetched %d appointments", len(appointments))
	return models.FromDomainAppointmentList(appointments), nil
}

// Cancel отменяет запись (soft cancel)
// Пользователь может отменить только свою запись, администратор - любую.
// Повторная отмена возвращает ErrAlreadyCancelled, состояние не меняется
func (s *Service) Cancel(ctx context.Context, id int64, req *models.CancelAppointmentRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Cancel: cancelling appointment id=%d by user=%s", id, req.Requester.UserID)

	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("Cancel: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("Cancel: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	// Сначала авторизация: не-владелец без прав администратора не должен
	// узнавать состояние чужой записи
	if err := s.checkAccess(appt, req.Requester); err != nil {
		s.logger.Warn("Cancel: access denied for user=%s to appointment id=%d", req.Requester.UserID, id)
		return nil, err
	}

	if appt.IsCancelled() {
		s.logger.Warn("Cancel: appointment id=%d is already cancelled", id)
		return nil, ErrAlreadyCancelled
	}

	if req.Reason != nil && len(*req.Reason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: cancellation reason must not exceed %d characters",
			ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	if err := s.appointmentRepo.Cancel(ctx, id, req.Reason); err != nil {
		if errors.Is(err, appointmentRepo.ErrStatusConflict) {
			// Гонка двух отмен: условный UPDATE не дал перезаписать
			// исходные cancelled_at и cancellation_reason
			current, reloadErr := s.reloadAfterConflict(ctx, id, "Cancel")
			if reloadErr != nil {
				return nil, reloadErr
			}
			if current.IsCancelled() {
				s.logger.Warn("Cancel: appointment id=%d was cancelled concurrently", id)
				return nil, ErrAlreadyCancelled
			}
			return nil, fmt.Errorf("%w: Cancel - appointment id=%d is %s after conditional update refusal",
				ErrInternal, id, current.Status)
		}
		s.logger.Error("Cancel: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	cancelled, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Cancel: failed to reload appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Cancel - failed to reload appointment: %v", ErrInternal, err)
	}

	s.logger.Info("Cancel: successfully cancelled appointment id=%d", id)
	return models.FromDomainAppointment(cancelled), nil
}

// Confirm подтверждает запись (pending → confirmed)
// Доступно только администратору
func (s *Service) Confirm(ctx context.Context, id int64, requester models.Requester) (*models.AppointmentResponse, error) {
	s.logger.Info("Confirm: confirming appointment id=%d by user=%s", id, requester.UserID)

	if !requester.IsAdmin {
		s.logger.Warn("Confirm: user=%s is not an admin", requester.UserID)
		return nil, ErrAccessDenied
	}

	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("Confirm: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("Confirm: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Confirm - repository error: %v", ErrInternal, err)
	}

	if !domain.CanTransition(appt.Status, domain.StatusConfirmed) {
		s.logger.Warn("Confirm: invalid transition %s -> confirmed for appointment id=%d", appt.Status, id)
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, domain.StatusConfirmed)
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, id, domain.StatusConfirmed); err != nil {
		if errors.Is(err, appointmentRepo.ErrStatusConflict) {
			// Статус изменился между чтением и обновлением: условный UPDATE
			// не дал перезаписать, например, терминальный cancelled
			current, reloadErr := s.reloadAfterConflict(ctx, id, "Confirm")
			if reloadErr != nil {
				return nil, reloadErr
			}
			s.logger.Warn("Confirm: appointment id=%d changed to %s concurrently", id, current.Status)
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, domain.StatusConfirmed)
		}
		s.logger.Error("Confirm: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Confirm - repository error: %v", ErrInternal, err)
	}

	confirmed, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Confirm: failed to reload appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Confirm - failed to reload appointment: %v", ErrInternal, err)
	}

	s.logger.Info("Confirm: successfully confirmed appointment id=%d", id)
	return models.FromDomainAppointment(confirmed), nil
}

// reloadAfterConflict перечитывает запись после отказа условного обновления
// Возвращает ErrAppointmentNotFound, если строка исчезла; иначе текущее
// состояние, по которому вызывающий определяет, какой переход сорвался
func (s *Service) reloadAfterConflict(ctx context.Context, id int64, op string) (*domain.Appointment, error) {
	current, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment id=%d not found during update", op, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: failed to reload appointment id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - failed to reload appointment: %v", ErrInternal, op, err)
	}
	return current, nil
}

// checkAccess проверяет, что пользователь имеет доступ к записи
// Владелец и администратор имеют доступ
func (s *Service) checkAccess(appt *domain.Appointment, requester models.Requester) error {
	if appt.UserID == requester.UserID {
		return nil
	}
	if requester.IsAdmin {
		return nil
	}
	return ErrAccessDenied
}
