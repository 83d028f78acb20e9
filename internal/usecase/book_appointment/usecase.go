package book_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/servicecatalog"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

// UseCase use case для создания записи на услугу
type UseCase struct {
	appointmentRepo AppointmentRepository
	catalogRepo     CatalogRepository
	txManager       TransactionManager
	timeProvider    TimeProvider
	gracePeriod     time.Duration
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
// gracePeriod - допустимое отставание времени начала от текущего момента (0 = строго в будущем)
func NewUseCase(
	appointmentRepo AppointmentRepository,
	catalogRepo CatalogRepository,
	txManager TransactionManager,
	gracePeriod time.Duration,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		catalogRepo:     catalogRepo,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		gracePeriod:     gracePeriod,
		logger:          logger,
	}
}

// Execute выполняет use case создания записи
// Проверка пересечений и вставка выполняются в одной сериализуемой транзакции:
// из двух конкурентных бронирований пересекающихся интервалов выигрывает
// максимум одно, проигравшее получает ErrSlotConflict
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("BookAppointment: user=%s, service=%d, start=%s",
		req.UserID, req.ServiceID, req.StartTime.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("BookAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Резолвим услугу через каталог
	service, err := uc.catalogRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("BookAppointment: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("BookAppointment: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 4. Время начала должно быть в будущем (с учетом grace-периода)
	if err := validateStartTime(req.StartTime, now, uc.gracePeriod); err != nil {
		uc.logger.Warn("BookAppointment: start time validation failed: %v", err)
		return nil, err
	}

	// 5. Вычисляем конец интервала по длительности услуги на момент создания
	end := req.StartTime.Add(service.Duration())

	var result *domain.Appointment

	// 6. Проверка пересечений и вставка - одна атомарная единица
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 6.1. Ищем пересекающиеся неотменённые записи той же услуги (FOR UPDATE)
		overlapping, err := uc.appointmentRepo.FindOverlapping(txCtx, req.ServiceID, req.StartTime, end)
		if err != nil {
			uc.logger.Error("BookAppointment: failed to find overlapping appointments: %v", err)
			return fmt.Errorf("%w: failed to find overlapping appointments: %v", ErrInternal, err)
		}

		if len(overlapping) > 0 {
			conflictIDs := make([]int64, len(overlapping))
			for i, appt := range overlapping {
				conflictIDs[i] = appt.ID
			}
			uc.logger.Warn("BookAppointment: slot conflict with appointments %v", conflictIDs)
			return &SlotConflictError{ConflictingIDs: conflictIDs}
		}

		// 6.2. Создаем запись со статусом pending и денормализацией данных услуги
		appt := &domain.Appointment{
			UserID:       req.UserID,
			ServiceID:    req.ServiceID,
			StartTime:    req.StartTime,
			EndTime:      end,
			Status:       domain.StatusPending,
			ServiceName:  service.Name,
			ServicePrice: service.Price,
		}

		created, err := uc.appointmentRepo.Create(txCtx, appt)
		if err != nil {
			uc.logger.Error("BookAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		// Сериализуемая транзакция проиграла конкурентную гонку даже после
		// повтора - для клиента это тот же конфликт слота
		if errors.Is(err, txmanager.ErrSerializationConflict) {
			uc.logger.Warn("BookAppointment: serialization conflict for service=%d: %v", req.ServiceID, err)
			return nil, fmt.Errorf("%w: concurrent booking on the same interval", ErrSlotConflict)
		}
		return nil, err
	}

	uc.logger.Info("BookAppointment: successfully created appointment id=%d", result.ID)

	return &Response{
		ID:           result.ID,
		UserID:       result.UserID,
		ServiceID:    result.ServiceID,
		StartTime:    result.StartTime,
		EndTime:      result.EndTime,
		Status:       string(result.Status),
		ServiceName:  result.ServiceName,
		ServicePrice: result.ServicePrice,
		CreatedAt:    result.CreatedAt,
		UpdatedAt:    result.UpdatedAt,
	}, nil
}
