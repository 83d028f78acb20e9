package book_appointment

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/servicecatalog"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

// fakeAppointmentRepo in-memory реализация AppointmentRepository
type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments []*domain.Appointment
	nextID       int64
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{nextID: 1}
}

func (r *fakeAppointmentRepo) Create(_ context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *appt
	stored.ID = r.nextID
	r.nextID++
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.appointments = append(r.appointments, &stored)

	result := stored
	return &result, nil
}

func (r *fakeAppointmentRepo) FindOverlapping(_ context.Context, serviceID int64, start, end time.Time) ([]*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := make([]*domain.Appointment, 0)
	for _, appt := range r.appointments {
		if appt.ServiceID != serviceID || !appt.IsActive() {
			continue
		}
		if appt.Overlaps(start, end) {
			found = append(found, appt)
		}
	}
	return found, nil
}

func (r *fakeAppointmentRepo) cancel(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, appt := range r.appointments {
		if appt.ID == id {
			appt.Status = domain.StatusCancelled
		}
	}
}

// fakeCatalogRepo in-memory реализация CatalogRepository
type fakeCatalogRepo struct {
	services map[int64]*domain.Service
}

func (r *fakeCatalogRepo) GetByID(_ context.Context, id int64) (*domain.Service, error) {
	service, ok := r.services[id]
	if !ok {
		return nil, catalogRepo.ErrServiceNotFound
	}
	return service, nil
}

// fakeTxManager сериализует конкурентные транзакции мьютексом,
// имитируя сериализуемую изоляцию PostgreSQL
type fakeTxManager struct {
	mu sync.Mutex
}

func (m *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

// failingTxManager имитирует транзакцию, проигравшую конкурентную гонку
// даже после повтора
type failingTxManager struct{}

func (m *failingTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fmt.Errorf("%w: retries exhausted: pq: could not serialize access", txmanager.ErrSerializationConflict)
}

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time {
	return p.now
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var (
	testNow    = time.Date(2025, 10, 15, 9, 0, 0, 0, time.UTC)
	testUserID = uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")
)

func newTestUseCase(t *testing.T, grace time.Duration) (*UseCase, *fakeAppointmentRepo) {
	t.Helper()

	apptRepo := newFakeAppointmentRepo()
	catRepo := &fakeCatalogRepo{services: map[int64]*domain.Service{
		1: {ID: 1, Name: "Haircut", DurationMinutes: 30, Price: 25},
	}}

	uc := NewUseCase(apptRepo, catRepo, &fakeTxManager{}, grace, nopLogger{})
	uc.timeProvider = &fixedTimeProvider{now: testNow}

	return uc, apptRepo
}

func at(hour, min int) time.Time {
	return time.Date(2025, 10, 15, hour, min, 0, 0, time.UTC)
}

func TestExecute_Success(t *testing.T) {
	uc, _ := newTestUseCase(t, 0)

	resp, err := uc.Execute(context.Background(), &Request{
		UserID:    testUserID,
		ServiceID: 1,
		StartTime: at(10, 0),
	})

	require.NoError(t, err)
	assert.Equal(t, at(10, 0), resp.StartTime)
	assert.Equal(t, at(10, 30), resp.EndTime)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, "Haircut", resp.ServiceName)
	assert.Equal(t, 25.0, resp.ServicePrice)
}

func TestExecute_SlotConflict(t *testing.T) {
	uc, _ := newTestUseCase(t, 0)
	ctx := context.Background()

	first, err := uc.Execute(ctx, &Request{UserID: testUserID, ServiceID: 1, StartTime: at(10, 0)})
	require.NoError(t, err)

	_, err = uc.Execute(ctx, &Request{UserID: testUserID, ServiceID: 1, StartTime: at(10, 15)})
	require.ErrorIs(t, err, ErrSlotConflict)

	// В ошибке перечислены конфликтующие записи
	var conflictErr *SlotConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, []int64{first.ID}, conflictErr.ConflictingIDs)
}

func TestExecute_AdjacentSlotsDoNotConflict(t *testing.T) {
	uc, _ := newTestUseCase(t, 0)
	ctx := context.Background()

	_, err := uc.Execute(ctx, &Request{UserID: testUserID, ServiceID: 1, StartTime: at(10, 0)})
	require.NoError(t, err)

	// Интервалы полуоткрытые: запись на 10:30 встык к [10:00, 10:30) допустима
	resp, err := uc.Execute(ctx, &Request{UserID: testUserID, ServiceID: 1, StartTime: at(10, 30)})
	require.NoError(t, err)
	assert.Equal(t, at(11, 0), resp.EndTime)
}

func TestExecute_CancelledAppointmentFreesSlot(t *testing.T) {
	uc, apptRepo := newTestUseCase(t, 0)
	ctx := context.Background()

	first, err := uc.Execute(ctx, &Request{UserID: testUserID, ServiceID: 1, StartTime: at(10, 0)})
	require.NoError(t, err)

	_, err = uc.Execute(ctx, &Request{UserID: testUserID, ServiceID: 1, StartTime: at(10, 15)})
	require.ErrorIs(t, err, ErrSlotConflict)

	apptRepo.cancel(first.ID)

	_, err = uc.Execute(ctx, &Request{UserID: testUserID, ServiceID: 1, StartTime: at(10, 15)})
	require.NoError(t, err)
}

func TestExecute_DifferentServicesMayOverlap(t *testing.T) {
	uc, _ := newTestUseCase(t, 0)
	ctx := context.Background()

	uc.catalogRepo.(*fakeCatalogRepo).services[2] = &domain.Service{
		ID: 2, Name: "Massage", DurationMinutes: 60, Price: 50,
	}

	_, err := uc.Execute(ctx, &Request{UserID: testUserID, ServiceID: 1, StartTime: at(10, 0)})
	require.NoError(t, err)

	// Пересечение с записью другой услуги не является конфликтом
	_, err = uc.Execute(ctx, &Request{UserID: testUserID, ServiceID: 2, StartTime: at(10, 0)})
	require.NoError(t, err)
}

func TestExecute_ServiceNotFound(t *testing.T) {
	uc, _ := newTestUseCase(t, 0)

	_, err := uc.Execute(context.Background(), &Request{
		UserID:    testUserID,
		ServiceID: 999,
		StartTime: at(10, 0),
	})

	require.ErrorIs(t, err, ErrServiceNotFound)
}

func TestExecute_StartInPast(t *testing.T) {
	uc, _ := newTestUseCase(t, 0)

	_, err := uc.Execute(context.Background(), &Request{
		UserID:    testUserID,
		ServiceID: 1,
		StartTime: at(8, 0),
	})
	require.ErrorIs(t, err, ErrStartInPast)

	// Текущий момент тоже не подходит: начало должно быть строго в будущем
	_, err = uc.Execute(context.Background(), &Request{
		UserID:    testUserID,
		ServiceID: 1,
		StartTime: testNow,
	})
	require.ErrorIs(t, err, ErrStartInPast)
}

func TestExecute_GracePeriodAllowsRecentStart(t *testing.T) {
	uc, _ := newTestUseCase(t, 5*time.Minute)

	// 8:57 при now=9:00 и grace=5m проходит проверку
	_, err := uc.Execute(context.Background(), &Request{
		UserID:    testUserID,
		ServiceID: 1,
		StartTime: at(8, 57),
	})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), &Request{
		UserID:    testUserID,
		ServiceID: 1,
		StartTime: at(8, 50),
	})
	require.ErrorIs(t, err, ErrStartInPast)
}

func TestExecute_InvalidInput(t *testing.T) {
	uc, _ := newTestUseCase(t, 0)
	ctx := context.Background()

	_, err := uc.Execute(ctx, &Request{UserID: uuid.Nil, ServiceID: 1, StartTime: at(10, 0)})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(ctx, &Request{UserID: testUserID, ServiceID: 0, StartTime: at(10, 0)})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(ctx, &Request{UserID: testUserID, ServiceID: 1})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_ConcurrentBookingsExactlyOneWins(t *testing.T) {
	uc, _ := newTestUseCase(t, 0)

	const workers = 2
	errs := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Execute(context.Background(), &Request{
				UserID:    testUserID,
				ServiceID: 1,
				StartTime: at(10, 0),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, conflicted int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		default:
			require.ErrorIs(t, err, ErrSlotConflict)
			conflicted++
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)
}

func TestExecute_SerializationConflictMapsToSlotConflict(t *testing.T) {
	apptRepo := newFakeAppointmentRepo()
	catRepo := &fakeCatalogRepo{services: map[int64]*domain.Service{
		1: {ID: 1, Name: "Haircut", DurationMinutes: 30, Price: 25},
	}}

	uc := NewUseCase(apptRepo, catRepo, &failingTxManager{}, 0, nopLogger{})
	uc.timeProvider = &fixedTimeProvider{now: testNow}

	_, err := uc.Execute(context.Background(), &Request{
		UserID:    testUserID,
		ServiceID: 1,
		StartTime: at(10, 0),
	})

	// Проигравший гонку сериализации получает конфликт слота, а не 500
	require.ErrorIs(t, err, ErrSlotConflict)
}
