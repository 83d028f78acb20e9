package catalog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/servicecatalog"
	"github.com/m04kA/SMC-AppointmentService/internal/service/catalog/models"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

// fakeCatalogRepo in-memory репозиторий каталога для тестов
type fakeCatalogRepo struct {
	services map[int64]*domain.Service
	nextID   int64
}

func newFakeCatalogRepo(services ...*domain.Service) *fakeCatalogRepo {
	repo := &fakeCatalogRepo{services: make(map[int64]*domain.Service), nextID: 1}
	for _, s := range services {
		copied := *s
		repo.services[s.ID] = &copied
		if s.ID >= repo.nextID {
			repo.nextID = s.ID + 1
		}
	}
	return repo
}

func (r *fakeCatalogRepo) Create(ctx context.Context, service *domain.Service) (*domain.Service, error) {
	created := *service
	created.ID = r.nextID
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	r.nextID++
	r.services[created.ID] = &created
	result := created
	return &result, nil
}

func (r *fakeCatalogRepo) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	service, ok := r.services[id]
	if !ok {
		return nil, catalogRepo.ErrServiceNotFound
	}
	copied := *service
	return &copied, nil
}

func (r *fakeCatalogRepo) List(ctx context.Context) ([]*domain.Service, error) {
	var result []*domain.Service
	for _, s := range r.services {
		copied := *s
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeCatalogRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.services[id]; !ok {
		return catalogRepo.ErrServiceNotFound
	}
	delete(r.services, id)
	return nil
}

// fakeAppointmentCounter считает активные записи для referential guard
type fakeAppointmentCounter struct {
	activeByService map[int64]int
}

func (f *fakeAppointmentCounter) CountActiveByService(ctx context.Context, serviceID int64) (int, error) {
	return f.activeByService[serviceID], nil
}

func noAppointments() *fakeAppointmentCounter {
	return &fakeAppointmentCounter{activeByService: map[int64]int{}}
}

func TestService_Create(t *testing.T) {
	t.Run("успешное создание услуги", func(t *testing.T) {
		repo := newFakeCatalogRepo()
		svc := NewService(repo, noAppointments(), nopLogger{})

		resp, err := svc.Create(context.Background(), &models.CreateServiceRequest{
			Name:            "Стрижка",
			DurationMinutes: 30,
			Price:           1500,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.ID)
		assert.Equal(t, "Стрижка", resp.Name)
		assert.Equal(t, 30, resp.DurationMinutes)
		assert.Equal(t, float64(1500), resp.Price)
	})

	t.Run("имя обрезается по краям", func(t *testing.T) {
		repo := newFakeCatalogRepo()
		svc := NewService(repo, noAppointments(), nopLogger{})

		resp, err := svc.Create(context.Background(), &models.CreateServiceRequest{
			Name:            "  Маникюр  ",
			DurationMinutes: 60,
			Price:           2000,
		})

		require.NoError(t, err)
		assert.Equal(t, "Маникюр", resp.Name)
	})

	t.Run("пустое имя", func(t *testing.T) {
		svc := NewService(newFakeCatalogRepo(), noAppointments(), nopLogger{})

		_, err := svc.Create(context.Background(), &models.CreateServiceRequest{
			Name:            "   ",
			DurationMinutes: 30,
			Price:           100,
		})

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("слишком длинное имя", func(t *testing.T) {
		svc := NewService(newFakeCatalogRepo(), noAppointments(), nopLogger{})

		_, err := svc.Create(context.Background(), &models.CreateServiceRequest{
			Name:            strings.Repeat("a", domain.MaxServiceNameLength+1),
			DurationMinutes: 30,
			Price:           100,
		})

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("некорректная длительность", func(t *testing.T) {
		svc := NewService(newFakeCatalogRepo(), noAppointments(), nopLogger{})

		for _, duration := range []int{0, -10, domain.MinServiceDurationMinutes - 1, domain.MaxServiceDurationMinutes + 1} {
			_, err := svc.Create(context.Background(), &models.CreateServiceRequest{
				Name:            "Стрижка",
				DurationMinutes: duration,
				Price:           100,
			})

			assert.ErrorIs(t, err, ErrInvalidInput, "duration=%d", duration)
		}
	})

	t.Run("отрицательная цена", func(t *testing.T) {
		svc := NewService(newFakeCatalogRepo(), noAppointments(), nopLogger{})

		_, err := svc.Create(context.Background(), &models.CreateServiceRequest{
			Name:            "Стрижка",
			DurationMinutes: 30,
			Price:           -1,
		})

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("бесплатная услуга допустима", func(t *testing.T) {
		svc := NewService(newFakeCatalogRepo(), noAppointments(), nopLogger{})

		resp, err := svc.Create(context.Background(), &models.CreateServiceRequest{
			Name:            "Консультация",
			DurationMinutes: 15,
			Price:           0,
		})

		require.NoError(t, err)
		assert.Equal(t, float64(0), resp.Price)
	})
}

func TestService_Get(t *testing.T) {
	existing := &domain.Service{ID: 7, Name: "Массаж", DurationMinutes: 90, Price: 3000}

	t.Run("существующая услуга", func(t *testing.T) {
		svc := NewService(newFakeCatalogRepo(existing), noAppointments(), nopLogger{})

		resp, err := svc.Get(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, "Массаж", resp.Name)
	})

	t.Run("несуществующая услуга", func(t *testing.T) {
		svc := NewService(newFakeCatalogRepo(), noAppointments(), nopLogger{})

		_, err := svc.Get(context.Background(), 7)

		assert.ErrorIs(t, err, ErrServiceNotFound)
	})
}

func TestService_List(t *testing.T) {
	svc := NewService(newFakeCatalogRepo(
		&domain.Service{ID: 1, Name: "Стрижка", DurationMinutes: 30, Price: 1500},
		&domain.Service{ID: 2, Name: "Маникюр", DurationMinutes: 60, Price: 2000},
	), noAppointments(), nopLogger{})

	resp, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.Len(t, resp.Services, 2)
}

func TestService_Delete(t *testing.T) {
	existing := &domain.Service{ID: 1, Name: "Стрижка", DurationMinutes: 30, Price: 1500}

	t.Run("услуга без записей удаляется", func(t *testing.T) {
		repo := newFakeCatalogRepo(existing)
		svc := NewService(repo, noAppointments(), nopLogger{})

		err := svc.Delete(context.Background(), 1)

		require.NoError(t, err)
		assert.Empty(t, repo.services)
	})

	t.Run("услуга с активными записями не удаляется", func(t *testing.T) {
		repo := newFakeCatalogRepo(existing)
		counter := &fakeAppointmentCounter{activeByService: map[int64]int{1: 2}}
		svc := NewService(repo, counter, nopLogger{})

		err := svc.Delete(context.Background(), 1)

		assert.ErrorIs(t, err, ErrServiceInUse)
		assert.Len(t, repo.services, 1)
	})

	t.Run("услуга только с отменёнными записями удаляется", func(t *testing.T) {
		// Отменённые записи не учитываются счётчиком активных
		repo := newFakeCatalogRepo(existing)
		counter := &fakeAppointmentCounter{activeByService: map[int64]int{1: 0}}
		svc := NewService(repo, counter, nopLogger{})

		err := svc.Delete(context.Background(), 1)

		require.NoError(t, err)
		assert.Empty(t, repo.services)
	})

	t.Run("несуществующая услуга", func(t *testing.T) {
		svc := NewService(newFakeCatalogRepo(), noAppointments(), nopLogger{})

		err := svc.Delete(context.Background(), 99)

		assert.ErrorIs(t, err, ErrServiceNotFound)
	})
}
