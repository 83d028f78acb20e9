package book_appointment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/identityservice"
	bookAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/book_appointment"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

// fakeUseCase возвращает заранее заданный результат или ошибку
type fakeUseCase struct {
	resp *bookAppointment.Response
	err  error

	gotReq *bookAppointment.Request
}

func (f *fakeUseCase) Execute(ctx context.Context, req *bookAppointment.Request) (*bookAppointment.Response, error) {
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func doRequest(t *testing.T, uc BookAppointmentUseCase, user *identityservice.User, body string) *httptest.ResponseRecorder {
	t.Helper()

	h := NewHandler(uc, nopLogger{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", bytes.NewBufferString(body))
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), user))
	}

	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandler_Handle(t *testing.T) {
	userID := uuid.New()
	user := &identityservice.User{ID: userID, Email: "user@example.com", Role: identityservice.RoleUser}

	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	t.Run("успешное создание записи", func(t *testing.T) {
		uc := &fakeUseCase{resp: &bookAppointment.Response{
			ID:           1,
			UserID:       userID,
			ServiceID:    2,
			StartTime:    start,
			EndTime:      start.Add(30 * time.Minute),
			Status:       "pending",
			ServiceName:  "Стрижка",
			ServicePrice: 1500,
		}}

		rec := doRequest(t, uc, user, `{"serviceId": 2, "startTime": "2026-03-10T10:00:00Z"}`)

		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp AppointmentResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.ID)
		assert.Equal(t, userID.String(), resp.UserID)
		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, "2026-03-10T10:30:00Z", resp.EndTime)

		// Идентичность берётся из контекста, а не из тела
		require.NotNil(t, uc.gotReq)
		assert.Equal(t, userID, uc.gotReq.UserID)
	})

	t.Run("конфликт слота", func(t *testing.T) {
		uc := &fakeUseCase{err: &bookAppointment.SlotConflictError{ConflictingIDs: []int64{7}}}

		rec := doRequest(t, uc, user, `{"serviceId": 2, "startTime": "2026-03-10T10:00:00Z"}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("услуга не найдена", func(t *testing.T) {
		uc := &fakeUseCase{err: bookAppointment.ErrServiceNotFound}

		rec := doRequest(t, uc, user, `{"serviceId": 99, "startTime": "2026-03-10T10:00:00Z"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("время начала в прошлом", func(t *testing.T) {
		uc := &fakeUseCase{err: bookAppointment.ErrStartInPast}

		rec := doRequest(t, uc, user, `{"serviceId": 2, "startTime": "2020-01-01T10:00:00Z"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("некорректный формат времени", func(t *testing.T) {
		uc := &fakeUseCase{}

		rec := doRequest(t, uc, user, `{"serviceId": 2, "startTime": "10:00"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, uc.gotReq)
	})

	t.Run("неизвестное поле в теле запроса", func(t *testing.T) {
		uc := &fakeUseCase{}

		rec := doRequest(t, uc, user, `{"serviceId": 2, "startTime": "2026-03-10T10:00:00Z", "userId": "spoofed"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("без пользователя в контексте", func(t *testing.T) {
		uc := &fakeUseCase{}

		rec := doRequest(t, uc, nil, `{"serviceId": 2, "startTime": "2026-03-10T10:00:00Z"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var errResp handlers.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
		assert.Equal(t, http.StatusUnauthorized, errResp.Code)
	})
}
