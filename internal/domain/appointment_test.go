package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from AppointmentStatus
		to   AppointmentStatus
		want bool
	}{
		{"pending to confirmed", StatusPending, StatusConfirmed, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"confirmed to cancelled", StatusConfirmed, StatusCancelled, true},
		{"confirmed to pending", StatusConfirmed, StatusPending, false},
		{"cancelled is terminal", StatusCancelled, StatusPending, false},
		{"cancelled to confirmed", StatusCancelled, StatusConfirmed, false},
		{"pending to pending", StatusPending, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestAppointmentOverlaps(t *testing.T) {
	base := time.Date(2025, 10, 15, 10, 0, 0, 0, time.UTC)
	appt := &Appointment{
		StartTime: base,
		EndTime:   base.Add(30 * time.Minute),
	}

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  bool
	}{
		{"identical range", base, base.Add(30 * time.Minute), true},
		{"overlap from inside", base.Add(15 * time.Minute), base.Add(45 * time.Minute), true},
		{"containing range", base.Add(-15 * time.Minute), base.Add(45 * time.Minute), true},
		{"adjacent after", base.Add(30 * time.Minute), base.Add(60 * time.Minute), false},
		{"adjacent before", base.Add(-30 * time.Minute), base, false},
		{"disjoint", base.Add(2 * time.Hour), base.Add(3 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, appt.Overlaps(tt.start, tt.end))
		})
	}
}

func TestAppointmentStatePredicates(t *testing.T) {
	pending := &Appointment{Status: StatusPending}
	confirmed := &Appointment{Status: StatusConfirmed}
	cancelled := &Appointment{Status: StatusCancelled}

	assert.True(t, pending.IsActive())
	assert.True(t, pending.CanBeCancelled())
	assert.True(t, confirmed.IsActive())
	assert.True(t, confirmed.CanBeCancelled())
	assert.False(t, cancelled.IsActive())
	assert.False(t, cancelled.CanBeCancelled())
	assert.True(t, cancelled.IsCancelled())
}
