package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/centrovital/agenda-api/internal/model"
)

func apt(d time.Time, start, end string, dur int) *model.Appointment {
	return &model.Appointment{
		ID:        uuid.New(),
		Date:      d,
		StartTime: start,
		EndTime:   end,
		Duration:  dur,
		Status:    model.StatusScheduled,
	}
}

func TestFindAppointment_ExactStart(t *testing.T) {
	a := apt(date(2024, 1, 16), "10:00", "11:00", 60)
	got := FindAppointment([]*model.Appointment{a}, date(2024, 1, 16), "10:00")
	if got == nil || got.ID != a.ID {
		t.Fatalf("expected the appointment at its start cell")
	}
}

// Scenario: a 10:00-11:00 appointment is found from its mid-span 10:30 cell.
func TestFindAppointment_MidSpan(t *testing.T) {
	a := apt(date(2024, 1, 16), "10:00", "11:00", 60)
	got := FindAppointment([]*model.Appointment{a}, date(2024, 1, 16), "10:30")
	if got == nil || got.ID != a.ID {
		t.Fatalf("expected the appointment at 10:30 inside 10:00-11:00")
	}
}

func TestFindAppointment_NinetyMinuteSpan(t *testing.T) {
	a := apt(date(2024, 1, 16), "09:00", "", 90)
	appts := []*model.Appointment{a}

	if FindAppointment(appts, date(2024, 1, 16), "09:30") == nil {
		t.Fatalf("09:30 cell must be occupied")
	}
	if FindAppointment(appts, date(2024, 1, 16), "10:00") != nil {
		t.Fatalf("10:00 cell must be free, end is exclusive")
	}
}

// Same weekday one week later must not match: matching keys on the exact
// date, not the day index.
func TestFindAppointment_NoCrossWeekCollision(t *testing.T) {
	a := apt(date(2024, 1, 16), "10:00", "11:00", 60) // Tuesday
	got := FindAppointment([]*model.Appointment{a}, date(2024, 1, 23), "10:00")
	if got != nil {
		t.Fatalf("appointment must not appear on the same weekday of another week")
	}
}

func TestFindAppointment_CancelledFreesTheCell(t *testing.T) {
	a := apt(date(2024, 1, 16), "10:00", "11:00", 60)
	a.Status = model.StatusCancelled
	if FindAppointment([]*model.Appointment{a}, date(2024, 1, 16), "10:00") != nil {
		t.Fatalf("cancelled appointment must not occupy its cell")
	}
}

func TestFindAppointment_SkipsMalformedRecords(t *testing.T) {
	bad := apt(date(2024, 1, 16), "later", "", 0)
	good := apt(date(2024, 1, 16), "10:00", "11:00", 60)
	got := FindAppointment([]*model.Appointment{bad, nil, good}, date(2024, 1, 16), "10:00")
	if got == nil || got.ID != good.ID {
		t.Fatalf("locator must skip malformed and nil records, got %+v", got)
	}
}

func TestFindAppointment_FirstMatchWins(t *testing.T) {
	first := apt(date(2024, 1, 16), "10:00", "11:00", 60)
	second := apt(date(2024, 1, 16), "10:00", "11:00", 60)
	got := FindAppointment([]*model.Appointment{first, second}, date(2024, 1, 16), "10:00")
	if got == nil || got.ID != first.ID {
		t.Fatalf("expected the first matching appointment")
	}
}
