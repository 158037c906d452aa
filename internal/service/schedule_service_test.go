package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/centrovital/agenda-api/internal/model"
	"github.com/centrovital/agenda-api/internal/schedule"
)

type fakeAppointmentSource struct {
	appts []*model.Appointment
	err   error
}

func (f *fakeAppointmentSource) ListByDateRange(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
	return f.appts, f.err
}

type fakePlanSource struct {
	plan *model.PlanUsage
	err  error
}

func (f *fakePlanSource) GetByStudent(ctx context.Context, studentID uuid.UUID) (*model.PlanUsage, error) {
	return f.plan, f.err
}

func testScheduleService(a AppointmentSource, b BlockSource, p PlanSource) *ScheduleService {
	builder := schedule.NewBuilder(zap.NewNop())
	return NewScheduleService(a, b, p, builder, zap.NewNop())
}

func findSlot(t *testing.T, slots []schedule.Slot, dayIdx int, hhmm string) schedule.Slot {
	t.Helper()
	for _, s := range slots {
		if s.DayIndex == dayIdx && s.Time == hhmm {
			return s
		}
	}
	t.Fatalf("slot (%d, %s) not found", dayIdx, hhmm)
	return schedule.Slot{}
}

func TestWeekGrid_AssemblesAllSources(t *testing.T) {
	anchor := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC) // Wednesday
	tuesday := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)

	appts := &fakeAppointmentSource{appts: []*model.Appointment{{
		ID: uuid.New(), Date: tuesday, StartTime: "10:00", EndTime: "11:00",
		Duration: 60, Status: model.StatusScheduled,
		ProfessionalID: uuid.New(), StudentID: uuid.New(),
	}}}
	blocks := &fakeBlockSource{blocks: []*model.Block{{
		Type: model.BlockGlobal, Date: &tuesday, StartTime: "14:00", EndTime: "15:00", Active: true,
	}}}

	svc := testScheduleService(appts, blocks, &fakePlanSource{})
	got, err := svc.WeekGrid(context.Background(), anchor, uuid.New(), model.RoleAdmin, schedule.Scope{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !got.WeekStart.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("week must start on Monday, got %v", got.WeekStart)
	}
	if len(got.Partial) != 0 {
		t.Fatalf("no source failed, Partial must be empty: %v", got.Partial)
	}
	if s := findSlot(t, got.Slots, 1, "10:00"); !s.HasClass {
		t.Fatalf("appointment missing from the grid")
	}
	if s := findSlot(t, got.Slots, 1, "14:00"); !s.IsBlocked || !s.IsGlobalBlock {
		t.Fatalf("global block missing from the grid")
	}
}

// One failing source degrades to empty and is reported; the others still
// populate the grid.
func TestWeekGrid_PartialFailure(t *testing.T) {
	anchor := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)
	tuesday := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)

	appts := &fakeAppointmentSource{appts: []*model.Appointment{{
		ID: uuid.New(), Date: tuesday, StartTime: "10:00", EndTime: "11:00",
		Duration: 60, Status: model.StatusScheduled,
		ProfessionalID: uuid.New(), StudentID: uuid.New(),
	}}}
	blocks := &fakeBlockSource{err: errors.New("connection refused")}

	svc := testScheduleService(appts, blocks, &fakePlanSource{})
	got, err := svc.WeekGrid(context.Background(), anchor, uuid.New(), model.RoleAdmin, schedule.Scope{})
	if err != nil {
		t.Fatalf("partial failure must not be fatal: %v", err)
	}

	if len(got.Partial) != 1 || got.Partial[0] != "blocks" {
		t.Fatalf("expected Partial=[blocks], got %v", got.Partial)
	}
	if s := findSlot(t, got.Slots, 1, "10:00"); !s.HasClass {
		t.Fatalf("appointments must still render when blocks fail")
	}
	for _, s := range got.Slots {
		if s.IsBlocked {
			t.Fatalf("failed block source must contribute nothing")
		}
	}
}

func TestWeekGrid_StudentPlanGatesScheduling(t *testing.T) {
	anchor := time.Now().UTC().AddDate(0, 0, 14) // a clearly future week
	studentID := uuid.New()

	exhausted := &fakePlanSource{plan: &model.PlanUsage{
		StudentID:    studentID,
		TotalClasses: 8,
		UsedClasses:  8,
		ExpiresAt:    time.Now().AddDate(0, 1, 0),
	}}
	svc := testScheduleService(&fakeAppointmentSource{appts: []*model.Appointment{}}, &fakeBlockSource{}, exhausted)

	got, err := svc.WeekGrid(context.Background(), anchor, studentID, model.RoleStudent, schedule.Scope{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Plan == nil {
		t.Fatalf("student response must carry the plan")
	}
	for _, s := range got.Slots {
		if s.CanSchedule {
			t.Fatalf("exhausted plan must disable scheduling everywhere, slot %+v", s)
		}
	}

	active := &fakePlanSource{plan: &model.PlanUsage{
		StudentID:    studentID,
		TotalClasses: 8,
		UsedClasses:  2,
		ExpiresAt:    time.Now().AddDate(0, 1, 0),
	}}
	svc = testScheduleService(&fakeAppointmentSource{appts: []*model.Appointment{}}, &fakeBlockSource{}, active)
	got, err = svc.WeekGrid(context.Background(), anchor, studentID, model.RoleStudent, schedule.Scope{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	schedulable := false
	for _, s := range got.Slots {
		if s.CanSchedule {
			schedulable = true
			break
		}
	}
	if !schedulable {
		t.Fatalf("student with quota must be able to schedule somewhere in a future week")
	}
}
