package schedule

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/centrovital/agenda-api/internal/model"
)

// Week under test: Monday 2024-01-15 .. Sunday 2024-01-21.
var gridAnchor = date(2024, 1, 17)

func testBuilder() *Builder {
	return NewBuilder(zap.NewNop(), WithNow(func() time.Time {
		return time.Date(2024, 1, 15, 7, 0, 0, 0, time.UTC)
	}))
}

func slotAt(t *testing.T, grid []Slot, dayIdx int, hhmm string) Slot {
	t.Helper()
	for _, s := range grid {
		if s.DayIndex == dayIdx && s.Time == hhmm {
			return s
		}
	}
	t.Fatalf("slot (%d, %s) not found", dayIdx, hhmm)
	return Slot{}
}

func TestBuildWeek_Axis(t *testing.T) {
	b := testBuilder()
	grid := b.BuildWeek(nil, nil, gridAnchor, Viewer{Role: model.RoleAdmin}, Scope{})

	// 08:00..20:30 inclusive = 26 cells per day
	if len(grid) != 7*26 {
		t.Fatalf("expected %d slots, got %d", 7*26, len(grid))
	}
	if grid[0].Time != "08:00" || grid[0].DayIndex != 0 {
		t.Fatalf("grid must start Monday 08:00, got %+v", grid[0])
	}
	if !model.SameDate(grid[0].Date, date(2024, 1, 15)) {
		t.Fatalf("anchor Wednesday must resolve to Monday 2024-01-15, got %v", grid[0].Date)
	}
	last := grid[len(grid)-1]
	if last.Time != "20:30" || last.DayIndex != 6 {
		t.Fatalf("grid must end Sunday 20:30, got %+v", last)
	}
	if last.Day != "Domingo" || grid[0].Day != "Lunes" {
		t.Fatalf("unexpected day labels: %q, %q", grid[0].Day, last.Day)
	}
}

func TestBuildWeek_FullDayVariant(t *testing.T) {
	b := NewBuilder(zap.NewNop(), WithFullDay())
	grid := b.BuildWeek(nil, nil, gridAnchor, Viewer{Role: model.RoleAdmin}, Scope{})
	if len(grid) != 7*48 {
		t.Fatalf("24h axis: expected %d slots, got %d", 7*48, len(grid))
	}
	if grid[0].Time != "00:00" {
		t.Fatalf("24h axis must start at 00:00, got %s", grid[0].Time)
	}
}

func TestBuildWeek_Idempotent(t *testing.T) {
	b := testBuilder()
	appts := []*model.Appointment{apt(date(2024, 1, 16), "10:00", "11:00", 60)}
	blocks := []*model.Block{{
		Type: model.BlockGlobal, Date: datePtr(date(2024, 1, 18)), AllDay: true, Active: true,
	}}
	viewer := Viewer{ID: uuid.New(), Role: model.RoleProfessional}

	first := b.BuildWeek(appts, blocks, gridAnchor, viewer, Scope{})
	second := b.BuildWeek(appts, blocks, gridAnchor, viewer, Scope{})
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs must yield structurally identical grids")
	}
}

func TestBuildWeek_NilInputsDegradeToOpenGrid(t *testing.T) {
	b := testBuilder()
	grid := b.BuildWeek(nil, nil, gridAnchor, Viewer{Role: model.RoleAdmin}, Scope{})
	for _, s := range grid {
		if s.HasClass || s.IsBlocked {
			t.Fatalf("nil inputs must render a fully open grid, got %+v", s)
		}
	}
}

// Scenario: an all-day global block shows blocked+global and refuses
// scheduling for every role, admin included.
func TestBuildWeek_GlobalBlockAppliesToEveryRole(t *testing.T) {
	b := testBuilder()
	blocks := []*model.Block{{
		Type: model.BlockGlobal, Date: datePtr(date(2024, 1, 16)), AllDay: true, Active: true,
	}}

	viewers := []Viewer{
		{ID: uuid.New(), Role: model.RoleAdmin},
		{ID: uuid.New(), Role: model.RoleProfessional},
		{ID: uuid.New(), Role: model.RoleStudent, PlanRemaining: 5},
	}
	for _, v := range viewers {
		grid := b.BuildWeek(nil, blocks, gridAnchor, v, Scope{})
		s := slotAt(t, grid, 1, "10:00") // Tuesday 2024-01-16
		if !s.IsBlocked || !s.IsGlobalBlock {
			t.Fatalf("role %s: expected global block on Tuesday, got %+v", v.Role, s)
		}
		if s.CanSchedule {
			t.Fatalf("role %s must not schedule into a globally blocked cell", v.Role)
		}
	}
}

// Scenario: professional P's 10:00-11:00 session with student S occupies the
// 10:30 cell for every viewer, referencing the same appointment.
func TestBuildWeek_MidAppointmentCell(t *testing.T) {
	b := testBuilder()
	a := apt(date(2024, 1, 16), "10:00", "11:00", 60)
	appts := []*model.Appointment{a}

	for _, v := range []Viewer{
		{ID: uuid.New(), Role: model.RoleAdmin},
		{ID: uuid.New(), Role: model.RoleProfessional},
		{ID: uuid.New(), Role: model.RoleStudent, PlanRemaining: 1},
	} {
		grid := b.BuildWeek(appts, nil, gridAnchor, v, Scope{})
		s := slotAt(t, grid, 1, "10:30")
		if !s.HasClass || s.Appointment == nil || s.Appointment.ID != a.ID {
			t.Fatalf("role %s: 10:30 cell must reference the occupying appointment", v.Role)
		}
	}
}

// Scenario: a student with an exhausted plan sees canSchedule=false on a
// free, unblocked, future cell.
func TestBuildWeek_StudentWithoutQuota(t *testing.T) {
	b := testBuilder()
	student := Viewer{ID: uuid.New(), Role: model.RoleStudent, PlanRemaining: 0}

	grid := b.BuildWeek([]*model.Appointment{}, []*model.Block{}, gridAnchor, student, Scope{})
	s := slotAt(t, grid, 1, "10:00")
	if s.HasClass || s.IsBlocked {
		t.Fatalf("cell should be free and unblocked: %+v", s)
	}
	if s.CanSchedule {
		t.Fatalf("student without quota must not schedule")
	}
}

// A professional-scoped block only bites in that professional's column.
func TestBuildWeek_ScopedBlockRespectsFilter(t *testing.T) {
	b := testBuilder()
	p := uuid.New()
	q := uuid.New()
	blocks := []*model.Block{{
		Type:           model.BlockProfessional,
		Date:           datePtr(date(2024, 1, 17)),
		StartTime:      "14:00",
		EndTime:        "15:00",
		ProfessionalID: &p,
		Active:         true,
	}}
	admin := Viewer{ID: uuid.New(), Role: model.RoleAdmin}

	gridP := b.BuildWeek(nil, blocks, gridAnchor, admin, Scope{ProfessionalID: p})
	if s := slotAt(t, gridP, 2, "14:00"); !s.IsBlocked || s.IsGlobalBlock {
		t.Fatalf("P's Wednesday 14:00 must be blocked and not global, got %+v", s)
	}
	gridQ := b.BuildWeek(nil, blocks, gridAnchor, admin, Scope{ProfessionalID: q})
	if s := slotAt(t, gridQ, 2, "14:00"); s.IsBlocked {
		t.Fatalf("Q's Wednesday 14:00 must stay open")
	}
}

// Unfiltered view: the occupying appointment fixes the professional scope, so
// that professional's blocks surface on its cells.
func TestBuildWeek_AppointmentFixesScope(t *testing.T) {
	b := testBuilder()
	p := uuid.New()
	a := apt(date(2024, 1, 16), "10:00", "11:00", 60)
	a.ProfessionalID = p
	blocks := []*model.Block{{
		Type:           model.BlockProfessional,
		Date:           datePtr(date(2024, 1, 16)),
		StartTime:      "10:00",
		EndTime:        "11:00",
		ProfessionalID: &p,
		Active:         true,
	}}

	grid := b.BuildWeek([]*model.Appointment{a}, blocks, gridAnchor, Viewer{Role: model.RoleAdmin}, Scope{})
	s := slotAt(t, grid, 1, "10:00")
	if !s.HasClass || !s.IsBlocked {
		t.Fatalf("cell must carry both the appointment and its professional's block, got %+v", s)
	}
}

func TestPermissions_Standalone(t *testing.T) {
	b := testBuilder()
	self := uuid.New()
	a := apt(date(2024, 1, 16), "10:00", "11:00", 60)
	a.StudentID = self

	slot := Slot{
		Time:        "10:00",
		Date:        date(2024, 1, 16),
		HasClass:    true,
		Appointment: a,
	}

	p := b.Permissions(slot, Viewer{ID: self, Role: model.RoleStudent, PlanRemaining: 2})
	if !p.CanEdit {
		t.Fatalf("owner student must be able to edit via standalone re-evaluation")
	}
	if p.CanSchedule {
		t.Fatalf("occupied cell must not be schedulable")
	}

	p = b.Permissions(Slot{Time: "bad"}, Viewer{ID: self, Role: model.RoleAdmin})
	if p.CanEdit || p.CanSchedule {
		t.Fatalf("unparseable cell must render unavailable, got %+v", p)
	}
}
