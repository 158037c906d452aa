package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/centrovital/agenda-api/internal/model"
)

var (
	permNow    = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	futureSlot = time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC)
	pastSlot   = time.Date(2024, 1, 14, 10, 0, 0, 0, time.UTC)
)

func TestDerivePermissions_Admin(t *testing.T) {
	admin := Viewer{ID: uuid.New(), Role: model.RoleAdmin}

	p := DerivePermissions(admin, nil, false, futureSlot, permNow)
	if !p.CanEdit || !p.CanSchedule {
		t.Fatalf("admin on a free cell: got %+v", p)
	}

	// admin can always edit, but even admin can't schedule into a blocked cell
	p = DerivePermissions(admin, nil, true, futureSlot, permNow)
	if !p.CanEdit || p.CanSchedule {
		t.Fatalf("admin on a blocked cell: got %+v", p)
	}
}

func TestDerivePermissions_Professional(t *testing.T) {
	self := uuid.New()
	other := uuid.New()
	pro := Viewer{ID: self, Role: model.RoleProfessional}

	own := &model.Appointment{ProfessionalID: self, StudentID: uuid.New()}
	foreign := &model.Appointment{ProfessionalID: other, StudentID: uuid.New()}

	p := DerivePermissions(pro, own, false, futureSlot, permNow)
	if !p.CanEdit {
		t.Fatalf("professional must edit own appointment")
	}
	if p.CanSchedule {
		t.Fatalf("occupied cell must not be schedulable")
	}

	p = DerivePermissions(pro, foreign, false, futureSlot, permNow)
	if p.CanEdit {
		t.Fatalf("professional must not edit another professional's appointment")
	}

	p = DerivePermissions(pro, nil, false, pastSlot, permNow)
	if !p.CanSchedule {
		t.Fatalf("professionals are not time-gated, past free cell must be schedulable")
	}
}

func TestDerivePermissions_Student(t *testing.T) {
	self := uuid.New()
	student := Viewer{ID: self, Role: model.RoleStudent, PlanRemaining: 3}

	own := &model.Appointment{StudentID: self, ProfessionalID: uuid.New()}
	foreign := &model.Appointment{StudentID: uuid.New(), ProfessionalID: uuid.New()}

	p := DerivePermissions(student, own, false, futureSlot, permNow)
	if !p.CanEdit {
		t.Fatalf("student must edit own appointment")
	}
	p = DerivePermissions(student, foreign, false, futureSlot, permNow)
	if p.CanEdit {
		t.Fatalf("student must not edit someone else's appointment")
	}

	p = DerivePermissions(student, nil, false, futureSlot, permNow)
	if !p.CanSchedule {
		t.Fatalf("student with quota on a free future cell must schedule")
	}
	p = DerivePermissions(student, nil, false, pastSlot, permNow)
	if p.CanSchedule {
		t.Fatalf("students must not schedule into the past")
	}
}

// Scenario: zero remaining quota blocks scheduling on an otherwise free,
// unblocked, future cell.
func TestDerivePermissions_StudentQuotaExhausted(t *testing.T) {
	student := Viewer{ID: uuid.New(), Role: model.RoleStudent, PlanRemaining: 0}
	p := DerivePermissions(student, nil, false, futureSlot, permNow)
	if p.CanSchedule {
		t.Fatalf("student with no remaining classes must not schedule")
	}
	if p.CanEdit {
		t.Fatalf("empty cell is not editable for a student")
	}
}

func TestDerivePermissions_UnknownRole(t *testing.T) {
	anon := Viewer{ID: uuid.New(), Role: "guest"}
	p := DerivePermissions(anon, nil, false, futureSlot, permNow)
	if p.CanEdit || p.CanSchedule {
		t.Fatalf("unknown role must get no permissions, got %+v", p)
	}
}

// Once a cell hosts an appointment, no role may schedule into it again.
func TestDerivePermissions_OccupiedCellNeverSchedulable(t *testing.T) {
	occupying := &model.Appointment{StudentID: uuid.New(), ProfessionalID: uuid.New()}
	for _, v := range []Viewer{
		{ID: uuid.New(), Role: model.RoleProfessional},
		{ID: uuid.New(), Role: model.RoleStudent, PlanRemaining: 5},
	} {
		p := DerivePermissions(v, occupying, false, futureSlot, permNow)
		if p.CanSchedule {
			t.Fatalf("role %s scheduled into an occupied cell", v.Role)
		}
	}
}
