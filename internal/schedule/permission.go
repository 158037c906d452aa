package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/centrovital/agenda-api/internal/model"
)

// Viewer is the explicit viewer context every core call receives; no core
// function reads session state on its own.
type Viewer struct {
	ID            uuid.UUID
	Role          model.Role
	PlanRemaining int // student only; ignored for other roles
}

// Permissions is what the viewer may do with one cell.
type Permissions struct {
	CanEdit     bool `json:"can_edit"`
	CanSchedule bool `json:"can_schedule"`
}

// DerivePermissions computes the viewer's rights on a single cell.
//
// Editing requires ownership, except for admins who own everything.
// Scheduling requires an empty, unblocked cell; students are additionally
// gated on future time and remaining plan quota, while professionals and
// admins manage the calendar proactively and are not time-gated.
func DerivePermissions(v Viewer, apt *model.Appointment, blocked bool, slotAt time.Time, now time.Time) Permissions {
	switch v.Role {
	case model.RoleAdmin:
		return Permissions{
			CanEdit:     true,
			CanSchedule: !blocked,
		}
	case model.RoleProfessional:
		return Permissions{
			CanEdit:     apt == nil || apt.ProfessionalID == v.ID,
			CanSchedule: !blocked && apt == nil,
		}
	case model.RoleStudent:
		return Permissions{
			CanEdit:     apt != nil && apt.StudentID == v.ID,
			CanSchedule: !blocked && apt == nil && slotAt.After(now) && v.PlanRemaining > 0,
		}
	}
	// unknown or unauthenticated role
	return Permissions{}
}
