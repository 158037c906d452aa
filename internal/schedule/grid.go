package schedule

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/centrovital/agenda-api/internal/model"
)

const (
	// Default visible day window: 08:00 to 20:30 inclusive, 30-minute cells.
	DefaultDayStart = 8 * 60
	DefaultDayEnd   = 20*60 + 30
	SlotMinutes     = 30

	DaysPerWeek = 7
)

var dayNames = [DaysPerWeek]string{
	"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo",
}

// Slot is one rendered cell of the weekly grid. It has no lifecycle of its
// own: the whole grid is recomputed from scratch on every trigger.
type Slot struct {
	Day           string             `json:"day"`
	DayIndex      int                `json:"day_index"` // Monday=0
	Time          string             `json:"time"`      // "HH:MM"
	Date          time.Time          `json:"date"`
	IsBlocked     bool               `json:"is_blocked"`
	IsGlobalBlock bool               `json:"is_global_block"`
	HasClass      bool               `json:"has_class"`
	Appointment   *model.Appointment `json:"appointment,omitempty"`
	CanEdit       bool               `json:"can_edit"`
	CanSchedule   bool               `json:"can_schedule"`
}

// Builder assembles weekly grids. It is stateless between calls; options
// fix the time axis and make "now" injectable for tests.
type Builder struct {
	dayStart int
	dayEnd   int
	now      func() time.Time
	logger   *zap.Logger
}

type Option func(*Builder)

// WithFullDay switches the axis to the 24-hour variant (00:00–23:30).
func WithFullDay() Option {
	return func(b *Builder) {
		b.dayStart = 0
		b.dayEnd = 23*60 + 30
	}
}

// WithDayWindow sets a custom visible window, in minutes since midnight.
func WithDayWindow(startMin, endMin int) Option {
	return func(b *Builder) {
		b.dayStart = startMin
		b.dayEnd = endMin
	}
}

// WithNow injects the clock used for the student future-time gate.
func WithNow(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

func NewBuilder(logger *zap.Logger, opts ...Option) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Builder{
		dayStart: DefaultDayStart,
		dayEnd:   DefaultDayEnd,
		// slot instants are built from UTC midnights, so the clock they are
		// compared against must be UTC too
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// WeekMonday returns the Monday of the week containing anchor, at midnight.
func WeekMonday(anchor time.Time) time.Time {
	return weekStart(dateOnly(anchor))
}

// BuildWeek recomputes the full 7-day grid for the week containing anchor.
// Cells are ordered day-major (all of Monday, then Tuesday, ...). Nil input
// collections degrade to an empty-but-navigable grid with a logged warning;
// the builder never fails.
func (b *Builder) BuildWeek(appointments []*model.Appointment, blocks []*model.Block, anchor time.Time, viewer Viewer, scope Scope) []Slot {
	if appointments == nil {
		b.logger.Warn("nil appointment collection, rendering week without appointments")
		appointments = []*model.Appointment{}
	}
	if blocks == nil {
		b.logger.Warn("nil block collection, rendering week without blocks")
		blocks = []*model.Block{}
	}

	monday := WeekMonday(anchor)
	now := b.now()

	slotsPerDay := (b.dayEnd-b.dayStart)/SlotMinutes + 1
	grid := make([]Slot, 0, DaysPerWeek*slotsPerDay)

	for dayIdx := 0; dayIdx < DaysPerWeek; dayIdx++ {
		date := monday.AddDate(0, 0, dayIdx)
		for mins := b.dayStart; mins <= b.dayEnd; mins += SlotMinutes {
			hhmm := FromMinutes(mins)

			cellScope := scope
			apt := FindAppointment(appointments, date, hhmm)
			if apt != nil && cellScope.ProfessionalID == uuid.Nil {
				// unfiltered view: the occupying appointment fixes the
				// professional column for block resolution
				cellScope.ProfessionalID = apt.ProfessionalID
				if cellScope.Location == "" {
					cellScope.Location = apt.Location
				}
				if cellScope.Room == "" {
					cellScope.Room = apt.Room
				}
			}

			status := ResolveBlock(blocks, date, hhmm, cellScope)
			slotAt := date.Add(time.Duration(mins) * time.Minute)
			perms := DerivePermissions(viewer, apt, status.Blocked, slotAt, now)

			grid = append(grid, Slot{
				Day:           dayNames[dayIdx],
				DayIndex:      dayIdx,
				Time:          hhmm,
				Date:          date,
				IsBlocked:     status.Blocked,
				IsGlobalBlock: status.Global,
				HasClass:      apt != nil,
				Appointment:   apt,
				CanEdit:       perms.CanEdit,
				CanSchedule:   perms.CanSchedule,
			})
		}
	}
	return grid
}

// Permissions re-derives a single cell's permissions for a viewer, for
// standalone re-evaluation after the viewer context changes without
// rebuilding the grid.
func (b *Builder) Permissions(slot Slot, viewer Viewer) Permissions {
	mins, err := ToMinutes(slot.Time)
	if err != nil {
		// unparseable cell renders as unavailable
		return Permissions{}
	}
	slotAt := dateOnly(slot.Date).Add(time.Duration(mins) * time.Minute)
	return DerivePermissions(viewer, slot.Appointment, slot.IsBlocked, slotAt, b.now())
}
