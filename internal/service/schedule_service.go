package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/centrovital/agenda-api/internal/model"
	"github.com/centrovital/agenda-api/internal/schedule"
)

// Data sources the schedule needs. Narrow interfaces so tests can substitute
// fakes; the pgx repositories satisfy them.
type AppointmentSource interface {
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*model.Appointment, error)
}

type BlockSource interface {
	ListActive(ctx context.Context) ([]*model.Block, error)
}

type PlanSource interface {
	GetByStudent(ctx context.Context, studentID uuid.UUID) (*model.PlanUsage, error)
}

// WeekSchedule is the full grid for one week plus load metadata. Partial
// names the sources that failed; their contribution is empty but the grid
// still renders.
type WeekSchedule struct {
	WeekStart time.Time        `json:"week_start"`
	Slots     []schedule.Slot  `json:"slots"`
	Plan      *model.PlanUsage `json:"plan,omitempty"`
	Partial   []string         `json:"partial,omitempty"`
}

type ScheduleService struct {
	appointments AppointmentSource
	blocks       BlockSource
	plans        PlanSource
	builder      *schedule.Builder
	logger       *zap.Logger
}

func NewScheduleService(
	appointments AppointmentSource,
	blocks BlockSource,
	plans PlanSource,
	builder *schedule.Builder,
	logger *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		appointments: appointments,
		blocks:       blocks,
		plans:        plans,
		builder:      builder,
		logger:       logger,
	}
}

// WeekGrid fetches appointments, blocking rules and (for students) plan
// usage concurrently and assembles the week grid. Sources fail
// independently: one bad fetch degrades that source to empty and is reported
// in Partial, it never takes the whole calendar down.
func (s *ScheduleService) WeekGrid(ctx context.Context, anchor time.Time, viewerID uuid.UUID, role model.Role, scope schedule.Scope) (*WeekSchedule, error) {
	monday := schedule.WeekMonday(anchor)
	sunday := monday.AddDate(0, 0, 6)

	var (
		wg      sync.WaitGroup
		appts   []*model.Appointment
		blocks  []*model.Block
		plan    *model.PlanUsage
		mu      sync.Mutex
		partial []string
	)

	fail := func(source string, err error) {
		s.logger.Warn("schedule source failed, rendering without it",
			zap.String("source", source), zap.Error(err))
		mu.Lock()
		partial = append(partial, source)
		mu.Unlock()
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		appts, err = s.appointments.ListByDateRange(ctx, monday, sunday)
		if err != nil {
			fail("appointments", err)
			appts = []*model.Appointment{}
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		blocks, err = s.blocks.ListActive(ctx)
		if err != nil {
			fail("blocks", err)
			blocks = []*model.Block{}
		}
	}()

	if role == model.RoleStudent {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			plan, err = s.plans.GetByStudent(ctx, viewerID)
			if err != nil {
				fail("plan", err)
				plan = nil
			}
		}()
	}

	wg.Wait()

	viewer := schedule.Viewer{ID: viewerID, Role: role}
	if plan != nil && !plan.Expired(time.Now().UTC()) {
		viewer.PlanRemaining = plan.Remaining()
	}

	return &WeekSchedule{
		WeekStart: monday,
		Slots:     s.builder.BuildWeek(appts, blocks, anchor, viewer, scope),
		Plan:      plan,
		Partial:   partial,
	}, nil
}

// SlotPermissions re-evaluates one cell for a viewer without a rebuild.
func (s *ScheduleService) SlotPermissions(slot schedule.Slot, viewerID uuid.UUID, role model.Role, planRemaining int) schedule.Permissions {
	return s.builder.Permissions(slot, schedule.Viewer{
		ID:            viewerID,
		Role:          role,
		PlanRemaining: planRemaining,
	})
}
