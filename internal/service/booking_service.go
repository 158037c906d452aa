package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/centrovital/agenda-api/internal/model"
	"github.com/centrovital/agenda-api/internal/schedule"
)

var (
	ErrNotFound          = errors.New("appointment not found")
	ErrForbidden         = errors.New("viewer may not perform this action")
	ErrSlotOccupied      = errors.New("slot is already occupied")
	ErrSlotBlocked       = errors.New("slot is blocked")
	ErrPastSlot          = errors.New("slot is in the past")
	ErrQuotaExhausted    = errors.New("no remaining classes on the plan")
	ErrPlanExpired       = errors.New("plan has expired")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrInvalidTimeRange  = errors.New("end time must be after start time")
)

type AppointmentStore interface {
	Create(ctx context.Context, apt *model.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	FindOverlapping(ctx context.Context, professionalID uuid.UUID, date time.Time, startMin, endMin int) ([]*model.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error
	UpdateSchedule(ctx context.Context, id uuid.UUID, date time.Time, startTime, endTime string, duration int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type PlanStore interface {
	GetByStudent(ctx context.Context, studentID uuid.UUID) (*model.PlanUsage, error)
	ConsumeClass(ctx context.Context, studentID uuid.UUID) error
	RefundClass(ctx context.Context, studentID uuid.UUID) error
}

type BookingService struct {
	appointments AppointmentStore
	blocks       BlockSource
	plans        PlanStore
	logger       *zap.Logger
	now          func() time.Time
}

func NewBookingService(
	appointments AppointmentStore,
	blocks BlockSource,
	plans PlanStore,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		appointments: appointments,
		blocks:       blocks,
		plans:        plans,
		logger:       logger,
		// dates arrive as UTC midnights, so slot instants are UTC; keep the
		// clock in the same zone
		now: func() time.Time { return time.Now().UTC() },
	}
}

// CreateRequest carries a new appointment. EndTime may be empty, in which
// case it derives from StartTime+Duration.
type CreateRequest struct {
	Date           time.Time
	StartTime      string
	EndTime        string
	Duration       int
	StudentID      uuid.UUID
	ProfessionalID uuid.UUID
	Type           model.SessionType
	Title          string
	Location       string
	Room           string
}

// Viewer is who is acting; every mutation receives it explicitly.
type Viewer struct {
	ID   uuid.UUID
	Role model.Role
}

// Create books a new appointment. The block, occupancy and quota checks run
// server-side here even though the grid already gates the UI: the client's
// canSchedule is advisory, this is authoritative.
func (s *BookingService) Create(ctx context.Context, req CreateRequest, viewer Viewer) (*model.Appointment, error) {
	startMin, err := schedule.ToMinutes(req.StartTime)
	if err != nil {
		return nil, err
	}

	endTime := req.EndTime
	duration := req.Duration
	switch {
	case endTime == "" && duration <= 0:
		duration = schedule.DefaultDuration
		endTime = schedule.FromMinutes(startMin + duration)
	case endTime == "":
		endTime = schedule.FromMinutes(startMin + duration)
	default:
		endMin, err := schedule.ToMinutes(endTime)
		if err != nil {
			return nil, err
		}
		if endMin <= startMin {
			return nil, ErrInvalidTimeRange
		}
		if duration <= 0 {
			duration = endMin - startMin
		}
	}
	endMin, err := schedule.ToMinutes(endTime)
	if err != nil {
		return nil, err
	}

	switch viewer.Role {
	case model.RoleAdmin:
		// admins book on anyone's behalf
	case model.RoleProfessional:
		if req.ProfessionalID != viewer.ID {
			return nil, ErrForbidden
		}
	case model.RoleStudent:
		if req.StudentID != viewer.ID {
			return nil, ErrForbidden
		}
		slotAt := req.Date.Add(time.Duration(startMin) * time.Minute)
		if !slotAt.After(s.now()) {
			return nil, ErrPastSlot
		}
	default:
		return nil, ErrForbidden
	}

	if err := s.checkBlocked(ctx, req); err != nil {
		return nil, err
	}

	overlapping, err := s.appointments.FindOverlapping(ctx, req.ProfessionalID, req.Date, startMin, endMin)
	if err != nil {
		return nil, fmt.Errorf("check overlap: %w", err)
	}
	if len(overlapping) > 0 {
		return nil, ErrSlotOccupied
	}

	if viewer.Role == model.RoleStudent {
		if err := s.consumeQuota(ctx, req.StudentID); err != nil {
			return nil, err
		}
	}

	apt := &model.Appointment{
		Date:           req.Date,
		StartTime:      req.StartTime,
		EndTime:        endTime,
		Duration:       duration,
		StudentID:      req.StudentID,
		ProfessionalID: req.ProfessionalID,
		Type:           req.Type,
		Title:          req.Title,
		Status:         model.StatusScheduled,
		Location:       req.Location,
		Room:           req.Room,
	}

	if err := s.appointments.Create(ctx, apt); err != nil {
		// the quota was already decremented; give the class back so a
		// failed insert (e.g. losing the unique-index race) costs nothing
		if viewer.Role == model.RoleStudent {
			if rerr := s.plans.RefundClass(ctx, req.StudentID); rerr != nil {
				s.logger.Error("refund class after failed booking",
					zap.String("student_id", req.StudentID.String()),
					zap.Error(rerr))
			}
		}
		return nil, err
	}

	s.logger.Info("appointment created",
		zap.String("appointment_id", apt.ID.String()),
		zap.String("professional_id", apt.ProfessionalID.String()),
		zap.String("student_id", apt.StudentID.String()),
		zap.String("date", apt.Date.Format("2006-01-02")),
		zap.String("start_time", apt.StartTime))

	return apt, nil
}

func (s *BookingService) checkBlocked(ctx context.Context, req CreateRequest) error {
	blocks, err := s.blocks.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("load blocks: %w", err)
	}
	scope := schedule.Scope{
		ProfessionalID: req.ProfessionalID,
		Location:       req.Location,
		Room:           req.Room,
	}
	if schedule.ResolveBlock(blocks, req.Date, req.StartTime, scope).Blocked {
		return ErrSlotBlocked
	}
	return nil
}

func (s *BookingService) consumeQuota(ctx context.Context, studentID uuid.UUID) error {
	plan, err := s.plans.GetByStudent(ctx, studentID)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}
	if plan == nil || plan.Remaining() <= 0 {
		return ErrQuotaExhausted
	}
	if plan.Expired(s.now()) {
		return ErrPlanExpired
	}
	if err := s.plans.ConsumeClass(ctx, studentID); err != nil {
		return fmt.Errorf("consume quota: %w", err)
	}
	return nil
}

// ChangeStatus applies a monotonic status transition: scheduled may become
// completed, cancelled or no-show; terminal statuses never move again.
// Cancelling is a status change, never a row removal.
func (s *BookingService) ChangeStatus(ctx context.Context, id uuid.UUID, next model.AppointmentStatus, viewer Viewer) (*model.Appointment, error) {
	apt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if apt == nil {
		return nil, ErrNotFound
	}

	if !s.mayEdit(apt, viewer) {
		return nil, ErrForbidden
	}
	// students only ever cancel their own sessions; evaluations and no-show
	// marks belong to staff
	if viewer.Role == model.RoleStudent && next != model.StatusCancelled {
		return nil, ErrForbidden
	}

	if !apt.Status.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}

	if err := s.appointments.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	apt.Status = next

	s.logger.Info("appointment status changed",
		zap.String("appointment_id", id.String()),
		zap.String("status", string(next)))

	return apt, nil
}

// Reschedule moves a scheduled appointment to a new cell, revalidating
// blocks and occupancy at the target.
func (s *BookingService) Reschedule(ctx context.Context, id uuid.UUID, date time.Time, startTime string, duration int, viewer Viewer) (*model.Appointment, error) {
	apt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if apt == nil {
		return nil, ErrNotFound
	}
	if !s.mayEdit(apt, viewer) {
		return nil, ErrForbidden
	}
	if apt.Status != model.StatusScheduled {
		return nil, ErrInvalidTransition
	}

	startMin, err := schedule.ToMinutes(startTime)
	if err != nil {
		return nil, err
	}
	if duration <= 0 {
		duration = apt.Duration
	}
	if duration <= 0 {
		duration = schedule.DefaultDuration
	}
	endTime := schedule.FromMinutes(startMin + duration)
	endMin := startMin + duration

	target := CreateRequest{
		Date:           date,
		StartTime:      startTime,
		ProfessionalID: apt.ProfessionalID,
		Location:       apt.Location,
		Room:           apt.Room,
	}
	if err := s.checkBlocked(ctx, target); err != nil {
		return nil, err
	}

	overlapping, err := s.appointments.FindOverlapping(ctx, apt.ProfessionalID, date, startMin, endMin)
	if err != nil {
		return nil, fmt.Errorf("check overlap: %w", err)
	}
	for _, other := range overlapping {
		if other.ID != apt.ID {
			return nil, ErrSlotOccupied
		}
	}

	if err := s.appointments.UpdateSchedule(ctx, id, date, startTime, endTime, duration); err != nil {
		return nil, err
	}

	apt.Date = date
	apt.StartTime = startTime
	apt.EndTime = endTime
	apt.Duration = duration

	s.logger.Info("appointment rescheduled",
		zap.String("appointment_id", id.String()),
		zap.String("date", date.Format("2006-01-02")),
		zap.String("start_time", startTime))

	return apt, nil
}

// Delete hard-removes an appointment. Separate from cancellation and
// restricted to admins.
func (s *BookingService) Delete(ctx context.Context, id uuid.UUID, viewer Viewer) error {
	if viewer.Role != model.RoleAdmin {
		return ErrForbidden
	}

	apt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if apt == nil {
		return ErrNotFound
	}

	if err := s.appointments.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("appointment deleted",
		zap.String("appointment_id", id.String()),
		zap.String("by", viewer.ID.String()))

	return nil
}

// mayEdit mirrors the grid's ownership rules: admins edit everything,
// professionals their own sessions, students their own bookings.
func (s *BookingService) mayEdit(apt *model.Appointment, viewer Viewer) bool {
	switch viewer.Role {
	case model.RoleAdmin:
		return true
	case model.RoleProfessional:
		return apt.ProfessionalID == viewer.ID
	case model.RoleStudent:
		return apt.StudentID == viewer.ID
	}
	return false
}
