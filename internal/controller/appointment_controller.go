package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/centrovital/agenda-api/internal/model"
	"github.com/centrovital/agenda-api/internal/schedule"
	"github.com/centrovital/agenda-api/internal/service"
)

type AppointmentController struct {
	bookings *service.BookingService
	logger   *zap.Logger
}

func NewAppointmentController(bookings *service.BookingService, logger *zap.Logger) *AppointmentController {
	return &AppointmentController{bookings: bookings, logger: logger}
}

type createAppointmentReq struct {
	Date           string `json:"date" binding:"required"`
	StartTime      string `json:"start_time" binding:"required"`
	EndTime        string `json:"end_time"`
	Duration       int    `json:"duration"`
	StudentID      string `json:"student_id"`
	ProfessionalID string `json:"professional_id" binding:"required"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	Location       string `json:"location"`
	Room           string `json:"room"`
}

// POST /api/appointments
func (ac *AppointmentController) Create(c *gin.Context) {
	viewer := viewerFrom(c)

	var req createAppointmentReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, want YYYY-MM-DD"})
		return
	}
	proID, err := uuid.Parse(req.ProfessionalID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid professional_id"})
		return
	}

	// students book for themselves, the field is optional for them
	studentID := viewer.ID
	if req.StudentID != "" {
		studentID, err = uuid.Parse(req.StudentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student_id"})
			return
		}
	}

	apt, err := ac.bookings.Create(c.Request.Context(), service.CreateRequest{
		Date:           date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Duration:       req.Duration,
		StudentID:      studentID,
		ProfessionalID: proID,
		Type:           model.SessionType(req.Type),
		Title:          req.Title,
		Location:       req.Location,
		Room:           req.Room,
	}, service.Viewer{ID: viewer.ID, Role: viewer.Role})
	if err != nil {
		ac.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, apt)
}

type changeStatusReq struct {
	Status string `json:"status" binding:"required"`
}

// PATCH /api/appointments/:id/status
func (ac *AppointmentController) ChangeStatus(c *gin.Context) {
	viewer := viewerFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid appointment id"})
		return
	}

	var req changeStatusReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	apt, err := ac.bookings.ChangeStatus(c.Request.Context(), id, model.AppointmentStatus(req.Status),
		service.Viewer{ID: viewer.ID, Role: viewer.Role})
	if err != nil {
		ac.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, apt)
}

type rescheduleReq struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	Duration  int    `json:"duration"`
}

// PUT /api/appointments/:id/reschedule
func (ac *AppointmentController) Reschedule(c *gin.Context) {
	viewer := viewerFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid appointment id"})
		return
	}

	var req rescheduleReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, want YYYY-MM-DD"})
		return
	}

	apt, err := ac.bookings.Reschedule(c.Request.Context(), id, date, req.StartTime, req.Duration,
		service.Viewer{ID: viewer.ID, Role: viewer.Role})
	if err != nil {
		ac.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, apt)
}

// DELETE /api/appointments/:id
func (ac *AppointmentController) Delete(c *gin.Context) {
	viewer := viewerFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid appointment id"})
		return
	}

	if err := ac.bookings.Delete(c.Request.Context(), id, service.Viewer{ID: viewer.ID, Role: viewer.Role}); err != nil {
		ac.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// fail maps service errors onto HTTP statuses. Anything unrecognized is a
// 500 and gets logged with its cause; the client only sees a generic body.
func (ac *AppointmentController) fail(c *gin.Context, err error) {
	var parseErr *schedule.ParseError
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSlotOccupied),
		errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSlotBlocked),
		errors.Is(err, service.ErrPastSlot),
		errors.Is(err, service.ErrQuotaExhausted),
		errors.Is(err, service.ErrPlanExpired):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTimeRange), errors.As(err, &parseErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		ac.logger.Error("appointment operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
