package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/centrovital/agenda-api/internal/render"
	"github.com/centrovital/agenda-api/internal/schedule"
	"github.com/centrovital/agenda-api/internal/service"
)

type ScheduleController struct {
	schedules *service.ScheduleService
	logger    *zap.Logger
}

func NewScheduleController(schedules *service.ScheduleService, logger *zap.Logger) *ScheduleController {
	return &ScheduleController{schedules: schedules, logger: logger}
}

// GET /api/schedule?week=2024-01-15&professional_id=...&location=...&room=...
// Any date inside the week works as the anchor; the grid snaps to Monday.
func (sc *ScheduleController) Week(c *gin.Context) {
	viewer := viewerFrom(c)

	anchor, ok := weekAnchor(c)
	if !ok {
		return
	}
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}

	week, err := sc.schedules.WeekGrid(c.Request.Context(), anchor, viewer.ID, viewer.Role, scope)
	if err != nil {
		sc.logger.Error("build week grid", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build schedule"})
		return
	}

	c.JSON(http.StatusOK, week)
}

// GET /api/schedule/image — the same week rendered as a PNG.
func (sc *ScheduleController) WeekImage(c *gin.Context) {
	viewer := viewerFrom(c)

	anchor, ok := weekAnchor(c)
	if !ok {
		return
	}
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}

	week, err := sc.schedules.WeekGrid(c.Request.Context(), anchor, viewer.ID, viewer.Role, scope)
	if err != nil {
		sc.logger.Error("build week grid", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build schedule"})
		return
	}

	png, err := render.WeekImage(week.Slots, week.WeekStart, time.Now())
	if err != nil {
		sc.logger.Error("render week image", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render image"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

func weekAnchor(c *gin.Context) (time.Time, bool) {
	weekStr := c.Query("week")
	if weekStr == "" {
		return time.Now(), true
	}
	anchor, err := time.Parse("2006-01-02", weekStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week, want YYYY-MM-DD"})
		return time.Time{}, false
	}
	return anchor, true
}

func scopeFrom(c *gin.Context) (schedule.Scope, bool) {
	scope := schedule.Scope{
		Location: c.Query("location"),
		Room:     c.Query("room"),
	}
	if proStr := c.Query("professional_id"); proStr != "" {
		proID, err := uuid.Parse(proStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid professional_id"})
			return schedule.Scope{}, false
		}
		scope.ProfessionalID = proID
	}
	return scope, true
}
