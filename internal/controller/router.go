package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/centrovital/agenda-api/internal/model"
	"github.com/centrovital/agenda-api/internal/service"
)

// NewRouter assembles the HTTP surface. Everything under /api requires a
// valid bearer token; block mutations are additionally admin-only.
func NewRouter(
	jwtSecret string,
	schedules *service.ScheduleService,
	bookings *service.BookingService,
	blocks *service.BlockService,
	plans service.PlanSource,
	imports *service.ImportService,
	users UserStore,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	scheduleCtl := NewScheduleController(schedules, logger)
	appointmentCtl := NewAppointmentController(bookings, logger)
	blockCtl := NewBlockController(blocks, logger)
	planCtl := NewPlanController(plans, logger)
	importCtl := NewImportController(imports, logger)
	userCtl := NewUserController(users, logger)

	api := r.Group("/api", AuthMiddleware(jwtSecret))

	api.GET("/schedule", scheduleCtl.Week)
	api.GET("/schedule/image", scheduleCtl.WeekImage)

	api.POST("/appointments", appointmentCtl.Create)
	api.PATCH("/appointments/:id/status", appointmentCtl.ChangeStatus)
	api.PUT("/appointments/:id/reschedule", appointmentCtl.Reschedule)
	api.DELETE("/appointments/:id", appointmentCtl.Delete)

	api.GET("/blocks", blockCtl.List)
	admin := api.Group("", RequireRole(model.RoleAdmin))
	admin.POST("/blocks", blockCtl.Create)
	admin.PATCH("/blocks/:id/active", blockCtl.SetActive)
	admin.DELETE("/blocks/:id", blockCtl.Delete)
	admin.POST("/import/appointments", importCtl.Appointments)
	admin.POST("/import/blocks", importCtl.Blocks)

	api.GET("/plans/me", planCtl.Me)

	api.GET("/users", userCtl.List)
	admin.POST("/users", userCtl.Create)

	return r
}
