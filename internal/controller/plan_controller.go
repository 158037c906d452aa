package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/centrovital/agenda-api/internal/service"
)

type PlanController struct {
	plans  service.PlanSource
	logger *zap.Logger
}

func NewPlanController(plans service.PlanSource, logger *zap.Logger) *PlanController {
	return &PlanController{plans: plans, logger: logger}
}

// GET /api/plans/me — the caller's own plan usage.
func (pc *PlanController) Me(c *gin.Context) {
	viewer := viewerFrom(c)

	plan, err := pc.plans.GetByStudent(c.Request.Context(), viewer.ID)
	if err != nil {
		pc.logger.Error("load plan", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if plan == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no plan on file"})
		return
	}

	c.JSON(http.StatusOK, plan)
}
