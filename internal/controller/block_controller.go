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

type BlockController struct {
	blocks *service.BlockService
	logger *zap.Logger
}

func NewBlockController(blocks *service.BlockService, logger *zap.Logger) *BlockController {
	return &BlockController{blocks: blocks, logger: logger}
}

type recurrenceReq struct {
	Frequency  string `json:"frequency" binding:"required"`
	Interval   int    `json:"interval"`
	DaysOfWeek []int  `json:"days_of_week"`
	DayOfMonth int    `json:"day_of_month"`
	EndDate    string `json:"end_date"`
}

type createBlockReq struct {
	Type           string         `json:"type" binding:"required"`
	Date           string         `json:"date"`
	StartDate      string         `json:"start_date"`
	EndDate        string         `json:"end_date"`
	Recurrence     *recurrenceReq `json:"recurrence"`
	AllDay         bool           `json:"all_day"`
	StartTime      string         `json:"start_time"`
	EndTime        string         `json:"end_time"`
	ProfessionalID string         `json:"professional_id"`
	Location       string         `json:"location"`
	Room           string         `json:"room"`
	Reason         string         `json:"reason"`
}

// POST /api/blocks
func (bc *BlockController) Create(c *gin.Context) {
	viewer := viewerFrom(c)

	var req createBlockReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	block := &model.Block{
		Type:      model.BlockType(req.Type),
		AllDay:    req.AllDay,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Location:  req.Location,
		Room:      req.Room,
		Reason:    req.Reason,
		Active:    true,
	}

	var ok bool
	if block.Date, ok = optionalDate(c, req.Date, "date"); !ok {
		return
	}
	if block.StartDate, ok = optionalDate(c, req.StartDate, "start_date"); !ok {
		return
	}
	if block.EndDate, ok = optionalDate(c, req.EndDate, "end_date"); !ok {
		return
	}

	if req.ProfessionalID != "" {
		proID, err := uuid.Parse(req.ProfessionalID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid professional_id"})
			return
		}
		block.ProfessionalID = &proID
	}

	if req.Recurrence != nil {
		rec := &model.Recurrence{
			Frequency:  model.Frequency(req.Recurrence.Frequency),
			Interval:   req.Recurrence.Interval,
			DaysOfWeek: req.Recurrence.DaysOfWeek,
			DayOfMonth: req.Recurrence.DayOfMonth,
		}
		if rec.EndDate, ok = optionalDate(c, req.Recurrence.EndDate, "recurrence.end_date"); !ok {
			return
		}
		block.Recurrence = rec
	}

	created, err := bc.blocks.Create(c.Request.Context(), block, service.Viewer{ID: viewer.ID, Role: viewer.Role})
	if err != nil {
		bc.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GET /api/blocks
func (bc *BlockController) List(c *gin.Context) {
	viewer := viewerFrom(c)

	blocks, err := bc.blocks.List(c.Request.Context(), service.Viewer{ID: viewer.ID, Role: viewer.Role})
	if err != nil {
		bc.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, blocks)
}

type setActiveReq struct {
	Active *bool `json:"active" binding:"required"`
}

// PATCH /api/blocks/:id/active
func (bc *BlockController) SetActive(c *gin.Context) {
	viewer := viewerFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid block id"})
		return
	}

	var req setActiveReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := bc.blocks.SetActive(c.Request.Context(), id, *req.Active,
		service.Viewer{ID: viewer.ID, Role: viewer.Role}); err != nil {
		bc.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DELETE /api/blocks/:id
func (bc *BlockController) Delete(c *gin.Context) {
	viewer := viewerFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid block id"})
		return
	}

	if err := bc.blocks.Delete(c.Request.Context(), id,
		service.Viewer{ID: viewer.ID, Role: viewer.Role}); err != nil {
		bc.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func optionalDate(c *gin.Context, s, field string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + field + ", want YYYY-MM-DD"})
		return nil, false
	}
	return &d, true
}

func (bc *BlockController) fail(c *gin.Context, err error) {
	var parseErr *schedule.ParseError
	switch {
	case errors.Is(err, service.ErrBlockNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidScoping),
		errors.Is(err, service.ErrInvalidWindow),
		errors.Is(err, service.ErrInvalidDates),
		errors.As(err, &parseErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		bc.logger.Error("block operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
