package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/centrovital/agenda-api/internal/service"
)

// ImportController loads legacy exports. The payloads may use the old
// Spanish field names or the newer English ones; the decoder behind the
// service accepts both.
type ImportController struct {
	imports *service.ImportService
	logger  *zap.Logger
}

func NewImportController(imports *service.ImportService, logger *zap.Logger) *ImportController {
	return &ImportController{imports: imports, logger: logger}
}

// POST /api/import/appointments
func (ic *ImportController) Appointments(c *gin.Context) {
	viewer := viewerFrom(c)

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	report, err := ic.imports.ImportAppointments(c.Request.Context(), payload,
		service.Viewer{ID: viewer.ID, Role: viewer.Role})
	if err != nil {
		ic.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// POST /api/import/blocks
func (ic *ImportController) Blocks(c *gin.Context) {
	viewer := viewerFrom(c)

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	report, err := ic.imports.ImportBlocks(c.Request.Context(), payload,
		service.Viewer{ID: viewer.ID, Role: viewer.Role})
	if err != nil {
		ic.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (ic *ImportController) fail(c *gin.Context, err error) {
	if errors.Is(err, service.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	ic.logger.Error("import failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
