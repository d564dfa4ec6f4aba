package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-solver/internal/dto"
	"github.com/noah-isme/timetable-solver/internal/models"
	"github.com/noah-isme/timetable-solver/internal/service"
	appErrors "github.com/noah-isme/timetable-solver/pkg/errors"
	"github.com/noah-isme/timetable-solver/pkg/response"
)

// ExportHandler exposes the CSV/PDF timetable export job surface (spec §4,
// "ScheduleExportService renders a saved schedule to CSV or PDF").
type ExportHandler struct {
	service *service.ScheduleExportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc *service.ScheduleExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Submit godoc
// @Summary Submit a render job for the currently persisted timetable
// @Tags Export
// @Accept json
// @Produce json
// @Param payload body dto.SubmitExportRequest true "Export format"
// @Success 202 {object} response.Envelope
// @Router /schedule/export [post]
func (h *ExportHandler) Submit(c *gin.Context) {
	var req dto.SubmitExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	jobID, err := h.service.Submit(models.ReportFormat(req.Format))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, err.Error()))
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"jobId": jobID}, nil)
}

// Status godoc
// @Summary Poll a submitted export job
// @Tags Export
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /schedule/export/{id} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	status, ok := h.service.Status(c.Param("id"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export job not found"))
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Download godoc
// @Summary Download a rendered export via its signed token
// @Tags Export
// @Produce application/octet-stream
// @Param token path string true "Signed download token"
// @Success 200
// @Router /schedule/export/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	_, relPath, _, err := h.service.ParseToken(c.Param("token"), false)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, http.StatusUnauthorized, "invalid or expired download token"))
		return
	}
	file, err := h.service.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export file not found"))
		return
	}
	defer file.Close() //nolint:errcheck
	c.Header("Content-Disposition", "attachment")
	http.ServeContent(c.Writer, c.Request, relPath, time.Time{}, file)
}
