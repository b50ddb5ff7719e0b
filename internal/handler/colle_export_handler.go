package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepacolles/colle-scheduler/internal/dto"
	"github.com/prepacolles/colle-scheduler/internal/models"
	"github.com/prepacolles/colle-scheduler/internal/service"
	appErrors "github.com/prepacolles/colle-scheduler/pkg/errors"
	"github.com/prepacolles/colle-scheduler/pkg/response"
)

type colleExportJobs interface {
	CreateJob(ctx context.Context, planningID string, req dto.CreateExportRequest, actorID string) (*dto.ExportJobResponse, error)
	GetStatus(ctx context.Context, id, actorID string) (*dto.ExportStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ColleExportJobDownload, error)
}

// ColleExportHandler exposes export job lifecycle endpoints.
type ColleExportHandler struct {
	jobs colleExportJobs
}

// NewColleExportHandler constructs the handler.
func NewColleExportHandler(jobs colleExportJobs) *ColleExportHandler {
	return &ColleExportHandler{jobs: jobs}
}

// CreateExport godoc
// @Summary Queue a planning export (csv, pdf, or excel)
// @Tags Colles
// @Accept json
// @Produce json
// @Param id path string true "Planning ID"
// @Param payload body dto.CreateExportRequest true "Export request"
// @Success 202 {object} response.Envelope
// @Router /colle/plannings/{id}/exports [post]
func (h *ColleExportHandler) CreateExport(c *gin.Context) {
	owner, ok := actorID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid export payload"))
		return
	}
	job, err := h.jobs.CreateJob(c.Request.Context(), c.Param("id"), req, owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// ExportStatus godoc
// @Summary Poll an export job's status
// @Tags Colles
// @Produce json
// @Param jobId path string true "Export job ID"
// @Success 200 {object} response.Envelope
// @Router /colle/exports/{jobId} [get]
func (h *ColleExportHandler) ExportStatus(c *gin.Context) {
	owner, ok := actorID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	status, err := h.jobs.GetStatus(c.Request.Context(), c.Param("jobId"), owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// DownloadExport godoc
// @Summary Download a finished export via signed token
// @Tags Colles
// @Produce octet-stream
// @Param jobId path string true "Export job ID"
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /colle/exports/{jobId}/download [get]
func (h *ColleExportHandler) DownloadExport(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}
	download, err := h.jobs.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck
	info, err := download.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export metadata"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", download.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), mimeForExportFormat(download.Format), download.File, nil)
}

func mimeForExportFormat(format models.ColleExportFormat) string {
	switch format {
	case models.ColleExportFormatPDF:
		return "application/pdf"
	case models.ColleExportFormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}
