package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepacolles/colle-scheduler/internal/dto"
	"github.com/prepacolles/colle-scheduler/internal/models"
	appErrors "github.com/prepacolles/colle-scheduler/pkg/errors"
	"github.com/prepacolles/colle-scheduler/pkg/response"
)

type colleCatalogUploader interface {
	Upload(ctx context.Context, req dto.UploadCatalogRequest, ownerID string) (*dto.UploadCatalogResponse, error)
	Get(ctx context.Context, id, ownerID string) (*models.ColleCatalog, error)
	List(ctx context.Context, ownerID string) ([]models.ColleCatalog, error)
}

type collePlanningRunner interface {
	Generate(ctx context.Context, catalogID string, req dto.GeneratePlanningRequest, ownerID string) (*dto.GeneratePlanningResponse, error)
	Analyze(ctx context.Context, planningID, ownerID string) (*dto.AnalysisResponse, error)
	Extend(ctx context.Context, planningID, ownerID string) (*dto.ExtendPlanningResponse, error)
	ListByCatalog(ctx context.Context, catalogID, ownerID string) ([]dto.PlanningSummary, error)
}

// ColleHandler exposes catalog upload and planning generation endpoints.
type ColleHandler struct {
	catalogs  colleCatalogUploader
	plannings collePlanningRunner
}

// NewColleHandler constructs the handler.
func NewColleHandler(catalogs colleCatalogUploader, plannings collePlanningRunner) *ColleHandler {
	return &ColleHandler{catalogs: catalogs, plannings: plannings}
}

func actorID(c *gin.Context) (string, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		return "", false
	}
	return claims.UserID, true
}

// UploadCatalog godoc
// @Summary Upload a weekly slot catalog
// @Tags Colles
// @Accept json
// @Produce json
// @Param payload body dto.UploadCatalogRequest true "Catalog CSV payload"
// @Success 201 {object} response.Envelope
// @Router /colle/catalogs [post]
func (h *ColleHandler) UploadCatalog(c *gin.Context) {
	owner, ok := actorID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UploadCatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid catalog payload"))
		return
	}
	result, err := h.catalogs.Upload(c.Request.Context(), req, owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GetCatalog godoc
// @Summary Fetch a previously uploaded catalog
// @Tags Colles
// @Produce json
// @Param id path string true "Catalog ID"
// @Success 200 {object} response.Envelope
// @Router /colle/catalogs/{id} [get]
func (h *ColleHandler) GetCatalog(c *gin.Context) {
	owner, ok := actorID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	catalog, err := h.catalogs.Get(c.Request.Context(), c.Param("id"), owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, catalog, nil)
}

// ListCatalogs godoc
// @Summary List catalogs uploaded by the current user
// @Tags Colles
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /colle/catalogs [get]
func (h *ColleHandler) ListCatalogs(c *gin.Context) {
	owner, ok := actorID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	catalogs, err := h.catalogs.List(c.Request.Context(), owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, catalogs, nil)
}

// GeneratePlanning godoc
// @Summary Solve a planning for a catalog (strict, relaxed, maximize escalation)
// @Tags Colles
// @Accept json
// @Produce json
// @Param id path string true "Catalog ID"
// @Param payload body dto.GeneratePlanningRequest true "Alternation rules"
// @Success 201 {object} response.Envelope
// @Router /colle/catalogs/{id}/plannings [post]
func (h *ColleHandler) GeneratePlanning(c *gin.Context) {
	owner, ok := actorID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.GeneratePlanningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid planning payload"))
		return
	}
	result, err := h.plannings.Generate(c.Request.Context(), c.Param("id"), req, owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListPlannings godoc
// @Summary List plannings solved for a catalog, most recent first
// @Tags Colles
// @Produce json
// @Param id path string true "Catalog ID"
// @Success 200 {object} response.Envelope
// @Router /colle/catalogs/{id}/plannings [get]
func (h *ColleHandler) ListPlannings(c *gin.Context) {
	owner, ok := actorID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.plannings.ListByCatalog(c.Request.Context(), c.Param("id"), owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// AnalyzePlanning godoc
// @Summary Return the constraint and statistics report for a planning
// @Tags Colles
// @Produce json
// @Param id path string true "Planning ID"
// @Success 200 {object} response.Envelope
// @Router /colle/plannings/{id}/analysis [get]
func (h *ColleHandler) AnalyzePlanning(c *gin.Context) {
	owner, ok := actorID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.plannings.Analyze(c.Request.Context(), c.Param("id"), owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ExtendPlanning godoc
// @Summary Rotate an 8-week planning into the full 24-week schedule
// @Tags Colles
// @Produce json
// @Param id path string true "Planning ID"
// @Success 200 {object} response.Envelope
// @Router /colle/plannings/{id}/extend [post]
func (h *ColleHandler) ExtendPlanning(c *gin.Context) {
	owner, ok := actorID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.plannings.Extend(c.Request.Context(), c.Param("id"), owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
