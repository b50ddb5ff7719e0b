package dto

import (
	"time"

	"github.com/prepacolles/colle-scheduler/internal/models"
)

// UploadCatalogRequest captures POST /colle/catalogs payload.
type UploadCatalogRequest struct {
	Name string `json:"name" validate:"required"`
	CSV  string `json:"csv" validate:"required"`
}

// UploadCatalogResponse summarizes a freshly parsed catalog.
type UploadCatalogResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	GroupCount int    `json:"groupCount"`
	WeekCount  int    `json:"weekCount"`
	SlotCount  int    `json:"slotCount"`
}

// AlternationRuleDTO mirrors colle.AlternationRule over the wire.
type AlternationRuleDTO struct {
	Subject   string `json:"subject" validate:"required"`
	Active    bool   `json:"active"`
	Frequency int    `json:"frequency" validate:"omitempty,oneof=1 2 4 8"`
}

// GeneratePlanningRequest triggers the three-tier solve against a catalog.
type GeneratePlanningRequest struct {
	AlternationRules []AlternationRuleDTO `json:"alternationRules,omitempty" validate:"omitempty,dive"`
}

// GeneratePlanningResponse is the solved assignment table plus the
// escalation tier reached.
type GeneratePlanningResponse struct {
	PlanningID  string              `json:"planningId"`
	Mode        models.ColleSolveMode `json:"mode"`
	WeekColumns []string            `json:"weekColumns"`
	Rows        [][]string          `json:"rows"`
}

// PlanningSummary is one row of GET /colle/catalogs/{id}/plannings.
type PlanningSummary struct {
	ID        string                `json:"id"`
	Mode      models.ColleSolveMode `json:"mode"`
	Extended  bool                  `json:"extended"`
	CreatedAt time.Time             `json:"createdAt"`
}

// ExtendPlanningResponse is the extended assignment table (weeks 9-24
// appended).
type ExtendPlanningResponse struct {
	PlanningID  string     `json:"planningId"`
	WeekColumns []string   `json:"weekColumns"`
	Rows        [][]string `json:"rows"`
}

// AnalysisResponse mirrors the analyzer report JSON schema from the
// external interface section verbatim.
type AnalysisResponse struct {
	Resume      AnalysisResume      `json:"resume"`
	Stats       AnalysisStats       `json:"stats"`
	Contraintes AnalysisContraintes `json:"contraintes"`
}

type AnalysisResume struct {
	TotalErreurs          int  `json:"total_erreurs"`
	GlobalesOk            bool `json:"globales_ok"`
	GroupesOk             bool `json:"groupes_ok"`
	ConsecutivesOk        bool `json:"consecutives_ok"`
	CompatibilitesProfsOk bool `json:"compatibilites_profs_ok"`
}

type AnalysisGroupStats struct {
	Total      int            `json:"total"`
	ParMatiere map[string]int `json:"par_matiere"`
}

type AnalysisGlobalStats struct {
	TotalAssigned   int     `json:"total_assigned"`
	TotalAuthorized int     `json:"total_authorized"`
	Utilization     float64 `json:"utilization"`
}

type AnalysisStats struct {
	Groupes     map[string]AnalysisGroupStats `json:"groupes"`
	Matieres    map[string]int                `json:"matieres"`
	Profs       map[string]int                `json:"profs"`
	ChargeHebdo map[string]map[string]int     `json:"charge_hebdo"`
	Globales    AnalysisGlobalStats            `json:"globales"`
}

type AnalysisContraintes struct {
	Globales            []string            `json:"globales"`
	Groupes             map[string][]string `json:"groupes"`
	Consecutives        []string            `json:"consecutives"`
	CompatibilitesProfs []string            `json:"compatibilites_profs"`
}

// CreateExportRequest enqueues an asynchronous planning render.
type CreateExportRequest struct {
	Format models.ColleExportFormat `json:"format" validate:"required,oneof=csv pdf excel"`
	Title  string                   `json:"title,omitempty"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID       string                     `json:"id"`
	Status   models.ColleExportStatus   `json:"status"`
	Progress int                        `json:"progress"`
}

// ExportStatusResponse exposes job progress metadata.
type ExportStatusResponse struct {
	ID        string                   `json:"id"`
	Status    models.ColleExportStatus `json:"status"`
	Progress  int                      `json:"progress"`
	ResultURL *string                  `json:"resultUrl,omitempty"`
	Error     *string                  `json:"error,omitempty"`
}
