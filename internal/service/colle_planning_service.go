package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/prepacolles/colle-scheduler/internal/colle"
	"github.com/prepacolles/colle-scheduler/internal/dto"
	"github.com/prepacolles/colle-scheduler/internal/models"
	appErrors "github.com/prepacolles/colle-scheduler/pkg/errors"
)

type collePlanningStore interface {
	Create(ctx context.Context, planning *models.CollePlanning) error
	GetByID(ctx context.Context, id string) (*models.CollePlanning, error)
	MarkExtended(ctx context.Context, id string, assignmentCSV string) error
	ListByCatalog(ctx context.Context, catalogID string) ([]models.CollePlanning, error)
}

type catalogDomainLoader interface {
	LoadDomain(ctx context.Context, id, ownerID string) (colle.Catalog, *models.ColleCatalog, error)
}

// CollePlanningServiceConfig governs cache and solver behaviour.
type CollePlanningServiceConfig struct {
	AnalysisCacheTTL  time.Duration
	SolverTierTimeout time.Duration
}

// CollePlanningService drives the solve/analyze/extend pipeline over a
// normalized catalog.
type CollePlanningService struct {
	catalogs  catalogDomainLoader
	plannings collePlanningStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       CollePlanningServiceConfig
}

// NewCollePlanningService constructs the service.
func NewCollePlanningService(catalogs catalogDomainLoader, plannings collePlanningStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cfg CollePlanningServiceConfig) *CollePlanningService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.AnalysisCacheTTL <= 0 {
		cfg.AnalysisCacheTTL = 15 * time.Minute
	}
	if cfg.SolverTierTimeout <= 0 {
		cfg.SolverTierTimeout = 30 * time.Second
	}
	return &CollePlanningService{
		catalogs:  catalogs,
		plannings: plannings,
		cache:     cache,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate runs the three-tier solve escalation against a catalog and
// persists the resulting assignment table.
func (s *CollePlanningService) Generate(ctx context.Context, catalogID string, req dto.GeneratePlanningRequest, ownerID string) (*dto.GeneratePlanningResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid planning generation payload")
	}

	catalog, _, err := s.catalogs.LoadDomain(ctx, catalogID, ownerID)
	if err != nil {
		return nil, err
	}

	policy, err := buildPolicy(req.AlternationRules)
	if err != nil {
		return nil, err
	}
	if err := colle.ValidateAlternationPolicy(policy); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid alternation policy")
	}

	solveCtx, cancel := context.WithTimeout(ctx, 3*s.cfg.SolverTierTimeout)
	defer cancel()
	result, err := colle.Solve(solveCtx, catalog, policy)
	if err != nil {
		var noSolution *colle.NoSolutionError
		if errors.As(err, &noSolution) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, err.Error())
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "solver failed")
	}

	table := colle.RenderAssignmentCells(catalog, result.Assignment)
	assignmentCSV, err := colle.RenderAssignmentCSV(table)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render assignment")
	}

	planning := &models.CollePlanning{
		CatalogID:     catalogID,
		Mode:          models.ColleSolveMode(result.Mode),
		AssignmentCSV: assignmentCSV,
	}
	if err := s.plannings.Create(ctx, planning); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist planning")
	}

	return &dto.GeneratePlanningResponse{
		PlanningID:  planning.ID,
		Mode:        planning.Mode,
		WeekColumns: table.WeekColumns,
		Rows:        table.Rows,
	}, nil
}

// Analyze recomputes the full constraint/statistics report for a persisted
// planning, serving a cached copy when available.
func (s *CollePlanningService) Analyze(ctx context.Context, planningID, ownerID string) (*dto.AnalysisResponse, error) {
	cacheKey := fmt.Sprintf("colle:analysis:%s", planningID)
	var cached dto.AnalysisResponse
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	planning, catalog, err := s.loadPlanningAndCatalog(ctx, planningID, ownerID)
	if err != nil {
		return nil, err
	}

	table, err := colle.ParseAssignmentCSV(planning.AssignmentCSV)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to parse stored planning")
	}
	assignment, invalid := colle.ParseAssignmentCells(catalog, table)

	report := colle.Analyze(catalog, assignment, colle.DefaultAlternationPolicy(), invalid)
	response := toAnalysisResponse(report)

	if err := s.cache.Set(ctx, cacheKey, response, s.cfg.AnalysisCacheTTL); err != nil {
		s.logger.Sugar().Warnw("failed to cache analysis report", "planning_id", planningID, "error", err)
	}

	return response, nil
}

// Extend rotates an 8-week assignment into the full 24-week schedule and
// persists the extended table on the planning row.
func (s *CollePlanningService) Extend(ctx context.Context, planningID, ownerID string) (*dto.ExtendPlanningResponse, error) {
	planning, catalog, err := s.loadPlanningAndCatalog(ctx, planningID, ownerID)
	if err != nil {
		return nil, err
	}

	table, err := colle.ParseAssignmentCSV(planning.AssignmentCSV)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to parse stored planning")
	}
	assignment, _ := colle.ParseAssignmentCells(catalog, table)

	extended := colle.Extend(catalog, assignment)

	extendedCatalog := catalog
	extendedCatalog.Weeks = extendWeekList(catalog.Weeks)
	extendedTable := colle.RenderAssignmentCells(extendedCatalog, extended)

	extendedCSV, err := colle.RenderAssignmentCSV(extendedTable)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render extended planning")
	}
	if err := s.plannings.MarkExtended(ctx, planningID, extendedCSV); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist extended planning")
	}

	_ = s.cache.Invalidate(ctx, fmt.Sprintf("colle:analysis:%s", planningID))

	return &dto.ExtendPlanningResponse{
		PlanningID:  planningID,
		WeekColumns: extendedTable.WeekColumns,
		Rows:        extendedTable.Rows,
	}, nil
}

// ListByCatalog returns every planning solved from a catalog, most recent
// first, enforcing ownership through the same catalog lookup Generate uses.
func (s *CollePlanningService) ListByCatalog(ctx context.Context, catalogID, ownerID string) ([]dto.PlanningSummary, error) {
	if _, _, err := s.catalogs.LoadDomain(ctx, catalogID, ownerID); err != nil {
		return nil, err
	}
	plannings, err := s.plannings.ListByCatalog(ctx, catalogID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list plannings")
	}
	summaries := make([]dto.PlanningSummary, len(plannings))
	for i, p := range plannings {
		summaries[i] = dto.PlanningSummary{ID: p.ID, Mode: p.Mode, Extended: p.Extended, CreatedAt: p.CreatedAt}
	}
	return summaries, nil
}

func (s *CollePlanningService) loadPlanningAndCatalog(ctx context.Context, planningID, ownerID string) (*models.CollePlanning, colle.Catalog, error) {
	planning, err := s.plannings.GetByID(ctx, planningID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, colle.Catalog{}, appErrors.ErrNotFound
		}
		return nil, colle.Catalog{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load planning")
	}
	catalog, _, err := s.catalogs.LoadDomain(ctx, planning.CatalogID, ownerID)
	if err != nil {
		return nil, colle.Catalog{}, err
	}
	return planning, catalog, nil
}

func extendWeekList(base []colle.Week) []colle.Week {
	maxWeek := 0
	for _, w := range base {
		if w.Number > maxWeek {
			maxWeek = w.Number
		}
	}
	baseWeeks := base
	if len(baseWeeks) > 8 {
		baseWeeks = baseWeeks[:8]
	}
	extended := append([]colle.Week(nil), base...)
	for k := 1; k <= 2; k++ {
		for i := range baseWeeks {
			extended = append(extended, colle.NewWeek(maxWeek+(k-1)*8+i+1))
		}
	}
	return extended
}

func buildPolicy(rules []dto.AlternationRuleDTO) (colle.AlternationPolicy, error) {
	if len(rules) == 0 {
		return colle.DefaultAlternationPolicy(), nil
	}
	policy := make(colle.AlternationPolicy, len(rules))
	for _, r := range rules {
		policy[r.Subject] = colle.AlternationRule{Active: r.Active, Frequency: r.Frequency}
	}
	return policy, nil
}

func toAnalysisResponse(report colle.Report) *dto.AnalysisResponse {
	groupes := make(map[string][]string, len(report.Contraintes.Groupes))
	for g, msgs := range report.Contraintes.Groupes {
		groupes[strconv.Itoa(g)] = msgs
	}

	statsGroupes := make(map[string]dto.AnalysisGroupStats, len(report.Stats.Groupes))
	for g, gs := range report.Stats.Groupes {
		statsGroupes[strconv.Itoa(g)] = dto.AnalysisGroupStats{Total: gs.Total, ParMatiere: gs.ParMatiere}
	}

	chargeHebdo := make(map[string]map[string]int, len(report.Stats.ChargeHebdo))
	for g, weeks := range report.Stats.ChargeHebdo {
		weekMap := make(map[string]int, len(weeks))
		for w, count := range weeks {
			weekMap[strconv.Itoa(w)] = count
		}
		chargeHebdo[strconv.Itoa(g)] = weekMap
	}

	return &dto.AnalysisResponse{
		Resume: dto.AnalysisResume{
			TotalErreurs:          report.Resume.TotalErreurs,
			GlobalesOk:            report.Resume.GlobalesOk,
			GroupesOk:             report.Resume.GroupesOk,
			ConsecutivesOk:        report.Resume.ConsecutivesOk,
			CompatibilitesProfsOk: report.Resume.CompatibilitesProfsOk,
		},
		Stats: dto.AnalysisStats{
			Groupes:     statsGroupes,
			Matieres:    report.Stats.Matieres,
			Profs:       report.Stats.Profs,
			ChargeHebdo: chargeHebdo,
			Globales: dto.AnalysisGlobalStats{
				TotalAssigned:   report.Stats.Globales.TotalAssigned,
				TotalAuthorized: report.Stats.Globales.TotalAuthorized,
				Utilization:     report.Stats.Globales.Utilization,
			},
		},
		Contraintes: dto.AnalysisContraintes{
			Globales:            report.Contraintes.Globales,
			Groupes:             groupes,
			Consecutives:        report.Contraintes.Consecutives,
			CompatibilitesProfs: report.Contraintes.CompatibilitesProfs,
		},
	}
}
