package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/prepacolles/colle-scheduler/internal/colle"
	"github.com/prepacolles/colle-scheduler/internal/dto"
	"github.com/prepacolles/colle-scheduler/internal/models"
	appErrors "github.com/prepacolles/colle-scheduler/pkg/errors"
)

type colleCatalogStore interface {
	Create(ctx context.Context, catalog *models.ColleCatalog) error
	GetByID(ctx context.Context, id string) (*models.ColleCatalog, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.ColleCatalog, error)
}

// ColleCatalogServiceConfig governs upload limits.
type ColleCatalogServiceConfig struct {
	MaxCSVBytes int64
}

// ColleCatalogService normalizes uploaded slot catalogs and persists them.
type ColleCatalogService struct {
	repo      colleCatalogStore
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ColleCatalogServiceConfig
}

// NewColleCatalogService constructs the service.
func NewColleCatalogService(repo colleCatalogStore, validate *validator.Validate, logger *zap.Logger, cfg ColleCatalogServiceConfig) *ColleCatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxCSVBytes <= 0 {
		cfg.MaxCSVBytes = 2 * 1024 * 1024
	}
	return &ColleCatalogService{repo: repo, validator: validate, logger: logger, cfg: cfg}
}

// Upload parses, normalizes, and persists a catalog CSV.
func (s *ColleCatalogService) Upload(ctx context.Context, req dto.UploadCatalogRequest, ownerID string) (*dto.UploadCatalogResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid catalog upload payload")
	}
	if int64(len(req.CSV)) > s.cfg.MaxCSVBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "catalog CSV exceeds maximum allowed size")
	}

	catalog, err := s.parseAndNormalize(req.CSV)
	if err != nil {
		return nil, err
	}

	record := &models.ColleCatalog{
		OwnerID:    ownerID,
		Name:       req.Name,
		RawCSV:     req.CSV,
		GroupCount: len(catalog.Groups),
		WeekCount:  len(catalog.Weeks),
		SlotCount:  len(catalog.Slots),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist catalog")
	}

	return &dto.UploadCatalogResponse{
		ID:         record.ID,
		Name:       record.Name,
		GroupCount: record.GroupCount,
		WeekCount:  record.WeekCount,
		SlotCount:  record.SlotCount,
	}, nil
}

// Get returns a previously uploaded catalog record, enforcing ownership.
func (s *ColleCatalogService) Get(ctx context.Context, id, ownerID string) (*models.ColleCatalog, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load catalog")
	}
	if record.OwnerID != ownerID {
		return nil, appErrors.ErrForbidden
	}
	return record, nil
}

// List returns catalogs uploaded by the given owner.
func (s *ColleCatalogService) List(ctx context.Context, ownerID string) ([]models.ColleCatalog, error) {
	catalogs, err := s.repo.ListByOwner(ctx, ownerID, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list catalogs")
	}
	return catalogs, nil
}

// LoadDomain reparses a persisted catalog's raw CSV into a colle.Catalog,
// enforcing ownership. The raw CSV is the source of truth; it is never
// cached in parsed form, so re-running the normalizer stays idempotent.
func (s *ColleCatalogService) LoadDomain(ctx context.Context, id, ownerID string) (colle.Catalog, *models.ColleCatalog, error) {
	record, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return colle.Catalog{}, nil, err
	}
	catalog, err := s.parseAndNormalize(record.RawCSV)
	if err != nil {
		return colle.Catalog{}, nil, err
	}
	return catalog, record, nil
}

// LoadDomainInternal reparses a catalog without an ownership check. It is
// used by the export worker, which already operates on a job tied to a
// specific planning rather than a request-scoped actor.
func (s *ColleCatalogService) LoadDomainInternal(ctx context.Context, id string) (colle.Catalog, *models.ColleCatalog, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return colle.Catalog{}, nil, appErrors.ErrNotFound
		}
		return colle.Catalog{}, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load catalog")
	}
	catalog, err := s.parseAndNormalize(record.RawCSV)
	if err != nil {
		return colle.Catalog{}, nil, err
	}
	return catalog, record, nil
}

func (s *ColleCatalogService) parseAndNormalize(raw string) (colle.Catalog, error) {
	rawCatalog, err := colle.ParseCatalogCSV(raw)
	if err != nil {
		return colle.Catalog{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to parse catalog csv")
	}
	catalog, err := colle.Normalize(rawCatalog)
	if err != nil {
		return colle.Catalog{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to normalize catalog")
	}
	return catalog, nil
}
