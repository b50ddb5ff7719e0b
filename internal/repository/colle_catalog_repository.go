package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/prepacolles/colle-scheduler/internal/models"
)

// ColleCatalogRepository persists uploaded slot catalogs.
type ColleCatalogRepository struct {
	db *sqlx.DB
}

// NewColleCatalogRepository constructs the repository.
func NewColleCatalogRepository(db *sqlx.DB) *ColleCatalogRepository {
	return &ColleCatalogRepository{db: db}
}

// Create inserts a new catalog row with generated defaults.
func (r *ColleCatalogRepository) Create(ctx context.Context, catalog *models.ColleCatalog) error {
	if catalog.ID == "" {
		catalog.ID = uuid.NewString()
	}
	if catalog.CreatedAt.IsZero() {
		catalog.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO colle_catalogs (id, owner_id, name, raw_csv, group_count, week_count, slot_count, created_at)
VALUES (:id, :owner_id, :name, :raw_csv, :group_count, :week_count, :slot_count, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, catalog); err != nil {
		return fmt.Errorf("create colle catalog: %w", err)
	}
	return nil
}

// GetByID returns a catalog row by its identifier.
func (r *ColleCatalogRepository) GetByID(ctx context.Context, id string) (*models.ColleCatalog, error) {
	const query = `SELECT id, owner_id, name, raw_csv, group_count, week_count, slot_count, created_at
FROM colle_catalogs WHERE id = $1`
	var catalog models.ColleCatalog
	if err := r.db.GetContext(ctx, &catalog, query, id); err != nil {
		return nil, fmt.Errorf("get colle catalog: %w", err)
	}
	return &catalog, nil
}

// ListByOwner returns the most recent catalogs uploaded by a given owner.
func (r *ColleCatalogRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.ColleCatalog, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `SELECT id, owner_id, name, raw_csv, group_count, week_count, slot_count, created_at
FROM colle_catalogs WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2`
	var catalogs []models.ColleCatalog
	if err := r.db.SelectContext(ctx, &catalogs, query, ownerID, limit); err != nil {
		return nil, fmt.Errorf("list colle catalogs: %w", err)
	}
	return catalogs, nil
}
