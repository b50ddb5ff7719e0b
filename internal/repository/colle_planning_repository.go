package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/prepacolles/colle-scheduler/internal/models"
)

// CollePlanningRepository persists solved and extended assignment tables.
type CollePlanningRepository struct {
	db *sqlx.DB
}

// NewCollePlanningRepository constructs the repository.
func NewCollePlanningRepository(db *sqlx.DB) *CollePlanningRepository {
	return &CollePlanningRepository{db: db}
}

// Create inserts a freshly solved planning row.
func (r *CollePlanningRepository) Create(ctx context.Context, planning *models.CollePlanning) error {
	if planning.ID == "" {
		planning.ID = uuid.NewString()
	}
	if planning.CreatedAt.IsZero() {
		planning.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO colle_plannings (id, catalog_id, mode, assignment_csv, extended, created_at)
VALUES (:id, :catalog_id, :mode, :assignment_csv, :extended, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, planning); err != nil {
		return fmt.Errorf("create colle planning: %w", err)
	}
	return nil
}

// GetByID returns a planning row by its identifier.
func (r *CollePlanningRepository) GetByID(ctx context.Context, id string) (*models.CollePlanning, error) {
	const query = `SELECT id, catalog_id, mode, assignment_csv, extended, created_at
FROM colle_plannings WHERE id = $1`
	var planning models.CollePlanning
	if err := r.db.GetContext(ctx, &planning, query, id); err != nil {
		return nil, fmt.Errorf("get colle planning: %w", err)
	}
	return &planning, nil
}

// MarkExtended flips the extended flag and replaces the stored assignment
// table with the rotated one produced by the extension pass.
func (r *CollePlanningRepository) MarkExtended(ctx context.Context, id string, assignmentCSV string) error {
	const query = `UPDATE colle_plannings SET assignment_csv = $1, extended = true WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, assignmentCSV, id)
	if err != nil {
		return fmt.Errorf("mark colle planning extended: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark colle planning extended: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("mark colle planning extended: no planning with id %s", id)
	}
	return nil
}

// ListByCatalog returns every planning ever solved from a given catalog,
// most recent first.
func (r *CollePlanningRepository) ListByCatalog(ctx context.Context, catalogID string) ([]models.CollePlanning, error) {
	const query = `SELECT id, catalog_id, mode, assignment_csv, extended, created_at
FROM colle_plannings WHERE catalog_id = $1 ORDER BY created_at DESC`
	var plannings []models.CollePlanning
	if err := r.db.SelectContext(ctx, &plannings, query, catalogID); err != nil {
		return nil, fmt.Errorf("list colle plannings: %w", err)
	}
	return plannings, nil
}
