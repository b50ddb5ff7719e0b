package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/prepacolles/colle-scheduler/internal/models"
)

// ColleExportJobRepository persists export job metadata.
type ColleExportJobRepository struct {
	db *sqlx.DB
}

// NewColleExportJobRepository constructs the repository.
func NewColleExportJobRepository(db *sqlx.DB) *ColleExportJobRepository {
	return &ColleExportJobRepository{db: db}
}

// Create inserts a new export job row with generated defaults.
func (r *ColleExportJobRepository) Create(ctx context.Context, job *models.ColleExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ColleExportStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO colle_export_jobs (id, planning_id, params, status, progress, result_url, created_by, created_at, finished_at, error_message)
VALUES (:id, :planning_id, :params, :status, :progress, :result_url, :created_by, :created_at, :finished_at, :error_message)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create colle export job: %w", err)
	}
	return nil
}

// GetByID returns a job row by its identifier.
func (r *ColleExportJobRepository) GetByID(ctx context.Context, id string) (*models.ColleExportJob, error) {
	const query = `SELECT id, planning_id, params, status, progress, result_url, created_by, created_at, finished_at, error_message
FROM colle_export_jobs WHERE id = $1`
	var job models.ColleExportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, fmt.Errorf("get colle export job: %w", err)
	}
	return &job, nil
}

// UpdateColleExportJobParams defines the mutable fields.
type UpdateColleExportJobParams struct {
	Status       *models.ColleExportStatus
	Progress     *int
	ResultURL    *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// Update persists the provided changes for a job row.
func (r *ColleExportJobRepository) Update(ctx context.Context, id string, params UpdateColleExportJobParams) error {
	set := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	argPos := 1

	if params.Status != nil {
		set = append(set, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *params.Status)
		argPos++
	}
	if params.Progress != nil {
		set = append(set, fmt.Sprintf("progress = $%d", argPos))
		args = append(args, *params.Progress)
		argPos++
	}
	if params.ResultURL != nil {
		set = append(set, fmt.Sprintf("result_url = $%d", argPos))
		args = append(args, *params.ResultURL)
		argPos++
	}
	if params.ErrorMessage != nil {
		set = append(set, fmt.Sprintf("error_message = $%d", argPos))
		args = append(args, *params.ErrorMessage)
		argPos++
	}
	if params.FinishedAt != nil {
		set = append(set, fmt.Sprintf("finished_at = $%d", argPos))
		args = append(args, *params.FinishedAt)
		argPos++
	}

	if len(set) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE colle_export_jobs SET %s WHERE id = $%d", strings.Join(set, ", "), argPos)
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update colle export job: %w", err)
	}
	return nil
}

// ListQueued fetches queued jobs, used to repopulate the worker pool after
// a cold start.
func (r *ColleExportJobRepository) ListQueued(ctx context.Context, limit int) ([]models.ColleExportJob, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `SELECT id, planning_id, params, status, progress, result_url, created_by, created_at, finished_at, error_message
FROM colle_export_jobs WHERE status = 'QUEUED' ORDER BY created_at ASC LIMIT $1`
	var jobs []models.ColleExportJob
	if err := r.db.SelectContext(ctx, &jobs, query, limit); err != nil {
		return nil, fmt.Errorf("list queued colle export jobs: %w", err)
	}
	return jobs, nil
}

// ListFinishedBefore retrieves completed jobs prior to cutoff for cleanup.
func (r *ColleExportJobRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ColleExportJob, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT id, planning_id, params, status, progress, result_url, created_by, created_at, finished_at, error_message
FROM colle_export_jobs WHERE status = 'FINISHED' AND finished_at IS NOT NULL AND finished_at < $1 ORDER BY finished_at ASC LIMIT $2`
	var jobs []models.ColleExportJob
	if err := r.db.SelectContext(ctx, &jobs, query, cutoff, limit); err != nil {
		return nil, fmt.Errorf("list finished colle export jobs: %w", err)
	}
	return jobs, nil
}
