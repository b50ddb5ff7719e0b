package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepacolles/colle-scheduler/internal/models"
)

func newCollePlanningRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCollePlanningRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newCollePlanningRepoMock(t)
	defer cleanup()
	repo := NewCollePlanningRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO colle_plannings")).
		WithArgs(sqlmock.AnyArg(), "cat-1", models.ColleSolveModeStrict, "csv,assignment", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	planning := &models.CollePlanning{
		CatalogID:     "cat-1",
		Mode:          models.ColleSolveModeStrict,
		AssignmentCSV: "csv,assignment",
	}
	require.NoError(t, repo.Create(context.Background(), planning))
	assert.NotEmpty(t, planning.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollePlanningRepositoryGetByID(t *testing.T) {
	db, mock, cleanup := newCollePlanningRepoMock(t)
	defer cleanup()
	repo := NewCollePlanningRepository(db)

	rows := sqlmock.NewRows([]string{"id", "catalog_id", "mode", "assignment_csv", "extended", "created_at"}).
		AddRow("plan-1", "cat-1", "strict", "csv,assignment", false, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, catalog_id, mode, assignment_csv, extended, created_at FROM colle_plannings WHERE id = $1")).
		WithArgs("plan-1").
		WillReturnRows(rows)

	planning, err := repo.GetByID(context.Background(), "plan-1")
	require.NoError(t, err)
	assert.Equal(t, models.ColleSolveMode("strict"), planning.Mode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollePlanningRepositoryMarkExtended(t *testing.T) {
	db, mock, cleanup := newCollePlanningRepoMock(t)
	defer cleanup()
	repo := NewCollePlanningRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE colle_plannings SET assignment_csv = $1, extended = true WHERE id = $2")).
		WithArgs("csv,extended", "plan-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkExtended(context.Background(), "plan-1", "csv,extended"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollePlanningRepositoryMarkExtendedNotFound(t *testing.T) {
	db, mock, cleanup := newCollePlanningRepoMock(t)
	defer cleanup()
	repo := NewCollePlanningRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE colle_plannings SET assignment_csv = $1, extended = true WHERE id = $2")).
		WithArgs("csv,extended", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkExtended(context.Background(), "missing", "csv,extended")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollePlanningRepositoryListByCatalog(t *testing.T) {
	db, mock, cleanup := newCollePlanningRepoMock(t)
	defer cleanup()
	repo := NewCollePlanningRepository(db)

	rows := sqlmock.NewRows([]string{"id", "catalog_id", "mode", "assignment_csv", "extended", "created_at"}).
		AddRow("plan-1", "cat-1", "strict", "csv,assignment", false, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, catalog_id, mode, assignment_csv, extended, created_at FROM colle_plannings WHERE catalog_id = $1 ORDER BY created_at DESC")).
		WithArgs("cat-1").
		WillReturnRows(rows)

	plannings, err := repo.ListByCatalog(context.Background(), "cat-1")
	require.NoError(t, err)
	assert.Len(t, plannings, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
