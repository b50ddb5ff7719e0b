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

func newColleCatalogRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestColleCatalogRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newColleCatalogRepoMock(t)
	defer cleanup()
	repo := NewColleCatalogRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO colle_catalogs")).
		WithArgs(sqlmock.AnyArg(), "owner-1", "Semaines 38-45", "csv,data", 6, 8, 24, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	catalog := &models.ColleCatalog{
		OwnerID:    "owner-1",
		Name:       "Semaines 38-45",
		RawCSV:     "csv,data",
		GroupCount: 6,
		WeekCount:  8,
		SlotCount:  24,
	}
	require.NoError(t, repo.Create(context.Background(), catalog))
	assert.NotEmpty(t, catalog.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestColleCatalogRepositoryGetByID(t *testing.T) {
	db, mock, cleanup := newColleCatalogRepoMock(t)
	defer cleanup()
	repo := NewColleCatalogRepository(db)

	rows := sqlmock.NewRows([]string{"id", "owner_id", "name", "raw_csv", "group_count", "week_count", "slot_count", "created_at"}).
		AddRow("cat-1", "owner-1", "Semaines 38-45", "csv,data", 6, 8, 24, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, name, raw_csv, group_count, week_count, slot_count, created_at FROM colle_catalogs WHERE id = $1")).
		WithArgs("cat-1").
		WillReturnRows(rows)

	catalog, err := repo.GetByID(context.Background(), "cat-1")
	require.NoError(t, err)
	assert.Equal(t, 6, catalog.GroupCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestColleCatalogRepositoryListByOwner(t *testing.T) {
	db, mock, cleanup := newColleCatalogRepoMock(t)
	defer cleanup()
	repo := NewColleCatalogRepository(db)

	rows := sqlmock.NewRows([]string{"id", "owner_id", "name", "raw_csv", "group_count", "week_count", "slot_count", "created_at"}).
		AddRow("cat-1", "owner-1", "Semaines 38-45", "csv,data", 6, 8, 24, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, name, raw_csv, group_count, week_count, slot_count, created_at FROM colle_catalogs WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2")).
		WithArgs("owner-1", 20).
		WillReturnRows(rows)

	catalogs, err := repo.ListByOwner(context.Background(), "owner-1", 0)
	require.NoError(t, err)
	assert.Len(t, catalogs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
