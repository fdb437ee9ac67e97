package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldpilot/dispatch-api/internal/models"
)

func TestAssignmentRepositoryListByCron(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "cron_id", "work_order_id", "starts_at", "ends_at", "estimated_hours", "created_at", "updated_at"}).
		AddRow("a-1", "cron-1", "wo-100", now, now.Add(2*time.Hour), 2.0, now, now).
		AddRow("a-2", "cron-1", "wo-101", now.Add(3*time.Hour), now.Add(4*time.Hour), 1.0, now, now)

	mock.ExpectQuery("SELECT (.+) FROM assignments WHERE cron_id = \\$1 ORDER BY starts_at").
		WithArgs("cron-1").
		WillReturnRows(rows)

	assignments, err := repo.ListByCron(context.Background(), "cron-1")
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	assert.Equal(t, "wo-100", assignments[0].WorkOrderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryUpsertAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec("INSERT INTO assignments").
		WillReturnResult(sqlmock.NewResult(1, 1))

	assignment := &models.Assignment{
		CronID:      "cron-1",
		WorkOrderID: "wo-100",
		StartsAt:    time.Now().UTC(),
		EndsAt:      time.Now().UTC().Add(2 * time.Hour),
	}
	require.NoError(t, repo.Upsert(context.Background(), assignment))
	assert.NotEmpty(t, assignment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryPruneMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec("DELETE FROM assignments WHERE cron_id = \\$1 AND work_order_id <> ALL\\(\\$2\\)").
		WithArgs("cron-1", pq.Array([]string{"wo-100", "wo-101"})).
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := repo.PruneMissing(context.Background(), "cron-1", []string{"wo-100", "wo-101"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryPruneMissingEmptyKeepList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec("DELETE FROM assignments WHERE cron_id = \\$1$").
		WithArgs("cron-1").
		WillReturnResult(sqlmock.NewResult(0, 5))

	err := repo.PruneMissing(context.Background(), "cron-1", nil)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
