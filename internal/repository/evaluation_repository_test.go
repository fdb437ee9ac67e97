package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldpilot/dispatch-api/internal/models"
)

func TestEvaluationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	mock.ExpectExec("INSERT INTO evaluations").
		WillReturnResult(sqlmock.NewResult(1, 1))

	evaluation := &models.Evaluation{
		CronID:            "cron-1",
		WorkOrderID:       "wo-100",
		PaymentSatisfied:  true,
		ScheduleSatisfied: false,
		Action:            models.ActionCountered,
	}
	require.NoError(t, repo.Create(context.Background(), evaluation))
	assert.NotEmpty(t, evaluation.ID)
	assert.False(t, evaluation.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryListFiltersByAction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "cron_id", "work_order_id", "payment_satisfied", "schedule_satisfied", "action", "counter_offer", "created_at"}).
		AddRow("e-1", "cron-1", "wo-100", true, true, "requested", nil, now)

	mock.ExpectQuery("SELECT (.+) FROM evaluations WHERE 1=1 AND action = \\$1 ORDER BY created_at DESC").
		WithArgs("requested").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM evaluations WHERE 1=1 AND action = $1")).
		WithArgs("requested").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	evaluations, total, err := repo.List(context.Background(), models.EvaluationFilter{Action: "requested"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, evaluations, 1)
	assert.Equal(t, models.ActionRequested, evaluations[0].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryDeleteOlderThan(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	cutoff := time.Now().UTC().AddDate(0, -3, 0)
	mock.ExpectExec("DELETE FROM evaluations WHERE created_at < \\$1").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 42))

	affected, err := repo.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(42), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
