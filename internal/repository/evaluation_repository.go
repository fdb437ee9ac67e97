package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fieldpilot/dispatch-api/internal/models"
)

// EvaluationRepository persists the audit trail of matching decisions.
type EvaluationRepository struct {
	db *sqlx.DB
}

// NewEvaluationRepository creates a new evaluation repository.
func NewEvaluationRepository(db *sqlx.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// Create records one evaluation outcome.
func (r *EvaluationRepository) Create(ctx context.Context, evaluation *models.Evaluation) error {
	if evaluation.ID == "" {
		evaluation.ID = uuid.NewString()
	}
	if evaluation.CreatedAt.IsZero() {
		evaluation.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO evaluations (id, cron_id, work_order_id, payment_satisfied, schedule_satisfied, action, counter_offer, created_at) VALUES (:id, :cron_id, :work_order_id, :payment_satisfied, :schedule_satisfied, :action, :counter_offer, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, evaluation); err != nil {
		return fmt.Errorf("create evaluation: %w", err)
	}
	return nil
}

// List returns evaluations with optional filtering and pagination, newest
// first by default.
func (r *EvaluationRepository) List(ctx context.Context, filter models.EvaluationFilter) ([]models.Evaluation, int, error) {
	base := "FROM evaluations WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.CronID != "" {
		conditions = append(conditions, fmt.Sprintf("cron_id = $%d", len(args)+1))
		args = append(args, filter.CronID)
	}
	if filter.WorkOrderID != "" {
		conditions = append(conditions, fmt.Sprintf("work_order_id = $%d", len(args)+1))
		args = append(args, filter.WorkOrderID)
	}
	if filter.Action != "" {
		conditions = append(conditions, fmt.Sprintf("action = $%d", len(args)+1))
		args = append(args, filter.Action)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, cron_id, work_order_id, payment_satisfied, schedule_satisfied, action, counter_offer, created_at %s ORDER BY created_at %s LIMIT %d OFFSET %d", base, order, size, offset)
	var evaluations []models.Evaluation
	if err := r.db.SelectContext(ctx, &evaluations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list evaluations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count evaluations: %w", err)
	}

	return evaluations, total, nil
}

// DeleteOlderThan trims history beyond the retention horizon.
func (r *EvaluationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM evaluations WHERE created_at < $1`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old evaluations: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}
