package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/fieldpilot/dispatch-api/internal/models"
)

// AssignmentRepository persists committed work-order intervals per cron.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListByCron returns the committed intervals for a cron ordered by start.
func (r *AssignmentRepository) ListByCron(ctx context.Context, cronID string) ([]models.Assignment, error) {
	const query = `SELECT id, cron_id, work_order_id, starts_at, ends_at, estimated_hours, created_at, updated_at FROM assignments WHERE cron_id = $1 ORDER BY starts_at`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, cronID); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// Upsert inserts or refreshes an assignment keyed by cron and work order.
func (r *AssignmentRepository) Upsert(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = now
	}
	assignment.UpdatedAt = now

	const query = `INSERT INTO assignments (id, cron_id, work_order_id, starts_at, ends_at, estimated_hours, created_at, updated_at)
VALUES (:id, :cron_id, :work_order_id, :starts_at, :ends_at, :estimated_hours, :created_at, :updated_at)
ON CONFLICT (cron_id, work_order_id) DO UPDATE SET starts_at = EXCLUDED.starts_at, ends_at = EXCLUDED.ends_at, estimated_hours = EXCLUDED.estimated_hours, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("upsert assignment: %w", err)
	}
	return nil
}

// PruneMissing deletes assignments the marketplace no longer reports as
// assigned. An empty keep list clears the cron's assignments entirely.
func (r *AssignmentRepository) PruneMissing(ctx context.Context, cronID string, keepWorkOrderIDs []string) error {
	if len(keepWorkOrderIDs) == 0 {
		const query = `DELETE FROM assignments WHERE cron_id = $1`
		if _, err := r.db.ExecContext(ctx, query, cronID); err != nil {
			return fmt.Errorf("prune assignments: %w", err)
		}
		return nil
	}

	const query = `DELETE FROM assignments WHERE cron_id = $1 AND work_order_id <> ALL($2)`
	if _, err := r.db.ExecContext(ctx, query, cronID, pq.Array(keepWorkOrderIDs)); err != nil {
		return fmt.Errorf("prune assignments: %w", err)
	}
	return nil
}
