package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fieldpilot/dispatch-api/internal/models"
)

const cronColumns = `id, provider_id, name, enabled, counter_offer_enabled, timezone, workday_start, workday_end, off_days, time_off_start, time_off_end, fixed_enabled, fixed_amount, hourly_enabled, hourly_amount, per_device_enabled, per_device_amount, blended_enabled, first_hour_rate, additional_hour_rate, created_at, updated_at`

// CronRepository provides persistence for provider matching configurations.
type CronRepository struct {
	db *sqlx.DB
}

// NewCronRepository creates a new cron repository.
func NewCronRepository(db *sqlx.DB) *CronRepository {
	return &CronRepository{db: db}
}

// List returns crons with optional filtering and pagination.
func (r *CronRepository) List(ctx context.Context, filter models.CronFilter) ([]models.Cron, int, error) {
	base := "FROM crons WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.ProviderID != "" {
		conditions = append(conditions, fmt.Sprintf("provider_id = $%d", len(args)+1))
		args = append(args, filter.ProviderID)
	}
	if filter.Enabled != nil {
		conditions = append(conditions, fmt.Sprintf("enabled = $%d", len(args)+1))
		args = append(args, *filter.Enabled)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"name":       true,
		"created_at": true,
		"updated_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
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
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", cronColumns, base, sortBy, order, size, offset)
	var crons []models.Cron
	if err := r.db.SelectContext(ctx, &crons, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list crons: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count crons: %w", err)
	}

	return crons, total, nil
}

// ListEnabled returns every cron currently eligible for polling.
func (r *CronRepository) ListEnabled(ctx context.Context) ([]models.Cron, error) {
	query := fmt.Sprintf("SELECT %s FROM crons WHERE enabled = TRUE ORDER BY created_at", cronColumns)
	var crons []models.Cron
	if err := r.db.SelectContext(ctx, &crons, query); err != nil {
		return nil, fmt.Errorf("list enabled crons: %w", err)
	}
	return crons, nil
}

// FindByID loads a cron by id.
func (r *CronRepository) FindByID(ctx context.Context, id string) (*models.Cron, error) {
	query := fmt.Sprintf("SELECT %s FROM crons WHERE id = $1", cronColumns)
	var cron models.Cron
	if err := r.db.GetContext(ctx, &cron, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find cron by id: %w", err)
	}
	return &cron, nil
}

// Create inserts a new cron.
func (r *CronRepository) Create(ctx context.Context, cron *models.Cron) error {
	if cron.ID == "" {
		cron.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if cron.CreatedAt.IsZero() {
		cron.CreatedAt = now
	}
	cron.UpdatedAt = now

	const query = `INSERT INTO crons (id, provider_id, name, enabled, counter_offer_enabled, timezone, workday_start, workday_end, off_days, time_off_start, time_off_end, fixed_enabled, fixed_amount, hourly_enabled, hourly_amount, per_device_enabled, per_device_amount, blended_enabled, first_hour_rate, additional_hour_rate, created_at, updated_at) VALUES (:id, :provider_id, :name, :enabled, :counter_offer_enabled, :timezone, :workday_start, :workday_end, :off_days, :time_off_start, :time_off_end, :fixed_enabled, :fixed_amount, :hourly_enabled, :hourly_amount, :per_device_enabled, :per_device_amount, :blended_enabled, :first_hour_rate, :additional_hour_rate, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, cron); err != nil {
		return fmt.Errorf("create cron: %w", err)
	}
	return nil
}

// Update updates the mutable fields of a cron.
func (r *CronRepository) Update(ctx context.Context, cron *models.Cron) error {
	cron.UpdatedAt = time.Now().UTC()
	const query = `UPDATE crons SET name = :name, enabled = :enabled, counter_offer_enabled = :counter_offer_enabled, timezone = :timezone, workday_start = :workday_start, workday_end = :workday_end, off_days = :off_days, time_off_start = :time_off_start, time_off_end = :time_off_end, fixed_enabled = :fixed_enabled, fixed_amount = :fixed_amount, hourly_enabled = :hourly_enabled, hourly_amount = :hourly_amount, per_device_enabled = :per_device_enabled, per_device_amount = :per_device_amount, blended_enabled = :blended_enabled, first_hour_rate = :first_hour_rate, additional_hour_rate = :additional_hour_rate, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, cron)
	if err != nil {
		return fmt.Errorf("update cron: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a cron permanently.
func (r *CronRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM crons WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete cron: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
