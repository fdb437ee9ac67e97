package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fieldpilot/dispatch-api/internal/models"
	appErrors "github.com/fieldpilot/dispatch-api/pkg/errors"
)

type cronRepository interface {
	List(ctx context.Context, filter models.CronFilter) ([]models.Cron, int, error)
	FindByID(ctx context.Context, id string) (*models.Cron, error)
	Create(ctx context.Context, cron *models.Cron) error
	Update(ctx context.Context, cron *models.Cron) error
	Delete(ctx context.Context, id string) error
}

// CreateCronRequest describes the payload for creating a matching
// configuration.
type CreateCronRequest struct {
	ProviderID          string `json:"provider_id" validate:"required"`
	Name                string `json:"name" validate:"required"`
	Enabled             bool   `json:"enabled"`
	CounterOfferEnabled bool   `json:"counter_offer_enabled"`

	Timezone     string     `json:"timezone" validate:"required"`
	WorkdayStart string     `json:"workday_start" validate:"required"`
	WorkdayEnd   string     `json:"workday_end" validate:"required"`
	OffDays      []string   `json:"off_days"`
	TimeOffStart *time.Time `json:"time_off_start"`
	TimeOffEnd   *time.Time `json:"time_off_end"`

	FixedEnabled       bool    `json:"fixed_enabled"`
	FixedAmount        float64 `json:"fixed_amount" validate:"gte=0"`
	HourlyEnabled      bool    `json:"hourly_enabled"`
	HourlyAmount       float64 `json:"hourly_amount" validate:"gte=0"`
	PerDeviceEnabled   bool    `json:"per_device_enabled"`
	PerDeviceAmount    float64 `json:"per_device_amount" validate:"gte=0"`
	BlendedEnabled     bool    `json:"blended_enabled"`
	FirstHourRate      float64 `json:"first_hour_rate" validate:"gte=0"`
	AdditionalHourRate float64 `json:"additional_hour_rate" validate:"gte=0"`
}

// UpdateCronRequest updates mutable fields on a cron.
type UpdateCronRequest struct {
	Name                string `json:"name" validate:"required"`
	Enabled             bool   `json:"enabled"`
	CounterOfferEnabled bool   `json:"counter_offer_enabled"`

	Timezone     string     `json:"timezone" validate:"required"`
	WorkdayStart string     `json:"workday_start" validate:"required"`
	WorkdayEnd   string     `json:"workday_end" validate:"required"`
	OffDays      []string   `json:"off_days"`
	TimeOffStart *time.Time `json:"time_off_start"`
	TimeOffEnd   *time.Time `json:"time_off_end"`

	FixedEnabled       bool    `json:"fixed_enabled"`
	FixedAmount        float64 `json:"fixed_amount" validate:"gte=0"`
	HourlyEnabled      bool    `json:"hourly_enabled"`
	HourlyAmount       float64 `json:"hourly_amount" validate:"gte=0"`
	PerDeviceEnabled   bool    `json:"per_device_enabled"`
	PerDeviceAmount    float64 `json:"per_device_amount" validate:"gte=0"`
	BlendedEnabled     bool    `json:"blended_enabled"`
	FirstHourRate      float64 `json:"first_hour_rate" validate:"gte=0"`
	AdditionalHourRate float64 `json:"additional_hour_rate" validate:"gte=0"`
}

// CronService orchestrates matching-configuration workflows.
type CronService struct {
	repo      cronRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCronService creates a new cron service instance.
func NewCronService(repo cronRepository, validate *validator.Validate, logger *zap.Logger) *CronService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CronService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated crons.
func (s *CronService) List(ctx context.Context, filter models.CronFilter) ([]models.Cron, *models.Pagination, error) {
	crons, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list crons")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	pagination := &models.Pagination{
		Page:       page,
		PageSize:   size,
		TotalCount: total,
	}
	return crons, pagination, nil
}

// Get returns a cron by ID.
func (s *CronService) Get(ctx context.Context, id string) (*models.Cron, error) {
	cron, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cron not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cron")
	}
	return cron, nil
}

// Create adds a new cron after validating that the calendar and payment
// configuration actually materialize into engine rules.
func (s *CronService) Create(ctx context.Context, req CreateCronRequest) (*models.Cron, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cron payload")
	}

	cron := &models.Cron{
		ProviderID:          req.ProviderID,
		Name:                req.Name,
		Enabled:             req.Enabled,
		CounterOfferEnabled: req.CounterOfferEnabled,
		Timezone:            req.Timezone,
		WorkdayStart:        req.WorkdayStart,
		WorkdayEnd:          req.WorkdayEnd,
		TimeOffStart:        req.TimeOffStart,
		TimeOffEnd:          req.TimeOffEnd,
		FixedEnabled:        req.FixedEnabled,
		FixedAmount:         req.FixedAmount,
		HourlyEnabled:       req.HourlyEnabled,
		HourlyAmount:        req.HourlyAmount,
		PerDeviceEnabled:    req.PerDeviceEnabled,
		PerDeviceAmount:     req.PerDeviceAmount,
		BlendedEnabled:      req.BlendedEnabled,
		FirstHourRate:       req.FirstHourRate,
		AdditionalHourRate:  req.AdditionalHourRate,
	}
	if err := applyOffDays(cron, req.OffDays); err != nil {
		return nil, err
	}
	if err := validateCalendar(cron, req.TimeOffStart, req.TimeOffEnd); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, cron); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create cron")
	}

	s.logger.Info("cron created", zap.String("cron_id", cron.ID), zap.String("provider_id", cron.ProviderID))
	return cron, nil
}

// Update replaces the mutable fields of a cron.
func (s *CronService) Update(ctx context.Context, id string, req UpdateCronRequest) (*models.Cron, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cron payload")
	}

	cron, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	cron.Name = req.Name
	cron.Enabled = req.Enabled
	cron.CounterOfferEnabled = req.CounterOfferEnabled
	cron.Timezone = req.Timezone
	cron.WorkdayStart = req.WorkdayStart
	cron.WorkdayEnd = req.WorkdayEnd
	cron.TimeOffStart = req.TimeOffStart
	cron.TimeOffEnd = req.TimeOffEnd
	cron.FixedEnabled = req.FixedEnabled
	cron.FixedAmount = req.FixedAmount
	cron.HourlyEnabled = req.HourlyEnabled
	cron.HourlyAmount = req.HourlyAmount
	cron.PerDeviceEnabled = req.PerDeviceEnabled
	cron.PerDeviceAmount = req.PerDeviceAmount
	cron.BlendedEnabled = req.BlendedEnabled
	cron.FirstHourRate = req.FirstHourRate
	cron.AdditionalHourRate = req.AdditionalHourRate

	if err := applyOffDays(cron, req.OffDays); err != nil {
		return nil, err
	}
	if err := validateCalendar(cron, req.TimeOffStart, req.TimeOffEnd); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, cron); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cron not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update cron")
	}
	return cron, nil
}

// Delete removes a cron permanently.
func (s *CronService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "cron not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete cron")
	}
	return nil
}

func applyOffDays(cron *models.Cron, offDays []string) error {
	if offDays == nil {
		offDays = []string{}
	}
	payload, err := json.Marshal(offDays)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid off days")
	}
	cron.OffDays = payload
	return nil
}

// validateCalendar rejects configurations the matching engine could not
// materialize at evaluation time.
func validateCalendar(cron *models.Cron, timeOffStart, timeOffEnd *time.Time) error {
	if (timeOffStart == nil) != (timeOffEnd == nil) {
		return appErrors.Clone(appErrors.ErrValidation, "time_off_start and time_off_end must be set together")
	}
	if _, err := cron.CalendarRules(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid calendar configuration")
	}
	return nil
}
