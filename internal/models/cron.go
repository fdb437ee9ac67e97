package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/fieldpilot/dispatch-api/internal/matching"
)

// Cron is a provider's saved matching configuration (calendar plus payment
// rules), evaluated on every marketplace poll. The name is domain jargon for
// the configuration record, not the OS mechanism.
type Cron struct {
	ID                  string `db:"id" json:"id"`
	ProviderID          string `db:"provider_id" json:"provider_id"`
	Name                string `db:"name" json:"name"`
	Enabled             bool   `db:"enabled" json:"enabled"`
	CounterOfferEnabled bool   `db:"counter_offer_enabled" json:"counter_offer_enabled"`

	Timezone     string         `db:"timezone" json:"timezone"`
	WorkdayStart string         `db:"workday_start" json:"workday_start"` // "HH:MM"
	WorkdayEnd   string         `db:"workday_end" json:"workday_end"`     // "HH:MM"
	OffDays      types.JSONText `db:"off_days" json:"off_days"`           // ["SUNDAY", ...]
	TimeOffStart *time.Time     `db:"time_off_start" json:"time_off_start,omitempty"`
	TimeOffEnd   *time.Time     `db:"time_off_end" json:"time_off_end,omitempty"`

	FixedEnabled       bool    `db:"fixed_enabled" json:"fixed_enabled"`
	FixedAmount        float64 `db:"fixed_amount" json:"fixed_amount"`
	HourlyEnabled      bool    `db:"hourly_enabled" json:"hourly_enabled"`
	HourlyAmount       float64 `db:"hourly_amount" json:"hourly_amount"`
	PerDeviceEnabled   bool    `db:"per_device_enabled" json:"per_device_enabled"`
	PerDeviceAmount    float64 `db:"per_device_amount" json:"per_device_amount"`
	BlendedEnabled     bool    `db:"blended_enabled" json:"blended_enabled"`
	FirstHourRate      float64 `db:"first_hour_rate" json:"first_hour_rate"`
	AdditionalHourRate float64 `db:"additional_hour_rate" json:"additional_hour_rate"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CronFilter captures filtering criteria for listing crons.
type CronFilter struct {
	ProviderID string
	Enabled    *bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

var weekdayNames = map[string]time.Weekday{
	"SUNDAY":    time.Sunday,
	"MONDAY":    time.Monday,
	"TUESDAY":   time.Tuesday,
	"WEDNESDAY": time.Wednesday,
	"THURSDAY":  time.Thursday,
	"FRIDAY":    time.Friday,
	"SATURDAY":  time.Saturday,
}

// CalendarRules materializes the cron's calendar constraints for the
// matching engine. Loaded once per evaluation and read-only afterwards.
func (c *Cron) CalendarRules() (matching.CalendarRules, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return matching.CalendarRules{}, fmt.Errorf("cron %s: invalid timezone %q: %w", c.ID, c.Timezone, err)
	}

	workStart, err := parseClock(c.WorkdayStart)
	if err != nil {
		return matching.CalendarRules{}, fmt.Errorf("cron %s: invalid workday start: %w", c.ID, err)
	}
	workEnd, err := parseClock(c.WorkdayEnd)
	if err != nil {
		return matching.CalendarRules{}, fmt.Errorf("cron %s: invalid workday end: %w", c.ID, err)
	}

	offDays := make(map[time.Weekday]bool)
	if len(c.OffDays) > 0 {
		var names []string
		if err := json.Unmarshal(c.OffDays, &names); err != nil {
			return matching.CalendarRules{}, fmt.Errorf("cron %s: invalid off days: %w", c.ID, err)
		}
		for _, name := range names {
			day, ok := weekdayNames[strings.ToUpper(strings.TrimSpace(name))]
			if !ok {
				return matching.CalendarRules{}, fmt.Errorf("cron %s: unknown off day %q", c.ID, name)
			}
			offDays[day] = true
		}
	}

	rules := matching.CalendarRules{
		Location:  loc,
		WorkStart: workStart,
		WorkEnd:   workEnd,
		OffDays:   offDays,
	}
	if c.TimeOffStart != nil && c.TimeOffEnd != nil {
		timeOff := matching.NewTimeInterval(*c.TimeOffStart, *c.TimeOffEnd)
		rules.TimeOff = &timeOff
	}
	return rules, nil
}

// PaymentRules materializes the cron's payment thresholds.
func (c *Cron) PaymentRules() matching.PaymentRules {
	return matching.PaymentRules{
		FixedEnabled:       c.FixedEnabled,
		FixedAmount:        c.FixedAmount,
		HourlyEnabled:      c.HourlyEnabled,
		HourlyAmount:       c.HourlyAmount,
		PerDeviceEnabled:   c.PerDeviceEnabled,
		PerDeviceAmount:    c.PerDeviceAmount,
		BlendedEnabled:     c.BlendedEnabled,
		FirstHourRate:      c.FirstHourRate,
		AdditionalHourRate: c.AdditionalHourRate,
	}
}

func parseClock(raw string) (matching.ClockTime, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return matching.ClockTime{}, fmt.Errorf("parse clock %q: %w", raw, err)
	}
	return matching.ClockTime{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
}
