package models

import (
	"time"

	"github.com/fieldpilot/dispatch-api/internal/matching"
)

// Assignment records a work order already accepted for a cron's provider.
// Its time range is the committed interval new candidates must not conflict
// with. Rows are synced from the marketplace on every poll: still-assigned
// work orders are upserted, everything else is pruned.
type Assignment struct {
	ID             string    `db:"id" json:"id"`
	CronID         string    `db:"cron_id" json:"cron_id"`
	WorkOrderID    string    `db:"work_order_id" json:"work_order_id"`
	StartsAt       time.Time `db:"starts_at" json:"starts_at"`
	EndsAt         time.Time `db:"ends_at" json:"ends_at"`
	EstimatedHours float64   `db:"estimated_hours" json:"estimated_hours"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Committed converts the assignment into the engine's committed interval.
func (a Assignment) Committed() matching.CommittedInterval {
	return matching.CommittedInterval{
		WorkOrderID:    a.WorkOrderID,
		Interval:       matching.NewTimeInterval(a.StartsAt, a.EndsAt),
		EstimatedHours: a.EstimatedHours,
	}
}

// CommittedIntervals maps a slice of assignments for the engine.
func CommittedIntervals(assignments []Assignment) []matching.CommittedInterval {
	committed := make([]matching.CommittedInterval, 0, len(assignments))
	for _, a := range assignments {
		committed = append(committed, a.Committed())
	}
	return committed
}
