package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// EvaluationAction is the decision taken for one candidate work order.
type EvaluationAction string

const (
	// ActionRequested means both checks passed and the work order was
	// requested as posted.
	ActionRequested EvaluationAction = "requested"
	// ActionCountered means a counter-offer was submitted.
	ActionCountered EvaluationAction = "countered"
	// ActionSkipped means neither a request nor a viable counter-offer was
	// possible.
	ActionSkipped EvaluationAction = "skipped"
)

// Evaluation is the audit record of a single cron-versus-work-order
// decision.
type Evaluation struct {
	ID                string           `db:"id" json:"id"`
	CronID            string           `db:"cron_id" json:"cron_id"`
	WorkOrderID       string           `db:"work_order_id" json:"work_order_id"`
	PaymentSatisfied  bool             `db:"payment_satisfied" json:"payment_satisfied"`
	ScheduleSatisfied bool             `db:"schedule_satisfied" json:"schedule_satisfied"`
	Action            EvaluationAction `db:"action" json:"action"`
	CounterOffer      types.JSONText   `db:"counter_offer" json:"counter_offer,omitempty"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
}

// EvaluationFilter captures filtering criteria for listing evaluations.
type EvaluationFilter struct {
	CronID      string
	WorkOrderID string
	Action      string
	Page        int
	PageSize    int
	SortOrder   string
}
