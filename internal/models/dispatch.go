package models

import "time"

// DispatchSummary aggregates the outcome of one evaluation run for a cron.
type DispatchSummary struct {
	CronID      string    `json:"cron_id"`
	Candidates  int       `json:"candidates"`
	Requested   int       `json:"requested"`
	Countered   int       `json:"countered"`
	Skipped     int       `json:"skipped"`
	Deduped     int       `json:"deduped"`
	Errors      int       `json:"errors"`
	CompletedAt time.Time `json:"completed_at"`
}
