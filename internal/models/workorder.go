package models

import (
	"time"

	"github.com/fieldpilot/dispatch-api/internal/matching"
)

// WorkOrder is a read-only snapshot of a marketplace job posting as returned
// by the marketplace API. All timestamps are UTC; Timezone is the work
// order's own declared zone used for buyer-facing display times.
type WorkOrder struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Timezone       string     `json:"timezone"`
	ScheduleMode   string     `json:"schedule_mode"`
	ScheduleStart  time.Time  `json:"schedule_start"`
	ScheduleEnd    *time.Time `json:"schedule_end,omitempty"`
	EstimatedHours float64    `json:"estimated_hours"`

	PayType            string  `json:"pay_type"`
	PayBase            float64 `json:"pay_base"`
	PayBaseUnits       float64 `json:"pay_base_units"`
	PayAdditional      float64 `json:"pay_additional"`
	PayAdditionalUnits float64 `json:"pay_additional_units"`
}

// ServiceWindow converts the snapshot's scheduling envelope for the matching
// engine. An unknown timezone falls back to UTC rather than failing the
// evaluation; an unknown mode is carried through and rejected downstream.
func (w *WorkOrder) ServiceWindow() matching.ServiceWindow {
	loc, err := time.LoadLocation(w.Timezone)
	if err != nil || w.Timezone == "" {
		loc = time.UTC
	}
	window := matching.ServiceWindow{
		Mode:           matching.WindowMode(w.ScheduleMode),
		Start:          w.ScheduleStart,
		EstimatedHours: w.EstimatedHours,
		Location:       loc,
	}
	if w.ScheduleEnd != nil {
		window.End = *w.ScheduleEnd
	}
	return window
}

// CandidatePayment converts the snapshot's payment terms for the matching
// engine.
func (w *WorkOrder) CandidatePayment() matching.CandidatePayment {
	return matching.CandidatePayment{
		Type:             matching.PaymentType(w.PayType),
		BaseAmount:       w.PayBase,
		BaseUnits:        w.PayBaseUnits,
		AdditionalAmount: w.PayAdditional,
		AdditionalUnits:  w.PayAdditionalUnits,
	}
}
