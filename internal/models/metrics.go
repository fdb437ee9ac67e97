package models

import "time"

// SystemMetrics is a point-in-time snapshot of dispatch activity exposed by
// the admin API.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	EvaluationsTotal         uint64    `json:"evaluations_total"`
	Requested                uint64    `json:"requested"`
	Countered                uint64    `json:"countered"`
	Skipped                  uint64    `json:"skipped"`
	DedupeHits               uint64    `json:"dedupe_hits"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
