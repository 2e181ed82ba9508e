package messages

import "time"

// ScheduleRefreshed is published by the worker after every refresh cycle.
// The API consumes it to report data freshness without touching the cache.
type ScheduleRefreshed struct {
	RefreshedAt  time.Time `json:"refreshed_at"`
	TotalFlights int       `json:"total_flights"`
	DurationMs   int64     `json:"duration_ms"`

	Error *string `json:"error,omitempty"`
}
