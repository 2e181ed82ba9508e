package pgruns

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

type Run struct {
	ID           uint64     `json:"id"`
	StartedAt    time.Time  `json:"startedAt"`
	FinishedAt   time.Time  `json:"finishedAt"`
	TotalFlights int        `json:"totalFlights"`
	Error        *string    `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type RunInput struct {
	StartedAt    time.Time
	FinishedAt   time.Time
	TotalFlights int
	Error        *string
}

func (s *Storage) RecordRun(ctx context.Context, in RunInput) (uint64, error) {
	var id uint64
	err := s.db.QueryRow(ctx, `
INSERT INTO refresh_runs (started_at, finished_at, total_flights, error)
VALUES ($1, $2, $3, $4)
RETURNING id`,
		in.StartedAt, in.FinishedAt, in.TotalFlights, in.Error,
	).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "insert refresh run")
	}
	return id, nil
}

func (s *Storage) ListRecentRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(ctx, `
SELECT id, started_at, finished_at, total_flights, error, created_at
FROM refresh_runs
ORDER BY started_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "select refresh runs")
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.TotalFlights, &r.Error, &r.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan refresh run")
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}
