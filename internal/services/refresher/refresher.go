package refresher

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BearBump/FlightBoard/internal/broker/messages"
	"github.com/BearBump/FlightBoard/internal/storage/pgruns"
)

type ScheduleRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type RunRecorder interface {
	RecordRun(ctx context.Context, in pgruns.RunInput) (uint64, error)
}

// Refresher drives the schedule service on a fixed interval. Each cycle is a
// full-window rebuild; there is no incremental refresh. The producer and run
// recorder are optional, a nil value disables that side effect.
type Refresher struct {
	svc      ScheduleRefresher
	producer Producer
	runs     RunRecorder

	topic    string
	interval time.Duration

	triggerCh chan struct{}

	startedAtUnixNano   int64
	lastCycleUnixNano   atomic.Int64
	lastTriggerUnixNano atomic.Int64
	totalRuns           atomic.Int64
	totalErrors         atomic.Int64
	lastFlightCount     atomic.Int64
	lastErrorMu         sync.Mutex
	lastError           string
}

func New(svc ScheduleRefresher, producer Producer, runs RunRecorder, topic string) *Refresher {
	return &Refresher{
		svc:               svc,
		producer:          producer,
		runs:              runs,
		topic:             topic,
		interval:          time.Hour,
		triggerCh:         make(chan struct{}, 1),
		startedAtUnixNano: time.Now().UTC().UnixNano(),
	}
}

func (r *Refresher) WithInterval(interval time.Duration) *Refresher {
	if interval > 0 {
		r.interval = interval
	}
	return r
}

// Trigger forces an immediate refresh cycle (best-effort, non-blocking).
func (r *Refresher) Trigger() {
	r.lastTriggerUnixNano.Store(time.Now().UTC().UnixNano())
	select {
	case r.triggerCh <- struct{}{}:
	default:
	}
}

type Stats struct {
	StartedAt       time.Time  `json:"startedAt"`
	LastCycleAt     *time.Time `json:"lastCycleAt,omitempty"`
	LastTriggerAt   *time.Time `json:"lastTriggerAt,omitempty"`
	TotalRuns       int64      `json:"totalRuns"`
	TotalErrors     int64      `json:"totalErrors"`
	LastFlightCount int64      `json:"lastFlightCount"`
	LastError       string     `json:"lastError,omitempty"`
}

func (r *Refresher) Stats() Stats {
	st := Stats{
		StartedAt:       time.Unix(0, r.startedAtUnixNano).UTC(),
		TotalRuns:       r.totalRuns.Load(),
		TotalErrors:     r.totalErrors.Load(),
		LastFlightCount: r.lastFlightCount.Load(),
	}
	if n := r.lastCycleUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastCycleAt = &t
	}
	if n := r.lastTriggerUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastTriggerAt = &t
	}
	r.lastErrorMu.Lock()
	st.LastError = r.lastError
	r.lastErrorMu.Unlock()
	return st
}

// Run refreshes once at startup so the cache is warm, then keeps cycling
// until the context is canceled. Failures are logged and counted, never
// surfaced to a caller.
func (r *Refresher) Run(ctx context.Context) error {
	r.runOnce(ctx)

	t := time.NewTicker(r.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			r.runOnce(ctx)
		case <-r.triggerCh:
			r.runOnce(ctx)
		}
	}
}

func (r *Refresher) runOnce(ctx context.Context) {
	started := time.Now().UTC()
	r.lastCycleUnixNano.Store(started.UnixNano())
	r.totalRuns.Add(1)

	count, err := r.svc.Refresh(ctx)
	finished := time.Now().UTC()

	var errStr *string
	if err != nil {
		e := err.Error()
		errStr = &e
		r.totalErrors.Add(1)
		r.lastErrorMu.Lock()
		r.lastError = e
		r.lastErrorMu.Unlock()
		slog.Error("scheduled refresh failed", "error", e)
	} else {
		r.lastFlightCount.Store(int64(count))
	}

	if r.runs != nil {
		if _, err := r.runs.RecordRun(ctx, pgruns.RunInput{
			StartedAt:    started,
			FinishedAt:   finished,
			TotalFlights: count,
			Error:        errStr,
		}); err != nil {
			slog.Error("record refresh run", "error", err.Error())
		}
	}

	if r.producer != nil {
		msg := messages.ScheduleRefreshed{
			RefreshedAt:  finished,
			TotalFlights: count,
			DurationMs:   finished.Sub(started).Milliseconds(),
			Error:        errStr,
		}
		b, err := json.Marshal(msg)
		if err != nil {
			slog.Error("marshal refresh event", "error", err.Error())
			return
		}
		// Kafka may not be ready right after a compose start; retry briefly.
		var pubErr error
		for i := 0; i < 5; i++ {
			if pubErr = r.producer.Publish(ctx, r.topic, []byte(started.Format(time.RFC3339)), b); pubErr == nil {
				break
			}
			time.Sleep(time.Duration(150*(i+1)) * time.Millisecond)
		}
		if pubErr != nil {
			slog.Error("publish refresh event", "error", pubErr.Error())
		}
	}
}
