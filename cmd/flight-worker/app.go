package main

import (
	"context"
	"fmt"
	"time"

	"github.com/BearBump/FlightBoard/config"
	"github.com/BearBump/FlightBoard/internal/broker/kafka"
	"github.com/BearBump/FlightBoard/internal/cache"
	"github.com/BearBump/FlightBoard/internal/cache/rediscache"
	"github.com/BearBump/FlightBoard/internal/integrations/flightstats"
	"github.com/BearBump/FlightBoard/internal/services/refresher"
	"github.com/BearBump/FlightBoard/internal/services/schedule"
	"github.com/BearBump/FlightBoard/internal/storage/pgruns"
)

type workerFactories struct {
	newCache       func(cfg *config.Config) cache.BytesCache
	newRateLimiter func(cfg *config.Config) flightstats.RateLimiter
	newProducer    func(cfg *config.Config) refresher.Producer
	newRunsStorage func(cfg *config.Config) (*pgruns.Storage, error)
}

func defaultWorkerFactories() workerFactories {
	return workerFactories{
		newCache: func(cfg *config.Config) cache.BytesCache {
			return rediscache.New(fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port))
		},
		newRateLimiter: func(cfg *config.Config) flightstats.RateLimiter {
			return rediscache.NewRateLimiter(fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port))
		},
		newProducer: func(cfg *config.Config) refresher.Producer {
			// Kafka is optional for local runs.
			if cfg.Kafka.Host == "" {
				return nil
			}
			return kafka.NewProducer([]string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)})
		},
		newRunsStorage: func(cfg *config.Config) (*pgruns.Storage, error) {
			// Postgres run audit is optional as well.
			if cfg.Database.Host == "" {
				return nil, nil
			}
			sslMode := cfg.Database.SSLMode
			if sslMode == "" {
				sslMode = "disable"
			}
			connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
				cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, sslMode)
			return pgruns.New(connString)
		},
	}
}

func buildRefresher(cfg *config.Config, f workerFactories) (*refresher.Refresher, *pgruns.Storage, error) {
	fb := cfg.FlightBoard

	topic := cfg.Kafka.ScheduleRefreshedTopicName
	if topic == "" {
		topic = "schedule.refreshed"
	}
	interval := time.Duration(fb.RefreshIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Hour
	}
	cacheTTL := time.Duration(fb.CacheTTLSeconds) * time.Second

	client := flightstats.New(fb.BaseURL, fb.Airport, fb.AirportName, fb.TimeSlots)
	if fb.ScrapeRateLimitPerMinute > 0 {
		client.WithRateLimiter(f.newRateLimiter(cfg), int64(fb.ScrapeRateLimitPerMinute))
	}

	svc := schedule.New(client, f.newCache(cfg), cacheTTL, fb.DaysToFetch).
		WithDedupe(fb.DedupeFlights).
		WithConcurrency(fb.ScrapeConcurrency)

	runsStorage, err := f.newRunsStorage(cfg)
	if err != nil {
		return nil, nil, err
	}
	var runs refresher.RunRecorder
	if runsStorage != nil {
		runs = runsStorage
	}

	ref := refresher.New(svc, f.newProducer(cfg), runs, topic).WithInterval(interval)
	return ref, runsStorage, nil
}

func runFlightWorker(ctx context.Context, cfg *config.Config, opts workerHTTPOpts, f workerFactories) error {
	ref, runsStorage, err := buildRefresher(cfg, f)
	if err != nil {
		return err
	}
	if runsStorage != nil {
		defer runsStorage.Close()
	}

	opts.refresher = ref
	opts.runs = runsStorage
	opts.cfg = cfg

	refErr := make(chan error, 1)
	go func() {
		refErr <- ref.Run(ctx)
	}()

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- runWorkerHTTPServer(ctx, opts)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-refErr:
		return err
	case err := <-httpErr:
		return err
	}
}
