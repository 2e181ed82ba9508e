package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/FlightBoard/config"
	"github.com/BearBump/FlightBoard/internal/broker/kafka"
	"github.com/BearBump/FlightBoard/internal/cache/rediscache"
	"github.com/BearBump/FlightBoard/internal/integrations/flightstats"
	"github.com/BearBump/FlightBoard/internal/services/schedule"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("configPath"))
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	fb := cfg.FlightBoard

	httpAddr := fb.APIHTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	consumerGroup := fb.KafkaConsumerGroup
	if consumerGroup == "" {
		consumerGroup = "flight-api"
	}
	topic := cfg.Kafka.ScheduleRefreshedTopicName
	if topic == "" {
		topic = "schedule.refreshed"
	}
	cacheTTL := time.Duration(fb.CacheTTLSeconds) * time.Second

	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	rc := rediscache.New(redisAddr)

	client := flightstats.New(fb.BaseURL, fb.Airport, fb.AirportName, fb.TimeSlots)
	if fb.ScrapeRateLimitPerMinute > 0 {
		client.WithRateLimiter(rediscache.NewRateLimiter(redisAddr), int64(fb.ScrapeRateLimitPerMinute))
	}

	svc := schedule.New(client, rc, cacheTTL, fb.DaysToFetch).
		WithDedupe(fb.DedupeFlights).
		WithConcurrency(fb.ScrapeConcurrency)

	var consumer kafkaConsumer
	if cfg.Kafka.Host != "" {
		brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
		kc := kafka.NewConsumer(brokers, topic, consumerGroup)
		defer func() { _ = kc.Close() }()
		consumer = kc
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := runFlightAPI(ctx, flightAPIOpts{
		httpAddr:      httpAddr,
		swaggerPath:   os.Getenv("swaggerPath"),
		topic:         topic,
		consumerGroup: consumerGroup,
	}, svc, consumer); err != nil && err != context.Canceled {
		panic(err)
	}
}
