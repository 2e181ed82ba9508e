package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/BearBump/FlightBoard/config"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("configPath"))
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := workerHTTPOpts{
		httpAddr:    cfg.FlightBoard.WorkerHTTPAddr,
		swaggerPath: os.Getenv("swaggerPath"),
	}

	if err := runFlightWorker(ctx, cfg, opts, defaultWorkerFactories()); err != nil && err != context.Canceled {
		panic(err)
	}
}
