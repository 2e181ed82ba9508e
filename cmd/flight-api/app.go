package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/BearBump/FlightBoard/internal/broker/messages"
	"github.com/BearBump/FlightBoard/internal/models"
	"github.com/BearBump/FlightBoard/internal/services/schedule"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type flightAPIOpts struct {
	httpAddr    string
	swaggerPath string

	topic         string
	consumerGroup string

	onListen func(httpAddr string)
}

type kafkaConsumer interface {
	Consume(ctx context.Context, handler func(key, value []byte) error) error
}

// freshness is what the last schedule.refreshed event told us about the data.
type freshness struct {
	mu           sync.Mutex
	lastRefresh  time.Time
	totalFlights int
}

func (f *freshness) update(at time.Time, total int) {
	f.mu.Lock()
	f.lastRefresh = at
	f.totalFlights = total
	f.mu.Unlock()
}

func (f *freshness) snapshot() (time.Time, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastRefresh, f.totalFlights
}

type flightsResponse struct {
	TotalFlights int             `json:"totalFlights"`
	Flights      []models.Flight `json:"flights"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func runFlightAPI(ctx context.Context, opts flightAPIOpts, svc *schedule.Service, consumer kafkaConsumer) error {
	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	fresh := &freshness{}

	r := chi.NewRouter()
	r.Use(corsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		lastRefresh, total := fresh.snapshot()
		out := map[string]any{"status": "ok"}
		if !lastRefresh.IsZero() {
			out["lastRefreshAt"] = lastRefresh.UTC().Format(time.RFC3339)
			out["totalFlights"] = total
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Get("/flights", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		flights, err := svc.Query(r.Context(), q.Get("origin"), q.Get("destination"), q.Get("date"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, flightsResponse{TotalFlights: len(flights), Flights: flights})
	})

	r.Post("/refresh", func(w http.ResponseWriter, r *http.Request) {
		count, err := svc.Refresh(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"refreshed": true, "totalFlights": count})
	})

	if opts.swaggerPath != "" {
		if _, err := os.Stat(opts.swaggerPath); os.IsNotExist(err) {
			return fmt.Errorf("swagger file not found: %s", opts.swaggerPath)
		}
		r.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-store")
			http.ServeFile(w, r, opts.swaggerPath)
		})
		r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/swagger.json")))
	}

	if consumer != nil {
		go func() {
			slog.Info("kafka consumer started", "topic", opts.topic, "group", opts.consumerGroup)
			_ = consumer.Consume(ctx, func(_key, value []byte) error {
				var m messages.ScheduleRefreshed
				if err := json.Unmarshal(value, &m); err != nil {
					return err
				}
				if m.Error == nil {
					fresh.update(m.RefreshedAt, m.TotalFlights)
				}
				return nil
			})
		}()
	}

	srv := &http.Server{Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = lis.Close()
	}()

	slog.Info("flight API listening", "addr", lis.Addr().String())
	if err := srv.Serve(lis); err != nil && err != http.ErrServerClosed {
		return err
	}
	return ctx.Err()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var validationErr *schedule.ValidationError
	var rangeErr *schedule.DateRangeError
	switch {
	case errors.As(err, &validationErr), errors.As(err, &rangeErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, schedule.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		slog.Error("flight query failed", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}
