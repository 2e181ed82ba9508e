package schedule

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/BearBump/FlightBoard/internal/cache"
	"github.com/BearBump/FlightBoard/internal/integrations/flightstats"
	"github.com/BearBump/FlightBoard/internal/models"
	"github.com/pkg/errors"
)

// AllFlightsKey is the single cache key holding the serialized aggregate for
// both flight types across the whole forecast window.
const AllFlightsKey = "all_flights_data"

const dateLayout = "2006-01-02"

var flightTypes = []models.FlightType{models.FlightTypeArrivals, models.FlightTypeDepartures}

type Fetcher interface {
	FetchDate(ctx context.Context, typ models.FlightType, date time.Time) ([]models.Flight, error)
}

type Service struct {
	fetcher Fetcher
	cache   cache.BytesCache

	cacheTTL    time.Duration
	daysToFetch int
	concurrency int
	dedupe      bool

	now func() time.Time
}

func New(fetcher Fetcher, c cache.BytesCache, cacheTTL time.Duration, daysToFetch int) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 3 * time.Hour
	}
	if daysToFetch <= 0 {
		daysToFetch = 4
	}
	return &Service{
		fetcher:     fetcher,
		cache:       c,
		cacheTTL:    cacheTTL,
		daysToFetch: daysToFetch,
		concurrency: 4,
		now:         time.Now,
	}
}

// WithConcurrency bounds how many (type, date) pages are fetched at once.
func (s *Service) WithConcurrency(n int) *Service {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// WithDedupe drops duplicate flight IDs during refresh. Adjacent hour slots
// show overlapping schedule windows, so the same flight can appear on several
// pages; by default duplicates are preserved, as the cached aggregate always
// has been.
func (s *Service) WithDedupe(on bool) *Service {
	s.dedupe = on
	return s
}

// Refresh rebuilds the full aggregate: every (type, date) pair of the
// forecast window fetched concurrently, joined in deterministic scan order,
// then written to the cache in one Set. Broken slots were already absorbed
// downstream; an entirely empty scrape skips the write so that a transient
// site outage cannot pin "no flights" for a whole TTL. Returns the number of
// records written.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	dates := flightstats.ForecastWindow(s.now(), s.daysToFetch)

	type task struct {
		typ  models.FlightType
		date time.Time
	}
	tasks := make([]task, 0, len(flightTypes)*len(dates))
	for _, typ := range flightTypes {
		for _, date := range dates {
			tasks = append(tasks, task{typ: typ, date: date})
		}
	}

	results := make([][]models.Flight, len(tasks))
	fetchErrs := make([]error, len(tasks))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	for i, tk := range tasks {
		wg.Add(1)
		go func(i int, tk task) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i], fetchErrs[i] = s.fetcher.FetchDate(ctx, tk.typ, tk.date)
		}(i, tk)
	}
	wg.Wait()

	for _, err := range fetchErrs {
		if err != nil {
			return 0, errors.Wrap(err, "fetch flight data")
		}
	}

	var all []models.Flight
	for _, r := range results {
		all = append(all, r...)
	}
	if s.dedupe {
		all = dedupeByFlightID(all)
	}

	if len(all) == 0 {
		slog.Warn("refresh produced no flights, keeping previous cache entry")
		return 0, nil
	}

	b, err := json.Marshal(all)
	if err != nil {
		return 0, errors.Wrap(err, "marshal flight aggregate")
	}
	if err := s.cache.Set(ctx, AllFlightsKey, b, s.cacheTTL); err != nil {
		return 0, err
	}

	slog.Info("flight aggregate refreshed", "flights", len(all))
	return len(all), nil
}

// Query returns all cached flights matching (origin, destination, date)
// exactly. On a cache miss it forces at most one refresh; if the aggregate is
// still absent it fails with ErrUnavailable instead of retrying further.
func (s *Service) Query(ctx context.Context, origin, destination, date string) ([]models.Flight, error) {
	if err := s.validate(origin, destination, date); err != nil {
		return nil, err
	}

	b, ok, err := s.cache.Get(ctx, AllFlightsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		slog.Info("flight cache miss, forcing refresh")
		if _, err := s.Refresh(ctx); err != nil {
			return nil, err
		}
		b, ok, err = s.cache.Get(ctx, AllFlightsKey)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrUnavailable
		}
	}

	var all []models.Flight
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, errors.Wrap(err, "unmarshal flight aggregate")
	}

	matches := make([]models.Flight, 0)
	for _, f := range all {
		if f.OriginIATA == origin && f.DestinationIATA == destination && f.DepartureDate == date {
			matches = append(matches, f)
		}
	}
	return matches, nil
}

func (s *Service) validate(origin, destination, date string) error {
	if origin == "" {
		return &ValidationError{Param: "origin", Reason: "required"}
	}
	if destination == "" {
		return &ValidationError{Param: "destination", Reason: "required"}
	}
	if date == "" {
		return &ValidationError{Param: "date", Reason: "required"}
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return &ValidationError{Param: "date", Reason: "must be YYYY-MM-DD"}
	}

	// ISO dates compare correctly as strings.
	from := flightstats.FormatDate(s.now())
	to := flightstats.FormatDate(s.now().AddDate(0, 0, s.daysToFetch-1))
	if date < from || date > to {
		return &DateRangeError{Date: date, From: from, To: to}
	}
	return nil
}

func dedupeByFlightID(flights []models.Flight) []models.Flight {
	seen := make(map[string]struct{}, len(flights))
	out := make([]models.Flight, 0, len(flights))
	for _, f := range flights {
		if _, ok := seen[f.FlightID]; ok {
			continue
		}
		seen[f.FlightID] = struct{}{}
		out = append(out, f)
	}
	return out
}
