package flightstats

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/BearBump/FlightBoard/internal/models"
)

// browserHeaders mimic a desktop Chrome navigation. The site serves a
// placeholder page without them.
var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Connection":                "keep-alive",
	"Cache-Control":             "max-age=0",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
	"Upgrade-Insecure-Requests": "1",
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

type Client struct {
	baseURL     string
	airport     string
	airportName string
	slots       []int
	httpc       *http.Client

	rl          RateLimiter
	rlPerMinute int64
}

func New(baseURL, airport, airportName string, slots []int) *Client {
	if baseURL == "" {
		baseURL = "https://www.flightstats.com/v2/flight-tracker"
	}
	if len(slots) == 0 {
		slots = []int{0, 6, 12, 18}
	}
	return &Client{
		baseURL:     baseURL,
		airport:     airport,
		airportName: airportName,
		slots:       slots,
		httpc: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// WithRateLimiter paces scrape requests through a shared per-minute budget.
func (c *Client) WithRateLimiter(rl RateLimiter, perMinute int64) *Client {
	c.rl = rl
	c.rlPerMinute = perMinute
	return c
}

// Slots returns the configured hour-of-day slots.
func (c *Client) Slots() []int {
	return c.slots
}

// buildURL maps (type, airport, date, hour slot) onto a schedule page URL.
func (c *Client) buildURL(typ models.FlightType, date time.Time, hour int) string {
	return fmt.Sprintf("%s/%s/%s/?year=%d&month=%d&date=%d&hour=%d",
		c.baseURL, typ, c.airport, date.Year(), int(date.Month()), date.Day(), hour)
}

// FetchDate issues every configured slot fetch for one (type, date) pair
// concurrently and concatenates the results. Broken slots contribute nothing;
// only context cancellation is an error.
func (c *Client) FetchDate(ctx context.Context, typ models.FlightType, date time.Time) ([]models.Flight, error) {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out []models.Flight
	)
	for _, hour := range c.slots {
		wg.Add(1)
		go func(hour int) {
			defer wg.Done()
			flights := c.fetchSlot(ctx, typ, date, hour)
			mu.Lock()
			out = append(out, flights...)
			mu.Unlock()
		}(hour)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// fetchSlot scrapes one schedule page. Any failure (transport, non-2xx,
// extraction, parsing) degrades to an empty result for this slot only, so a
// single broken page cannot abort a wider fetch.
func (c *Client) fetchSlot(ctx context.Context, typ models.FlightType, date time.Time, hour int) []models.Flight {
	u := c.buildURL(typ, date, hour)

	if c.rl != nil && c.rlPerMinute > 0 {
		minuteKey := fmt.Sprintf("rl:flightstats:%s", time.Now().UTC().Format("200601021504"))
		allowed, n, err := c.rl.Allow(ctx, minuteKey, c.rlPerMinute, 70*time.Second)
		if err != nil {
			slog.Error("scrape rate limiter", "error", err.Error())
		} else if !allowed {
			slog.Warn("scrape rate limit exceeded", "count", n)
			time.Sleep(500 * time.Millisecond)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		slog.Error("build scrape request", "url", u, "error", err.Error())
		return nil
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		slog.Error("scrape request failed", "url", u, "error", err.Error())
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		slog.Error("scrape request non-2xx", "url", u, "status", resp.StatusCode)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("read scrape response", "url", u, "error", err.Error())
		return nil
	}

	raws, err := extractFlights(string(body))
	if err != nil {
		slog.Error("extract flight data", "url", u, "error", err.Error())
		return nil
	}

	anchorDate := FormatDate(date)
	out := make([]models.Flight, 0, len(raws))
	for _, raw := range raws {
		if raw.IsCodeshare {
			continue
		}
		out = append(out, transformFlight(raw, typ, anchorDate, c.airport, c.airportName))
	}
	return out
}
