package schedule

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnavailable means the cache stayed empty after the single forced
// refresh: the scrape source is down or serving pages we cannot read.
var ErrUnavailable = errors.New("flight data temporarily unavailable")

// ValidationError rejects a missing or malformed query parameter.
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Param, e.Reason)
}

// DateRangeError rejects a syntactically valid date outside the forecast
// window.
type DateRangeError struct {
	Date string
	From string
	To   string
}

func (e *DateRangeError) Error() string {
	return fmt.Sprintf("date %s is outside the available range [%s, %s]", e.Date, e.From, e.To)
}
