package flightstats

import "time"

const dateLayout = "2006-01-02"

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// NextDay shifts a YYYY-MM-DD date one calendar day forward. Unparseable
// input is returned unchanged.
func NextDay(date string) string {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return FormatDate(t.AddDate(0, 0, 1))
}

// PreviousDay shifts a YYYY-MM-DD date one calendar day back.
func PreviousDay(date string) string {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return FormatDate(t.AddDate(0, 0, -1))
}

// ForecastWindow returns days consecutive dates starting at now's calendar day.
func ForecastWindow(now time.Time, days int) []time.Time {
	out := make([]time.Time, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, now.AddDate(0, 0, i))
	}
	return out
}
