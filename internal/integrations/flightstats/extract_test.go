package flightstats

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// pageWithFlights renders a minimal schedule page embedding the given flight
// list JSON the way the live site does.
func pageWithFlights(flightsJSON string) string {
	payload := fmt.Sprintf(`{"props":{"initialState":{"flightTracker":{"route":{"flights":%s}}}}}`, flightsJSON)
	return fmt.Sprintf(`<html><head></head><body><script>window.__NEXT_DATA__ = %s;__NEXT_LOADED_PAGES__ = [];</script></body></html>`, payload)
}

func TestExtractFlights_OK(t *testing.T) {
	html := pageWithFlights(`[
		{"carrier":{"fs":"FR","name":"Ryanair","flightNumber":"3072"},
		 "departureTime":{"time24":"08:00"},"arrivalTime":{"time24":"10:30"},
		 "airport":{"fs":"BCN","city":"Barcelona"},
		 "operatedBy":null,"isCodeshare":false}
	]`)

	flights, err := extractFlights(html)
	require.NoError(t, err)
	require.Len(t, flights, 1)
	require.Equal(t, "FR", flights[0].Carrier.FS)
	require.Equal(t, "3072", flights[0].Carrier.FlightNumber)
	require.Equal(t, "08:00", flights[0].DepartureTime.Time24)
	require.Equal(t, "BCN", flights[0].Airport.FS)
	require.False(t, flights[0].IsCodeshare)
}

func TestExtractFlights_MarkersMissing(t *testing.T) {
	_, err := extractFlights("<html><body>placeholder page</body></html>")
	require.ErrorIs(t, err, ErrMarkersNotFound)

	// Only one marker present.
	_, err = extractFlights("<script>window.__NEXT_DATA__ = {}</script>")
	require.ErrorIs(t, err, ErrMarkersNotFound)
}

func TestExtractFlights_MalformedPayload(t *testing.T) {
	html := `<script>__NEXT_DATA__ = {not json at all;__NEXT_LOADED_PAGES__</script>`
	_, err := extractFlights(html)
	require.ErrorIs(t, err, ErrMalformedPayload)
}

func TestExtractFlights_EmptyRoute(t *testing.T) {
	flights, err := extractFlights(pageWithFlights(`[]`))
	require.NoError(t, err)
	require.Empty(t, flights)
}
