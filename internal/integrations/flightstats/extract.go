package flightstats

import (
	"encoding/json"
	"strings"

	"github.com/BearBump/FlightBoard/internal/models"
	"github.com/pkg/errors"
)

// The schedule pages are server-rendered Next.js documents. The flight list
// lives in a script-tag assignment between these two literal markers. This is
// an unversioned contract with the site: when its markup changes, extraction
// fails with ErrMarkersNotFound.
const (
	startMarker = "__NEXT_DATA__ = "
	endMarker   = ";__NEXT_LOADED_PAGES__"
)

var (
	ErrMarkersNotFound  = errors.New("flight data markers not found in page")
	ErrMalformedPayload = errors.New("embedded flight payload is not valid JSON")
)

type nextData struct {
	Props struct {
		InitialState struct {
			FlightTracker struct {
				Route struct {
					Flights []models.RawFlight `json:"flights"`
				} `json:"route"`
			} `json:"flightTracker"`
		} `json:"initialState"`
	} `json:"props"`
}

// extractFlights slices the JSON blob strictly between the markers and
// decodes the raw flight list out of it.
func extractFlights(html string) ([]models.RawFlight, error) {
	start := strings.Index(html, startMarker)
	end := strings.Index(html, endMarker)
	if start == -1 || end == -1 || end < start+len(startMarker) {
		return nil, ErrMarkersNotFound
	}

	payload := html[start+len(startMarker) : end]

	var data nextData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, errors.Wrap(ErrMalformedPayload, err.Error())
	}
	return data.Props.InitialState.FlightTracker.Route.Flights, nil
}
