package flightstats

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BearBump/FlightBoard/internal/models"
)

const logoURLFormat = "https://cdn.jsdelivr.net/gh/spydogenesis/airlines-logo@latest/airlines-logo/200x200_v2/%s.png"

// rolloverClass captures which date-rollover rule applies to a scraped entry.
// The schedule pages anchor every entry to a single local calendar day, so
// overnight flights need explicit correction.
type rolloverClass int

const (
	rolloverSameDay rolloverClass = iota

	// Arrival between 00:00 and 06:00 on an arrivals page: the departure
	// happened the day before the anchor date.
	rolloverEarlyMorningArrival

	// Arrival between 22:00 and 23:59 on an arrivals page: both legs belong
	// to the day before the anchor date.
	rolloverLateNightArrival

	// Departures page, arrival time earlier than departure time: wraparound
	// past midnight, arrival is the day after the anchor date.
	rolloverOvernightDeparture
)

func classifyRollover(typ models.FlightType, departure, arrival string) rolloverClass {
	if typ == models.FlightTypeArrivals {
		switch {
		case arrival >= "00:00" && arrival <= "06:00":
			return rolloverEarlyMorningArrival
		case arrival >= "22:00" && arrival <= "23:59":
			return rolloverLateNightArrival
		}
		return rolloverSameDay
	}
	if arrival < departure {
		return rolloverOvernightDeparture
	}
	return rolloverSameDay
}

// minutesOfDay converts HH:MM to minutes since midnight. Malformed input
// yields whatever the partial parse produces, never an error.
func minutesOfDay(hhmm string) int {
	h, m, _ := strings.Cut(hhmm, ":")
	hours, _ := strconv.Atoi(h)
	minutes, _ := strconv.Atoi(m)
	return hours*60 + minutes
}

// duration computes flight duration in minutes. datesDiffer adds a day for
// overnight legs, which is only correct for single-day rollovers.
func duration(departure, arrival string, datesDiffer bool) int {
	d := minutesOfDay(arrival) - minutesOfDay(departure)
	if datesDiffer || d < 0 {
		d += 1440
	}
	return d
}

// transformFlight flattens one raw entry into a canonical record: rollover
// resolution, duration, endpoint orientation and carrier normalization.
// anchorDate is the YYYY-MM-DD day the scrape was issued for.
func transformFlight(raw models.RawFlight, typ models.FlightType, anchorDate, airport, airportName string) models.Flight {
	departureTime := raw.DepartureTime.Time24
	arrivalTime := raw.ArrivalTime.Time24

	departureDate := anchorDate
	arrivalDate := anchorDate
	switch classifyRollover(typ, departureTime, arrivalTime) {
	case rolloverEarlyMorningArrival:
		departureDate = PreviousDay(anchorDate)
	case rolloverLateNightArrival:
		departureDate = PreviousDay(anchorDate)
		arrivalDate = PreviousDay(anchorDate)
	case rolloverOvernightDeparture:
		arrivalDate = NextDay(anchorDate)
	}

	originIATA, destinationIATA := raw.Airport.FS, airport
	originName, destinationName := raw.Airport.City, airportName
	if typ == models.FlightTypeDepartures {
		originIATA, destinationIATA = airport, raw.Airport.FS
		originName, destinationName = airportName, raw.Airport.City
	}

	code := NormalizeCarrierCode(raw.Carrier.FS)
	flightCode := code + raw.Carrier.FlightNumber

	return models.Flight{
		FlightID:        fmt.Sprintf("%s_%s", flightCode, departureDate),
		OriginIATA:      originIATA,
		DestinationIATA: destinationIATA,
		OriginName:      originName,
		DestinationName: destinationName,
		Departure:       departureTime,
		Arrival:         arrivalTime,
		DepartureDate:   departureDate,
		ArrivalDate:     arrivalDate,
		Duration:        duration(departureTime, arrivalTime, departureDate != arrivalDate),
		Company:         raw.Carrier.Name,
		CompanyLogo:     fmt.Sprintf(logoURLFormat, code),
		Flight:          flightCode,
	}
}
