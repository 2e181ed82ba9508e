package models

type FlightType string

const (
	FlightTypeArrivals   FlightType = "arrivals"
	FlightTypeDepartures FlightType = "departures"
)

// Flight is the canonical, self-contained record we cache and serve.
// Identity is FlightID (carrier code + flight number + departure date).
type Flight struct {
	FlightID        string `json:"flight_id"`
	OriginIATA      string `json:"origin_iata"`
	DestinationIATA string `json:"destination_iata"`
	OriginName      string `json:"origin_name"`
	DestinationName string `json:"destination_name"`
	Departure       string `json:"departure"`
	Arrival         string `json:"arrival"`
	DepartureDate   string `json:"departure_date"`
	ArrivalDate     string `json:"arrival_date"`
	Duration        int    `json:"duration"`
	Company         string `json:"company"`
	CompanyLogo     string `json:"company_logo"`
	Flight          string `json:"flight"`
}

// RawFlight mirrors one entry of the flight list embedded in a flightstats
// page. Field names follow the site payload, not our conventions.
type RawFlight struct {
	Carrier struct {
		FS           string `json:"fs"`
		Name         string `json:"name"`
		FlightNumber string `json:"flightNumber"`
	} `json:"carrier"`
	DepartureTime struct {
		Time24 string `json:"time24"`
	} `json:"departureTime"`
	ArrivalTime struct {
		Time24 string `json:"time24"`
	} `json:"arrivalTime"`
	Airport struct {
		FS   string `json:"fs"`
		City string `json:"city"`
	} `json:"airport"`
	OperatedBy  *string `json:"operatedBy"`
	IsCodeshare bool    `json:"isCodeshare"`
}
