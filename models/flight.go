package models

import "time"

// Direction of a scraped listing relative to the home airport.
type Direction string

const (
	Arrival   Direction = "arrival"
	Departure Direction = "departure"

	// Combined labels the merged arrivals+departures output of a run;
	// individual rows keep their own direction.
	Combined Direction = "combined"
)

// Unknown is the sentinel used wherever a scraped or derived field could not
// be resolved. It is a terminal value, never a retry trigger.
const Unknown = "Unknown"

// FlightRecord is one scraped listing row. It is created by the listing
// parser, enriched in place with the aircraft model, finalized with the CO2
// estimate by the assembler, and immutable afterwards.
type FlightRecord struct {
	DateStatus    string // raw date + status text as shown by the source page, e.g. "02 Jan Landed"
	PrimaryNumber string // the operator's own flight number; lookups are keyed by this
	FlightNumber  string // canonical number shown to the user (codeshare if present)
	Airline       string
	Counterparty  string // origin for arrivals, destination for departures; contains an IATA code in parentheses
	Status        string
	Direction     Direction

	AircraftModel string
	CO2Kg         int  // valid only when CO2Known
	CO2Known      bool // false means the estimate degraded to Unknown
}

// RunOutput is the finalized row collection for one (date, direction) pair.
// Direction "combined" is used for the merged arrivals+departures set.
type RunOutput struct {
	Date      time.Time
	Direction Direction
	Rows      []*FlightRecord
}

// TailInfo is the result of a tail-number lookup.
type TailInfo struct {
	Manufacturer string
	Model        string
}
