package services

import (
	"embed"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/umahmood/haversine"
)

//go:embed data/airports.csv
var airportsFS embed.FS

// AirportIndex resolves IATA codes to coordinates. It is immutable after
// LoadAirports and safe to share across goroutines without locking.
type AirportIndex struct {
	coords map[string]haversine.Coord
}

// LoadAirports parses the embedded airport dataset.
func LoadAirports() (*AirportIndex, error) {
	f, err := airportsFS.Open("data/airports.csv")
	if err != nil {
		return nil, fmt.Errorf("airports: open dataset: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("airports: parse dataset: %w", err)
	}

	idx := &AirportIndex{coords: make(map[string]haversine.Coord, len(records))}
	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		if len(rec) < 4 {
			return nil, fmt.Errorf("airports: row %d has %d columns", i, len(rec))
		}
		lat, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("airports: row %d lat: %w", i, err)
		}
		lon, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("airports: row %d lon: %w", i, err)
		}
		idx.coords[strings.ToUpper(rec[0])] = haversine.Coord{Lat: lat, Lon: lon}
	}

	return idx, nil
}

// Coords resolves an IATA code to latitude/longitude.
func (a *AirportIndex) Coords(iata string) (lat, lon float64, ok bool) {
	c, ok := a.coords[strings.ToUpper(iata)]
	if !ok {
		return 0, 0, false
	}
	return c.Lat, c.Lon, true
}

// DistanceKm returns the great-circle distance between two points.
func (a *AirportIndex) DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: lat1, Lon: lon1},
		haversine.Coord{Lat: lat2, Lon: lon2},
	)
	return km
}

// Size returns the number of airports in the index.
func (a *AirportIndex) Size() int {
	return len(a.coords)
}
