package services

import (
	"fmt"
	"sort"
	"strings"

	"anc-co2-tracker/models"
	"anc-co2-tracker/utils"
)

// RunReport holds the computed totals over one finalized run.
type RunReport struct {
	TotalRows        int
	Arrivals         int
	Departures       int
	TotalCO2Kg       int64
	UnknownEmissions int
	SkippedWindows   int
	FlightsByAirport map[string]int
	Heaviest         *models.FlightRecord
}

type SummaryService struct {
	logger *utils.Logger
}

func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

func (s *SummaryService) Generate(rows []*models.FlightRecord, skippedWindows int) *RunReport {
	report := &RunReport{
		FlightsByAirport: make(map[string]int),
		SkippedWindows:   skippedWindows,
	}

	for _, r := range rows {
		report.TotalRows++
		switch r.Direction {
		case models.Arrival:
			report.Arrivals++
		case models.Departure:
			report.Departures++
		}

		if !r.CO2Known {
			report.UnknownEmissions++
			continue
		}
		report.TotalCO2Kg += int64(r.CO2Kg)
		if report.Heaviest == nil || r.CO2Kg > report.Heaviest.CO2Kg {
			report.Heaviest = r
		}

		if iata, ok := ParseIATA(r.Counterparty); ok {
			report.FlightsByAirport[iata]++
		}
	}

	return report
}

func (s *SummaryService) Print(r *RunReport) {
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n  RUN SUMMARY\n  %s\n", thin)
	fmt.Printf("  Flights kept       : %d (%d arrivals, %d departures)\n",
		r.TotalRows, r.Arrivals, r.Departures)
	fmt.Printf("  Total CO2          : %.2f metric tons\n", float64(r.TotalCO2Kg)/1000)
	fmt.Printf("  Unknown emissions  : %d rows\n", r.UnknownEmissions)
	if r.SkippedWindows > 0 {
		fmt.Printf("  Skipped windows    : %d (partial-day data)\n", r.SkippedWindows)
	}

	if r.Heaviest != nil {
		fmt.Printf("  Heaviest flight    : %s (%s), %d kg\n",
			r.Heaviest.FlightNumber, r.Heaviest.AircraftModel, r.Heaviest.CO2Kg)
	}

	if len(r.FlightsByAirport) > 0 {
		type airportCount struct {
			iata  string
			count int
		}
		var counts []airportCount
		for iata, n := range r.FlightsByAirport {
			counts = append(counts, airportCount{iata, n})
		}
		sort.Slice(counts, func(i, j int) bool {
			if counts[i].count != counts[j].count {
				return counts[i].count > counts[j].count
			}
			return counts[i].iata < counts[j].iata
		})
		if len(counts) > 5 {
			counts = counts[:5]
		}

		fmt.Printf("  Top airports       :")
		for _, ac := range counts {
			fmt.Printf(" %s(%d)", ac.iata, ac.count)
		}
		fmt.Println()
	}
	fmt.Println()
}
