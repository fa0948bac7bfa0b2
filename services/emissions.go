package services

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"
	"sync"

	"anc-co2-tracker/models"
	"anc-co2-tracker/utils"
)

var boeingCodeRegexp = regexp.MustCompile(`^B\d+`)

// MissingModelLog collects aircraft model names with no known emissions
// factor in an append-only side file for later curation. Duplicates are
// suppressed for the lifetime of the process.
type MissingModelLog struct {
	mu     sync.Mutex
	path   string
	seen   *utils.StringSet
	logger *utils.Logger
}

// NewMissingModelLog seeds the duplicate filter from any existing file so
// repeated runs do not re-append the same models.
func NewMissingModelLog(path string, logger *utils.Logger) *MissingModelLog {
	m := &MissingModelLog{path: path, seen: utils.NewStringSet(), logger: logger}
	if data, err := os.ReadFile(path); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				m.seen.Add(line)
			}
		}
	}
	return m
}

// Record appends the model name to the side file if it has not been seen.
func (m *MissingModelLog) Record(model string) {
	if model == "" || !m.seen.Add(model) {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := os.OpenFile(m.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		m.logger.Warn("[emissions] Could not open missing-models file: %v", err)
		return
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, model); err != nil {
		m.logger.Warn("[emissions] Could not append to missing-models file: %v", err)
	}
}

// EmissionsEstimator maps a flight to an estimated CO2 mass from great-circle
// distance and a per-model emissions factor. Missing data always degrades to
// an Unknown result or an averaged estimate, never an error.
type EmissionsEstimator struct {
	airports *AirportIndex
	homeIATA string
	missing  *MissingModelLog
	logger   *utils.Logger

	avgBoeing float64
	avgAirbus float64
	avgOther  float64
}

// NewEmissionsEstimator computes the manufacturer-family fallback averages
// once up front; the factor table is read-only afterwards.
func NewEmissionsEstimator(airports *AirportIndex, homeIATA string, missing *MissingModelLog, logger *utils.Logger) *EmissionsEstimator {
	e := &EmissionsEstimator{
		airports: airports,
		homeIATA: homeIATA,
		missing:  missing,
		logger:   logger,
	}

	var boeingSum, airbusSum, otherSum float64
	var boeingN, airbusN, otherN int
	for model, factor := range co2PerKm {
		switch {
		case strings.Contains(model, "Boeing"):
			boeingSum += factor
			boeingN++
		case strings.Contains(model, "Airbus"):
			airbusSum += factor
			airbusN++
		default:
			otherSum += factor
			otherN++
		}
	}
	e.avgBoeing = boeingSum / float64(boeingN)
	e.avgAirbus = airbusSum / float64(airbusN)
	e.avgOther = otherSum / float64(otherN)

	return e
}

// ParseIATA extracts the IATA code from counterparty-airport free text such
// as "Seattle (SEA / KSEA)". The code is the text between the first '(' and
// whichever of ')' or ' / ' comes first.
func ParseIATA(counterparty string) (string, bool) {
	open := strings.Index(counterparty, "(")
	if open < 0 {
		return "", false
	}
	rest := counterparty[open+1:]

	end := len(rest)
	if i := strings.Index(rest, ")"); i >= 0 && i < end {
		end = i
	}
	if i := strings.Index(rest, " / "); i >= 0 && i < end {
		end = i
	}

	code := strings.TrimSpace(rest[:end])
	if code == "" {
		return "", false
	}
	return code, true
}

// Estimate returns the estimated CO2 mass in kilograms for one flight, or
// ok=false when the counterparty airport cannot be resolved.
func (e *EmissionsEstimator) Estimate(rec *models.FlightRecord) (int, bool) {
	counterIATA, ok := ParseIATA(rec.Counterparty)
	if !ok {
		e.logger.Debug("[emissions] No IATA code in counterparty text %q", rec.Counterparty)
		return 0, false
	}

	homeLat, homeLon, ok := e.airports.Coords(e.homeIATA)
	if !ok {
		e.logger.Warn("[emissions] Home airport %s missing from index", e.homeIATA)
		return 0, false
	}
	counterLat, counterLon, ok := e.airports.Coords(counterIATA)
	if !ok {
		e.logger.Warn("[emissions] Could not find coordinates for airport %s", counterIATA)
		return 0, false
	}

	distance := e.airports.DistanceKm(homeLat, homeLon, counterLat, counterLon)
	factor := e.factorFor(rec.AircraftModel)

	return int(math.Round(distance * factor)), true
}

// factorFor looks up the per-km factor for a model, falling back to the
// manufacturer-family average for models missing from the table.
func (e *EmissionsEstimator) factorFor(model string) float64 {
	if factor, ok := co2PerKm[model]; ok {
		return factor
	}

	e.logger.Warn("[emissions] No CO2 factor for aircraft model %q, using family average", model)
	e.missing.Record(model)

	switch {
	case strings.Contains(model, "Boeing") || boeingCodeRegexp.MatchString(model):
		return e.avgBoeing
	case strings.Contains(model, "Airbus"):
		return e.avgAirbus
	default:
		return e.avgOther
	}
}
