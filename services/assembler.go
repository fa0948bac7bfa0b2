package services

import (
	"strings"
	"time"

	"anc-co2-tracker/models"
	"anc-co2-tracker/utils"
)

// Assembler finalizes a run: it filters out dead rows, joins the aircraft
// models resolved by the enrichment phase, attaches emission estimates, and
// re-filters by run date in case the source page mixed adjacent days into one
// window.
type Assembler struct {
	estimator *EmissionsEstimator
	logger    *utils.Logger
}

// NewAssembler creates an Assembler using the given estimator.
func NewAssembler(estimator *EmissionsEstimator, logger *utils.Logger) *Assembler {
	return &Assembler{estimator: estimator, logger: logger}
}

// Assemble produces the finalized row set for one (date, direction) scrape.
// modelsByNumber maps primary flight numbers to aircraft models; numbers
// missing from the map degrade to Unknown.
func (a *Assembler) Assemble(date time.Time, recs []*models.FlightRecord, modelsByNumber map[string]string) []*models.FlightRecord {
	targetDate := date.Format("02 Jan")

	seen := make(map[string]struct{}, len(recs))
	result := make([]*models.FlightRecord, 0, len(recs))

	var droppedStatus, droppedDup, droppedDate int
	for _, rec := range recs {
		status := strings.ToLower(rec.Status)
		if status == "unknown" || status == "cancelled" {
			droppedStatus++
			continue
		}

		key := strings.Join([]string{
			rec.DateStatus, rec.PrimaryNumber, rec.FlightNumber,
			rec.Airline, rec.Counterparty, rec.Status,
		}, "\x1f")
		if _, dup := seen[key]; dup {
			droppedDup++
			continue
		}
		seen[key] = struct{}{}

		if extractDate(rec.DateStatus) != targetDate {
			droppedDate++
			continue
		}

		model, ok := modelsByNumber[rec.PrimaryNumber]
		if !ok || model == "" {
			model = models.Unknown
		}
		rec.AircraftModel = model

		rec.CO2Kg, rec.CO2Known = a.estimator.Estimate(rec)
		result = append(result, rec)
	}

	a.logger.Info("[assembler] %d rows kept (dropped: %d status, %d duplicate, %d off-date)",
		len(result), droppedStatus, droppedDup, droppedDate)
	return result
}

// extractDate returns the "02 Jan" date portion of the raw date+status text.
func extractDate(dateStatus string) string {
	fields := strings.Fields(dateStatus)
	if len(fields) < 2 {
		return ""
	}
	return fields[0] + " " + fields[1]
}
