package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anc-co2-tracker/models"
)

func newTestAssembler(t *testing.T) *Assembler {
	t.Helper()
	e, _ := newTestEstimator(t)
	return NewAssembler(e, e.logger)
}

func rec(dateStatus, number, status string) *models.FlightRecord {
	return &models.FlightRecord{
		DateStatus:    dateStatus,
		PrimaryNumber: number,
		FlightNumber:  number,
		Airline:       "Alaska Airlines",
		Counterparty:  "Seattle (SEA / KSEA)",
		Status:        status,
		Direction:     models.Arrival,
	}
}

func TestAssembleFiltersDeadStatuses(t *testing.T) {
	a := newTestAssembler(t)
	date := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

	recs := []*models.FlightRecord{
		rec("02 Jan Landed", "AS101", "Landed"),
		rec("02 Jan Cancelled", "AS102", "Cancelled"),
		rec("02 Jan CANCELLED", "AS103", "CANCELLED"),
		rec("02 Jan Unknown", "AS104", "Unknown"),
	}

	out := a.Assemble(date, recs, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "AS101", out[0].PrimaryNumber)
}

func TestAssembleDropsDuplicates(t *testing.T) {
	a := newTestAssembler(t)
	date := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

	recs := []*models.FlightRecord{
		rec("02 Jan Landed", "AS101", "Landed"),
		rec("02 Jan Landed", "AS101", "Landed"),
		rec("02 Jan Landed", "AS102", "Landed"),
	}

	out := a.Assemble(date, recs, nil)
	assert.Len(t, out, 2)
}

func TestAssembleDropsOffDateRows(t *testing.T) {
	a := newTestAssembler(t)
	date := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

	recs := []*models.FlightRecord{
		rec("02 Jan Landed", "AS101", "Landed"),
		rec("03 Jan Landed", "AS102", "Landed"),
		rec("garbage", "AS103", "Landed"),
	}

	out := a.Assemble(date, recs, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "AS101", out[0].PrimaryNumber)
}

func TestAssembleJoinsModelsAndEmissions(t *testing.T) {
	a := newTestAssembler(t)
	date := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

	recs := []*models.FlightRecord{
		rec("02 Jan Landed", "AS101", "Landed"),
		rec("02 Jan Landed", "AS102", "Landed"),
	}
	modelsByNumber := map[string]string{"AS101": "Boeing 737-800"}

	out := a.Assemble(date, recs, modelsByNumber)
	require.Len(t, out, 2)

	assert.Equal(t, "Boeing 737-800", out[0].AircraftModel)
	require.True(t, out[0].CO2Known)
	assert.Greater(t, out[0].CO2Kg, 0)

	// AS102 was never resolved, so its model degrades to Unknown and its
	// emission estimate is the table's explicit zero.
	assert.Equal(t, models.Unknown, out[1].AircraftModel)
	require.True(t, out[1].CO2Known)
	assert.Equal(t, 0, out[1].CO2Kg)
}

func TestAssembleUnresolvableAirport(t *testing.T) {
	a := newTestAssembler(t)
	date := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

	r := rec("02 Jan Landed", "AS101", "Landed")
	r.Counterparty = "Somewhere Remote"

	out := a.Assemble(date, []*models.FlightRecord{r}, nil)
	require.Len(t, out, 1)
	assert.False(t, out[0].CO2Known)
}
