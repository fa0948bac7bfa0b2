package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anc-co2-tracker/config"
	"anc-co2-tracker/models"
	"anc-co2-tracker/storage"
	"anc-co2-tracker/utils"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dataDir := t.TempDir()
	date := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

	w, err := storage.NewGobWriter(filepath.Join(dataDir, "2023-01-02", "2023-01-02_combined.gob"))
	require.NoError(t, err)
	require.NoError(t, w.WriteRun(&models.RunOutput{
		Date:      date,
		Direction: models.Combined,
		Rows: []*models.FlightRecord{
			{FlightNumber: "AS101", Direction: models.Arrival, AircraftModel: "Boeing 737-800", CO2Kg: 1000, CO2Known: true},
			{FlightNumber: "AS102", Direction: models.Departure, AircraftModel: "Boeing 737-800", CO2Kg: 500, CO2Known: true},
			{FlightNumber: "FX88", Direction: models.Arrival, AircraftModel: models.Unknown},
		},
	}))

	s := NewServer(&config.Config{}, utils.NewLogger(), nil, dataDir)
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestIndexServesDashboard(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestFlightsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/flights?date=2023-01-02")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var flights []flightJSON
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&flights))
	require.Len(t, flights, 3)

	require.NotNil(t, flights[0].CO2Kg)
	assert.Equal(t, 1000, *flights[0].CO2Kg)

	// An unknown estimate serializes as null, not zero.
	assert.Nil(t, flights[2].CO2Kg)
}

func TestFlightsBadDate(t *testing.T) {
	srv := newTestServer(t)

	for _, url := range []string{"/api/flights", "/api/flights?date=01-02-2023"} {
		resp, err := http.Get(srv.URL + url)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, url)
	}
}

func TestFlightsMissingDate(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/flights?date=2023-05-05")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSAFEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/saf?date=2023-01-02&pct=20")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got safJSON
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))

	assert.Equal(t, "2023-01-02", got.Date)
	assert.Equal(t, 20, got.SAFPercent)
	assert.Equal(t, 3, got.Flights)
	// 1500 kg total; unknown rows contribute nothing.
	assert.InDelta(t, 1.5, got.TotalCO2Tons, 1e-9)
	assert.InDelta(t, 0.3, got.ReducedCO2Tons, 1e-9)
}

func TestSAFValidatesPercent(t *testing.T) {
	srv := newTestServer(t)

	for _, pct := range []string{"", "-1", "101", "abc"} {
		resp, err := http.Get(srv.URL + "/api/saf?date=2023-01-02&pct=" + pct)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "pct=%q", pct)
	}
}

func TestSAFZeroPercent(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/saf?date=2023-01-02&pct=0")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got safJSON
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.InDelta(t, 0.0, got.ReducedCO2Tons, 1e-9)
}
