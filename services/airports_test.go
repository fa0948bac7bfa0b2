package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAirports(t *testing.T) {
	idx, err := LoadAirports()
	require.NoError(t, err)
	assert.Greater(t, idx.Size(), 250)

	// Long-haul counterparties resolve, not just the Pacific cargo hubs.
	for _, iata := range []string{"SYD", "JNB", "GRU", "DEL", "ADK"} {
		_, _, ok := idx.Coords(iata)
		assert.True(t, ok, iata)
	}
}

func TestCoordsLookup(t *testing.T) {
	idx, err := LoadAirports()
	require.NoError(t, err)

	lat, lon, ok := idx.Coords("SEA")
	require.True(t, ok)
	assert.InDelta(t, 47.4489, lat, 0.01)
	assert.InDelta(t, -122.3094, lon, 0.01)

	// case-insensitive
	_, _, ok = idx.Coords("anc")
	assert.True(t, ok)

	_, _, ok = idx.Coords("ZZZ")
	assert.False(t, ok)
}

func TestDistanceSymmetric(t *testing.T) {
	idx, err := LoadAirports()
	require.NoError(t, err)

	aLat, aLon, ok := idx.Coords("ANC")
	require.True(t, ok)
	bLat, bLon, ok := idx.Coords("SEA")
	require.True(t, ok)

	d1 := idx.DistanceKm(aLat, aLon, bLat, bLon)
	d2 := idx.DistanceKm(bLat, bLon, aLat, aLon)
	assert.InDelta(t, d1, d2, 1e-9)

	// ANC–SEA is roughly 2300 km great-circle
	assert.Greater(t, d1, 2200.0)
	assert.Less(t, d1, 2450.0)
}

func TestDistanceZeroForSamePoint(t *testing.T) {
	idx, err := LoadAirports()
	require.NoError(t, err)

	lat, lon, ok := idx.Coords("ANC")
	require.True(t, ok)
	assert.True(t, math.Abs(idx.DistanceKm(lat, lon, lat, lon)) < 1e-9)
}
