package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGobWriteAndReadRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "2023-01-02_arrival.gob")

	w, err := NewGobWriter(path)
	require.NoError(t, err)

	run := sampleRun()
	require.NoError(t, w.WriteRun(run))

	got, err := ReadRun(path)
	require.NoError(t, err)

	assert.True(t, got.Date.Equal(run.Date))
	assert.Equal(t, run.Direction, got.Direction)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, run.Rows[0], got.Rows[0])
	assert.False(t, got.Rows[1].CO2Known)
}

func TestReadRunMissingFile(t *testing.T) {
	_, err := ReadRun(filepath.Join(t.TempDir(), "absent.gob"))
	assert.Error(t, err)
}
