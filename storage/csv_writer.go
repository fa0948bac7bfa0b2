package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"anc-co2-tracker/models"
)

// csvHeader defines the durable row schema shared by all output formats.
var csvHeader = []string{
	"date_status", "primary_flight_number", "flight_number",
	"airline", "counterparty", "status", "direction",
	"aircraft_model", "co2_emission_kg",
}

// CSVWriter writes one finalized run to a CSV file. It is safe for
// concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteRun appends every row of the run to the file.
func (c *CSVWriter) WriteRun(out *models.RunOutput) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range out.Rows {
		if err := c.writer.Write(csvRow(r)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func csvRow(r *models.FlightRecord) []string {
	co2 := models.Unknown
	if r.CO2Known {
		co2 = strconv.Itoa(r.CO2Kg)
	}
	return []string{
		r.DateStatus,
		r.PrimaryNumber,
		r.FlightNumber,
		r.Airline,
		r.Counterparty,
		r.Status,
		string(r.Direction),
		r.AircraftModel,
		co2,
	}
}
