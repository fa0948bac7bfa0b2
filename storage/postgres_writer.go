package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"anc-co2-tracker/models"
)

// PostgresWriter persists finalized flight rows to PostgreSQL so the
// dashboard can query across run dates.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS flights (
			id                    SERIAL PRIMARY KEY,
			run_date              DATE         NOT NULL,
			direction             VARCHAR(12)  NOT NULL,
			date_status           TEXT         NOT NULL DEFAULT '',
			primary_flight_number TEXT         NOT NULL DEFAULT '',
			flight_number         TEXT         NOT NULL DEFAULT '',
			airline               TEXT         NOT NULL DEFAULT '',
			counterparty          TEXT         NOT NULL DEFAULT '',
			status                TEXT         NOT NULL DEFAULT '',
			aircraft_model        TEXT         NOT NULL DEFAULT '',
			co2_kg                INTEGER,
			created_at            TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_flights_run_date  ON flights(run_date);
		CREATE INDEX IF NOT EXISTS idx_flights_direction ON flights(direction);
		CREATE INDEX IF NOT EXISTS idx_flights_number    ON flights(flight_number);
	`)
	return err
}

// WriteRun replaces any previously stored rows for the run's (date,
// direction) pair, then batch-inserts the new ones.
func (pw *PostgresWriter) WriteRun(out *models.RunOutput) error {
	if _, err := pw.db.Exec(
		"DELETE FROM flights WHERE run_date = $1 AND direction = $2",
		out.Date, string(out.Direction),
	); err != nil {
		return fmt.Errorf("postgres: clear run: %w", err)
	}

	const batchSize = 50
	for i := 0; i < len(out.Rows); i += batchSize {
		end := i + batchSize
		if end > len(out.Rows) {
			end = len(out.Rows)
		}
		if err := pw.insertBatch(out, out.Rows[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(out *models.RunOutput, batch []*models.FlightRecord) error {
	const cols = 10
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, r := range batch {
		base := idx * cols
		placeholders := make([]string, cols)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		var co2 sql.NullInt64
		if r.CO2Known {
			co2 = sql.NullInt64{Int64: int64(r.CO2Kg), Valid: true}
		}
		valueArgs = append(valueArgs,
			out.Date, string(r.Direction), r.DateStatus, r.PrimaryNumber,
			r.FlightNumber, r.Airline, r.Counterparty, r.Status,
			r.AircraftModel, co2)
	}

	query := fmt.Sprintf(`
		INSERT INTO flights (run_date, direction, date_status, primary_flight_number,
			flight_number, airline, counterparty, status, aircraft_model, co2_kg)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	if err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

// FetchByDate retrieves all stored rows for one run date, both directions.
func (pw *PostgresWriter) FetchByDate(date time.Time) ([]*models.FlightRecord, error) {
	rows, err := pw.db.Query(`
		SELECT direction, date_status, primary_flight_number, flight_number,
		       airline, counterparty, status, aircraft_model, co2_kg
		FROM flights
		WHERE run_date = $1
		ORDER BY id
	`, date)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch by date: %w", err)
	}
	defer rows.Close()

	var records []*models.FlightRecord
	for rows.Next() {
		r := &models.FlightRecord{}
		var direction string
		var co2 sql.NullInt64
		if err := rows.Scan(
			&direction, &r.DateStatus, &r.PrimaryNumber, &r.FlightNumber,
			&r.Airline, &r.Counterparty, &r.Status, &r.AircraftModel, &co2,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		r.Direction = models.Direction(direction)
		if co2.Valid {
			r.CO2Kg = int(co2.Int64)
			r.CO2Known = true
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
