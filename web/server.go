package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"anc-co2-tracker/config"
	"anc-co2-tracker/models"
	"anc-co2-tracker/storage"
	"anc-co2-tracker/utils"
)

// FlightSource serves finalized rows for a run date.
type FlightSource interface {
	FetchByDate(date time.Time) ([]*models.FlightRecord, error)
}

// Server is the dashboard: a flight table per run date and a what-if
// sustainable-fuel calculator. It reads from Postgres when available and
// falls back to the run's binary output files.
type Server struct {
	cfg     *config.Config
	logger  *utils.Logger
	source  FlightSource
	dataDir string
}

// NewServer creates a dashboard server. source may be nil, in which case only
// the file fallback is used.
func NewServer(cfg *config.Config, logger *utils.Logger, source FlightSource, dataDir string) *Server {
	return &Server{cfg: cfg, logger: logger, source: source, dataDir: dataDir}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/api/flights", s.handleFlights)
	r.Get("/api/saf", s.handleSAF)

	return r
}

// ListenAndServe blocks serving the dashboard.
func (s *Server) ListenAndServe() error {
	s.logger.Info("[web] Dashboard listening on %s", s.cfg.HTTPAddr)
	return http.ListenAndServe(s.cfg.HTTPAddr, s.Router())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, nil); err != nil {
		s.logger.Error("[web] Render index: %v", err)
	}
}

type flightJSON struct {
	DateStatus    string `json:"date_status"`
	PrimaryNumber string `json:"primary_flight_number"`
	FlightNumber  string `json:"flight_number"`
	Airline       string `json:"airline"`
	Counterparty  string `json:"counterparty"`
	Status        string `json:"status"`
	Direction     string `json:"direction"`
	AircraftModel string `json:"aircraft_model"`
	CO2Kg         *int   `json:"co2_emission_kg"`
}

func (s *Server) handleFlights(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := s.flightsForDate(date)
	if err != nil {
		s.logger.Warn("[web] No data for %s: %v", date.Format("2006-01-02"), err)
		http.Error(w, "no data for date", http.StatusNotFound)
		return
	}

	out := make([]flightJSON, 0, len(rows))
	for _, f := range rows {
		j := flightJSON{
			DateStatus:    f.DateStatus,
			PrimaryNumber: f.PrimaryNumber,
			FlightNumber:  f.FlightNumber,
			Airline:       f.Airline,
			Counterparty:  f.Counterparty,
			Status:        f.Status,
			Direction:     string(f.Direction),
			AircraftModel: f.AircraftModel,
		}
		if f.CO2Known {
			kg := f.CO2Kg
			j.CO2Kg = &kg
		}
		out = append(out, j)
	}

	writeJSON(w, out)
}

type safJSON struct {
	Date           string  `json:"date"`
	SAFPercent     int     `json:"saf_percent"`
	Flights        int     `json:"flights"`
	TotalCO2Tons   float64 `json:"total_co2_metric_tons"`
	ReducedCO2Tons float64 `json:"reduced_co2_metric_tons"`
}

// handleSAF computes the what-if reduction for a sustainable-fuel share:
// reduced_tons = total_kg * pct / 100 / 1000.
func (s *Server) handleSAF(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	pct, err := strconv.Atoi(r.URL.Query().Get("pct"))
	if err != nil || pct < 0 || pct > 100 {
		http.Error(w, "pct must be an integer between 0 and 100", http.StatusBadRequest)
		return
	}

	rows, err := s.flightsForDate(date)
	if err != nil {
		http.Error(w, "no data for date", http.StatusNotFound)
		return
	}

	var totalKg int64
	for _, f := range rows {
		if f.CO2Known {
			totalKg += int64(f.CO2Kg)
		}
	}

	totalTons := float64(totalKg) / 1000
	writeJSON(w, safJSON{
		Date:           date.Format("2006-01-02"),
		SAFPercent:     pct,
		Flights:        len(rows),
		TotalCO2Tons:   totalTons,
		ReducedCO2Tons: totalTons * float64(pct) / 100,
	})
}

// flightsForDate prefers the database, falling back to the combined binary
// output of the run.
func (s *Server) flightsForDate(date time.Time) ([]*models.FlightRecord, error) {
	if s.source != nil {
		rows, err := s.source.FetchByDate(date)
		if err == nil && len(rows) > 0 {
			return rows, nil
		}
		if err != nil {
			s.logger.Debug("[web] Database fetch failed, trying files: %v", err)
		}
	}

	iso := date.Format("2006-01-02")
	out, err := storage.ReadRun(filepath.Join(s.dataDir, iso, iso+"_combined.gob"))
	if err != nil {
		return nil, err
	}
	return out.Rows, nil
}

func parseDateParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Time{}, fmt.Errorf("date query parameter is required (YYYY-MM-DD)")
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
	}
	return date, nil
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
