package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"anc-co2-tracker/config"
	"anc-co2-tracker/models"
	"anc-co2-tracker/scraper/aerobase"
	"anc-co2-tracker/scraper/flightera"
	"anc-co2-tracker/scraper/radarbox"
	"anc-co2-tracker/services"
	"anc-co2-tracker/storage"
	"anc-co2-tracker/utils"
	"anc-co2-tracker/web"
)

func main() {
	dateFlag := flag.String("date", time.Now().AddDate(0, 0, -1).Format("2006-01-02"),
		"run date to scrape (YYYY-MM-DD)")
	outFlag := flag.String("out", "", "output directory (overrides OUTPUT_DIR)")
	serveFlag := flag.Bool("serve", false, "serve the dashboard instead of scraping")
	tailsFlag := flag.String("tails", "", "CSV of tail numbers to enrich instead of scraping")
	flag.Parse()

	logger := utils.NewLogger()
	cfg := config.Load()
	if *outFlag != "" {
		cfg.OutputDir = *outFlag
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancelling the root context tears down any live browser session, so
	// the browser is released however the run terminates.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Warn("Received interrupt signal, shutting down")
		cancel()
	}()

	switch {
	case *serveFlag:
		runServe(cfg, logger)
	case *tailsFlag != "":
		runTailLookup(ctx, cfg, logger, *tailsFlag)
	default:
		runScrape(ctx, cfg, logger, *dateFlag)
	}
}

func runScrape(ctx context.Context, cfg *config.Config, logger *utils.Logger, dateStr string) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		logger.Error("Invalid -date %q, want YYYY-MM-DD: %v", dateStr, err)
		os.Exit(1)
	}

	logger.Info("=== CO2 Emissions Tracker starting ===")
	logger.Info("Run date %s | home airport %s | output %s", dateStr, cfg.HomeIATA, cfg.OutputDir)

	airports, err := services.LoadAirports()
	if err != nil {
		logger.Error("Failed to load airport index: %v", err)
		os.Exit(1)
	}
	logger.Info("Airport index loaded: %d airports", airports.Size())

	missing := services.NewMissingModelLog(cfg.MissingModelsPath, logger)
	estimator := services.NewEmissionsEstimator(airports, cfg.HomeIATA, missing, logger)
	assembler := services.NewAssembler(estimator, logger)

	pg, err := storage.NewPostgresWriter(cfg.DSN())
	if err != nil {
		logger.Warn("PostgreSQL unavailable, continuing with file outputs only: %v", err)
		pg = nil
	} else {
		defer pg.Close()
	}

	type dirResult struct {
		rows    []*models.FlightRecord
		skipped int
		err     error
	}

	// Each direction drives its own exclusively-owned browser session; the
	// two directions never share one.
	results := make(map[models.Direction]*dirResult)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, dir := range []models.Direction{models.Arrival, models.Departure} {
		dir := dir
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows, skipped, err := runDirection(ctx, cfg, logger, assembler, date, dir)
			mu.Lock()
			results[dir] = &dirResult{rows: rows, skipped: skipped, err: err}
			mu.Unlock()
		}()
	}
	wg.Wait()

	var combined []*models.FlightRecord
	skippedTotal := 0
	failures := 0
	for dir, res := range results {
		if res.err != nil {
			logger.Error("%s run failed: %v", dir, res.err)
			failures++
			continue
		}
		combined = append(combined, res.rows...)
		skippedTotal += res.skipped

		if pg != nil {
			out := &models.RunOutput{Date: date, Direction: dir, Rows: res.rows}
			if err := pg.WriteRun(out); err != nil {
				logger.Error("PostgreSQL write failed for %s: %v", dir, err)
			}
		}
	}

	if len(combined) == 0 {
		logger.Error("No flights were scraped. Exiting.")
		os.Exit(1)
	}

	combinedOut := &models.RunOutput{Date: date, Direction: models.Combined, Rows: combined}
	if err := writeRunFiles(cfg, logger, combinedOut); err != nil {
		logger.Error("Combined output failed: %v", err)
	}

	summary := services.NewSummaryService(logger)
	summary.Print(summary.Generate(combined, skippedTotal))

	fmt.Printf("  Done. Outputs → %s\n\n", filepath.Join(cfg.OutputDir, dateStr))

	if failures == len(results) {
		os.Exit(1)
	}
}

// runDirection scrapes, enriches, assembles, and persists one flight
// direction for the run date.
func runDirection(ctx context.Context, cfg *config.Config, logger *utils.Logger,
	assembler *services.Assembler, date time.Time, dir models.Direction) ([]*models.FlightRecord, int, error) {

	session, err := flightera.NewSession(ctx, cfg, logger)
	if err != nil {
		return nil, 0, err
	}
	defer session.Release()

	scraper := flightera.New(cfg, logger, session)
	recs, skipped, err := scraper.Scrape(ctx, date.Format("2006-01-02"), dir)
	if err != nil {
		return nil, skipped, err
	}

	// The browser is only needed for the fetch phase.
	session.Release()

	numbers := make([]string, 0, len(recs))
	for _, r := range recs {
		numbers = append(numbers, r.PrimaryNumber)
	}

	logger.Info("[%s] Enriching %d rows with aircraft models", dir, len(recs))
	modelsByNumber := radarbox.New(cfg, logger).LookupAll(ctx, numbers)

	rows := assembler.Assemble(date, recs, modelsByNumber)

	out := &models.RunOutput{Date: date, Direction: dir, Rows: rows}
	if err := writeRunFiles(cfg, logger, out); err != nil {
		return rows, skipped, err
	}

	return rows, skipped, nil
}

// writeRunFiles persists one run to both durable formats.
func writeRunFiles(cfg *config.Config, logger *utils.Logger, out *models.RunOutput) error {
	iso := out.Date.Format("2006-01-02")
	base := filepath.Join(cfg.OutputDir, iso, fmt.Sprintf("%s_%s", iso, out.Direction))

	csvWriter, err := storage.NewCSVWriter(base + ".csv")
	if err != nil {
		return err
	}
	gobWriter, err := storage.NewGobWriter(base + ".gob")
	if err != nil {
		_ = csvWriter.Close()
		return err
	}

	for _, w := range []storage.RunWriter{csvWriter, gobWriter} {
		if err := w.WriteRun(out); err != nil {
			_ = csvWriter.Close()
			return err
		}
	}
	if err := csvWriter.Close(); err != nil {
		return err
	}

	logger.Info("[%s] Saved %d rows to %s.{csv,gob}", out.Direction, len(out.Rows), base)
	return nil
}

func runServe(cfg *config.Config, logger *utils.Logger) {
	var source web.FlightSource
	if pg, err := storage.NewPostgresWriter(cfg.DSN()); err != nil {
		logger.Warn("PostgreSQL unavailable, dashboard will read run files only: %v", err)
	} else {
		defer pg.Close()
		source = pg
	}

	server := web.NewServer(cfg, logger, source, cfg.OutputDir)
	if err := server.ListenAndServe(); err != nil {
		logger.Error("Dashboard server failed: %v", err)
		os.Exit(1)
	}
}

// runTailLookup enriches a CSV of tail numbers with manufacturer and model.
func runTailLookup(ctx context.Context, cfg *config.Config, logger *utils.Logger, path string) {
	tails, err := readTailNumbers(path)
	if err != nil {
		logger.Error("Failed to read tail numbers from %s: %v", path, err)
		os.Exit(1)
	}
	logger.Info("Looking up %d tail numbers", len(tails))

	results := aerobase.New(cfg, logger).LookupAll(ctx, tails)

	outPath := filepath.Join(cfg.OutputDir, "tail_models.csv")
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		logger.Error("Failed to create output dir: %v", err)
		os.Exit(1)
	}
	f, err := os.Create(outPath)
	if err != nil {
		logger.Error("Failed to create %s: %v", outPath, err)
		os.Exit(1)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	_ = w.Write([]string{"tail_number", "manufacturer", "model"})
	for _, tail := range tails {
		info := results[tail]
		_ = w.Write([]string{tail, info.Manufacturer, info.Model})
	}
	w.Flush()

	logger.Info("Tail lookup results saved to %s", outPath)
}

// readTailNumbers reads the first column of a CSV file, skipping a header
// row if present.
func readTailNumbers(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var tails []string
	for i, rec := range records {
		if len(rec) == 0 || rec[0] == "" {
			continue
		}
		if i == 0 && rec[0] == "tail_number" {
			continue
		}
		tails = append(tails, rec[0])
	}
	return tails, nil
}
