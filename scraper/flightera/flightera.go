package flightera

import (
	"context"
	"fmt"
	"strings"

	"anc-co2-tracker/config"
	"anc-co2-tracker/models"
	"anc-co2-tracker/utils"
)

// tableMarker is present once the listing table has rendered client-side.
const tableMarker = "table.min-w-full"

// timeWindows paginates one day of listings in two-hour slices, visited
// strictly in this order.
var timeWindows = []string{
	"00_00", "02_00", "04_00", "06_00", "08_00", "10_00",
	"12_00", "14_00", "16_00", "18_00", "20_00", "22_00",
}

// pageSession is the browser surface the window walk drives. Session is the
// production implementation.
type pageSession interface {
	Navigate(url string) error
	TableHTML() (string, error)
	Recreate() error
	CloseExtraTabs()
}

// Scraper walks the time windows of one flight direction for one day and
// hands each rendered table snapshot to the listing parser.
type Scraper struct {
	cfg     *config.Config
	logger  *utils.Logger
	session pageSession
}

// New creates a Scraper driving the given browser session.
func New(cfg *config.Config, logger *utils.Logger, session pageSession) *Scraper {
	return &Scraper{cfg: cfg, logger: logger, session: session}
}

// Scrape fetches all time windows for one (date, direction) pair. date is
// ISO formatted (YYYY-MM-DD). It returns the parsed records and the number
// of windows skipped due to failures; a skipped window contributes zero
// records and is not retried. Only an unrecoverable browser failure returns
// an error.
func (s *Scraper) Scrape(ctx context.Context, date string, dir models.Direction) ([]*models.FlightRecord, int, error) {
	base := strings.TrimRight(s.cfg.ListingBaseURL, "/")

	var all []*models.FlightRecord
	skipped := 0

	for _, window := range timeWindows {
		select {
		case <-ctx.Done():
			return all, skipped, ctx.Err()
		default:
		}

		url := fmt.Sprintf("%s/%s/%s%%20%s?", base, dir, date, window)
		s.logger.Info("[flightera] Loading %s window %s", dir, window)

		recs, err := s.fetchWindow(url, dir)
		if err != nil {
			s.logger.Warn("[flightera] Window %s failed: %v, restarting browser", window, err)
			if rerr := s.session.Recreate(); rerr != nil {
				return all, skipped, rerr
			}
			skipped++
			continue
		}

		s.logger.Debug("[flightera] Window %s: %d rows", window, len(recs))
		all = append(all, recs...)

		s.session.CloseExtraTabs()
	}

	s.logger.Info("[flightera] %s scrape complete: %d rows, %d windows skipped", dir, len(all), skipped)
	return all, skipped, nil
}

// fetchWindow loads one window URL and parses the rendered listing table. A
// failure at any step invalidates the session; the caller must recreate it
// before the next window.
func (s *Scraper) fetchWindow(url string, dir models.Direction) ([]*models.FlightRecord, error) {
	if err := s.session.Navigate(url); err != nil {
		return nil, fmt.Errorf("load page: %w", err)
	}

	html, err := s.session.TableHTML()
	if err != nil {
		return nil, fmt.Errorf("listing table never appeared: %w", err)
	}

	return ParseListing(html, dir)
}
