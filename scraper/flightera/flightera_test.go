package flightera

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anc-co2-tracker/config"
	"anc-co2-tracker/models"
	"anc-co2-tracker/utils"
)

// fakeSession serves the parser fixture for every window except the ones
// configured to fail.
type fakeSession struct {
	failNavOn   string
	failWaitOn  string
	badHTMLOn   string
	recreateErr error

	visited    []string
	lastURL    string
	recreates  int
	closedTabs int
}

func (f *fakeSession) Navigate(url string) error {
	f.visited = append(f.visited, url)
	f.lastURL = url
	if f.failNavOn != "" && strings.Contains(url, f.failNavOn) {
		return errors.New("page load deadline exceeded")
	}
	return nil
}

func (f *fakeSession) TableHTML() (string, error) {
	if f.failWaitOn != "" && strings.Contains(f.lastURL, f.failWaitOn) {
		return "", errors.New("wait deadline exceeded")
	}
	if f.badHTMLOn != "" && strings.Contains(f.lastURL, f.badHTMLOn) {
		return "<html><body><p>no table rendered</p></body></html>", nil
	}
	return listingFixture, nil
}

func (f *fakeSession) Recreate() error {
	f.recreates++
	return f.recreateErr
}

func (f *fakeSession) CloseExtraTabs() { f.closedTabs++ }

func testScraperConfig() *config.Config {
	return &config.Config{ListingBaseURL: "https://listings.test/en/airport/Anchorage/PANC"}
}

func TestScrapeWalksWindowsInOrder(t *testing.T) {
	fake := &fakeSession{}
	s := New(testScraperConfig(), utils.NewLogger(), fake)

	recs, skipped, err := s.Scrape(context.Background(), "2023-01-02", models.Arrival)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)

	// Two fixture rows per window, all twelve windows.
	assert.Len(t, recs, 24)
	assert.Equal(t, 12, fake.closedTabs)

	require.Len(t, fake.visited, len(timeWindows))
	for i, window := range timeWindows {
		assert.Equal(t,
			"https://listings.test/en/airport/Anchorage/PANC/arrival/2023-01-02%20"+window+"?",
			fake.visited[i])
	}
}

func TestScrapeRecoversFromWindowFailures(t *testing.T) {
	fake := &fakeSession{failNavOn: "04_00", failWaitOn: "10_00"}
	s := New(testScraperConfig(), utils.NewLogger(), fake)

	recs, skipped, err := s.Scrape(context.Background(), "2023-01-02", models.Arrival)
	require.NoError(t, err)

	// Each failed window restarts the browser, is skipped without retry, and
	// the remaining windows still contribute rows.
	assert.Equal(t, 2, skipped)
	assert.Equal(t, 2, fake.recreates)
	assert.Len(t, recs, 20)
	assert.Len(t, fake.visited, len(timeWindows))

	// Failed windows never reach tab cleanup.
	assert.Equal(t, 10, fake.closedTabs)
}

func TestScrapeRecreatesOnMissingTable(t *testing.T) {
	fake := &fakeSession{badHTMLOn: "08_00"}
	s := New(testScraperConfig(), utils.NewLogger(), fake)

	recs, skipped, err := s.Scrape(context.Background(), "2023-01-02", models.Departure)
	require.NoError(t, err)

	// A snapshot without the listing table parses to zero rows but is not a
	// session failure.
	assert.Equal(t, 0, skipped)
	assert.Equal(t, 0, fake.recreates)
	assert.Len(t, recs, 22)
}

func TestScrapeFatalWhenRecreateFails(t *testing.T) {
	recreateErr := errors.New("browser start failed after 3 attempts")
	fake := &fakeSession{failNavOn: "00_00", recreateErr: recreateErr}
	s := New(testScraperConfig(), utils.NewLogger(), fake)

	recs, skipped, err := s.Scrape(context.Background(), "2023-01-02", models.Arrival)
	require.ErrorIs(t, err, recreateErr)
	assert.Empty(t, recs)
	assert.Equal(t, 0, skipped)
	assert.Len(t, fake.visited, 1)
}

func TestScrapeStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &fakeSession{}
	s := New(testScraperConfig(), utils.NewLogger(), fake)

	_, _, err := s.Scrape(ctx, "2023-01-02", models.Arrival)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fake.visited)
}
