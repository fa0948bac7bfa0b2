package radarbox

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"anc-co2-tracker/config"
	"anc-co2-tracker/models"
	"anc-co2-tracker/utils"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client resolves aircraft models for flight numbers against the lookup
// site's per-flight page. Lookups run concurrently under a bounded pool with
// shared pacing to stay under the site's rate limits.
type Client struct {
	cfg     *config.Config
	logger  *utils.Logger
	http    *http.Client
	retry   *utils.RetryPolicy
	limiter *rate.Limiter
}

// New creates a ready-to-use lookup client. The limiter's burst matches the
// pool size so a fresh batch starts a full pool immediately; only sustained
// traffic is paced.
func New(cfg *config.Config, logger *utils.Logger) *Client {
	burst := cfg.MaxConcurrency
	if burst < 1 {
		burst = 1
	}
	return &Client{
		cfg:    cfg,
		logger: logger,
		http:   &http.Client{Timeout: 30 * time.Second},
		retry: &utils.RetryPolicy{
			MaxAttempts:   cfg.MaxRetries,
			BaseDelay:     time.Duration(cfg.RetryBaseMs) * time.Millisecond,
			RetryStatuses: []int{429, 500, 502, 503, 504},
			Logger:        logger,
		},
		limiter: rate.NewLimiter(rate.Every(time.Duration(cfg.LookupPaceMs)*time.Millisecond), burst),
	}
}

// LookupAll resolves every unique flight number to an aircraft model. The
// returned map has exactly one entry per unique input; a lookup that exhausts
// its retries or fails in any way resolves to Unknown and never aborts the
// batch. Results complete in no particular order.
func (c *Client) LookupAll(ctx context.Context, flightNumbers []string) map[string]string {
	unique := utils.NewStringSet()
	var numbers []string
	for _, n := range flightNumbers {
		if n != "" && unique.Add(n) {
			numbers = append(numbers, n)
		}
	}

	results := make(map[string]string, len(numbers))
	var mu sync.Mutex

	pool := utils.NewWorkerPool(c.cfg.MaxConcurrency)
	for _, number := range numbers {
		number := number
		pool.Submit(func() {
			model := c.lookup(ctx, number)
			mu.Lock()
			results[number] = model
			mu.Unlock()
		})
	}
	pool.Wait()

	return results
}

// lookup fetches one flight page and reads the model name out of the model
// element's title attribute. Any failure degrades to Unknown.
func (c *Client) lookup(ctx context.Context, flightNumber string) string {
	url := strings.TrimRight(c.cfg.ModelLookupURL, "/") + "/" + flightNumber

	model := models.Unknown
	err := c.retry.Do(ctx, "model lookup "+flightNumber, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return &utils.PermanentError{Err: err}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return &utils.PermanentError{Err: err}
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			err := fmt.Errorf("status %d", resp.StatusCode)
			if c.retry.RetryableStatus(resp.StatusCode) {
				return err
			}
			return &utils.PermanentError{Err: err}
		}

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return &utils.PermanentError{Err: err}
		}

		if title, ok := doc.Find("div#model").Attr("title"); ok && strings.TrimSpace(title) != "" {
			model = strings.TrimSpace(title)
		}
		return nil
	})
	if err != nil {
		c.logger.Warn("[radarbox] Failed to get data for %s: %v", flightNumber, err)
		return models.Unknown
	}

	c.logger.Debug("[radarbox] %s → %s", flightNumber, model)
	return model
}
