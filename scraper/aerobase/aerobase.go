package aerobase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"anc-co2-tracker/config"
	"anc-co2-tracker/models"
	"anc-co2-tracker/utils"
)

const notAvailable = "N/A"

// Client resolves tail numbers to manufacturer and model via the registry
// lookup site. Same shape as the flight-number lookup, smaller pool.
type Client struct {
	cfg    *config.Config
	logger *utils.Logger
	http   *http.Client
	retry  *utils.RetryPolicy
}

func New(cfg *config.Config, logger *utils.Logger) *Client {
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
	}
}

// LookupAll resolves every unique tail number concurrently. Failed lookups
// resolve to N/A fields and never abort the batch.
func (c *Client) LookupAll(ctx context.Context, tailNumbers []string) map[string]models.TailInfo {
	unique := utils.NewStringSet()
	var tails []string
	for _, t := range tailNumbers {
		if t != "" && unique.Add(t) {
			tails = append(tails, t)
		}
	}

	results := make(map[string]models.TailInfo, len(tails))
	var mu sync.Mutex

	pool := utils.NewWorkerPool(c.cfg.TailConcurrency)
	for _, tail := range tails {
		tail := tail
		pool.Submit(func() {
			info := c.lookup(ctx, tail)
			mu.Lock()
			results[tail] = info
			mu.Unlock()
		})
	}
	pool.Wait()

	return results
}

func (c *Client) lookup(ctx context.Context, tailNumber string) models.TailInfo {
	url := strings.TrimRight(c.cfg.TailLookupURL, "/") + "/" + strings.ToLower(tailNumber)

	info := models.TailInfo{Manufacturer: notAvailable, Model: notAvailable}
	err := c.retry.Do(ctx, "tail lookup "+tailNumber, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return &utils.PermanentError{Err: err}
		}

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

		details := parseDetails(doc)
		if v, ok := details["Manufacturer"]; ok {
			info.Manufacturer = v
		}
		if v, ok := details["Model"]; ok {
			info.Model = v
		}
		return nil
	})
	if err != nil {
		c.logger.Warn("[aerobase] Failed to get data for %s: %v", tailNumber, err)
	}

	return info
}

// parseDetails flattens the registry's two-column detail tables into a map.
func parseDetails(doc *goquery.Document) map[string]string {
	details := make(map[string]string)
	doc.Find("table.table-border tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() != 2 {
			return
		}
		key := strings.TrimSpace(cells.Eq(0).Text())
		value := strings.TrimSpace(cells.Eq(1).Text())
		if key != "" {
			details[key] = value
		}
	})
	return details
}
