package flightera

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"anc-co2-tracker/config"
	"anc-co2-tracker/utils"
)

// Session owns exactly one live browser. A session that misbehaves is never
// reused: Recreate discards it entirely and starts a fresh browser, because
// stale sessions can become unusable without reporting an error.
type Session struct {
	cfg    *config.Config
	logger *utils.Logger
	parent context.Context

	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewSession starts a browser, retrying creation before giving up. Creation
// failure after retries is fatal for the run.
func NewSession(parent context.Context, cfg *config.Config, logger *utils.Logger) (*Session, error) {
	s := &Session{cfg: cfg, logger: logger, parent: parent}
	if err := s.createWithRetry(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) createWithRetry() error {
	delay := time.Duration(s.cfg.DriverRetryDelaySec) * time.Second

	var lastErr error
	for attempt := 1; attempt <= s.cfg.DriverRetries; attempt++ {
		if lastErr = s.create(); lastErr == nil {
			return nil
		}
		if attempt < s.cfg.DriverRetries {
			s.logger.Warn("[flightera] Browser start failed (attempt %d/%d): %v, retrying in %v",
				attempt, s.cfg.DriverRetries, lastErr, delay)
			select {
			case <-s.parent.Done():
				return s.parent.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("browser start failed after %d attempts: %w", s.cfg.DriverRetries, lastErr)
}

func (s *Session) create() error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if bin := s.chromeBinary(); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(s.parent, opts...)

	// Suppress chromedp log noise
	ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// Run with no actions forces the browser process to start now, so a
	// broken binary or environment fails here rather than mid-scrape.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return fmt.Errorf("start browser: %w", err)
	}

	s.allocCancel = allocCancel
	s.ctx = ctx
	s.cancel = cancel
	return nil
}

// Navigate loads a URL under a wall-clock watchdog independent of the
// browser's own page-load timeout.
func (s *Session) Navigate(url string) error {
	navCtx, cancel := context.WithTimeout(s.ctx,
		time.Duration(s.cfg.PageLoadTimeoutSec)*time.Second)
	defer cancel()

	return chromedp.Run(navCtx, chromedp.Navigate(url))
}

// TableHTML waits for the listing table marker under the shorter per-element
// timeout, then snapshots the rendered document.
func (s *Session) TableHTML() (string, error) {
	waitCtx, cancel := context.WithTimeout(s.ctx,
		time.Duration(s.cfg.TableWaitTimeoutSec)*time.Second)
	defer cancel()

	var html string
	err := chromedp.Run(waitCtx,
		chromedp.WaitReady(tableMarker, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	return html, err
}

// Recreate discards the current browser entirely and starts a fresh one.
func (s *Session) Recreate() error {
	s.Release()
	return s.createWithRetry()
}

// Release shuts the browser down. Safe to call more than once.
func (s *Session) Release() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.allocCancel != nil {
		s.allocCancel()
		s.allocCancel = nil
	}
	s.ctx = nil
}

// CloseExtraTabs closes any page targets beyond the one this session drives;
// listing pages sometimes open ad tabs on interaction.
func (s *Session) CloseExtraTabs() {
	if s.ctx == nil {
		return
	}

	targets, err := chromedp.Targets(s.ctx)
	if err != nil {
		s.logger.Debug("[flightera] Could not list browser targets: %v", err)
		return
	}

	var current target.ID
	if c := chromedp.FromContext(s.ctx); c != nil && c.Target != nil {
		current = c.Target.TargetID
	}

	for _, t := range targets {
		if t.Type != "page" || t.TargetID == current {
			continue
		}
		err := chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
			return target.CloseTarget(t.TargetID).Do(ctx)
		}))
		if err != nil {
			s.logger.Debug("[flightera] Could not close extra tab %s: %v", t.TargetID, err)
		}
	}
}

func (s *Session) chromeBinary() string {
	if s.cfg.ChromeBin != "" {
		return s.cfg.ChromeBin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
