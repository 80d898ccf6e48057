package encuentra24

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/marioalfredo2411-sys/chivoferton/config"
)

// fetcher performs paced HTTP GETs against the catalog and parses the
// responses. Pacing is enforced here with one token bucket per request
// class, so the minimum inter-request spacing holds globally no matter how
// many workers are fetching.
type fetcher struct {
	client    *http.Client
	userAgent string
	catalog   *rate.Limiter
	detail    *rate.Limiter
}

func newFetcher(cfg *config.Config) *fetcher {
	return &fetcher{
		client: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeoutSec) * time.Second,
		},
		userAgent: cfg.UserAgent,
		catalog:   rate.NewLimiter(rate.Every(time.Duration(cfg.CatalogDelayMs)*time.Millisecond), 1),
		detail:    rate.NewLimiter(rate.Every(time.Duration(cfg.DetailDelayMs)*time.Millisecond), 1),
	}
}

// fetchCatalog retrieves one search-results page.
func (f *fetcher) fetchCatalog(ctx context.Context, url string) (*goquery.Document, error) {
	return f.fetch(ctx, url, f.catalog)
}

// fetchDetail retrieves one listing detail page.
func (f *fetcher) fetchDetail(ctx context.Context, url string) (*goquery.Document, error) {
	return f.fetch(ctx, url, f.detail)
}

// fetch waits for the limiter, performs the GET and parses the body. Any
// transport error, non-2xx status or parse failure is reported uniformly —
// callers treat all of them as "this URL failed".
func (f *fetcher) fetch(ctx context.Context, url string, limiter *rate.Limiter) (*goquery.Document, error) {
	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}
