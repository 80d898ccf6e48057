package encuentra24

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/marioalfredo2411-sys/chivoferton/config"
	"github.com/marioalfredo2411-sys/chivoferton/models"
	"github.com/marioalfredo2411-sys/chivoferton/utils"
)

const listingAnchorSelector = "a.d3-ad-tile__description"

// Detail-table labels the site uses for location and publish date.
const (
	detailLabelLocation  = "Localización"
	detailLabelPublished = "Publicado"
)

// Scraper crawls the Encuentra24 housing catalog: it walks the paginated
// search results per category, then assembles one normalized listing per
// discovered detail page.
type Scraper struct {
	cfg     *config.Config
	logger  *utils.Logger
	fetcher *fetcher
	pool    *utils.WorkerPool
}

// New creates a ready-to-use Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:     cfg,
		logger:  logger,
		fetcher: newFetcher(cfg),
		pool:    utils.NewWorkerPool(cfg.MaxConcurrency),
	}
}

// Scrape crawls the given categories in order and returns the combined
// result set. Nothing here is fatal: failed pages are logged and skipped,
// and whatever was gathered is always returned.
func (s *Scraper) Scrape(ctx context.Context, categories []config.Category) []*models.Listing {
	var all []*models.Listing

	for _, cat := range categories {
		s.logger.Info("[encuentra24] Scraping %s listings — target: %d", cat.ListingType, cat.MaxListings)

		urls := s.collectListingURLs(ctx, cat.BaseURL, cat.MaxListings)
		s.logger.Info("[encuentra24] Found %d %s URLs — scraping details...", len(urls), cat.ListingType)

		listings := s.scrapeCategory(ctx, urls, cat.ListingType)
		s.logger.Info("[encuentra24] Category %s done — %d/%d listings assembled",
			cat.ListingType, len(listings), len(urls))

		all = append(all, listings...)
	}

	s.logger.Info("[encuentra24] Crawl complete — total listings: %d", len(all))
	return all
}

// collectListingURLs walks numbered result pages for one category and
// returns up to maxListings unique detail-page URLs in discovery order.
// Pagination stops when the target is reached, a page yields zero listing
// anchors, or a page fetch fails; partial results are kept.
func (s *Scraper) collectListingURLs(ctx context.Context, baseURL string, maxListings int) []string {
	urls := make([]string, 0, maxListings)
	seen := utils.NewURLSet()

	for page := 1; len(urls) < maxListings; page++ {
		pageURL := baseURL
		if page > 1 {
			pageURL = fmt.Sprintf("%s.%d", baseURL, page)
		}
		s.logger.Debug("[encuentra24] Fetching page %d: %s", page, pageURL)

		doc, err := s.fetcher.fetchCatalog(ctx, pageURL)
		if err != nil {
			s.logger.Warn("[encuentra24] Page %d failed: %v — stopping pagination", page, err)
			break
		}

		anchors := doc.Find(listingAnchorSelector)
		if anchors.Length() == 0 {
			s.logger.Info("[encuentra24] No listings found on page %d, stopping", page)
			break
		}

		anchors.EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href := a.AttrOr("href", "")
			if href == "" {
				return true
			}
			absolute := makeAbsoluteURL(s.cfg.BaseURL, href)
			if seen.Add(absolute) {
				urls = append(urls, absolute)
			}
			return len(urls) < maxListings
		})
	}

	return urls
}

// scrapeCategory assembles listings for the discovered URLs. Detail fetches
// run through the worker pool; results land in an index-addressed slice so
// the output order always equals discovery order. A failed assembly drops
// that single listing.
func (s *Scraper) scrapeCategory(ctx context.Context, urls []string, listingType string) []*models.Listing {
	results := make([]*models.Listing, len(urls))

	for i, u := range urls {
		i, u := i, u
		s.pool.Submit(func() {
			listing, err := s.scrapeListing(ctx, u, listingType)
			if err != nil {
				s.logger.Warn("[encuentra24] Skipping %s: %v", u, err)
				return
			}
			results[i] = listing
		})
	}
	s.pool.Wait()

	listings := make([]*models.Listing, 0, len(results))
	for _, l := range results {
		if l != nil {
			listings = append(listings, l)
		}
	}
	return listings
}

// scrapeListing fetches one detail page and assembles the normalized record.
// Every field degrades to an empty value when its markup is absent; only a
// whole-document fetch or parse failure returns an error.
func (s *Scraper) scrapeListing(ctx context.Context, url, listingType string) (*models.Listing, error) {
	doc, err := s.fetcher.fetchDetail(ctx, url)
	if err != nil {
		return nil, err
	}

	listing := models.NewListing(url, listingType)
	listing.Title = extractField(doc, titleStrategies)
	listing.Price = extractPrice(doc)
	listing.Specs = extractSpecs(doc)
	listing.Details = extractDetails(doc)

	listing.Location = listing.Details[detailLabelLocation]
	if listing.Location == "" {
		listing.Location = extractField(doc, locationStrategies)
	}
	listing.PublishedDate = listing.Details[detailLabelPublished]

	listing.Description = extractField(doc, descriptionStrategies)
	listing.Images = extractImages(doc)
	listing.ExternalID = externalIDFromURL(url)

	s.logger.Debug("[encuentra24] Assembled %s (%d specs, %d details, %d images)",
		listing.ExternalID, len(listing.Specs), len(listing.Details), len(listing.Images))
	return listing, nil
}
