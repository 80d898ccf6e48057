package encuentra24

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/marioalfredo2411-sys/chivoferton/config"
	"github.com/marioalfredo2411-sys/chivoferton/models"
	"github.com/marioalfredo2411-sys/chivoferton/utils"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		BaseURL:             baseURL,
		ListingsPerCategory: 50,
		MaxConcurrency:      1,
		CatalogDelayMs:      0,
		DetailDelayMs:       0,
		RequestTimeoutSec:   5,
		UserAgent:           "test-agent",
	}
}

func newTestScraper(baseURL string) *Scraper {
	return New(testConfig(baseURL), utils.NewLogger(false))
}

func catalogPage(hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, h := range hrefs {
		fmt.Fprintf(&b, `<a class="d3-ad-tile__description" href="%s">listing</a>`, h)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func detailPage(title, price, location string) string {
	return fmt.Sprintf(`<html><head><title>%s | Encuentra24</title>
		<script>var photos = ["https://photos.encuentra24.com/f/x/1.jpg"];</script>
		</head><body>
		<h1>%s</h1>
		<div class="d3-price">%s</div>
		<div class="d3-property-insight__attribute">
			<div class="d3-property-insight__attribute-title">Recámaras</div>
			<div class="d3-property-insight__attribute-value">3</div>
		</div>
		<div class="d3-property-details__detail">
			<span class="d3-property-details__detail-label">Localización</span> %s
		</div>
		<div class="d3-property-details__detail">
			<span class="d3-property-details__detail-label">Publicado</span> 01/08/2026
		</div>
		<div class="d3-property-about__text">Amplia casa con jardín.</div>
		</body></html>`, title, title, price, location)
}

func TestCollectListingURLsStopsOnEmptyPage(t *testing.T) {
	var mu sync.Mutex
	var requested []string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requested = append(requested, r.URL.Path)
		mu.Unlock()

		switch r.URL.Path {
		case "/casas":
			fmt.Fprint(w, catalogPage("/l/a", "/l/b"))
		case "/casas.2":
			fmt.Fprint(w, catalogPage("/l/c", "/l/d"))
		case "/casas.3":
			fmt.Fprint(w, "<html><body><p>fin del catálogo</p></body></html>")
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	s := newTestScraper(ts.URL)
	urls := s.collectListingURLs(context.Background(), ts.URL+"/casas", 10)

	want := []string{ts.URL + "/l/a", ts.URL + "/l/b", ts.URL + "/l/c", ts.URL + "/l/d"}
	if len(urls) != len(want) {
		t.Fatalf("collected %d URLs (%v); want %d", len(urls), urls, len(want))
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q; want %q", i, urls[i], want[i])
		}
	}

	for _, path := range requested {
		if path == "/casas.4" {
			t.Error("page 4 was requested after the empty page 3")
		}
	}
	if last := requested[len(requested)-1]; last != "/casas.3" {
		t.Errorf("last requested page = %q; want /casas.3", last)
	}
}

func TestCollectListingURLsDeduplicatesAcrossPages(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/casas":
			fmt.Fprint(w, catalogPage("/l/a", "/l/b"))
		case "/casas.2":
			// /l/b repeats from page 1.
			fmt.Fprint(w, catalogPage("/l/b", "/l/c"))
		default:
			fmt.Fprint(w, catalogPage())
		}
	}))
	defer ts.Close()

	s := newTestScraper(ts.URL)
	urls := s.collectListingURLs(context.Background(), ts.URL+"/casas", 10)

	want := []string{ts.URL + "/l/a", ts.URL + "/l/b", ts.URL + "/l/c"}
	if len(urls) != len(want) {
		t.Fatalf("collected %v; want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q; want %q (first-seen position must hold)", i, urls[i], want[i])
		}
	}
}

func TestCollectListingURLsStopsAtTarget(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, catalogPage("/l/a", "/l/b", "/l/c", "/l/d"))
	}))
	defer ts.Close()

	s := newTestScraper(ts.URL)
	urls := s.collectListingURLs(context.Background(), ts.URL+"/casas", 3)

	if len(urls) != 3 {
		t.Fatalf("collected %d URLs; want exactly the target 3", len(urls))
	}
}

func TestCollectListingURLsKeepsPartialOnFetchFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/casas":
			fmt.Fprint(w, catalogPage("/l/a", "/l/b"))
		default:
			http.Error(w, "server error", http.StatusInternalServerError)
		}
	}))
	defer ts.Close()

	s := newTestScraper(ts.URL)
	urls := s.collectListingURLs(context.Background(), ts.URL+"/casas", 10)

	if len(urls) != 2 {
		t.Fatalf("collected %d URLs; want the 2 gathered before the failure", len(urls))
	}
}

func TestScrapeEndToEnd(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/venta":
			fmt.Fprint(w, catalogPage("/casa/venta-1", "/casa/venta-2"))
		case "/alquiler":
			fmt.Fprint(w, catalogPage("/casa/alquiler-1"))
		case "/casa/venta-1":
			fmt.Fprint(w, detailPage("Casa en venta uno", "$125,000", "San Salvador"))
		case "/casa/venta-2":
			fmt.Fprint(w, detailPage("Casa en venta dos", "$98,000", "Santa Tecla"))
		case "/casa/alquiler-1":
			fmt.Fprint(w, detailPage("Casa en alquiler", "$650", "San Salvador"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	s := newTestScraper(ts.URL)
	categories := []config.Category{
		{BaseURL: ts.URL + "/venta", ListingType: models.ListingTypeSale, MaxListings: 2},
		{BaseURL: ts.URL + "/alquiler", ListingType: models.ListingTypeRent, MaxListings: 1},
	}

	listings := s.Scrape(context.Background(), categories)

	if len(listings) != 3 {
		t.Fatalf("got %d listings; want 3", len(listings))
	}

	wantTypes := []string{models.ListingTypeSale, models.ListingTypeSale, models.ListingTypeRent}
	for i, wt := range wantTypes {
		if listings[i].ListingType != wt {
			t.Errorf("listings[%d].ListingType = %q; want %q", i, listings[i].ListingType, wt)
		}
	}

	first := listings[0]
	if first.Title != "Casa en venta uno" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Price != "$125,000" {
		t.Errorf("Price = %q", first.Price)
	}
	if first.Location != "San Salvador" {
		t.Errorf("Location = %q; want value from the detail table", first.Location)
	}
	if first.PublishedDate != "01/08/2026" {
		t.Errorf("PublishedDate = %q", first.PublishedDate)
	}
	if first.ExternalID != "venta-1" {
		t.Errorf("ExternalID = %q; want venta-1", first.ExternalID)
	}
	if first.Specs[models.SpecBedrooms] != "3" {
		t.Errorf("Specs[bedrooms] = %q", first.Specs[models.SpecBedrooms])
	}
	if len(first.Images) != 1 || first.Images[0] != "https://photos.encuentra24.com/f/x/1.jpg" {
		t.Errorf("Images = %v", first.Images)
	}
	if first.Specs == nil || first.Details == nil || first.Images == nil {
		t.Error("specs, details and images must always be allocated")
	}
}

func TestScrapeSkipsFailedDetailPages(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/venta":
			fmt.Fprint(w, catalogPage("/casa/ok", "/casa/rota", "/casa/ok-2"))
		case "/casa/ok":
			fmt.Fprint(w, detailPage("Casa uno", "$100,000", "San Salvador"))
		case "/casa/rota":
			http.Error(w, "gone", http.StatusNotFound)
		case "/casa/ok-2":
			fmt.Fprint(w, detailPage("Casa dos", "$110,000", "San Miguel"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	s := newTestScraper(ts.URL)
	categories := []config.Category{
		{BaseURL: ts.URL + "/venta", ListingType: models.ListingTypeSale, MaxListings: 3},
	}

	listings := s.Scrape(context.Background(), categories)

	if len(listings) != 2 {
		t.Fatalf("got %d listings; want 2 (failed detail page dropped, not fatal)", len(listings))
	}
	if listings[0].ExternalID != "ok" || listings[1].ExternalID != "ok-2" {
		t.Errorf("discovery order not preserved: %q, %q", listings[0].ExternalID, listings[1].ExternalID)
	}
}

func TestScrapeMissingMarkupYieldsEmptyFields(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/venta":
			fmt.Fprint(w, catalogPage("/casa/pelada"))
		case "/casa/pelada":
			fmt.Fprint(w, "<html><body><p>página sin estructura conocida</p></body></html>")
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	s := newTestScraper(ts.URL)
	categories := []config.Category{
		{BaseURL: ts.URL + "/venta", ListingType: models.ListingTypeSale, MaxListings: 1},
	}

	listings := s.Scrape(context.Background(), categories)
	if len(listings) != 1 {
		t.Fatalf("got %d listings; want 1 — missing markup must not drop the record", len(listings))
	}

	l := listings[0]
	if l.Title != "" || l.Price != "" || l.Location != "" || l.Description != "" {
		t.Errorf("fields should be empty text: %+v", l)
	}
	if l.Specs == nil || l.Details == nil || l.Images == nil {
		t.Error("specs, details and images must be allocated even when empty")
	}
	if len(l.Specs) != 0 || len(l.Details) != 0 || len(l.Images) != 0 {
		t.Errorf("expected empty collections, got specs=%v details=%v images=%v", l.Specs, l.Details, l.Images)
	}
	if l.ExternalID != "pelada" {
		t.Errorf("ExternalID = %q", l.ExternalID)
	}
}
