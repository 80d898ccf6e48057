package models

// Listing type values as they appear in the serialized output.
const (
	ListingTypeSale = "sale"
	ListingTypeRent = "rent"
)

// Specs map keys. Not every key is present on every page.
const (
	SpecArea       = "area"
	SpecBedrooms   = "bedrooms"
	SpecBathrooms  = "bathrooms"
	SpecParking    = "parking"
	SpecPricePerM2 = "price_per_m2"
)

// Listing is one normalized real-estate advertisement assembled from a
// detail page. Specs, Details and Images are always allocated, so the
// serialized record is fully shaped even when extraction came up empty.
type Listing struct {
	Title         string            `json:"title"`
	Price         string            `json:"price"`
	Location      string            `json:"location"`
	PublishedDate string            `json:"published_date"`
	ListingType   string            `json:"listing_type"`
	URL           string            `json:"url"`
	ExternalID    string            `json:"external_id"`
	Specs         map[string]string `json:"specs"`
	Details       map[string]string `json:"details"`
	Description   string            `json:"description"`
	Images        []string          `json:"images"`
}

// NewListing returns a Listing with its maps and image slice allocated.
func NewListing(url, listingType string) *Listing {
	return &Listing{
		URL:         url,
		ListingType: listingType,
		Specs:       make(map[string]string),
		Details:     make(map[string]string),
		Images:      make([]string, 0),
	}
}

// SummaryReport holds aggregate counts over a finished crawl.
type SummaryReport struct {
	TotalListings      int
	SaleListings       int
	RentListings       int
	WithPrice          int
	WithImages         int
	WithPublishedDate  int
	ListingsByLocation map[string]int
}
