package encuentra24

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/marioalfredo2411-sys/chivoferton/models"
)

const photoHost = "photos.encuentra24.com"

var (
	// Last-resort price pattern: currency symbol plus digits/commas/points,
	// scanned over the whole page text when no price node matched.
	priceFallbackRe = regexp.MustCompile(`\$[\d,\.]+`)

	// Photo-host URLs embedded in inline scripts, terminated at quotes,
	// whitespace or a backslash.
	photoURLRe = regexp.MustCompile(`https://photos\.encuentra24\.com[^"'\s\\]+`)
	// Same pattern for data-* attribute blobs, additionally terminated at ']'.
	photoAttrURLRe = regexp.MustCompile(`https://photos\.encuentra24\.com[^"'\s\\\]]+`)
)

// fieldStrategy is one entry in an ordered fallback chain for a semantic
// field. An empty attr means the node's trimmed text content; otherwise the
// named attribute is read.
type fieldStrategy struct {
	selector string
	attr     string
}

var (
	titleStrategies = []fieldStrategy{
		{selector: "h1"},
		{selector: "title"},
	}
	priceStrategies = []fieldStrategy{
		{selector: ".estate-price"},
		{selector: ".d3-price"},
	}
	descriptionStrategies = []fieldStrategy{
		{selector: ".d3-property-about__text"},
		{selector: ".d3-property-description__content"},
	}
	locationStrategies = []fieldStrategy{
		{selector: ".d3-location"},
		{selector: ".location"},
	}
)

// extractField tries each strategy in order and returns the first non-empty
// trimmed result. Missing markup is the normal empty-string path, never an
// error.
func extractField(doc *goquery.Document, strategies []fieldStrategy) string {
	for _, st := range strategies {
		var found string
		doc.Find(st.selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			var v string
			if st.attr == "" {
				v = strings.TrimSpace(s.Text())
			} else {
				v = strings.TrimSpace(s.AttrOr(st.attr, ""))
			}
			if v != "" {
				found = v
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// extractPrice runs the price selector chain, then falls back to a regex
// scan of the full page text.
func extractPrice(doc *goquery.Document) string {
	if price := extractField(doc, priceStrategies); price != "" {
		return price
	}
	return priceFallbackRe.FindString(doc.Text())
}

// specKeywords classifies insight-attribute labels by case-insensitive
// substring. Order matters: the first matching field wins for a label.
var specKeywords = []struct {
	key   string
	words []string
}{
	{models.SpecArea, []string{"área", "m²", "construida"}},
	{models.SpecBedrooms, []string{"recámaras", "habitaciones"}},
	{models.SpecBathrooms, []string{"baños"}},
	{models.SpecParking, []string{"estacionamientos", "parqueo"}},
	{models.SpecPricePerM2, []string{"precio"}},
}

// iconFragments classifies icon-tile widgets by the fragment identifier of
// their symbol reference.
var iconFragments = []struct {
	fragment string
	key      string
}{
	{"#resize", models.SpecArea},
	{"#bed", models.SpecBedrooms},
	{"#bath", models.SpecBathrooms},
	{"#parking", models.SpecParking},
}

// extractSpecs builds the specs map from the two widget shapes the site
// uses. Both passes always run — search-result tiles and full listing pages
// carry different shapes, and running both maximizes coverage. The icon-tile
// pass never overwrites a key the insight-attribute pass already set.
func extractSpecs(doc *goquery.Document) map[string]string {
	specs := make(map[string]string)

	// Insight-attribute widgets: labeled key/value pairs on full listing pages.
	doc.Find(".d3-property-insight__attribute").Each(func(_ int, s *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(s.Find(".d3-property-insight__attribute-title").Text()))
		value := strings.TrimSpace(s.Find(".d3-property-insight__attribute-value").Text())
		if label == "" || value == "" {
			return
		}
		for _, sk := range specKeywords {
			if containsAny(label, sk.words) {
				specs[sk.key] = value
				return
			}
		}
	})

	// Icon tiles: compact symbol+value widgets on search-result tiles.
	doc.Find(".d3-ad-tile__details-item").Each(func(_ int, s *goquery.Selection) {
		use := s.Find("use").First()
		href := use.AttrOr("xlink:href", "")
		if href == "" {
			href = use.AttrOr("href", "")
		}
		value := strings.TrimSpace(s.Find("span").First().Text())
		if href == "" || value == "" {
			return
		}
		for _, ic := range iconFragments {
			if strings.Contains(href, ic.fragment) {
				if _, set := specs[ic.key]; !set {
					specs[ic.key] = value
				}
				return
			}
		}
	})

	return specs
}

// extractDetails parses label/value detail rows into a map keyed by the
// site-supplied label. The value is the row's full text with the first
// occurrence of the label removed; if the label text recurs inside the
// value, only that first occurrence is stripped.
func extractDetails(doc *goquery.Document) map[string]string {
	details := make(map[string]string)

	doc.Find(".d3-property-details__detail").Each(func(_ int, s *goquery.Selection) {
		label := strings.TrimSpace(s.Find(".d3-property-details__detail-label").Text())
		if label == "" {
			return
		}
		full := strings.TrimSpace(s.Text())
		value := strings.TrimSpace(strings.Replace(full, label, "", 1))
		if value == "" {
			return
		}
		details[label] = value
	})

	return details
}

// extractImages harvests photo URLs from three independent sources in a
// fixed order: gallery markup, inline scripts, data-* attribute blobs. The
// combined list is normalized and deduplicated, first occurrence winning.
func extractImages(doc *goquery.Document) []string {
	var images []string

	// Gallery and carousel nodes: lazy-load source first, direct source second.
	doc.Find(".d3-gallery img, .gallery-image img, .swiper-slide img, [data-src]").Each(func(_ int, s *goquery.Selection) {
		src := s.AttrOr("data-src", "")
		if src == "" {
			src = s.AttrOr("src", "")
		}
		if src == "" {
			return
		}
		if strings.Contains(src, photoHost) || strings.HasPrefix(src, "http") {
			images = append(images, src)
		}
	})

	// Inline script payloads, typically JSON gallery state.
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		images = append(images, photoURLRe.FindAllString(s.Text(), -1)...)
	})

	// data-* blobs on gallery widgets.
	doc.Find("[data-gallery], [data-images], [data-photo]").Each(func(_ int, s *goquery.Selection) {
		blob := s.AttrOr("data-gallery", "")
		if blob == "" {
			blob = s.AttrOr("data-images", "")
		}
		if blob == "" {
			blob = s.AttrOr("data-photo", "")
		}
		images = append(images, photoAttrURLRe.FindAllString(blob, -1)...)
	})

	return normalizeImageURLs(images)
}

// normalizeImageURLs collapses escaped-slash forms to plain slashes and
// removes duplicates. The first occurrence of a URL fixes its position.
func normalizeImageURLs(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	unique := make([]string, 0, len(urls))

	for _, u := range urls {
		u = strings.ReplaceAll(u, "\\u002F", "/")
		u = strings.ReplaceAll(u, "\\/", "/")
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		unique = append(unique, u)
	}
	return unique
}

// externalIDFromURL derives the listing's external id: trailing slashes are
// stripped, then the final path segment is taken.
func externalIDFromURL(url string) string {
	trimmed := strings.TrimRight(url, "/")
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, "/")
	return parts[len(parts)-1]
}

// makeAbsoluteURL prefixes path-only references with the site base URL.
func makeAbsoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return base + href
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
