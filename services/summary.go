package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/marioalfredo2411-sys/chivoferton/models"
	"github.com/marioalfredo2411-sys/chivoferton/utils"
)

// SummaryService computes aggregate counts over a finished crawl.
type SummaryService struct {
	logger *utils.Logger
}

// NewSummaryService creates a SummaryService with the given logger.
func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

// Generate builds a SummaryReport from the final result set.
func (s *SummaryService) Generate(listings []*models.Listing) *models.SummaryReport {
	report := &models.SummaryReport{
		ListingsByLocation: make(map[string]int),
	}

	report.TotalListings = len(listings)
	for _, l := range listings {
		switch l.ListingType {
		case models.ListingTypeSale:
			report.SaleListings++
		case models.ListingTypeRent:
			report.RentListings++
		}
		if l.Price != "" {
			report.WithPrice++
		}
		if len(l.Images) > 0 {
			report.WithImages++
		}
		if l.PublishedDate != "" {
			report.WithPublishedDate++
		}
		if l.Location != "" {
			report.ListingsByLocation[l.Location]++
		}
	}

	return report
}

// Print writes a human-readable summary to stdout.
func (s *SummaryService) Print(report *models.SummaryReport) {
	fmt.Println()
	fmt.Println("========== CRAWL SUMMARY ==========")
	fmt.Printf("  Total listings:   %d\n", report.TotalListings)
	fmt.Printf("  Sale / Rent:      %d / %d\n", report.SaleListings, report.RentListings)
	fmt.Printf("  With price:       %d\n", report.WithPrice)
	fmt.Printf("  With images:      %d\n", report.WithImages)
	fmt.Printf("  With publish date: %d\n", report.WithPublishedDate)

	if len(report.ListingsByLocation) > 0 {
		type locCount struct {
			loc   string
			count int
		}
		counts := make([]locCount, 0, len(report.ListingsByLocation))
		for loc, n := range report.ListingsByLocation {
			counts = append(counts, locCount{loc, n})
		}
		sort.Slice(counts, func(i, j int) bool {
			if counts[i].count != counts[j].count {
				return counts[i].count > counts[j].count
			}
			return counts[i].loc < counts[j].loc
		})

		limit := 5
		if len(counts) < limit {
			limit = len(counts)
		}
		fmt.Println("  Top locations:")
		for _, c := range counts[:limit] {
			fmt.Printf("    %-40s %d\n", strings.TrimSpace(c.loc), c.count)
		}
	}
	fmt.Println("===================================")
	fmt.Println()
}
