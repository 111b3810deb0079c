package services

import (
	"fmt"
	"sort"
	"strings"

	"nyc-apartments/geo"
	"nyc-apartments/models"
)

// SearchReport holds summary statistics over a final result set.
type SearchReport struct {
	TotalListings          int
	ListingsByProvider     map[string]int
	PricedListings         int
	AveragePrice           float64
	MinPrice               int
	MaxPrice               int
	Cheapest               *models.Listing
	Nearest                *models.Listing
	NearestKm              float64
	ListingsByNeighborhood map[string]int
}

// ReportService computes and prints search summaries.
type ReportService struct{}

// NewReportService creates a ReportService.
func NewReportService() *ReportService {
	return &ReportService{}
}

// Generate computes summary statistics over the final listings, measured
// from the resolved search center.
func (s *ReportService) Generate(listings []*models.Listing, center models.Location) *SearchReport {
	report := &SearchReport{
		ListingsByProvider:     make(map[string]int),
		ListingsByNeighborhood: make(map[string]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	var total float64
	for _, l := range listings {
		report.ListingsByProvider[l.Provider]++
		if l.Neighborhood != nil && *l.Neighborhood != "" {
			report.ListingsByNeighborhood[*l.Neighborhood]++
		}

		if l.Price != nil {
			price := *l.Price
			if report.PricedListings == 0 {
				report.MinPrice = price
				report.MaxPrice = price
				report.Cheapest = l
			}
			report.PricedListings++
			total += float64(price)
			if price < report.MinPrice {
				report.MinPrice = price
				report.Cheapest = l
			}
			if price > report.MaxPrice {
				report.MaxPrice = price
			}
		}

		if l.HasCoords() {
			d := geo.Distance(center, models.Location{Lat: *l.Lat, Lon: *l.Lon})
			if report.Nearest == nil || d < report.NearestKm {
				report.Nearest = l
				report.NearestKm = d
			}
		}
	}

	if report.PricedListings > 0 {
		report.AveragePrice = round2(total / float64(report.PricedListings))
	}

	return report
}

// Print writes the report to stdout.
func (s *ReportService) Print(r *SearchReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n%s\n", sep)
	fmt.Printf("  SEARCH SUMMARY\n")
	fmt.Printf("%s\n\n", sep)

	fmt.Printf("  Overview\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Total listings : %d\n", r.TotalListings)
	for _, pc := range sortedCounts(r.ListingsByProvider) {
		fmt.Printf("    %-28s %d\n", pc.key, pc.count)
	}
	fmt.Println()

	fmt.Printf("  Monthly Rent\n")
	fmt.Printf("  %s\n", thin)
	if r.PricedListings > 0 {
		fmt.Printf("  Priced listings : %d\n", r.PricedListings)
		fmt.Printf("  Average rent    : $%.2f\n", r.AveragePrice)
		fmt.Printf("  Minimum rent    : $%d\n", r.MinPrice)
		fmt.Printf("  Maximum rent    : $%d\n", r.MaxPrice)
	} else {
		fmt.Printf("  No price data available\n")
	}
	fmt.Println()

	if r.Cheapest != nil {
		fmt.Printf("  Cheapest Listing\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s\n", truncate(r.Cheapest.Address, 50))
		fmt.Printf("  Rent : $%d/month\n", *r.Cheapest.Price)
		fmt.Println()
	}

	if r.Nearest != nil {
		fmt.Printf("  Nearest Listing\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s\n", truncate(r.Nearest.Address, 50))
		fmt.Printf("  Distance : %.2f km from center\n", r.NearestKm)
		fmt.Println()
	}

	fmt.Printf("  Listings by Neighborhood\n")
	fmt.Printf("  %s\n", thin)
	if len(r.ListingsByNeighborhood) == 0 {
		fmt.Printf("  No neighborhood data\n")
	} else {
		for _, nc := range sortedCounts(r.ListingsByNeighborhood) {
			fmt.Printf("  %-30s %d\n", truncate(nc.key, 28), nc.count)
		}
	}

	fmt.Printf("\n%s\n\n", sep)
}

type keyCount struct {
	key   string
	count int
}

// sortedCounts orders a counter map by count descending, then key, so the
// printed report is deterministic.
func sortedCounts(m map[string]int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, c := range m {
		if k != "" {
			out = append(out, keyCount{k, c})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

// truncate shortens s to max characters, counting runes so multi-byte
// addresses are never cut mid-character.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
