package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"nyc-apartments/models"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strP(s string) *string       { return &s }

var reportCenter = models.Location{Lat: 40.73, Lon: -73.99}

func sampleListings() []*models.Listing {
	return []*models.Listing{
		{Provider: "rentcast_rental_listings", ID: "1", Address: "1 Near St",
			Neighborhood: strP("Chelsea"), Price: intPtr(2000),
			Lat: floatPtr(40.731), Lon: floatPtr(-73.991)},
		{Provider: "rentcast_rental_listings", ID: "2", Address: "2 Far Ave",
			Neighborhood: strP("Chelsea"), Price: intPtr(3500),
			Lat: floatPtr(40.76), Lon: floatPtr(-73.95)},
		{Provider: "nyc_open_data_hny_buildings", ID: "3", Address: "3 Side Rd",
			Neighborhood: strP("Melrose South"),
			Lat:          floatPtr(40.74), Lon: floatPtr(-73.98)},
		{Provider: "nyc_open_data_hny_buildings", ID: "4", Address: "4 No Coords Ln",
			Price: intPtr(1500)},
	}
}

func TestReportCounts(t *testing.T) {
	svc := NewReportService()
	r := svc.Generate(sampleListings(), reportCenter)

	if r.TotalListings != 4 {
		t.Errorf("TotalListings: got %d, want 4", r.TotalListings)
	}
	if r.ListingsByProvider["rentcast_rental_listings"] != 2 {
		t.Errorf("rentcast count: got %d, want 2", r.ListingsByProvider["rentcast_rental_listings"])
	}
	if r.ListingsByProvider["nyc_open_data_hny_buildings"] != 2 {
		t.Errorf("open data count: got %d, want 2", r.ListingsByProvider["nyc_open_data_hny_buildings"])
	}
	if r.ListingsByNeighborhood["Chelsea"] != 2 {
		t.Errorf("Chelsea count: got %d, want 2", r.ListingsByNeighborhood["Chelsea"])
	}
}

func TestReportPriceStats(t *testing.T) {
	svc := NewReportService()
	r := svc.Generate(sampleListings(), reportCenter)

	if r.PricedListings != 3 {
		t.Errorf("PricedListings: got %d, want 3", r.PricedListings)
	}
	wantAvg := 2333.33
	if r.AveragePrice != wantAvg {
		t.Errorf("AveragePrice: got %.2f, want %.2f", r.AveragePrice, wantAvg)
	}
	if r.MinPrice != 1500 {
		t.Errorf("MinPrice: got %d, want 1500", r.MinPrice)
	}
	if r.MaxPrice != 3500 {
		t.Errorf("MaxPrice: got %d, want 3500", r.MaxPrice)
	}
	if r.Cheapest == nil || r.Cheapest.ID != "4" {
		t.Errorf("Cheapest: got %v, want listing 4", r.Cheapest)
	}
}

func TestReportNearest(t *testing.T) {
	svc := NewReportService()
	r := svc.Generate(sampleListings(), reportCenter)

	if r.Nearest == nil {
		t.Fatal("Nearest should not be nil")
	}
	if r.Nearest.ID != "1" {
		t.Errorf("Nearest: got listing %s, want 1", r.Nearest.ID)
	}
	if r.NearestKm <= 0 || r.NearestKm > 1 {
		t.Errorf("NearestKm: got %.3f, want a small positive distance", r.NearestKm)
	}
}

func TestReportEmptyInput(t *testing.T) {
	svc := NewReportService()
	r := svc.Generate(nil, reportCenter)
	if r.TotalListings != 0 || r.PricedListings != 0 || r.Nearest != nil {
		t.Error("empty input must produce a zero report")
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 50, "short"},
		{"abcdefghij", 8, "abcde..."},
		{strings.Repeat("é", 10), 8, strings.Repeat("é", 5) + "..."},
		{"Cañón de la Peña Boulevard", 10, "Cañón d..."},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.max)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q; want %q", tt.in, tt.max, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.in, tt.max)
		}
	}
}
