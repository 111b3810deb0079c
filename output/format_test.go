package output

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"nyc-apartments/models"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strP(s string) *string       { return &s }

func sample() []*models.Listing {
	return []*models.Listing{
		{Provider: "rentcast_rental_listings", ID: "1",
			Neighborhood: strP("Chelsea"), Address: "123 Main St",
			City: "New York", State: "NY", Zipcode: strP("10001"),
			Price: intPtr(3200), Beds: floatPtr(1.5), Baths: floatPtr(1),
			Lat: floatPtr(40.748), Lon: floatPtr(-73.985),
			URL: strP("https://example.com/1")},
		{Provider: "nyc_open_data_hny_buildings", ID: "974431",
			Address: "700 BROOK AVENUE, Bronx", City: "New York", State: "NY"},
	}
}

func TestToCSV(t *testing.T) {
	text, err := ToCSV(sample())
	if err != nil {
		t.Fatalf("ToCSV returned error: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(text)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d CSV rows; want header + 2", len(records))
	}
	if records[0][0] != "provider" || records[0][7] != "price" {
		t.Errorf("unexpected header: %v", records[0])
	}

	first := records[1]
	if first[0] != "rentcast_rental_listings" || first[1] != "1" {
		t.Errorf("identity columns: %v", first[:2])
	}
	if first[7] != "3200" || first[8] != "1.5" {
		t.Errorf("price/beds columns: %q %q", first[7], first[8])
	}

	second := records[2]
	if second[7] != "" || second[10] != "" {
		t.Errorf("missing values must render empty, got price=%q lat=%q", second[7], second[10])
	}
}

func TestToJSON(t *testing.T) {
	text, err := ToJSON(sample())
	if err != nil {
		t.Fatalf("ToJSON returned error: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("got %d entries; want 2", len(decoded))
	}
	if decoded[0]["provider"] != "rentcast_rental_listings" {
		t.Errorf("provider = %v", decoded[0]["provider"])
	}
	if _, present := decoded[1]["price"]; present {
		t.Error("nil price must be omitted from JSON")
	}
}

func TestToJSONEmpty(t *testing.T) {
	text, err := ToJSON(nil)
	if err != nil {
		t.Fatalf("ToJSON returned error: %v", err)
	}
	if strings.TrimSpace(text) != "[]" {
		t.Errorf("empty input must render as [], got %q", text)
	}
}

func TestFormatThousands(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{950, "950"},
		{3200, "3,200"},
		{1234567, "1,234,567"},
		{-4500, "-4,500"},
	}
	for _, tt := range tests {
		if got := formatThousands(tt.in); got != tt.want {
			t.Errorf("formatThousands(%d) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
