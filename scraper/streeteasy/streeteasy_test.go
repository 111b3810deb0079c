package streeteasy

import (
	"testing"

	"nyc-apartments/config"
	"nyc-apartments/utils"
)

func testProvider() *Provider {
	cfg := &config.Config{
		MaxConcurrency: 1,
		MaxRetries:     1,
		RateLimitMs:    0,
		ScrapePages:    1,
	}
	return New(cfg, utils.NewLogger())
}

func TestNormalize(t *testing.T) {
	p := testProvider()

	l := p.normalize(
		"350 West 42nd Street #12B",
		"$4,250",
		"Hell's Kitchen",
		"350 West 42nd Street #12B",
		"2 Beds",
		"https://streeteasy.com/rental/4537821",
	)
	if l == nil {
		t.Fatal("normalize returned nil for a complete card")
	}
	if l.ID != "4537821" {
		t.Errorf("ID = %q; want id from /rental/ path", l.ID)
	}
	if l.Provider != providerName {
		t.Errorf("Provider = %q", l.Provider)
	}
	if l.Price == nil || *l.Price != 4250 {
		t.Errorf("Price = %v; want 4250", l.Price)
	}
	if l.Beds == nil || *l.Beds != 2 {
		t.Errorf("Beds = %v; want 2", l.Beds)
	}
	if l.Neighborhood == nil || *l.Neighborhood != "Hell's Kitchen" {
		t.Errorf("Neighborhood = %v", l.Neighborhood)
	}
	if l.Lat != nil || l.Lon != nil {
		t.Error("scraped cards must not carry coordinates")
	}
	if l.City != "New York" || l.State != "NY" {
		t.Errorf("city/state defaults: %q %q", l.City, l.State)
	}
}

func TestNormalizeBuildingURL(t *testing.T) {
	p := testProvider()

	l := p.normalize("", "", "", "", "", "https://streeteasy.com/building/88321/unit-4a")
	if l == nil {
		t.Fatal("normalize returned nil")
	}
	if l.ID != "88321" {
		t.Errorf("ID = %q; want id from /building/ path", l.ID)
	}
	if l.Address != "Unknown address" {
		t.Errorf("Address = %q; want placeholder for empty address", l.Address)
	}
	if l.Price != nil {
		t.Errorf("Price = %v; want nil for empty price text", l.Price)
	}
	if l.Title != nil || l.Neighborhood != nil {
		t.Error("empty title/area must stay nil")
	}
}

func TestNormalizeFallbackID(t *testing.T) {
	p := testProvider()

	l := p.normalize("", "", "", "", "", "https://streeteasy.com/some-listing-slug/")
	if l == nil {
		t.Fatal("normalize returned nil")
	}
	if l.ID != "some-listing-slug" {
		t.Errorf("ID = %q; want last path segment", l.ID)
	}
}

func TestNormalizeNoID(t *testing.T) {
	p := testProvider()

	if l := p.normalize("", "$1,000", "", "", "", ""); l != nil {
		t.Errorf("normalize = %+v; want nil for unidentifiable card", l)
	}
}

func TestCollectCardsDedupesWithinFetchOnly(t *testing.T) {
	p := testProvider()
	cards := []cardData{
		{Address: "100 First Ave", Price: "$3,000", URL: "https://streeteasy.com/rental/111"},
		{Address: "100 First Ave", Price: "$3,000", URL: "https://streeteasy.com/rental/111"},
		{URL: ""},
	}

	seen := utils.NewSeenSet()
	got := p.collectCards(cards, seen)
	if len(got) != 1 {
		t.Fatalf("got %d listings; want 1 after dedupe", len(got))
	}
	if got[0].ID != "111" {
		t.Errorf("ID = %q; want 111", got[0].ID)
	}

	// A later fetch starts with a fresh seen set, so the same card is
	// eligible again rather than being swallowed by stale state.
	got = p.collectCards(cards, utils.NewSeenSet())
	if len(got) != 1 {
		t.Errorf("second pass with fresh state got %d listings; want 1", len(got))
	}
}

func TestNormalizeBedsVariants(t *testing.T) {
	p := testProvider()

	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"2 Beds", 2, true},
		{"1 bed", 1, true},
		{"2.5 BR", 2.5, true},
		{"Studio", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		l := p.normalize("", "", "", "", tt.in, "https://streeteasy.com/rental/1")
		if l == nil {
			t.Fatalf("normalize returned nil for beds %q", tt.in)
		}
		if tt.ok {
			if l.Beds == nil || *l.Beds != tt.want {
				t.Errorf("beds %q = %v; want %v", tt.in, l.Beds, tt.want)
			}
		} else if l.Beds != nil {
			t.Errorf("beds %q = %v; want nil", tt.in, *l.Beds)
		}
	}
}
