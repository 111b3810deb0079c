package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nyc-apartments/config"
	"nyc-apartments/httpclient"
	"nyc-apartments/models"
	"nyc-apartments/utils"
)

func newHTTPTestClient() *httpclient.Client {
	return httpclient.New(httpclient.Options{
		MaxRetries:  1,
		BackoffBase: time.Millisecond,
		Timeout:     2 * time.Second,
		Logger:      utils.NewLogger(),
	})
}

func serveJSON(t *testing.T, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestOpenDataFetchNormalizesRows(t *testing.T) {
	body := `[
		{
			"building_id": "974431",
			"project_name": "Via Verde",
			"house_number": "700",
			"street_name": "BROOK AVENUE",
			"borough": "Bronx",
			"postcode": "10455",
			"latitude": "40.8142",
			"longitude": "-73.9106",
			"nta_name": "Melrose South"
		},
		{
			"projectid": "55555",
			"low_house_number": "12",
			"streetname": "MAIN ST",
			"boro": "Queens",
			"location": {"type": "Point", "coordinates": [-73.82, 40.76]}
		},
		{"comment": "row with nothing usable"}
	]`
	srv := serveJSON(t, body, func(r *http.Request) {
		if r.URL.Query().Get("$limit") != "5000" {
			t.Errorf("$limit = %q; want 5000", r.URL.Query().Get("$limit"))
		}
		if r.Header.Get("X-App-Token") != "my-token" {
			t.Errorf("X-App-Token header not forwarded")
		}
	})
	defer srv.Close()

	p := NewOpenDataProvider(newHTTPTestClient(), utils.NewLogger())
	p.url = srv.URL

	cfg := &config.Config{OpenDataAppToken: "my-token"}
	got, err := p.Fetch(context.Background(), cfg, models.Location{})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d listings; want 2 (bad row skipped)", len(got))
	}

	first := got[0]
	if first.ID != "974431" {
		t.Errorf("ID = %q; want building_id", first.ID)
	}
	if first.Provider != "nyc_open_data_hny_buildings" {
		t.Errorf("Provider = %q", first.Provider)
	}
	if first.Address != "700 BROOK AVENUE, Bronx" {
		t.Errorf("Address = %q", first.Address)
	}
	if first.Title == nil || *first.Title != "Via Verde" {
		t.Errorf("Title = %v; want Via Verde", first.Title)
	}
	if first.Neighborhood == nil || *first.Neighborhood != "Melrose South" {
		t.Errorf("Neighborhood = %v", first.Neighborhood)
	}
	if !first.HasCoords() || *first.Lat != 40.8142 || *first.Lon != -73.9106 {
		t.Errorf("coords = (%v, %v); want string-encoded lat/lon parsed", first.Lat, first.Lon)
	}
	if first.Price != nil {
		t.Error("dataset has no rents; Price must be nil")
	}
	if first.City != "New York" || first.State != "NY" {
		t.Errorf("city/state defaults: got %s/%s", first.City, first.State)
	}

	second := got[1]
	if second.ID != "55555" {
		t.Errorf("ID = %q; want projectid fallback", second.ID)
	}
	if second.Address != "12 MAIN ST, Queens" {
		t.Errorf("Address = %q", second.Address)
	}
	// GeoJSON coordinates are [lon, lat].
	if !second.HasCoords() || *second.Lat != 40.76 || *second.Lon != -73.82 {
		t.Errorf("coords = (%v, %v); want (40.76, -73.82)", second.Lat, second.Lon)
	}
}

func TestOpenDataNonListResponseYieldsEmpty(t *testing.T) {
	srv := serveJSON(t, `{"error": "unexpected shape"}`, nil)
	defer srv.Close()

	p := NewOpenDataProvider(newHTTPTestClient(), utils.NewLogger())
	p.url = srv.URL

	got, err := p.Fetch(context.Background(), &config.Config{}, models.Location{})
	if err != nil {
		t.Fatalf("structurally wrong response must not raise, got: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d listings; want 0", len(got))
	}
}

func TestOpenDataInvalidCoordsDroppedTogether(t *testing.T) {
	body := `[
		{"building_id": "1", "street_name": "A ST", "latitude": "not-a-number", "longitude": "-73.9"},
		{"building_id": "2", "street_name": "B ST", "latitude": "95.0", "longitude": "-73.9"}
	]`
	srv := serveJSON(t, body, nil)
	defer srv.Close()

	p := NewOpenDataProvider(newHTTPTestClient(), utils.NewLogger())
	p.url = srv.URL

	got, err := p.Fetch(context.Background(), &config.Config{}, models.Location{})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d listings; want 2", len(got))
	}
	for _, l := range got {
		if l.Lat != nil || l.Lon != nil {
			t.Errorf("listing %s: coords = (%v, %v); want both nil", l.ID, l.Lat, l.Lon)
		}
	}
}

func TestOpenDataAddressFallbackID(t *testing.T) {
	body := `[{"house_number": "99", "street_name": "BWAY", "borough": "Manhattan"}]`
	srv := serveJSON(t, body, nil)
	defer srv.Close()

	p := NewOpenDataProvider(newHTTPTestClient(), utils.NewLogger())
	p.url = srv.URL

	got, err := p.Fetch(context.Background(), &config.Config{}, models.Location{})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d listings; want 1", len(got))
	}
	if got[0].ID != "99|BWAY|Manhattan" {
		t.Errorf("ID = %q; want address-derived fallback", got[0].ID)
	}
}
