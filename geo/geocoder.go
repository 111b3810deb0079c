package geo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"nyc-apartments/httpclient"
	"nyc-apartments/models"
)

const nominatimSearchURL = "https://nominatim.openstreetmap.org/search"

// ResolutionError means the geocoder found no match for an address. It is
// fatal to the run: without a center there is nothing to measure from.
type ResolutionError struct {
	Address string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("could not geocode center address: %q", e.Address)
}

// Geocoder resolves free-text addresses into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (models.Location, error)
}

// NominatimGeocoder resolves addresses through the OpenStreetMap Nominatim
// search API, riding the shared retrying HTTP client.
type NominatimGeocoder struct {
	client  *httpclient.Client
	baseURL string
}

// NewNominatimGeocoder creates a geocoder backed by the given client.
func NewNominatimGeocoder(client *httpclient.Client) *NominatimGeocoder {
	return &NominatimGeocoder{client: client, baseURL: nominatimSearchURL}
}

// Geocode looks up an address and returns the best match's coordinates, or
// a *ResolutionError when nothing matches.
func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (models.Location, error) {
	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("limit", "1")

	// Nominatim returns coordinates as strings.
	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := g.client.FetchJSON(ctx, g.baseURL, params, nil, &results); err != nil {
		return models.Location{}, err
	}

	if len(results) == 0 {
		return models.Location{}, &ResolutionError{Address: address}
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil || !ValidCoords(lat, lon) {
		return models.Location{}, &ResolutionError{Address: address}
	}

	return models.Location{Lat: lat, Lon: lon}, nil
}
