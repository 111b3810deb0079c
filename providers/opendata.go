package providers

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"nyc-apartments/config"
	"nyc-apartments/geo"
	"nyc-apartments/httpclient"
	"nyc-apartments/models"
	"nyc-apartments/utils"
)

// Housing New York Units by Building dataset on NYC Open Data (Socrata).
// Landing page: https://data.cityofnewyork.us/Housing-Development/Housing-New-York-Units-by-Building/hg8x-zxpr
const openDataDatasetURL = "https://data.cityofnewyork.us/resource/hg8x-zxpr.json"

const openDataMaxRows = 5000

// OpenDataProvider serves HPD's Housing New York Units by Building
// dataset. It is not a live listing feed — it exposes affordable housing
// production data at the building level, so normalized records carry no
// rent or bedroom counts.
type OpenDataProvider struct {
	client *httpclient.Client
	logger *utils.Logger
	url    string
}

// NewOpenDataProvider creates the NYC Open Data buildings provider.
func NewOpenDataProvider(client *httpclient.Client, logger *utils.Logger) *OpenDataProvider {
	return &OpenDataProvider{client: client, logger: logger, url: openDataDatasetURL}
}

func (p *OpenDataProvider) Name() string { return "nyc_open_data_hny_buildings" }

// Fetch downloads the dataset and normalizes each row, skipping rows that
// cannot be mapped.
func (p *OpenDataProvider) Fetch(ctx context.Context, cfg *config.Config, _ models.Location) ([]*models.Listing, error) {
	headers := map[string]string{}
	if cfg.OpenDataAppToken != "" {
		headers["X-App-Token"] = cfg.OpenDataAppToken
	}

	params := url.Values{}
	params.Set("$limit", strconv.Itoa(openDataMaxRows))

	var raw any
	if err := p.client.FetchJSON(ctx, p.url, params, headers, &raw); err != nil {
		return nil, err
	}

	rows, ok := raw.([]any)
	if !ok {
		p.logger.Warn("[%s] Unexpected response shape (not a list) — returning no results", p.Name())
		return nil, nil
	}

	listings := make([]*models.Listing, 0, len(rows))
	skipped := 0
	for _, item := range rows {
		row, ok := item.(map[string]any)
		if !ok {
			skipped++
			continue
		}
		listing, err := p.normalize(row)
		if err != nil {
			p.logger.Debug("[%s] Skipping bad row: %v", p.Name(), err)
			skipped++
			continue
		}
		listings = append(listings, listing)
	}

	if skipped > 0 {
		p.logger.Warn("[%s] Skipped %d unmappable rows", p.Name(), skipped)
	}
	return listings, nil
}

func (p *OpenDataProvider) normalize(row map[string]any) (*models.Listing, error) {
	buildingID := firstString(row, "building_id", "buildingid", "building_id_number")
	projectID := firstString(row, "project_id", "projectid")

	houseNum := firstString(row, "house_number", "low_house_number", "high_house_number")
	street := firstString(row, "street_name", "streetname")
	borough := firstString(row, "borough", "boro")

	id := buildingID
	if id == "" {
		id = projectID
	}
	if id == "" {
		if houseNum == "" && street == "" && borough == "" {
			return nil, errors.New("row has no identifying fields")
		}
		id = houseNum + "|" + street + "|" + borough
	}

	address := houseNum
	if street != "" {
		if address != "" {
			address += " "
		}
		address += street
	}
	if address == "" {
		address = "Unknown address"
	}
	if borough != "" {
		address += ", " + borough
	}

	lat, lon := extractCoords(row)

	return &models.Listing{
		ID:           id,
		Provider:     p.Name(),
		Title:        strPtr(firstString(row, "project_name")),
		Address:      address,
		Neighborhood: strPtr(firstString(row, "nta_name", "neighborhood")),
		City:         "New York",
		State:        "NY",
		Zipcode:      strPtr(firstString(row, "postcode", "zip")),
		Lat:          lat,
		Lon:          lon,
		Raw:          row,
	}, nil
}

// extractCoords pulls a coordinate pair from either flat latitude/longitude
// columns or a GeoJSON-style location object ([lon, lat] order). A pair
// that fails to parse or falls outside valid decimal-degree ranges is
// dropped whole, keeping the both-or-neither invariant.
func extractCoords(row map[string]any) (*float64, *float64) {
	if rawLat, okLat := row["latitude"]; okLat {
		if rawLon, okLon := row["longitude"]; okLon {
			lat, latOK := floatVal(rawLat)
			lon, lonOK := floatVal(rawLon)
			if latOK && lonOK && geo.ValidCoords(lat, lon) {
				return &lat, &lon
			}
			return nil, nil
		}
	}

	loc, ok := row["location"].(map[string]any)
	if !ok {
		return nil, nil
	}
	coords, ok := loc["coordinates"].([]any)
	if !ok || len(coords) != 2 {
		return nil, nil
	}
	lon, lonOK := floatVal(coords[0])
	lat, latOK := floatVal(coords[1])
	if !latOK || !lonOK || !geo.ValidCoords(lat, lon) {
		return nil, nil
	}
	return &lat, &lon
}
