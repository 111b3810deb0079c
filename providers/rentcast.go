package providers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"nyc-apartments/config"
	"nyc-apartments/geo"
	"nyc-apartments/httpclient"
	"nyc-apartments/models"
	"nyc-apartments/utils"
)

const rentcastListingsURL = "https://api.rentcast.io/v1/listings/rental/long-term"

// RentCast caps page size at 500.
const rentcastMaxLimit = 500

const kmToMiles = 0.621371

// RentcastProvider queries the RentCast long-term rental listings API
// around the resolved search center.
type RentcastProvider struct {
	client *httpclient.Client
	logger *utils.Logger
	url    string
}

// NewRentcastProvider creates the RentCast rental listings provider.
func NewRentcastProvider(client *httpclient.Client, logger *utils.Logger) *RentcastProvider {
	return &RentcastProvider{client: client, logger: logger, url: rentcastListingsURL}
}

func (p *RentcastProvider) Name() string { return "rentcast_rental_listings" }

// Fetch queries RentCast for active rentals near the center. Without an
// API key the provider yields no results so the rest of the run can
// proceed.
func (p *RentcastProvider) Fetch(ctx context.Context, cfg *config.Config, center models.Location) ([]*models.Listing, error) {
	if cfg.RentcastAPIKey == "" {
		p.logger.Debug("[%s] No API key configured — skipping", p.Name())
		return nil, nil
	}

	// RentCast expects radius in miles.
	radiusKm := cfg.RadiusKm
	if radiusKm < 0.1 {
		radiusKm = 0.1
	}
	radiusMiles := radiusKm * kmToMiles

	// Respect the global result limit when choosing the page size.
	requested := 100
	if cfg.Limit != nil && *cfg.Limit > 0 {
		requested = *cfg.Limit
		if requested > rentcastMaxLimit {
			requested = rentcastMaxLimit
		}
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(center.Lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(center.Lon, 'f', -1, 64))
	params.Set("radius", strconv.FormatFloat(radiusMiles, 'f', -1, 64))
	params.Set("status", "Active")
	params.Set("limit", strconv.Itoa(requested))

	// Push configured bounds upstream using RentCast's range syntax; the
	// pipeline still re-applies them locally.
	if r := rangeParam(cfg.MinPrice, cfg.MaxPrice); r != "" {
		params.Set("price", r)
	}
	if r := rangeParamFloat(cfg.MinBeds, cfg.MaxBeds); r != "" {
		params.Set("bedrooms", r)
	}

	headers := map[string]string{"X-Api-Key": cfg.RentcastAPIKey}

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

func (p *RentcastProvider) normalize(row map[string]any) (*models.Listing, error) {
	city := firstString(row, "city")
	if city == "" {
		city = "New York"
	}
	state := firstString(row, "state")
	if state == "" {
		state = "NY"
	}
	zipcode := firstString(row, "zipCode")

	id := firstString(row, "id", "listingId", "zillowId", "mlsId")
	if id == "" {
		// Address-based fallback ID.
		bits := make([]string, 0, 4)
		for _, s := range []string{firstString(row, "addressLine1"), city, state, zipcode} {
			if s != "" {
				bits = append(bits, s)
			}
		}
		if len(bits) == 0 {
			return nil, errors.New("row has no identifying fields")
		}
		id = bits[0]
		for _, b := range bits[1:] {
			id += "|" + b
		}
	}

	formattedAddress := firstString(row, "formattedAddress")
	address := formattedAddress
	if address == "" {
		if line1 := firstString(row, "addressLine1"); line1 != "" {
			address = line1 + ", " + city + ", " + state
			if zipcode != "" {
				address += ", " + zipcode
			}
		} else {
			address = "Unknown address"
		}
	}

	var lat, lon *float64
	if rawLat, okLat := row["latitude"]; okLat {
		if rawLon, okLon := row["longitude"]; okLon {
			la, laOK := floatVal(rawLat)
			lo, loOK := floatVal(rawLon)
			if laOK && loOK && geo.ValidCoords(la, lo) {
				lat, lon = &la, &lo
			}
		}
	}

	var price *int
	if v, ok := intVal(row["price"]); ok && v >= 0 {
		price = &v
	}
	var beds *float64
	if v, ok := floatVal(row["bedrooms"]); ok {
		beds = &v
	}
	var baths *float64
	if v, ok := floatVal(row["bathrooms"]); ok {
		baths = &v
	}

	// Derive a short title from bedrooms, property type and status.
	title := ""
	if beds != nil {
		title = fmt.Sprintf("%g BR", *beds)
	}
	if pt := firstString(row, "propertyType"); pt != "" {
		if title != "" {
			title += " "
		}
		title += pt
	}
	if st := firstString(row, "status"); st != "" {
		if title != "" {
			title += " "
		}
		title += "(" + st + ")"
	}

	var listingURL *string
	if formattedAddress != "" {
		u := "https://app.rentcast.io/property-reports?address=" + url.QueryEscape(formattedAddress)
		listingURL = &u
	}

	return &models.Listing{
		ID:       id,
		Provider: p.Name(),
		Title:    strPtr(title),
		Address:  address,
		City:     city,
		State:    state,
		Zipcode:  strPtr(zipcode),
		Lat:      lat,
		Lon:      lon,
		Price:    price,
		Beds:     beds,
		Baths:    baths,
		URL:      listingURL,
		Raw:      row,
	}, nil
}

func rangeParam(min, max *int) string {
	if min == nil && max == nil {
		return ""
	}
	lo, hi := "*", "*"
	if min != nil {
		lo = strconv.Itoa(*min)
	}
	if max != nil {
		hi = strconv.Itoa(*max)
	}
	return lo + ":" + hi
}

func rangeParamFloat(min, max *float64) string {
	if min == nil && max == nil {
		return ""
	}
	lo, hi := "*", "*"
	if min != nil {
		lo = strconv.FormatFloat(*min, 'f', -1, 64)
	}
	if max != nil {
		hi = strconv.FormatFloat(*max, 'f', -1, 64)
	}
	return lo + ":" + hi
}
