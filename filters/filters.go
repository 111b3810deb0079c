package filters

import (
	"nyc-apartments/config"
	"nyc-apartments/geo"
	"nyc-apartments/models"
)

// ByRadius keeps listings with both coordinates present and within
// radiusKm (inclusive) of center. Listings missing either coordinate are
// dropped unconditionally.
func ByRadius(listings []*models.Listing, center models.Location, radiusKm float64) []*models.Listing {
	result := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if !l.HasCoords() {
			continue
		}
		point := models.Location{Lat: *l.Lat, Lon: *l.Lon}
		if geo.WithinRadius(center, point, radiusKm) {
			result = append(result, l)
		}
	}
	return result
}

// ByPrice keeps listings whose price falls inside the configured inclusive
// bounds. Listings without a price always pass; they can still be useful
// for non-price queries.
func ByPrice(listings []*models.Listing, minPrice, maxPrice *int) []*models.Listing {
	result := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if l.Price == nil {
			result = append(result, l)
			continue
		}
		if minPrice != nil && *l.Price < *minPrice {
			continue
		}
		if maxPrice != nil && *l.Price > *maxPrice {
			continue
		}
		result = append(result, l)
	}
	return result
}

// ByBeds is the bedroom-count twin of ByPrice: a missing bed count always
// passes, a present one must fall inside the inclusive bounds.
func ByBeds(listings []*models.Listing, minBeds, maxBeds *float64) []*models.Listing {
	result := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if l.Beds == nil {
			result = append(result, l)
			continue
		}
		if minBeds != nil && *l.Beds < *minBeds {
			continue
		}
		if maxBeds != nil && *l.Beds > *maxBeds {
			continue
		}
		result = append(result, l)
	}
	return result
}

// Limit truncates to the first n listings when n is positive.
func Limit(listings []*models.Listing, n *int) []*models.Listing {
	if n != nil && *n > 0 && len(listings) > *n {
		return listings[:*n]
	}
	return listings
}

// Apply runs the configured filters in their fixed order: radius, price,
// beds, then the optional result limit. When cfg.LimitAfterSort is set the
// limit is deferred so the caller can truncate the sorted result instead.
func Apply(listings []*models.Listing, cfg *config.Config, center models.Location) []*models.Listing {
	result := ByRadius(listings, center, cfg.RadiusKm)
	result = ByPrice(result, cfg.MinPrice, cfg.MaxPrice)
	result = ByBeds(result, cfg.MinBeds, cfg.MaxBeds)

	if !cfg.LimitAfterSort {
		result = Limit(result, cfg.Limit)
	}
	return result
}
