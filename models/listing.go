package models

// Listing is the normalized apartment/building record shared by all
// providers. The (Provider, ID) pair is the process-wide dedupe and
// persistence key. Once a provider's normalization produces a Listing the
// pipeline treats it as read-only: it filters, reorders and dedupes, but
// never mutates fields.
type Listing struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`

	Title *string `json:"title,omitempty"`

	Address      string  `json:"address"`
	Neighborhood *string `json:"neighborhood,omitempty"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Zipcode      *string `json:"zipcode,omitempty"`

	// After normalization Lat and Lon are either both set or both nil.
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`

	// Monthly rent in dollars, when the provider reports one.
	Price *int     `json:"price,omitempty"`
	Beds  *float64 `json:"beds,omitempty"`
	Baths *float64 `json:"baths,omitempty"`

	URL *string `json:"url,omitempty"`

	// Raw keeps the provider's original payload for debugging. The
	// pipeline never interprets it.
	Raw map[string]any `json:"raw,omitempty"`
}

// HasCoords reports whether the listing carries a usable coordinate pair.
func (l *Listing) HasCoords() bool {
	return l.Lat != nil && l.Lon != nil
}

// Location is a (latitude, longitude) pair in decimal degrees, used for
// both the search center and listing coordinates.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
