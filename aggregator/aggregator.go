package aggregator

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"nyc-apartments/config"
	"nyc-apartments/filters"
	"nyc-apartments/geo"
	"nyc-apartments/models"
	"nyc-apartments/providers"
	"nyc-apartments/utils"
)

// ErrNoCenter means the configuration carries neither explicit center
// coordinates nor an address to geocode. It is detected before any
// network access and aborts the run.
var ErrNoCenter = errors.New("either CENTER_LAT/CENTER_LON or a center address must be provided")

// Aggregator orchestrates the whole search pipeline: resolve the center,
// discover providers, fetch from each with isolated failure handling, then
// dedupe, filter and sort.
type Aggregator struct {
	registry *providers.Registry
	geocoder geo.Geocoder
	logger   *utils.Logger

	mu     sync.Mutex
	center *models.Location
}

// New creates an Aggregator over the given registry and geocoder.
func New(registry *providers.Registry, geocoder geo.Geocoder, logger *utils.Logger) *Aggregator {
	return &Aggregator{registry: registry, geocoder: geocoder, logger: logger}
}

// ResolveCenter produces the search center for a configuration. Explicit
// coordinates win and cost no network call; otherwise the center address
// is geocoded. A successful resolution is cached for the lifetime of the
// Aggregator (one run), so repeated calls are consistent and cost a single
// geocoding lookup.
func (a *Aggregator) ResolveCenter(ctx context.Context, cfg *config.Config) (models.Location, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.center != nil {
		return *a.center, nil
	}

	if cfg.HasExplicitCenter() {
		loc := models.Location{Lat: *cfg.CenterLat, Lon: *cfg.CenterLon}
		a.center = &loc
		return loc, nil
	}

	if cfg.CenterAddress == "" {
		return models.Location{}, ErrNoCenter
	}

	loc, err := a.geocoder.Geocode(ctx, cfg.CenterAddress)
	if err != nil {
		return models.Location{}, err
	}
	a.center = &loc
	return loc, nil
}

// Run executes the pipeline and returns the ordered result set. Only
// center-resolution errors propagate; a provider failure, returned or
// panicked, is logged and that provider contributes zero listings.
func (a *Aggregator) Run(ctx context.Context, cfg *config.Config) ([]*models.Listing, error) {
	center, err := a.ResolveCenter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.logger.Info("[aggregator] Search center: (%.5f, %.5f), radius %.1f km",
		center.Lat, center.Lon, cfg.RadiusKm)

	enabled := a.registry.Discover(cfg.Providers)
	names := make([]string, len(enabled))
	for i, p := range enabled {
		names[i] = p.Name()
	}
	a.logger.Info("[aggregator] Enabled providers: %v", names)

	// Fetch from each provider concurrently. Results land in
	// discovery-order slots so concatenation stays deterministic
	// regardless of completion order, and one provider's failure cannot
	// touch another's slot.
	results := make([][]*models.Listing, len(enabled))
	pool := utils.NewWorkerPool(cfg.MaxConcurrency, 0)
	for i, p := range enabled {
		i, p := i, p
		pool.Submit(func() {
			defer func() {
				if r := recover(); r != nil {
					a.logger.Error("[aggregator] Provider %s panicked: %v", p.Name(), r)
				}
			}()
			fetched, err := p.Fetch(ctx, cfg, center)
			if err != nil {
				a.logger.Error("[aggregator] Provider %s failed: %v", p.Name(), err)
				return
			}
			a.logger.Info("[aggregator] Provider %s returned %d listings", p.Name(), len(fetched))
			results[i] = fetched
		})
	}
	pool.Wait()

	var all []*models.Listing
	for _, batch := range results {
		all = append(all, batch...)
	}

	deduped := dedupe(all)
	if dropped := len(all) - len(deduped); dropped > 0 {
		a.logger.Debug("[aggregator] Dropped %d duplicate listings", dropped)
	}

	filtered := filters.Apply(deduped, cfg, center)

	sortByDistanceThenPrice(filtered, center)

	if cfg.LimitAfterSort {
		filtered = filters.Limit(filtered, cfg.Limit)
	}

	a.logger.Info("[aggregator] Final result: %d listings", len(filtered))
	return filtered, nil
}

// dedupe drops listings whose (provider, id) key was already seen,
// preserving insertion order; the first occurrence wins.
func dedupe(listings []*models.Listing) []*models.Listing {
	seen := make(map[string]struct{}, len(listings))
	result := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		key := l.Provider + "\x00" + l.ID
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, l)
	}
	return result
}

// sortByDistanceThenPrice orders listings by ascending (distance, price).
// A listing without coordinates sorts as infinitely far, one without a
// price as infinitely expensive; ties keep their pre-sort order.
func sortByDistanceThenPrice(listings []*models.Listing, center models.Location) {
	distances := make([]float64, len(listings))
	prices := make([]float64, len(listings))
	for i, l := range listings {
		if l.HasCoords() {
			distances[i] = geo.Distance(center, models.Location{Lat: *l.Lat, Lon: *l.Lon})
		} else {
			distances[i] = math.Inf(1)
		}
		if l.Price != nil {
			prices[i] = float64(*l.Price)
		} else {
			prices[i] = math.Inf(1)
		}
	}

	idx := make([]int, len(listings))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if distances[idx[a]] != distances[idx[b]] {
			return distances[idx[a]] < distances[idx[b]]
		}
		return prices[idx[a]] < prices[idx[b]]
	})

	sorted := make([]*models.Listing, len(listings))
	for i, j := range idx {
		sorted[i] = listings[j]
	}
	copy(listings, sorted)
}
