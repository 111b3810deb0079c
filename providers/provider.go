package providers

import (
	"context"

	"nyc-apartments/config"
	"nyc-apartments/models"
	"nyc-apartments/utils"
)

// Provider is a pluggable listing source. Name is the stable short
// identifier used for CLI selection and persistence keys; Fetch returns
// normalized listings for the given configuration. Implementations must
// tolerate individual malformed upstream rows by skipping them.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, cfg *config.Config, center models.Location) ([]*models.Listing, error)
}

// Registry holds the registered providers. Providers register explicitly
// at process startup; there is no runtime scanning. Registration order is
// preserved and is the order providers are fetched in.
type Registry struct {
	logger    *utils.Logger
	providers []Provider
	byName    map[string]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *utils.Logger) *Registry {
	return &Registry{
		logger: logger,
		byName: make(map[string]struct{}),
	}
}

// Register adds a provider. A duplicate name is rejected with a warning so
// a misconfigured double-registration cannot shadow an earlier provider.
func (r *Registry) Register(p Provider) {
	if _, dup := r.byName[p.Name()]; dup {
		r.logger.Warn("[registry] Provider %q already registered — ignoring duplicate", p.Name())
		return
	}
	r.byName[p.Name()] = struct{}{}
	r.providers = append(r.providers, p)
}

// All returns every registered provider in registration order.
func (r *Registry) All() []Provider {
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Discover returns the providers enabled by name, in registration order.
// An empty enabled list means all providers. Names that match nothing are
// dropped, but each one is logged so a typo is visible.
func (r *Registry) Discover(enabled []string) []Provider {
	if len(enabled) == 0 {
		return r.All()
	}

	want := make(map[string]struct{}, len(enabled))
	for _, name := range enabled {
		want[name] = struct{}{}
		if _, known := r.byName[name]; !known {
			r.logger.Warn("[registry] Unknown provider name %q — skipping", name)
		}
	}

	var out []Provider
	for _, p := range r.providers {
		if _, ok := want[p.Name()]; ok {
			out = append(out, p)
		}
	}
	return out
}
