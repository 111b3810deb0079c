package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"nyc-apartments/aggregator"
	"nyc-apartments/config"
	"nyc-apartments/geo"
	"nyc-apartments/httpclient"
	"nyc-apartments/output"
	"nyc-apartments/providers"
	"nyc-apartments/scraper/streeteasy"
	"nyc-apartments/services"
	"nyc-apartments/storage"
	"nyc-apartments/utils"
)

// stringList is a repeatable string flag (e.g. --provider a --provider b).
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	var (
		centerAddress  = flag.String("center-address", "", "Human-readable address used as center point (geocoded)")
		centerLat      = flag.Float64("lat", 0, "Center latitude (decimal degrees)")
		centerLon      = flag.Float64("lon", 0, "Center longitude (decimal degrees)")
		radiusKm       = flag.Float64("radius-km", 3.0, "Search radius in kilometers")
		minPrice       = flag.Int("min-price", 0, "Minimum monthly rent in dollars")
		maxPrice       = flag.Int("max-price", 0, "Maximum monthly rent in dollars")
		minBeds        = flag.Float64("min-beds", 0, "Minimum number of bedrooms")
		maxBeds        = flag.Float64("max-beds", 0, "Maximum number of bedrooms")
		outputFormat   = flag.String("output", "", "Output format: table | json | csv")
		limit          = flag.Int("limit", 0, "Maximum number of results to show")
		limitAfterSort = flag.Bool("limit-after-sort", false, "Apply --limit after the distance sort instead of before (historical behavior truncates pre-sort)")
		saveJSONPath   = flag.String("save-json", "", "Optional path to save the full result set as JSON")
		track          = flag.Bool("track", false, "Record results in the Postgres seen-store")
		newOnly        = flag.Bool("new-only", false, "Only show listings not seen in previous runs (implies --track)")
		verbose        = flag.Bool("verbose", false, "Enable verbose logging")
	)
	var providerNames stringList
	flag.Var(&providerNames, "provider", "Provider to enable by name (repeatable; default: all registered)")
	flag.Parse()

	// Only flags the user actually set override env configuration.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "center-address":
			cfg.CenterAddress = *centerAddress
		case "lat":
			cfg.CenterLat = centerLat
		case "lon":
			cfg.CenterLon = centerLon
		case "radius-km":
			cfg.RadiusKm = *radiusKm
		case "min-price":
			cfg.MinPrice = minPrice
		case "max-price":
			cfg.MaxPrice = maxPrice
		case "min-beds":
			cfg.MinBeds = minBeds
		case "max-beds":
			cfg.MaxBeds = maxBeds
		case "output":
			cfg.OutputFormat = *outputFormat
		case "limit":
			cfg.Limit = limit
		case "limit-after-sort":
			cfg.LimitAfterSort = *limitAfterSort
		case "provider":
			cfg.Providers = providerNames
		}
	})
	if *verbose {
		logger.SetDebug(true)
	}

	logger.Info("=== NYC Apartment Search starting ===")

	client := httpclient.New(httpclient.Options{
		UserAgent:   cfg.GeocoderUserAgent,
		Proxy:       cfg.HTTPProxy,
		Timeout:     time.Duration(cfg.HTTPTimeoutSec) * time.Second,
		MaxRetries:  cfg.MaxRetries,
		BackoffBase: time.Duration(cfg.BackoffBaseMs) * time.Millisecond,
		Logger:      logger,
	})

	registry := providers.NewRegistry(logger)
	registry.Register(providers.NewOpenDataProvider(client, logger))
	registry.Register(providers.NewRentcastProvider(client, logger))
	registry.Register(streeteasy.New(cfg, logger))

	geocoder := geo.NewNominatimGeocoder(client)
	agg := aggregator.New(registry, geocoder, logger)

	listings, err := agg.Run(context.Background(), cfg)
	if err != nil {
		logger.Error("Search failed: %v", err)
		os.Exit(1)
	}

	// Optional Postgres-backed seen history.
	if *track || *newOnly {
		seenStore, err := storage.NewPostgresSeenStore(cfg.DSN(), logger)
		if err != nil {
			logger.Error("Seen-store unavailable: %v", err)
		} else {
			defer seenStore.Close()
			if *newOnly {
				fresh, err := seenStore.FilterNew(listings)
				if err != nil {
					logger.Error("Seen-store filter failed: %v", err)
				} else {
					logger.Info("%d of %d listings are new since last run", len(fresh), len(listings))
					listings = fresh
				}
			} else if err := seenStore.MarkSeen(listings); err != nil {
				logger.Error("Seen-store record failed: %v", err)
			}
		}
	}

	// Optional JSON snapshot export.
	if *saveJSONPath != "" {
		if err := storage.NewJSONStore().Save(*saveJSONPath, listings); err != nil {
			logger.Error("Snapshot save failed: %v", err)
		} else {
			logger.Info("Full result set saved to %s", *saveJSONPath)
		}
	}

	switch strings.ToLower(cfg.OutputFormat) {
	case "json":
		text, err := output.ToJSON(listings)
		if err != nil {
			logger.Error("JSON render failed: %v", err)
			os.Exit(1)
		}
		fmt.Println(text)
	case "csv":
		text, err := output.ToCSV(listings)
		if err != nil {
			logger.Error("CSV render failed: %v", err)
			os.Exit(1)
		}
		fmt.Print(text)
	default:
		output.PrintTable(listings)

		center, err := agg.ResolveCenter(context.Background(), cfg)
		if err == nil {
			reportSvc := services.NewReportService()
			reportSvc.Print(reportSvc.Generate(listings, center))
		}
	}
}
