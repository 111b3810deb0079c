package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the full search configuration, loaded from environment
// variables (optionally a .env file) with CLI flags layered on top. It is
// constructed once per invocation and passed read-only into the pipeline.
type Config struct {
	// Search center: either explicit coordinates or an address to geocode.
	CenterAddress string
	CenterLat     *float64
	CenterLon     *float64

	// Search constraints. Bounds are inclusive and independently optional.
	RadiusKm float64
	MinPrice *int
	MaxPrice *int
	MinBeds  *float64
	MaxBeds  *float64

	// Providers to enable by name; empty means all registered.
	Providers []string

	OutputFormat string
	Limit        *int
	// LimitAfterSort truncates the sorted result instead of the pre-sort
	// working set. Off by default for compatibility with the historical
	// filter-then-limit-then-sort order.
	LimitAfterSort bool

	// Third-party API credentials.
	OpenDataAppToken string
	RentcastAPIKey   string

	// HTTP behaviour shared by all providers.
	GeocoderUserAgent string
	HTTPProxy         string
	HTTPTimeoutSec    int
	MaxRetries        int
	BackoffBaseMs     int

	// Browser-scraping knobs.
	MaxConcurrency int
	RateLimitMs    int
	ChromeBin      string
	ScrapePages    int

	// Seen-store (Postgres) connection.
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		CenterAddress: getEnv("CENTER_ADDRESS", ""),
		CenterLat:     getEnvFloatPtr("CENTER_LAT"),
		CenterLon:     getEnvFloatPtr("CENTER_LON"),

		RadiusKm: getEnvFloat("RADIUS_KM", 3.0),
		MinPrice: getEnvIntPtr("MIN_PRICE"),
		MaxPrice: getEnvIntPtr("MAX_PRICE"),
		MinBeds:  getEnvFloatPtr("MIN_BEDS"),
		MaxBeds:  getEnvFloatPtr("MAX_BEDS"),

		Providers: splitList(getEnv("PROVIDERS", "")),

		OutputFormat:   getEnv("OUTPUT_FORMAT", "table"),
		Limit:          getEnvIntPtr("LIMIT"),
		LimitAfterSort: getEnvBool("LIMIT_AFTER_SORT", false),

		OpenDataAppToken: getEnv("NYC_OPEN_DATA_APP_TOKEN", ""),
		RentcastAPIKey:   getEnv("RENTCAST_API_KEY", ""),

		GeocoderUserAgent: getEnv("GEOCODER_USER_AGENT", "nyc-apartments-search"),
		HTTPProxy:         getEnv("HTTP_PROXY", ""),
		HTTPTimeoutSec:    getEnvInt("HTTP_TIMEOUT_SEC", 10),
		MaxRetries:        getEnvInt("MAX_RETRIES", 3),
		BackoffBaseMs:     getEnvInt("BACKOFF_BASE_MS", 500),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 2000),
		ChromeBin:      getEnv("CHROME_BIN", ""),
		ScrapePages:    getEnvInt("SCRAPE_PAGES", 1),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "apartments"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "apartments123"),
		PostgresDB:       getEnv("POSTGRES_DB", "apartments_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}
}

// DSN returns the PostgreSQL connection string for the seen-store.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// HasExplicitCenter reports whether both center coordinates were supplied,
// making geocoding unnecessary.
func (c *Config) HasExplicitCenter() bool {
	return c.CenterLat != nil && c.CenterLon != nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvIntPtr(key string) *int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return &n
		}
	}
	return nil
}

func getEnvFloatPtr(key string) *float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return &f
		}
	}
	return nil
}
