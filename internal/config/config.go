package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr       = ":8080"
	defaultRequestTimeout = 30 * time.Second
	defaultQueryCacheSize = 512
	defaultStaticDir      = "web/static"
)

type Config struct {
	FleetURL              string
	FleetAPIToken         string
	FleetRequestTimeout   time.Duration
	FleetAPIRPS           float64
	HTTPAddr              string
	MetricsAddr           string
	AuthCookieSecure      bool
	QueryStaleTime        time.Duration
	QueryCacheSize        int
	ConfigRefreshInterval time.Duration
	StaticDir             string
}

type LoadOptions struct {
	RequireAPIToken bool
}

// Load reads the configuration used by every command that talks to Fleet with
// an API token.
func Load() (Config, error) {
	return LoadWithOptions(LoadOptions{RequireAPIToken: true})
}

// LoadWithoutToken is used by login, which obtains the token.
func LoadWithoutToken() (Config, error) {
	return LoadWithOptions(LoadOptions{RequireAPIToken: false})
}

func LoadWithOptions(opts LoadOptions) (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, err
		}
	}

	cfg := Config{
		FleetURL:            strings.TrimSpace(os.Getenv("FLEET_URL")),
		FleetAPIToken:       strings.TrimSpace(os.Getenv("FLEET_API_TOKEN")),
		FleetRequestTimeout: defaultRequestTimeout,
		FleetAPIRPS:         getenvFloatDefault("FLEET_API_RPS", 0),
		HTTPAddr:            getenvDefault("HTTP_ADDR", defaultHTTPAddr),
		MetricsAddr:         strings.TrimSpace(os.Getenv("METRICS_ADDR")),
		AuthCookieSecure:    getenvBoolDefault("AUTH_COOKIE_SECURE", false),
		QueryCacheSize:      getenvIntDefault("QUERY_CACHE_SIZE", defaultQueryCacheSize),
		StaticDir:           getenvDefault("STATIC_DIR", defaultStaticDir),
	}

	if v := os.Getenv("FLEET_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.FleetRequestTimeout = d
		}
	}
	if v := os.Getenv("QUERY_STALE_TIME"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.QueryStaleTime = d
		}
	}
	if v := os.Getenv("CONFIG_REFRESH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.ConfigRefreshInterval = d
		}
	}

	if cfg.FleetURL == "" {
		return cfg, errors.New("FLEET_URL is required")
	}
	if opts.RequireAPIToken && cfg.FleetAPIToken == "" {
		return cfg, errors.New("FLEET_API_TOKEN is required")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func getenvFloatDefault(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return def
	}
	return f
}

func getenvBoolDefault(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	switch v {
	case "1":
		return true
	case "0":
		return false
	default:
		return def
	}
}
