package config

import (
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FLEET_URL", "https://fleet.example.test")
	t.Setenv("FLEET_API_TOKEN", "token")
	for _, key := range []string{
		"HTTP_ADDR", "METRICS_ADDR", "FLEET_REQUEST_TIMEOUT", "FLEET_API_RPS",
		"QUERY_STALE_TIME", "QUERY_CACHE_SIZE", "CONFIG_REFRESH_INTERVAL", "AUTH_COOKIE_SECURE", "STATIC_DIR",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPAddr != defaultHTTPAddr {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, defaultHTTPAddr)
	}
	if cfg.FleetRequestTimeout != defaultRequestTimeout {
		t.Fatalf("FleetRequestTimeout = %s", cfg.FleetRequestTimeout)
	}
	if cfg.QueryStaleTime != 0 || cfg.ConfigRefreshInterval != 0 || cfg.FleetAPIRPS != 0 {
		t.Fatalf("unexpected non-zero defaults: %+v", cfg)
	}
	if cfg.QueryCacheSize != defaultQueryCacheSize {
		t.Fatalf("QueryCacheSize = %d", cfg.QueryCacheSize)
	}
	if cfg.StaticDir != defaultStaticDir {
		t.Fatalf("StaticDir = %q, want %q", cfg.StaticDir, defaultStaticDir)
	}
}

func TestLoadParsesDurations(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("QUERY_STALE_TIME", "30s")
	t.Setenv("CONFIG_REFRESH_INTERVAL", "5m")
	t.Setenv("FLEET_REQUEST_TIMEOUT", "bogus")
	t.Setenv("FLEET_API_RPS", "2.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.QueryStaleTime != 30*time.Second {
		t.Fatalf("QueryStaleTime = %s", cfg.QueryStaleTime)
	}
	if cfg.ConfigRefreshInterval != 5*time.Minute {
		t.Fatalf("ConfigRefreshInterval = %s", cfg.ConfigRefreshInterval)
	}
	if cfg.FleetRequestTimeout != defaultRequestTimeout {
		t.Fatalf("invalid timeout should keep the default, got %s", cfg.FleetRequestTimeout)
	}
	if cfg.FleetAPIRPS != 2.5 {
		t.Fatalf("FleetAPIRPS = %v", cfg.FleetAPIRPS)
	}
}

func TestLoadRequiresURLAndToken(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("FLEET_API_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without FLEET_API_TOKEN")
	}
	if _, err := LoadWithoutToken(); err != nil {
		t.Fatalf("LoadWithoutToken() error = %v", err)
	}

	t.Setenv("FLEET_URL", "")
	if _, err := LoadWithoutToken(); err == nil {
		t.Fatal("expected error without FLEET_URL")
	}
}
