package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Config{
		HTTP:  HTTPConfig{Port: 8081},
		Store: StoreConfig{Seed: "data/restaurants.json"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	if cfg.Cache.Driver != "valkey" {
		t.Errorf("expected default driver valkey, got %q", cfg.Cache.Driver)
	}
	if cfg.Cache.KeyPrefix != "qeats:nearby:" {
		t.Errorf("unexpected key prefix %q", cfg.Cache.KeyPrefix)
	}
	if cfg.Cache.EntryTTL() != time.Hour {
		t.Errorf("expected 1h entry ttl, got %v", cfg.Cache.EntryTTL())
	}
	if !cfg.Cache.PopulateGuard() {
		t.Error("populate guard must default to enabled")
	}
	if cfg.Store.Driver != "memory" {
		t.Errorf("expected default store driver memory, got %q", cfg.Store.Driver)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected shutdown 10s, got %d", cfg.HTTP.ShutdownSec)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"invalid port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"unknown cache driver", func(c *Config) { c.Cache.Driver = "memcached" }, "cache.driver"},
		{"enabled cache without addrs", func(c *Config) { c.Cache.Enabled = true }, "cache.addrs"},
		{"disabled cache without addrs", func(c *Config) { c.Cache.Enabled = false }, ""},
		{"memory without seed", func(c *Config) { c.Store.Seed = "" }, "store.seed"},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = "postgres" }, "store.dsn"},
		{"unknown store driver", func(c *Config) { c.Store.Driver = "mongo" }, "store.driver"},
		{"bad timezone", func(c *Config) { c.Search.Timezone = "Mars/Olympus" }, "search.timezone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("QEATS_CACHE_ADDR", "valkey:6379")
	t.Setenv("QEATS_GUARD", "")

	cfg, err := Parse([]byte(`
http:
  port: ${QEATS_PORT:-9090}
cache:
  enabled: true
  addrs: ["${QEATS_CACHE_ADDR}"]
  entry_ttl_sec: 60
  guard_populate: ${QEATS_GUARD:-false}
store:
  seed: data/restaurants.json
search:
  timezone: Asia/Kolkata
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected default port 9090, got %d", cfg.HTTP.Port)
	}
	if len(cfg.Cache.Addrs) != 1 || cfg.Cache.Addrs[0] != "valkey:6379" {
		t.Errorf("unexpected addrs %v", cfg.Cache.Addrs)
	}
	if cfg.Cache.EntryTTL() != time.Minute {
		t.Errorf("expected 1m ttl, got %v", cfg.Cache.EntryTTL())
	}
	if cfg.Cache.PopulateGuard() {
		t.Error("expected populate guard disabled")
	}
	loc, err := cfg.Search.Location()
	if err != nil || loc.String() != "Asia/Kolkata" {
		t.Errorf("unexpected location %v (%v)", loc, err)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected yaml error")
	}
	if _, err := Parse([]byte("http:\n  port: 8080\n")); err == nil {
		t.Fatal("expected validation error for missing seed")
	}
}

func TestLoad_Local(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Driver != "memory" {
		t.Errorf("expected memory store locally, got %q", cfg.Store.Driver)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("expected local, got %q", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("expected prod, got %q", got)
	}
}
