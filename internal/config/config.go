// Package config loads the gateway's configuration the way the teacher's
// internal/config does: spf13/viper with code defaults, an optional YAML
// file, and SEARCHGW_-prefixed environment overrides (spec §6).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/S-Corkum/search-gateway/internal/classifier"
	"github.com/S-Corkum/search-gateway/internal/dispatch"
	"github.com/S-Corkum/search-gateway/internal/engine"
)

// Config holds the complete process configuration.
type Config struct {
	API       APIConfig         `mapstructure:"api"`
	Cache     CacheConfig       `mapstructure:"cache"`
	Classifier classifier.Config `mapstructure:"classifier"`
	Dispatch  dispatch.Config   `mapstructure:"dispatch"`
	Engine    EngineConfig      `mapstructure:"engine"`
	Health    HealthConfig      `mapstructure:"health"`
	Tenant    TenantConfig      `mapstructure:"tenant"`
}

type APIConfig struct {
	ListenAddress string        `mapstructure:"listen_address"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
}

// CacheConfig wraps the L1/L2 settings plus the Redis connection string;
// cache.L1/L2 themselves are constructed from these fields in cmd/server.
type CacheConfig struct {
	L1MaxEntries  int           `mapstructure:"l1_max_entries"`
	L1DefaultTTL  time.Duration `mapstructure:"l1_default_ttl_ms"`
	L2Enabled     bool          `mapstructure:"l2_enabled"`
	L2Endpoint    string        `mapstructure:"l2_endpoint"`
	SmallTTL      time.Duration `mapstructure:"small_result_ttl_ms"`
	LongTTL       time.Duration `mapstructure:"long_ttl_ms"`
	ShortTTL      time.Duration `mapstructure:"short_ttl_ms"`
}

type EngineConfig struct {
	Simple  engine.Config `mapstructure:"simple"`
	Complex engine.Config `mapstructure:"complex"`
}

type HealthConfig struct {
	ProbeInterval time.Duration `mapstructure:"probe_interval_ms"`
}

// TenantConfig seeds the routing-strategy lookup (§4.4 "pluggable
// lookup"). Overrides is keyed by tenant id; a tenant absent from the
// map falls back to the shared-index default.
type TenantConfig struct {
	Overrides map[string]TenantOverride `mapstructure:"overrides"`
}

type TenantOverride struct {
	Dedicated    bool   `mapstructure:"dedicated"`
	IndexName    string `mapstructure:"index_name"`
	ShardCount   int    `mapstructure:"shard_count"`
	ReplicaCount int    `mapstructure:"replica_count"`
}

// Load mirrors the teacher's internal/config.Load: defaults first, then an
// optional file (SEARCHGW_CONFIG_FILE or configs/config.yaml), then
// SEARCHGW_-prefixed environment variables, which take precedence.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	configFile := os.Getenv("SEARCHGW_CONFIG_FILE")
	if configFile == "" {
		configFile = "configs/config.yaml"
	}
	v.SetConfigFile(configFile)

	v.SetEnvPrefix("SEARCHGW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.listen_address", ":8080")
	v.SetDefault("api.read_timeout", 10*time.Second)
	v.SetDefault("api.write_timeout", 10*time.Second)
	v.SetDefault("api.idle_timeout", 90*time.Second)

	v.SetDefault("cache.l1_max_entries", 50000)
	v.SetDefault("cache.l1_default_ttl_ms", 30*time.Second)
	v.SetDefault("cache.l2_enabled", false)
	v.SetDefault("cache.l2_endpoint", "localhost:6379")
	v.SetDefault("cache.small_result_ttl_ms", 10*time.Second)
	v.SetDefault("cache.long_ttl_ms", 5*time.Minute)
	v.SetDefault("cache.short_ttl_ms", 30*time.Second)

	v.SetDefault("classifier.simple_threshold", 3.0)
	v.SetDefault("classifier.complex_threshold", 8.0)
	v.SetDefault("classifier.long_query_chars", 100)
	v.SetDefault("classifier.large_page_size", 100)
	v.SetDefault("classifier.base_latency_simple_ms", 50)
	v.SetDefault("classifier.base_latency_hybrid_ms", 150)
	v.SetDefault("classifier.base_latency_complex_ms", 200)

	v.SetDefault("dispatch.default_timeout_ms", 700)
	v.SetDefault("dispatch.min_timeout_ms", 50)
	v.SetDefault("dispatch.max_timeout_ms", 2000)
	v.SetDefault("dispatch.hybrid_overfetch_factor", 3)
	v.SetDefault("dispatch.fallback_timeout_ms", 200)
	v.SetDefault("dispatch.hybrid_filter_fields", []string{"entity", "status", "facets"})
	v.SetDefault("dispatch.coalesce_in_flight", true)

	v.SetDefault("engine.simple.endpoint", "http://localhost:9200")
	v.SetDefault("engine.simple.request_timeout", 2*time.Second)
	v.SetDefault("engine.simple.max_retries", 1)
	v.SetDefault("engine.simple.circuit_breaker.max_requests", 5)
	v.SetDefault("engine.simple.circuit_breaker.interval", 30*time.Second)
	v.SetDefault("engine.simple.circuit_breaker.timeout", 15*time.Second)

	v.SetDefault("engine.complex.endpoint", "http://localhost:9300")
	v.SetDefault("engine.complex.request_timeout", 2*time.Second)
	v.SetDefault("engine.complex.max_retries", 1)
	v.SetDefault("engine.complex.circuit_breaker.max_requests", 5)
	v.SetDefault("engine.complex.circuit_breaker.interval", 30*time.Second)
	v.SetDefault("engine.complex.circuit_breaker.timeout", 15*time.Second)

	v.SetDefault("health.probe_interval_ms", 10*time.Second)

	v.SetDefault("tenant.overrides", map[string]any{})
}
