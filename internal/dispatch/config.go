package dispatch

// Config holds the dispatch.* rows of spec §6.
type Config struct {
	DefaultTimeoutMs      int `mapstructure:"default_timeout_ms"`
	MinTimeoutMs          int `mapstructure:"min_timeout_ms"`
	MaxTimeoutMs          int `mapstructure:"max_timeout_ms"`
	HybridOverfetchFactor int `mapstructure:"hybrid_overfetch_factor"`
	FallbackTimeoutMs     int `mapstructure:"fallback_timeout_ms"`

	// HybridFilterFields are the configured indexed fields (e.g. entity,
	// status, facets) whose exact presence in a hybrid request's filters
	// triggers the simple-engine filter_by_ids call (§4.6).
	HybridFilterFields []string `mapstructure:"hybrid_filter_fields"`

	// CoalesceInFlight enables the optional in-flight-miss coalescing of
	// §5 ("Implementations may optionally coalesce duplicate in-flight
	// misses for the same fingerprint").
	CoalesceInFlight bool `mapstructure:"coalesce_in_flight"`
}

func DefaultConfig() Config {
	return Config{
		DefaultTimeoutMs:      700,
		MinTimeoutMs:          50,
		MaxTimeoutMs:          2000,
		HybridOverfetchFactor: 3,
		FallbackTimeoutMs:     200,
		HybridFilterFields:    []string{"entity", "status", "facets"},
		CoalesceInFlight:      true,
	}
}
