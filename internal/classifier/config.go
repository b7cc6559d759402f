package classifier

// Config holds every tunable named in spec §6's classifier.* rows.
type Config struct {
	SimpleThreshold  float64 `mapstructure:"simple_threshold"`
	ComplexThreshold float64 `mapstructure:"complex_threshold"`
	LongQueryChars   int     `mapstructure:"long_query_chars"`
	LargePageSize    int     `mapstructure:"large_page_size"`

	BaseLatencySimpleMs  int `mapstructure:"base_latency_simple_ms"`
	BaseLatencyHybridMs  int `mapstructure:"base_latency_hybrid_ms"`
	BaseLatencyComplexMs int `mapstructure:"base_latency_complex_ms"`
}

func DefaultConfig() Config {
	return Config{
		SimpleThreshold:      3,
		ComplexThreshold:     8,
		LongQueryChars:       100,
		LargePageSize:        100,
		BaseLatencySimpleMs:  50,
		BaseLatencyHybridMs:  150,
		BaseLatencyComplexMs: 200,
	}
}
