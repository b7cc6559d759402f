package engine

import "time"

// Config is one engine's row from spec §6 ("engine.simple.*,
// engine.complex.* — Adapter endpoints, auth, request timeouts, retry
// counts").
type Config struct {
	Endpoint       string        `mapstructure:"endpoint"`
	AuthToken      string        `mapstructure:"auth_token"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`

	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type CircuitBreakerConfig struct {
	MaxRequests uint32        `mapstructure:"max_requests"`
	Interval    time.Duration `mapstructure:"interval"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

func DefaultSimpleConfig() Config {
	return Config{
		Endpoint:       "http://simple-engine.internal",
		RequestTimeout: 300 * time.Millisecond,
		MaxRetries:     1,
		CircuitBreaker: CircuitBreakerConfig{MaxRequests: 5, Interval: 30 * time.Second, Timeout: 15 * time.Second},
	}
}

func DefaultComplexConfig() Config {
	return Config{
		Endpoint:       "http://complex-engine.internal",
		RequestTimeout: 600 * time.Millisecond,
		MaxRetries:     1,
		CircuitBreaker: CircuitBreakerConfig{MaxRequests: 5, Interval: 30 * time.Second, Timeout: 15 * time.Second},
	}
}
