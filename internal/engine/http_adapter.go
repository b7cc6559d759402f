package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/S-Corkum/search-gateway/internal/observability"
)

// httpAdapter is the shared HTTP/JSON transport both engine adapters use,
// grounded on the teacher's internal/resilience circuit-breaker wrapper
// (github.com/sony/gobreaker) around an otherwise plain *http.Client call.
type httpAdapter struct {
	name    string
	client  *http.Client
	cfg     Config
	breaker *gobreaker.CircuitBreaker
	logger  observability.Logger
	metrics observability.MetricsClient
}

func newHTTPAdapter(name string, cfg Config, logger observability.Logger, metrics observability.MetricsClient) *httpAdapter {
	if logger == nil {
		logger = observability.NoopLogger{}
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.CircuitBreaker.MaxRequests,
		Interval:    cfg.CircuitBreaker.Interval,
		Timeout:     cfg.CircuitBreaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(breakerName string, from, to gobreaker.State) {
			logger.Warn("engine circuit breaker state change", map[string]any{
				"engine": breakerName, "from": from.String(), "to": to.String(),
			})
		},
	}

	return &httpAdapter{
		name:    name,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		cfg:     cfg,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
		metrics: metrics,
	}
}

// post executes a JSON POST against path, decoding the response body into
// out. Retries use the teacher's pkg/adapters/resilience retry helper
// (github.com/cenkalti/backoff/v4) for exponential backoff with jitter
// instead of a bare retry loop, bounded by cfg.MaxRetries. Every call
// observes ctx's deadline: the dispatcher is responsible for shrinking
// ctx to the remaining per-request budget before calling an adapter
// (spec §5 "Downstream engine calls must be given a smaller per-call
// timeout equal to the remaining budget at their start"), and
// backoff.WithContext stops retrying the instant that deadline fires.
func (a *httpAdapter) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", a.name, err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond
	b.Multiplier = 2.0
	bo := backoff.WithContext(backoff.WithMaxRetries(b, uint64(a.cfg.MaxRetries)), ctx)

	retryErr := backoff.Retry(func() error {
		_, execErr := a.breaker.Execute(func() (any, error) {
			return a.doOnce(ctx, path, body, out)
		})
		return execErr
	}, bo)

	if retryErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.metrics.IncrementCounter("engine_errors_total", map[string]string{"engine": a.name})
		return fmt.Errorf("%s: %w", a.name, retryErr)
	}
	return nil
}

func (a *httpAdapter) doOnce(ctx context.Context, path string, body []byte, out any) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoint+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+a.cfg.AuthToken)
	}

	start := time.Now()
	resp, err := a.client.Do(req)
	a.metrics.RecordDuration("engine_call_duration_seconds", time.Since(start), map[string]string{"engine": a.name, "path": path})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	return nil, nil
}

// Health performs a cheap ping/describe call (§4.5 "Health probes").
func (a *httpAdapter) health(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.Endpoint+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 300
}
