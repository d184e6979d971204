// Package enrich provides optional, out-of-core AI collaborators that a
// host application may call after parser.ParseAndRender returns: an
// enrichment client (expands abbreviations/adds context), a search/RAG
// client (retrieves similar prior notes or guideline text), and a Q&A
// client (answers free-text questions about a rendered note). None of
// these are imported by the parsing pipeline itself — the core never
// performs network I/O.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ClientConfig configures a single resilient HTTP collaborator.
type ClientConfig struct {
	BaseURL            string
	APIKey             string
	Timeout            time.Duration
	RateLimitPerSecond float64
	CircuitMaxRequests uint32
	CircuitInterval    time.Duration
	CircuitTimeout     time.Duration
}

func (c ClientConfig) withDefaults() ClientConfig {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RateLimitPerSecond == 0 {
		c.RateLimitPerSecond = 5
	}
	if c.CircuitMaxRequests == 0 {
		c.CircuitMaxRequests = 5
	}
	if c.CircuitInterval == 0 {
		c.CircuitInterval = 30 * time.Second
	}
	if c.CircuitTimeout == 0 {
		c.CircuitTimeout = 60 * time.Second
	}
	return c
}

// resilientClient is the shared plumbing behind every enrich client: a rate
// limiter guards outbound request volume, a circuit breaker stops hammering
// a failing upstream, and the http.Client carries the per-call timeout.
type resilientClient struct {
	name       string
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
}

func newResilientClient(name string, cfg ClientConfig) *resilientClient {
	cfg = cfg.withDefaults()

	return &resilientClient{
		name:       name,
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: cfg.CircuitMaxRequests,
			Interval:    cfg.CircuitInterval,
			Timeout:     cfg.CircuitTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

// postJSON rate-limits, circuit-breaks, and executes a JSON POST request,
// decoding the response body into out.
func (c *resilientClient) postJSON(ctx context.Context, path string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: rate limit wait: %w", c.name, err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: marshaling request: %w", c.name, err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("%s returned status %d: %s", c.name, resp.StatusCode, string(respBody))
		}

		return respBody, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			return fmt.Errorf("%s unavailable (circuit breaker open)", c.name)
		}
		return fmt.Errorf("%s request failed: %w", c.name, err)
	}

	return json.Unmarshal(result.([]byte), out)
}

// State reports the circuit breaker's current state, for health endpoints.
func (c *resilientClient) State() gobreaker.State {
	return c.breaker.State()
}
