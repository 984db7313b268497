// Package upstream is the outbound HTTP client shared by the geocoding and
// weather adapters. Every call goes through a rate limiter and a circuit
// breaker and is recorded in Prometheus.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/weather-chat-service/internal/observability"
)

const (
	// maxErrorBody bounds how much of a failed response is kept in StatusError.
	maxErrorBody = 512
	// defaultMaxBody bounds a successful response body.
	defaultMaxBody = 4 << 20
)

// ErrUnavailable is returned without calling the provider when the breaker
// is open or the rate limiter cannot admit the request before ctx expires.
var ErrUnavailable = errors.New("upstream unavailable")

// StatusError is a non-2xx provider response.
type StatusError struct {
	Upstream   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error: status %d: %s", e.Upstream, e.StatusCode, e.Body)
}

// ProviderError is a failure the provider reports inside a 2xx body.
// Degraded marks failures that affect every caller, such as an exhausted
// quota or a rejected key; those count against the breaker.
type ProviderError struct {
	Upstream string
	Status   string
	Message  string
	Degraded bool
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s API error: %s", e.Upstream, e.Status)
	}
	return fmt.Sprintf("%s API error: %s: %s", e.Upstream, e.Status, e.Message)
}

// Checker is implemented by response bodies that carry their own status.
// GetJSON calls Check after decoding, inside the breaker.
type Checker interface {
	Check(upstream string) error
}

// Settings configures a Client.
type Settings struct {
	Name    string
	Timeout time.Duration
	RPS     float64
	Burst   int

	// Consecutive failures that open the breaker, and how long it stays open.
	MaxFailures uint32
	OpenTimeout time.Duration

	// MaxBody bounds a successful response body in bytes.
	MaxBody int64
}

// Client performs JSON GET requests against one provider.
type Client struct {
	name       string
	httpClient *http.Client
	maxBody    int64
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[struct{}]
	metrics    *observability.Metrics
}

// New creates a Client. Zero-valued settings get conservative defaults.
func New(s Settings, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if s.Timeout <= 0 {
		s.Timeout = 5 * time.Second
	}
	if s.RPS <= 0 {
		s.RPS = 5
	}
	if s.Burst <= 0 {
		s.Burst = max(1, int(s.RPS))
	}
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}
	if s.MaxBody <= 0 {
		s.MaxBody = defaultMaxBody
	}

	c := &Client{
		name:       s.Name,
		httpClient: &http.Client{Timeout: s.Timeout},
		maxBody:    s.MaxBody,
		limiter:    rate.NewLimiter(rate.Limit(s.RPS), s.Burst),
		metrics:    metrics,
	}
	c.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.MaxFailures
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "upstream", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

// isSuccessful keeps client-side failures out of the breaker counts: a 4xx,
// a request-specific provider error or a cancelled caller says nothing about
// provider health.
func isSuccessful(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode < 500 && se.StatusCode != http.StatusTooManyRequests
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return !pe.Degraded
	}
	return false
}

// Name identifies the provider in logs and metrics.
func (c *Client) Name() string { return c.name }

// Open reports whether the breaker is currently rejecting calls.
func (c *Client) Open() bool { return c.breaker.State() == gobreaker.StateOpen }

// GetJSON fetches rawURL and decodes a 2xx JSON body into v. When v is a
// Checker its verdict decides whether the call succeeded.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(c.name, "rejected").Inc()
		return fmt.Errorf("%s rate limit: %w: %w", c.name, ErrUnavailable, err)
	}

	start := time.Now()
	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.fetch(ctx, rawURL, v)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.metrics.UpstreamRequests.WithLabelValues(c.name, "rejected").Inc()
		return fmt.Errorf("%s: %w: %w", c.name, ErrUnavailable, err)
	}
	c.metrics.UpstreamDuration.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(c.name, "error").Inc()
		return err
	}
	c.metrics.UpstreamRequests.WithLabelValues(c.name, "success").Inc()
	return nil
}

func (c *Client) fetch(ctx context.Context, rawURL string, v any) error {
	body, err := c.do(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s response: %w", c.name, err)
	}
	if chk, ok := v.(Checker); ok {
		return chk.Check(c.name)
	}
	return nil
}

func (c *Client) do(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Provider URLs carry API keys; keep them out of error strings.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("%s request: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Upstream: c.name, StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", c.name, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%s response exceeds %d bytes", c.name, c.maxBody)
	}
	return body, nil
}

// Group is the set of provider clients the service depends on.
type Group []*Client

// CheckReadiness fails while any client's breaker is open.
func (g Group) CheckReadiness(_ context.Context) error {
	var errs []error
	for _, c := range g {
		if c.Open() {
			errs = append(errs, fmt.Errorf("%s circuit breaker open", c.name))
		}
	}
	return errors.Join(errs...)
}
