package fetcher

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Response holds everything a probe needs from a single GET request.
// It is scoped to one fetch call and never retained beyond the probe
// that requested it.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// ContentType returns the Content-Type header, or "" if absent.
func (r *Response) ContentType() string {
	return r.Headers["Content-Type"]
}

// Doer is the subset of http.Client the fetcher depends on.
// Satisfied by *http.Client and by test mocks.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the configuration for a fetcher instance.
type Config struct {
	Timeout   time.Duration // Per-request timeout
	UserAgent string        // User agent string for requests
	RateLimit int           // Max requests per second; 0 disables pacing
}

// DefaultConfig returns a Config instance with default values.
func DefaultConfig() *Config {
	return &Config{
		Timeout:   300 * time.Second,
		UserAgent: "Greenlight/1.0 (+https://github.com/greenlight-ci/greenlight)",
		RateLimit: 0,
	}
}

// Client issues single GET requests. It performs exactly one outbound
// call per Fetch invocation: no retries (that is the retry scheduler's
// concern) and no redirect following (3xx responses are returned as-is
// so the caller decides tolerance).
type Client struct {
	config  *Config
	httpc   Doer
	limiter *rate.Limiter
}

// New creates a Client with the given configuration.
// If config is nil, default configuration is used.
func New(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	httpc := &http.Client{
		Timeout: config.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     120 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}

	return &Client{
		config:  config,
		httpc:   httpc,
		limiter: limiter,
	}
}

// NewWithDoer creates a Client that issues requests through the supplied
// Doer. Used by tests to substitute a mock transport.
func NewWithDoer(config *Config, doer Doer) *Client {
	c := New(config)
	c.httpc = doer
	return c
}

// Fetch performs a single GET request against targetURL and returns the
// status, headers and body. Connection, DNS and TLS failures surface as
// *NetworkError; an elapsed timeout surfaces as *TimeoutError.
func (c *Client) Fetch(ctx context.Context, targetURL string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{URL: targetURL, Err: err}
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: targetURL, Err: err}
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		if isTimeout(err, reqCtx) {
			log.Warn().
				Str("url", targetURL).
				Dur("timeout", c.config.Timeout).
				Msg("Request timed out")
			return nil, &TimeoutError{URL: targetURL, Timeout: c.config.Timeout}
		}
		log.Debug().
			Err(err).
			Str("url", targetURL).
			Msg("Request failed")
		return nil, &NetworkError{URL: targetURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err, reqCtx) {
			return nil, &TimeoutError{URL: targetURL, Timeout: c.config.Timeout}
		}
		return nil, &NetworkError{URL: targetURL, Err: err}
	}

	headers := make(map[string]string, len(resp.Header))
	for key := range resp.Header {
		headers[key] = resp.Header.Get(key)
	}

	log.Debug().
		Str("url", targetURL).
		Int("status", resp.StatusCode).
		Int("body_bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("Fetched URL")

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// isTimeout reports whether err represents an elapsed request budget
// rather than a connection-level failure.
func isTimeout(err error, ctx context.Context) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
