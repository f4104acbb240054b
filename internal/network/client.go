// Package network provides the retrying HTTP client used for metadata and
// artwork lookups, and the connectivity monitor that pauses the download queue.
package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrRetriesExhausted is returned when every attempt of a request failed
var ErrRetriesExhausted = errors.New("retries exhausted")

// Request defaults
const (
	DefaultMaxRetries = 3
	DefaultTimeout    = 10 * time.Second
	UserAgent         = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Base waits, multiplied by the attempt number
const (
	RateLimitDelay = 5 * time.Second
	StatusDelay    = 1 * time.Second
	TransportDelay = 2 * time.Second
)

// Client performs GET requests with linear backoff
type Client struct {
	http       *http.Client
	maxRetries int

	rateLimitDelay time.Duration
	statusDelay    time.Duration
	transportDelay time.Duration
}

// NewClient creates a client with the default timeout and delays
func NewClient() *Client {
	return &Client{
		http:           &http.Client{Timeout: DefaultTimeout},
		maxRetries:     DefaultMaxRetries,
		rateLimitDelay: RateLimitDelay,
		statusDelay:    StatusDelay,
		transportDelay: TransportDelay,
	}
}

// SetDelays overrides the base waits for 429 responses, other statuses and transport errors
func (c *Client) SetDelays(rateLimit, status, transport time.Duration) {
	c.rateLimitDelay = rateLimit
	c.statusDelay = status
	c.transportDelay = transport
}

// SetMaxRetries sets the number of attempts, at least one
func (c *Client) SetMaxRetries(n int) {
	if n < 1 {
		n = 1
	}
	c.maxRetries = n
}

// HTTPClient exposes the underlying client for libraries that need one
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Get returns the first 200 response. The caller closes the body.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	logger := log.WithFields(log.Fields{"module": "network", "function": "Get"})

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", UserAgent)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := c.http.Do(req)
		var wait time.Duration
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warnf("Network error during request: %v", err)
			lastErr = err
			wait = c.transportDelay * time.Duration(attempt)
		case resp.StatusCode == http.StatusOK:
			return resp, nil
		default:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
			if resp.StatusCode == http.StatusTooManyRequests {
				wait = c.rateLimitDelay * time.Duration(attempt)
			} else {
				wait = c.statusDelay * time.Duration(attempt)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: %s after %d attempts: %v", ErrRetriesExhausted, url, c.maxRetries, lastErr)
}

// GetBytes returns the body of the first 200 response
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// GetJSON decodes the body of the first 200 response into v
func (c *Client) GetJSON(ctx context.Context, url string, v interface{}) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
