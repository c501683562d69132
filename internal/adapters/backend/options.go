package backend

import (
	"net/http"
	"time"

	"github.com/sportlink/swipedeck/pkg/logger"
)

// Option configures the backend client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithAuthToken sets the bearer token attached to every request.
func WithAuthToken(token string) Option {
	return func(c *Client) {
		c.authToken = token
	}
}

// WithRetryAttempts sets the attempt count for idempotent requests.
func WithRetryAttempts(n uint) Option {
	return func(c *Client) {
		if n > 0 {
			c.retryAttempts = n
		}
	}
}

// WithRetryDelay sets the base delay between retry attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryDelay = d
		}
	}
}

// WithMatchesCacheTTL sets how long the matches list is served from cache.
func WithMatchesCacheTTL(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.matchesTTL = d
		}
	}
}

// WithBreakerThreshold sets how many consecutive failures trip the breaker.
func WithBreakerThreshold(n uint32) Option {
	return func(c *Client) {
		if n > 0 {
			c.breakerThreshold = n
		}
	}
}

// WithBreakerTimeout sets how long the breaker stays open before probing.
func WithBreakerTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.breakerTimeout = d
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}
