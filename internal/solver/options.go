package solver

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithTimeout bounds each solve request. Hybrid solves routinely take
// minutes; the default allows five.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithNumReads sets how many reads the service samples per solve.
func WithNumReads(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.numReads = n
		}
	}
}

// WithMeasurementBudget caps the service's measurement budget per solve.
func WithMeasurementBudget(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.measurementBudget = n
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l.Named("solver_client")
		}
	}
}
