package remote

import (
	"errors"
	"net/url"
	"time"
)

// Config holds the remote backend connection settings
type Config struct {
	// BaseURL is the deployed script endpoint; actions are passed as query parameters
	BaseURL string
	// Timeout bounds a single request
	Timeout time.Duration
	// BreakerFailures is the number of consecutive product fetch failures
	// that opens the circuit breaker
	BreakerFailures uint32
	// BreakerOpenTimeout is how long the breaker stays open before a trial fetch
	BreakerOpenTimeout time.Duration
}

// Errors for remote configuration
var (
	ErrConfigMissingBaseURL = errors.New("remote: base URL is required")
	ErrConfigInvalidBaseURL = errors.New("remote: base URL must be an absolute http(s) URL")
)

// Validate checks the configuration and fills defaults
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrConfigInvalidBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = 3
	}
	if c.BreakerOpenTimeout <= 0 {
		c.BreakerOpenTimeout = 30 * time.Second
	}
	return nil
}
