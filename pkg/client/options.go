package client

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// MaxRetries bounds WithRetryMax.
const MaxRetries = 10

// Option configures a Client. An option that rejects its argument makes
// NewClient fail with ErrInvalidConfig.
type Option func(*Client) error

// WithHTTPClient replaces the transport client. It cannot be combined with
// WithTimeout, which configures the default client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		if httpClient == nil {
			return fmt.Errorf("HTTP client is nil")
		}
		c.httpClient = httpClient
		c.customHTTP = true
		return nil
	}
}

func WithLogger(logger Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			return fmt.Errorf("logger is nil")
		}
		c.logger = logger
		return nil
	}
}

// WithRetryMax sets how many times a failed request is retried, 0 to
// MaxRetries.
func WithRetryMax(retryMax int) Option {
	return func(c *Client) error {
		if retryMax < 0 || retryMax > MaxRetries {
			return fmt.Errorf("retry max %d outside [0, %d]", retryMax, MaxRetries)
		}
		c.retryMax = retryMax
		return nil
	}
}

// WithRetryWait sets the backoff bounds. With a request timeout, max must
// not exceed it.
func WithRetryWait(min, max time.Duration) Option {
	return func(c *Client) error {
		if min <= 0 || max < min {
			return fmt.Errorf("retry wait [%v, %v] is not a positive range", min, max)
		}
		c.retryWaitMin = min
		c.retryWaitMax = max
		c.retryWaitSet = true
		return nil
	}
}

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(apiKey string) Option {
	return func(c *Client) error {
		if apiKey == "" || strings.ContainsAny(apiKey, " \t\r\n") {
			return fmt.Errorf("API key is empty or contains whitespace")
		}
		c.apiKey = apiKey
		return nil
	}
}

// WithTimeout limits each HTTP attempt. Zero disables the limit. The default
// retry wait is shortened to fit inside the timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		if timeout < 0 {
			return fmt.Errorf("timeout %v is negative", timeout)
		}
		c.timeout = timeout
		c.timeoutSet = true
		return nil
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) error {
		if strings.TrimSpace(userAgent) == "" {
			return fmt.Errorf("user agent is empty")
		}
		c.userAgent = userAgent
		return nil
	}
}

// applyOptions runs opts and reconciles the timeout with the transport and
// the retry schedule.
func (c *Client) applyOptions(opts []Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	if !c.timeoutSet {
		return nil
	}
	if c.customHTTP {
		return fmt.Errorf("timeout cannot be combined with a custom HTTP client")
	}
	c.httpClient = &http.Client{Timeout: c.timeout}
	if c.timeout == 0 || c.retryWaitMax <= c.timeout {
		return nil
	}
	if c.retryWaitSet {
		return fmt.Errorf("retry wait max %v exceeds timeout %v", c.retryWaitMax, c.timeout)
	}
	c.retryWaitMax = c.timeout
	if c.retryWaitMin > c.retryWaitMax {
		c.retryWaitMin = c.retryWaitMax
	}
	return nil
}

//Personal.AI order the ending
