package llmreview

import "time"

// Default configuration values (spec §4.4: 120s hard timeout, 3 retries).
const (
	DefaultTimeout    = 120 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = 2 * time.Second
)

// ClientConfig carries the settings a concrete llmreview.Client needs.
type ClientConfig struct {
	Name           string
	APIKey         string
	DefaultModel   string
	DefaultTimeout time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// NewClientConfig creates a ClientConfig pre-filled with spec defaults.
func NewClientConfig(name string) *ClientConfig {
	return &ClientConfig{
		Name:           name,
		DefaultTimeout: DefaultTimeout,
		MaxRetries:     DefaultMaxRetries,
		RetryDelay:     DefaultRetryDelay,
	}
}

func (c *ClientConfig) WithAPIKey(key string) *ClientConfig {
	c.APIKey = key
	return c
}

func (c *ClientConfig) WithDefaultModel(model string) *ClientConfig {
	c.DefaultModel = model
	return c
}

func (c *ClientConfig) WithDefaultTimeout(timeout time.Duration) *ClientConfig {
	c.DefaultTimeout = timeout
	return c
}

func (c *ClientConfig) WithMaxRetries(retries int) *ClientConfig {
	c.MaxRetries = retries
	return c
}

func (c *ClientConfig) WithRetryDelay(delay time.Duration) *ClientConfig {
	c.RetryDelay = delay
	return c
}
