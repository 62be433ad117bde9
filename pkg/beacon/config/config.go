package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/randalmurphal/beacon/pkg/beacon/schema"
)

// Config carries everything a client needs to deliver events.
// The zero value is not usable: CollectURL and Service are required, and
// the tuning fields fall back to DefaultConfig when left zero.
type Config struct {
	// CollectURL is the base URL of the collection service.
	// Required.
	CollectURL string `koanf:"collect_url"`

	// Service identifies the emitter and is stamped on every envelope.
	// Required.
	Service schema.ServiceIdentity `koanf:"service"`

	// APIKey is sent as the X-API-Key header when non-empty.
	APIKey string `koanf:"api_key"`

	// Timeout bounds each delivery attempt.
	// Default: 5s
	Timeout time.Duration `koanf:"timeout"`

	// MaxRetries is the total number of delivery attempts per event,
	// including the first.
	// Default: 3
	MaxRetries int `koanf:"max_retries"`

	// BatchSize is the queue depth that triggers an immediate flush.
	// Default: 10
	BatchSize int `koanf:"batch_size"`

	// FlushInterval is how often the background loop drains the queue
	// regardless of depth.
	// Default: 1s
	FlushInterval time.Duration `koanf:"flush_interval"`

	// RetryBaseDelay seeds the exponential backoff between attempts.
	// Default: 1s
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
}

// DefaultConfig provides reasonable defaults for everything except the
// required identity fields.
var DefaultConfig = Config{
	Timeout:        5 * time.Second,
	MaxRetries:     3,
	BatchSize:      10,
	FlushInterval:  1 * time.Second,
	RetryBaseDelay: 1 * time.Second,
}

// New returns a Config for the given endpoint and service with all tuning
// fields at their defaults.
func New(collectURL string, service schema.ServiceIdentity) Config {
	cfg := DefaultConfig
	cfg.CollectURL = collectURL
	cfg.Service = service
	return cfg
}

// WithDefaults returns a copy with zero or negative tuning fields replaced
// by their DefaultConfig values. The identity fields are left untouched.
func (c Config) WithDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultConfig.Timeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultConfig.MaxRetries
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultConfig.BatchSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = DefaultConfig.FlushInterval
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = DefaultConfig.RetryBaseDelay
	}
	return c
}

// Validate checks the identity fields. Tuning fields are not validated
// here; WithDefaults repairs them instead.
func (c Config) Validate() error {
	if c.CollectURL == "" {
		return fmt.Errorf("collect_url is required")
	}
	u, err := url.Parse(c.CollectURL)
	if err != nil {
		return fmt.Errorf("collect_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("collect_url must use http or https: %s", c.CollectURL)
	}
	if !c.Service.Valid() {
		return fmt.Errorf("service must be one of %v: %q", schema.Services(), c.Service)
	}
	return nil
}
