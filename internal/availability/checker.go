package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Checker asks the external store API whether a medicine is in stock,
// reading through the cache. A timeout or non-200 answer yields
// StatusUnknown rather than an error; the caller renders "unknown".
type Checker struct {
	apiBase string
	client  *http.Client
	cache   Cache
	ttl     time.Duration
	logger  *zap.Logger
}

// CheckerConfig configures a Checker.
type CheckerConfig struct {
	APIBase string
	Timeout time.Duration
	TTL     time.Duration
}

// NewChecker creates a checker over cache.
func NewChecker(cfg CheckerConfig, cache Cache, logger *zap.Logger) *Checker {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 2 * time.Hour
	}
	return &Checker{
		apiBase: cfg.APIBase,
		client:  &http.Client{Timeout: timeout},
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

type availabilityResponse struct {
	InStock bool `json:"in_stock"`
}

// Check returns the availability status for the named medicine.
func (c *Checker) Check(ctx context.Context, name string) Status {
	if cached, ok := c.cache.Get(ctx, name); ok {
		return cached
	}
	status := c.lookup(ctx, name)
	if status != StatusUnknown {
		c.cache.Put(ctx, name, status, c.ttl)
	}
	return status
}

// CheckAll checks several medicines sequentially, returning a status per
// name. Cached entries make this cheap for repeated result sets.
func (c *Checker) CheckAll(ctx context.Context, names []string) map[string]Status {
	out := make(map[string]Status, len(names))
	for _, name := range names {
		out[name] = c.Check(ctx, name)
	}
	return out
}

func (c *Checker) lookup(ctx context.Context, name string) Status {
	endpoint := fmt.Sprintf("%s/availability?medicine=%s", c.apiBase, url.QueryEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return StatusUnknown
	}
	resp, err := c.client.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("availability lookup failed",
				zap.String("medicine", name), zap.Error(err))
		}
		return StatusUnknown
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if c.logger != nil {
			c.logger.Warn("availability lookup non-200",
				zap.String("medicine", name), zap.Int("status", resp.StatusCode))
		}
		return StatusUnknown
	}
	var body availabilityResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return StatusUnknown
	}
	if body.InStock {
		return StatusAvailable
	}
	return StatusUnavailable
}
