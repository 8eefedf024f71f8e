// Package interactions looks up pairwise drug-interaction warnings in an
// external drug-label reference API. Answers are tri-state: a failed or
// timed-out lookup is "unknown", never an error surfaced to the end user.
package interactions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Status is the tri-state interaction verdict for a drug pair.
type Status string

const (
	StatusInteraction Status = "interaction"
	StatusNone        Status = "none"
	StatusUnknown     Status = "unknown"
)

// LabelClient queries a drug-label API for interaction sections mentioning
// another drug.
type LabelClient struct {
	apiBase string
	client  *http.Client
	logger  *zap.Logger
}

// ClientConfig configures a LabelClient.
type ClientConfig struct {
	APIBase string
	Timeout time.Duration
}

// NewLabelClient creates a client for the label API at cfg.APIBase.
func NewLabelClient(cfg ClientConfig, logger *zap.Logger) *LabelClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &LabelClient{
		apiBase: cfg.APIBase,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type labelResponse struct {
	Results []struct {
		DrugInteractions []string `json:"drug_interactions"`
	} `json:"results"`
}

// Mentions reports whether drug's label interaction section mentions other.
// API failures and non-200 answers return StatusUnknown.
func (c *LabelClient) Mentions(ctx context.Context, drug, other string) Status {
	query := fmt.Sprintf(`openfda.generic_name:%q`, drug)
	endpoint := fmt.Sprintf("%s/label.json?search=%s&limit=1", c.apiBase, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return StatusUnknown
	}
	resp, err := c.client.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("label lookup failed", zap.String("drug", drug), zap.Error(err))
		}
		return StatusUnknown
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// No label on file for this drug; nothing known either way.
		return StatusUnknown
	}
	if resp.StatusCode != http.StatusOK {
		if c.logger != nil {
			c.logger.Warn("label lookup non-200",
				zap.String("drug", drug), zap.Int("status", resp.StatusCode))
		}
		return StatusUnknown
	}

	var body labelResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return StatusUnknown
	}
	if len(body.Results) == 0 {
		return StatusUnknown
	}
	needle := strings.ToLower(other)
	for _, result := range body.Results {
		for _, section := range result.DrugInteractions {
			if strings.Contains(strings.ToLower(section), needle) {
				return StatusInteraction
			}
		}
	}
	return StatusNone
}
