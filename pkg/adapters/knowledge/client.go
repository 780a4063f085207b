// Package knowledge talks to the secondary enrichment provider, which
// serves structured station facility data, live service tracking and
// disruption lists over a typed JSON API.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/raildeck/raildeck/pkg/raildata"
)

const defaultTimeout = 8 * time.Second

type Client struct {
	Endpoint string
	APIKey   string

	httpClient *http.Client
}

func NewClient(endpoint string, apiKey string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		Endpoint: endpoint,
		APIKey:   apiKey,

		httpClient: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether the provider has both a URL and key. An
// unconfigured provider is treated as permanently unhealthy rather than
// erroring on every call.
func (c *Client) Configured() bool {
	return c.Endpoint != "" && c.APIKey != ""
}

func (c *Client) get(ctx context.Context, path string, target any) error {
	if !c.Configured() {
		return raildata.ErrConfigurationMissing
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s%s", c.Endpoint, path), nil)
	if err != nil {
		return raildata.NewError(raildata.CodeTransportError, "failed to build enrichment request", err)
	}
	req.Header.Set("x-api-key", c.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return raildata.NewError(raildata.CodeTransportError, "enrichment request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return raildata.NewError(raildata.CodeTransportError, fmt.Sprintf("enrichment provider returned status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return raildata.NewError(raildata.CodeParseError, "failed to decode enrichment response", err)
	}

	return nil
}

func (c *Client) GetStation(ctx context.Context, crs string) (*raildata.StationInfo, error) {
	var station raildata.StationInfo
	if err := c.get(ctx, fmt.Sprintf("/stations/%s", crs), &station); err != nil {
		return nil, err
	}

	return &station, nil
}

func (c *Client) GetDisruptions(ctx context.Context) ([]raildata.Disruption, error) {
	var disruptions []raildata.Disruption
	if err := c.get(ctx, "/disruptions", &disruptions); err != nil {
		return nil, err
	}

	return disruptions, nil
}

func (c *Client) GetServiceTracking(ctx context.Context, serviceID string) (*raildata.TrackingInfo, error) {
	var tracking raildata.TrackingInfo
	if err := c.get(ctx, fmt.Sprintf("/services/%s/tracking", serviceID), &tracking); err != nil {
		return nil, err
	}

	return &tracking, nil
}
