package knowledge

import (
	"context"
	"net/http"
	"time"

	"github.com/raildeck/raildeck/pkg/adapters"
	"github.com/raildeck/raildeck/pkg/raildata"
)

// Adapter wraps the enrichment client behind the uniform adapter interface.
// It is never the primary board source; it enriches primary results with
// station facilities, tracking and disruption data.
type Adapter struct {
	client *Client
}

func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) Name() string {
	return "knowledge-station"
}

func (a *Adapter) Priority() int {
	return 2
}

func (a *Adapter) Capabilities() adapters.Capabilities {
	return adapters.Capabilities{
		StationInfo:      true,
		Disruptions:      true,
		RealTimeTracking: true,
	}
}

func (a *Adapter) IsHealthy(ctx context.Context) bool {
	if !a.client.Configured() {
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, a.client.Endpoint, nil)
	if err != nil {
		return false
	}

	resp, err := a.client.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()

	return true
}

func (a *Adapter) GetStationInfo(ctx context.Context, crs string) (*raildata.StationInfo, error) {
	return a.client.GetStation(ctx, crs)
}

func (a *Adapter) GetStationBoard(ctx context.Context, req raildata.StationBoardRequest) (*raildata.EnhancedStationBoard, error) {
	return nil, raildata.ErrCapabilityUnsupported
}

func (a *Adapter) GetServiceDetails(ctx context.Context, serviceID string) (*raildata.ServiceDetails, error) {
	return nil, raildata.ErrCapabilityUnsupported
}

func (a *Adapter) GetDisruptions(ctx context.Context) ([]raildata.Disruption, error) {
	return a.client.GetDisruptions(ctx)
}

func (a *Adapter) GetServiceTracking(ctx context.Context, serviceID string) (*raildata.TrackingInfo, error) {
	return a.client.GetServiceTracking(ctx, serviceID)
}
