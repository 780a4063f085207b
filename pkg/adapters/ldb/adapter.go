package ldb

import (
	"context"
	"net/http"
	"time"

	"github.com/raildeck/raildeck/pkg/adapters"
	"github.com/raildeck/raildeck/pkg/raildata"
)

// Adapter wraps the live departure board client behind the uniform adapter
// interface as the primary data source.
type Adapter struct {
	client *Client
}

func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) Name() string {
	return "national-rail-ldb"
}

func (a *Adapter) Priority() int {
	return 1
}

func (a *Adapter) Capabilities() adapters.Capabilities {
	return adapters.Capabilities{
		StationInfo:    true,
		DepartureBoard: true,
		ServiceDetails: true,
	}
}

func (a *Adapter) IsHealthy(ctx context.Context) bool {
	if a.client.Endpoint == "" || a.client.AccessToken == "" {
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

	// Any response at all means the gateway is reachable. GET on a SOAP
	// endpoint typically comes back as 405 or 500, which is fine here.
	return true
}

func (a *Adapter) GetStationBoard(ctx context.Context, req raildata.StationBoardRequest) (*raildata.EnhancedStationBoard, error) {
	board, err := a.client.GetDepartureBoard(ctx, req)
	if err != nil {
		return nil, err
	}

	return &raildata.EnhancedStationBoard{
		CRS:         board.CRS,
		GeneratedAt: time.Now(),
		Departures:  board.Departures,
		DataSource:  raildata.DataSourcePrimary,
	}, nil
}

// GetStationInfo derives a minimal station shape from a one row board
// query. The enrichment provider supplies the full record when available.
func (a *Adapter) GetStationInfo(ctx context.Context, crs string) (*raildata.StationInfo, error) {
	board, err := a.client.GetDepartureBoard(ctx, raildata.StationBoardRequest{CRS: crs, NumRows: 1})
	if err != nil {
		return nil, err
	}

	return &raildata.StationInfo{
		CRS:  board.CRS,
		Name: board.LocationName,
	}, nil
}

func (a *Adapter) GetServiceDetails(ctx context.Context, serviceID string) (*raildata.ServiceDetails, error) {
	return a.client.GetServiceDetails(ctx, serviceID)
}

func (a *Adapter) GetDisruptions(ctx context.Context) ([]raildata.Disruption, error) {
	return nil, raildata.ErrCapabilityUnsupported
}

func (a *Adapter) GetServiceTracking(ctx context.Context, serviceID string) (*raildata.TrackingInfo, error) {
	return nil, raildata.ErrCapabilityUnsupported
}
