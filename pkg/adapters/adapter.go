// Package adapters defines the uniform interface every upstream data
// provider is wrapped behind, so the source manager can treat heterogeneous
// protocols interchangeably.
package adapters

import (
	"context"

	"github.com/raildeck/raildeck/pkg/raildata"
)

// Capability names one operation an adapter may support, so callers can ask
// for a source by what it can do.
type Capability string

const (
	CapabilityStationInfo      Capability = "station-info"
	CapabilityDepartureBoard   Capability = "departure-board"
	CapabilityServiceDetails   Capability = "service-details"
	CapabilityDisruptions      Capability = "disruptions"
	CapabilityRealTimeTracking Capability = "real-time-tracking"
)

// Capabilities annotates which operations an adapter actually supports.
// Calling an unsupported operation fails with CAPABILITY_UNSUPPORTED rather
// than silently returning empty data, which lets the manager distinguish
// "source lacks this feature" from "source is down".
type Capabilities struct {
	StationInfo      bool
	DepartureBoard   bool
	ServiceDetails   bool
	Disruptions      bool
	RealTimeTracking bool
}

func (c Capabilities) Supports(capability Capability) bool {
	switch capability {
	case CapabilityStationInfo:
		return c.StationInfo
	case CapabilityDepartureBoard:
		return c.DepartureBoard
	case CapabilityServiceDetails:
		return c.ServiceDetails
	case CapabilityDisruptions:
		return c.Disruptions
	case CapabilityRealTimeTracking:
		return c.RealTimeTracking
	default:
		return false
	}
}

// Adapter is the uniform, priority annotated wrapper around one upstream
// provider. Lower priority values are tried first.
type Adapter interface {
	Name() string
	Priority() int
	Capabilities() Capabilities

	// IsHealthy is a cheap connectivity probe used by the periodic health
	// sweep. It never mutates adapter state.
	IsHealthy(ctx context.Context) bool

	GetStationInfo(ctx context.Context, crs string) (*raildata.StationInfo, error)
	GetStationBoard(ctx context.Context, req raildata.StationBoardRequest) (*raildata.EnhancedStationBoard, error)
	GetServiceDetails(ctx context.Context, serviceID string) (*raildata.ServiceDetails, error)
	GetDisruptions(ctx context.Context) ([]raildata.Disruption, error)
	GetServiceTracking(ctx context.Context, serviceID string) (*raildata.TrackingInfo, error)
}
