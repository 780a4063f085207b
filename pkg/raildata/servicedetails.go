package raildata

import "time"

// CallingPoint is one stop on a service's route with its timing information.
type CallingPoint struct {
	Location  Location `groups:"basic"`
	Scheduled string   `groups:"basic"`
	Estimated string   `groups:"basic"`
	Actual    string   `groups:"basic"`
}

// ServiceDetails is the full record for a single service, aggregated from
// the primary provider and optionally enhanced with live tracking.
type ServiceDetails struct {
	ServiceID    string `groups:"basic"`
	Operator     string `groups:"basic"`
	OperatorCode string `groups:"basic"`
	ServiceKind  string `groups:"basic"`

	Origin      Location `groups:"basic"`
	Destination Location `groups:"basic"`

	Scheduled string `groups:"basic"`
	Estimated string `groups:"basic"`
	Platform  string `groups:"basic"`
	Cancelled bool   `groups:"basic"`

	CallingPoints []CallingPoint `groups:"basic"`

	Tracking *TrackingInfo `groups:"basic"`

	DataSource           string `groups:"basic"`
	EnhancementAvailable bool   `groups:"basic"`
}

// TrackingInfo is the live position report from the enrichment provider.
type TrackingInfo struct {
	ServiceID    string    `json:"serviceId" groups:"basic"`
	LastReported string    `json:"lastReported" groups:"basic"`
	Latitude     float64   `json:"latitude" groups:"basic"`
	Longitude    float64   `json:"longitude" groups:"basic"`
	DelayMinutes int       `json:"delayMinutes" groups:"basic"`
	UpdatedAt    time.Time `json:"updatedAt" groups:"basic"`
}
