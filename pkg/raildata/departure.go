package raildata

import "time"

// EstimatedOnTime is the sentinel status text upstream providers return in
// place of an estimated timestamp when a service is running to schedule.
const EstimatedOnTime = "On time"

// Location is a named calling point with its public station code.
type Location struct {
	Name string `groups:"basic"`
	CRS  string `groups:"basic"`
}

// Departure is one row of a station board. It is immutable once constructed
// from a protocol response.
type Departure struct {
	ServiceID    string `groups:"basic"`
	Operator     string `groups:"basic"`
	OperatorCode string `groups:"basic"`

	Origin      Location `groups:"basic"`
	Destination Location `groups:"basic"`

	// Scheduled is the upstream "hh:mm" departure time, ScheduledTime the
	// same instant anchored to the current day for ordering.
	Scheduled     string    `groups:"basic"`
	ScheduledTime time.Time `groups:"basic"`

	// Estimated is either a "hh:mm" timestamp or a status text such as
	// "On time" or "Cancelled".
	Estimated string `groups:"basic"`

	Platform    string `groups:"basic"`
	ServiceKind string `groups:"basic"`
	Cancelled   bool   `groups:"basic"`

	DelayReason  string `groups:"detailed"`
	CancelReason string `groups:"detailed"`
}

// Complete reports whether the departure carries the full (scheduled,
// estimated, platform) tuple used for the data quality score.
func (d *Departure) Complete() bool {
	return d.Scheduled != "" && d.Estimated != "" && d.Platform != ""
}

// DataSource tags describing which upstreams contributed to a result.
const (
	DataSourcePrimary  = "primary"
	DataSourceCombined = "combined"
)

// EnhancedStationBoard is the aggregated station board returned to callers.
// It lives no longer than its cache TTL.
type EnhancedStationBoard struct {
	CRS         string    `groups:"basic"`
	GeneratedAt time.Time `groups:"basic"`

	Departures []Departure `groups:"basic"`

	StationInfo *StationInfo `groups:"basic"`
	Disruptions []Disruption `groups:"basic"`

	DataSource           string  `groups:"basic"`
	EnhancementAvailable bool    `groups:"basic"`
	DataQuality          float64 `groups:"basic"`
}
