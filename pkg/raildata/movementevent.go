package raildata

import (
	"encoding/json"
	"time"
)

// MovementEvent is a single train movement report from the push feed. The
// location identifier is a provider-internal code which is resolved to a
// public CRS code before the event is cached or broadcast.
type MovementEvent struct {
	LocationID string    `json:"locationId" groups:"basic"`
	CRS        string    `json:"crs" groups:"basic"`
	Timestamp  time.Time `json:"timestamp" groups:"basic"`

	Payload json.RawMessage `json:"payload" groups:"basic"`
}

// DataSourceHealth is the per adapter health record maintained by the data
// source manager. One record exists per adapter for the process lifetime and
// it is updated opportunistically from real traffic.
type DataSourceHealth struct {
	AdapterName string `groups:"basic"`
	Available   bool   `groups:"basic"`

	LastCheckedAt         time.Time `groups:"basic"`
	ConsecutiveErrorCount int       `groups:"basic"`
	LastResponseTimeMs    int64     `groups:"basic"`
}
