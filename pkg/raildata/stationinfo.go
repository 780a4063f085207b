package raildata

// StationInfo describes a station as reported by the enrichment provider.
// When that provider is unavailable a minimal shape is derived from the
// primary provider instead.
type StationInfo struct {
	CRS  string `json:"crs" groups:"basic"`
	Name string `json:"name" groups:"basic"`

	Facilities []string `json:"facilities" groups:"basic"`

	StepFreeAccess  bool `json:"stepFreeAccess" groups:"basic"`
	AssistedTravel  bool `json:"assistedTravel" groups:"basic"`
	TicketOffice    bool `json:"ticketOffice" groups:"basic"`
	WheelchairsFree bool `json:"wheelchairsAvailable" groups:"basic"`

	PhoneNumber string `json:"phoneNumber" groups:"detailed"`
	Email       string `json:"email" groups:"detailed"`

	Latitude  float64 `json:"latitude" groups:"basic"`
	Longitude float64 `json:"longitude" groups:"basic"`
}

// Disruption is a single entry from the enrichment provider's incident list.
type Disruption struct {
	ID          string   `json:"id" groups:"basic"`
	Summary     string   `json:"summary" groups:"basic"`
	Description string   `json:"description" groups:"detailed"`
	Severity    string   `json:"severity" groups:"basic"`
	// AffectedStations lists the CRS codes of stations on routes the
	// disruption touches.
	AffectedStations []string `json:"affectedStations" groups:"basic"`
}
