package ldb

import (
	"encoding/xml"
	"time"

	"github.com/raildeck/raildeck/pkg/raildata"
	"github.com/raildeck/raildeck/pkg/util"
	"github.com/rs/zerolog/log"
)

// StationBoard is the parsed result of a departure board query.
type StationBoard struct {
	GeneratedAt  string
	LocationName string
	CRS          string

	Departures []raildata.Departure
}

type faultEnvelope struct {
	XMLName     xml.Name
	FaultString string `xml:"Body>Fault>faultstring"`
}

type boardResponseEnvelope struct {
	XMLName xml.Name
	Result  stationBoardResult `xml:"Body>GetDepBoardWithDetailsResponse>GetStationBoardResult"`
}

type stationBoardResult struct {
	GeneratedAt  string `xml:"generatedAt"`
	LocationName string `xml:"locationName"`
	Crs          string `xml:"crs"`

	TrainServices []rawService `xml:"trainServices>service"`
}

type serviceDetailsResponseEnvelope struct {
	XMLName xml.Name
	Result  rawServiceDetails `xml:"Body>GetServiceDetailsResponse>GetServiceDetailsResult"`
}

type rawService struct {
	ServiceID string `xml:"serviceID"`

	Scheduled string `xml:"std"`
	Estimated string `xml:"etd"`
	Platform  string `xml:"platform"`

	Operator     string `xml:"operator"`
	OperatorCode string `xml:"operatorCode"`
	ServiceType  string `xml:"serviceType"`

	IsCancelled  bool   `xml:"isCancelled"`
	DelayReason  string `xml:"delayReason"`
	CancelReason string `xml:"cancelReason"`

	// Multi-hop services report several origin or destination locations.
	// Decoding into a slice also absorbs the provider quirk where the
	// wrapping element contains either one location or many.
	Origins      []rawLocation `xml:"origin>location"`
	Destinations []rawLocation `xml:"destination>location"`
}

type rawLocation struct {
	Name string `xml:"locationName"`
	Crs  string `xml:"crs"`
}

type rawServiceDetails struct {
	ServiceID string `xml:"serviceID"`

	Operator     string `xml:"operator"`
	OperatorCode string `xml:"operatorCode"`
	ServiceType  string `xml:"serviceType"`

	Scheduled string `xml:"std"`
	Estimated string `xml:"etd"`
	Platform  string `xml:"platform"`

	IsCancelled bool `xml:"isCancelled"`

	Origins      []rawLocation `xml:"origin>location"`
	Destinations []rawLocation `xml:"destination>location"`

	CallingPoints []rawCallingPoint `xml:"subsequentCallingPoints>callingPointList>callingPoint"`
}

type rawCallingPoint struct {
	Name string `xml:"locationName"`
	Crs  string `xml:"crs"`

	Scheduled string `xml:"st"`
	Estimated string `xml:"et"`
	Actual    string `xml:"at"`
}

func extractFault(body []byte) string {
	var fault faultEnvelope
	if err := xml.Unmarshal(body, &fault); err != nil {
		return ""
	}

	return fault.FaultString
}

// ParseStationBoard decodes a board response envelope. Individual services
// that cannot be converted are dropped with a warning rather than failing
// the whole response.
func ParseStationBoard(body []byte) (*StationBoard, error) {
	var envelope boardResponseEnvelope
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return nil, raildata.NewError(raildata.CodeTransportError, "failed to decode board response", err)
	}

	result := envelope.Result
	board := &StationBoard{
		GeneratedAt:  result.GeneratedAt,
		LocationName: result.LocationName,
		CRS:          result.Crs,
	}

	now := time.Now()

	for _, service := range result.TrainServices {
		departure, err := service.toDeparture(now)
		if err != nil {
			log.Warn().Err(err).Str("serviceid", service.ServiceID).Msg("Dropping unparseable service")
			continue
		}

		board.Departures = append(board.Departures, *departure)
	}

	return board, nil
}

// ParseServiceDetails decodes a service details response envelope.
func ParseServiceDetails(body []byte) (*raildata.ServiceDetails, error) {
	var envelope serviceDetailsResponseEnvelope
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return nil, raildata.NewError(raildata.CodeTransportError, "failed to decode service details response", err)
	}

	result := envelope.Result
	if result.ServiceID == "" {
		return nil, raildata.NewError(raildata.CodeParseError, "service details response contained no service", nil)
	}

	details := &raildata.ServiceDetails{
		ServiceID:    result.ServiceID,
		Operator:     result.Operator,
		OperatorCode: result.OperatorCode,
		ServiceKind:  result.ServiceType,

		Scheduled: result.Scheduled,
		Estimated: result.Estimated,
		Platform:  result.Platform,
		Cancelled: result.IsCancelled,

		Origin:      effectiveOrigin(result.Origins),
		Destination: effectiveDestination(result.Destinations),

		DataSource: raildata.DataSourcePrimary,
	}

	for _, point := range result.CallingPoints {
		details.CallingPoints = append(details.CallingPoints, raildata.CallingPoint{
			Location:  raildata.Location{Name: point.Name, CRS: point.Crs},
			Scheduled: point.Scheduled,
			Estimated: point.Estimated,
			Actual:    point.Actual,
		})
	}

	return details, nil
}

func (s *rawService) toDeparture(now time.Time) (*raildata.Departure, error) {
	if len(s.Destinations) == 0 {
		return nil, raildata.NewError(raildata.CodeParseError, "service is missing a destination", nil)
	}

	scheduledTimeOnly, err := time.Parse("15:04", s.Scheduled)
	if err != nil {
		return nil, raildata.NewError(raildata.CodeParseError, "service has an unparseable scheduled time", err)
	}

	scheduledTime := util.AddTimeToDate(now, scheduledTimeOnly)

	// The feed only carries hh:mm, so a board fetched just before midnight
	// lists services departing just after it. Anchoring those to today would
	// sort tomorrow's 00:10 ahead of tonight's 23:55; a scheduled instant far
	// in the past belongs to the next day.
	if scheduledTime.Before(now.Add(-12 * time.Hour)) {
		scheduledTime = scheduledTime.AddDate(0, 0, 1)
	}

	return &raildata.Departure{
		ServiceID:    s.ServiceID,
		Operator:     s.Operator,
		OperatorCode: s.OperatorCode,

		Origin:      effectiveOrigin(s.Origins),
		Destination: effectiveDestination(s.Destinations),

		Scheduled:     s.Scheduled,
		ScheduledTime: scheduledTime,
		Estimated:     s.Estimated,

		Platform:    s.Platform,
		ServiceKind: s.ServiceType,
		Cancelled:   s.IsCancelled,

		DelayReason:  s.DelayReason,
		CancelReason: s.CancelReason,
	}, nil
}

// The first location of a multi-hop origin path is the effective origin.
func effectiveOrigin(locations []rawLocation) raildata.Location {
	if len(locations) == 0 {
		return raildata.Location{}
	}

	first := locations[0]
	return raildata.Location{Name: first.Name, CRS: first.Crs}
}

// The last location of a multi-hop destination path is the effective
// destination.
func effectiveDestination(locations []rawLocation) raildata.Location {
	if len(locations) == 0 {
		return raildata.Location{}
	}

	last := locations[len(locations)-1]
	return raildata.Location{Name: last.Name, CRS: last.Crs}
}
