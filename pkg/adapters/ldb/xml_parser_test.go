package ldb

import (
	"fmt"
	"testing"
	"time"

	"github.com/raildeck/raildeck/pkg/raildata"
)

func boardResponse(services string) []byte {
	return []byte(fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <GetDepBoardWithDetailsResponse xmlns="http://thalesgroup.com/RTTI/2017-10-01/ldb/">
      <GetStationBoardResult>
        <generatedAt>2024-05-01T10:00:00Z</generatedAt>
        <locationName>London Kings Cross</locationName>
        <crs>KGX</crs>
        <trainServices>%s</trainServices>
      </GetStationBoardResult>
    </GetDepBoardWithDetailsResponse>
  </soap:Body>
</soap:Envelope>`, services))
}

func serviceXML(serviceID string, std string, destinations string) string {
	return fmt.Sprintf(`<service>
  <std>%s</std>
  <etd>On time</etd>
  <platform>4</platform>
  <operator>LNER</operator>
  <operatorCode>GR</operatorCode>
  <serviceType>train</serviceType>
  <serviceID>%s</serviceID>
  <origin><location><locationName>London Kings Cross</locationName><crs>KGX</crs></location></origin>
  <destination>%s</destination>
</service>`, std, serviceID, destinations)
}

const singleDestination = `<location><locationName>Edinburgh</locationName><crs>EDB</crs></location>`

func TestParseStationBoard(t *testing.T) {
	body := boardResponse(
		serviceXML("svc-1", "10:15", singleDestination) +
			serviceXML("svc-2", "10:30", singleDestination) +
			serviceXML("svc-3", "10:45", singleDestination),
	)

	board, err := ParseStationBoard(body)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	if board.CRS != "KGX" {
		t.Errorf("expected CRS KGX, got %q", board.CRS)
	}
	if board.LocationName != "London Kings Cross" {
		t.Errorf("unexpected location name %q", board.LocationName)
	}
	if len(board.Departures) != 3 {
		t.Fatalf("expected 3 departures, got %d", len(board.Departures))
	}

	first := board.Departures[0]
	if first.ServiceID != "svc-1" {
		t.Errorf("expected serviceID svc-1, got %q", first.ServiceID)
	}
	if first.Scheduled != "10:15" {
		t.Errorf("expected scheduled 10:15, got %q", first.Scheduled)
	}
	if first.Estimated != raildata.EstimatedOnTime {
		t.Errorf("expected estimated %q, got %q", raildata.EstimatedOnTime, first.Estimated)
	}
	if first.Destination.CRS != "EDB" {
		t.Errorf("expected destination EDB, got %q", first.Destination.CRS)
	}
	if first.ScheduledTime.Hour() != 10 || first.ScheduledTime.Minute() != 15 {
		t.Errorf("expected scheduled time anchored at 10:15, got %v", first.ScheduledTime)
	}
}

func TestParseStationBoardIdempotent(t *testing.T) {
	body := boardResponse(serviceXML("svc-1", "10:15", singleDestination))

	first, err := ParseStationBoard(body)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	second, err := ParseStationBoard(body)
	if err != nil {
		t.Fatalf("unexpected parse error on second pass: %v", err)
	}

	if len(first.Departures) != len(second.Departures) {
		t.Fatalf("parsing the same payload twice gave %d then %d departures", len(first.Departures), len(second.Departures))
	}
	if first.Departures[0] != second.Departures[0] {
		t.Error("parsing the same payload twice gave different departures")
	}
}

// A service the parser cannot convert is dropped; the rest of the board
// still comes through.
func TestParseStationBoardDropsMalformedServices(t *testing.T) {
	body := boardResponse(
		serviceXML("svc-1", "10:15", singleDestination) +
			serviceXML("svc-bad-time", "not-a-time", singleDestination) +
			serviceXML("svc-no-dest", "10:30", "") +
			serviceXML("svc-2", "10:45", singleDestination),
	)

	board, err := ParseStationBoard(body)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	if len(board.Departures) != 2 {
		t.Fatalf("expected 2 surviving departures, got %d", len(board.Departures))
	}
	for _, departure := range board.Departures {
		if departure.ServiceID != "svc-1" && departure.ServiceID != "svc-2" {
			t.Errorf("unexpected surviving service %q", departure.ServiceID)
		}
	}
}

// Multi-hop services report several origins and destinations; the effective
// pair is the first origin and the last destination.
func TestParseStationBoardMultiHopService(t *testing.T) {
	destinations := `<location><locationName>York</locationName><crs>YRK</crs></location>` +
		`<location><locationName>Edinburgh</locationName><crs>EDB</crs></location>`

	body := boardResponse(serviceXML("svc-1", "10:15", destinations))

	board, err := ParseStationBoard(body)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(board.Departures) != 1 {
		t.Fatalf("expected 1 departure, got %d", len(board.Departures))
	}

	departure := board.Departures[0]
	if departure.Origin.CRS != "KGX" {
		t.Errorf("expected effective origin KGX, got %q", departure.Origin.CRS)
	}
	if departure.Destination.CRS != "EDB" {
		t.Errorf("expected effective destination EDB, got %q", departure.Destination.CRS)
	}
}

// A board fetched late at night lists services departing after midnight;
// those must anchor to tomorrow so they order after tonight's departures.
func TestToDepartureMidnightRollover(t *testing.T) {
	now := time.Date(2024, 5, 1, 23, 55, 0, 0, time.UTC)

	tests := []struct {
		scheduled string
		wantDay   int
	}{
		{scheduled: "23:58", wantDay: 1},
		{scheduled: "00:10", wantDay: 2},
		{scheduled: "23:30", wantDay: 1},
		// Anything up to twelve hours back still counts as today, so a
		// late running afternoon service is not pushed into tomorrow.
		{scheduled: "12:00", wantDay: 1},
	}

	for _, test := range tests {
		service := rawService{
			ServiceID:    "svc-1",
			Scheduled:    test.scheduled,
			Destinations: []rawLocation{{Name: "Edinburgh", Crs: "EDB"}},
		}

		departure, err := service.toDeparture(now)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", test.scheduled, err)
		}

		if departure.ScheduledTime.Day() != test.wantDay {
			t.Errorf("%s: expected day %d, got %v", test.scheduled, test.wantDay, departure.ScheduledTime)
		}
	}

	early, _ := (&rawService{Scheduled: "00:10", Destinations: []rawLocation{{Crs: "EDB"}}}).toDeparture(now)
	late, _ := (&rawService{Scheduled: "23:58", Destinations: []rawLocation{{Crs: "EDB"}}}).toDeparture(now)
	if !late.ScheduledTime.Before(early.ScheduledTime) {
		t.Errorf("expected 23:58 to order before 00:10, got %v and %v", late.ScheduledTime, early.ScheduledTime)
	}
}

func TestParseStationBoardGarbage(t *testing.T) {
	if _, err := ParseStationBoard([]byte("not xml at all")); err == nil {
		t.Error("expected a parse error for garbage input")
	}
}

func TestExtractFault(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <soap:Fault>
      <faultcode>soap:Server</faultcode>
      <faultstring>Invalid Access Token</faultstring>
    </soap:Fault>
  </soap:Body>
</soap:Envelope>`)

	if fault := extractFault(body); fault != "Invalid Access Token" {
		t.Errorf("expected fault string to be extracted, got %q", fault)
	}

	if fault := extractFault(boardResponse("")); fault != "" {
		t.Errorf("expected no fault in a normal response, got %q", fault)
	}
}

func TestParseServiceDetails(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <GetServiceDetailsResponse xmlns="http://thalesgroup.com/RTTI/2017-10-01/ldb/">
      <GetServiceDetailsResult>
        <serviceID>svc-1</serviceID>
        <operator>LNER</operator>
        <operatorCode>GR</operatorCode>
        <serviceType>train</serviceType>
        <std>10:15</std>
        <etd>10:19</etd>
        <platform>4</platform>
        <origin><location><locationName>London Kings Cross</locationName><crs>KGX</crs></location></origin>
        <destination><location><locationName>Edinburgh</locationName><crs>EDB</crs></location></destination>
        <subsequentCallingPoints>
          <callingPointList>
            <callingPoint><locationName>York</locationName><crs>YRK</crs><st>12:10</st><et>On time</et></callingPoint>
            <callingPoint><locationName>Edinburgh</locationName><crs>EDB</crs><st>14:20</st><et>On time</et></callingPoint>
          </callingPointList>
        </subsequentCallingPoints>
      </GetServiceDetailsResult>
    </GetServiceDetailsResponse>
  </soap:Body>
</soap:Envelope>`)

	details, err := ParseServiceDetails(body)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	if details.ServiceID != "svc-1" {
		t.Errorf("expected serviceID svc-1, got %q", details.ServiceID)
	}
	if details.Estimated != "10:19" {
		t.Errorf("expected estimated 10:19, got %q", details.Estimated)
	}
	if len(details.CallingPoints) != 2 {
		t.Fatalf("expected 2 calling points, got %d", len(details.CallingPoints))
	}
	if details.CallingPoints[0].Location.CRS != "YRK" {
		t.Errorf("expected first calling point YRK, got %q", details.CallingPoints[0].Location.CRS)
	}
	if details.DataSource != raildata.DataSourcePrimary {
		t.Errorf("expected data source %q, got %q", raildata.DataSourcePrimary, details.DataSource)
	}
}

func TestParseServiceDetailsEmpty(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <GetServiceDetailsResponse xmlns="http://thalesgroup.com/RTTI/2017-10-01/ldb/">
      <GetServiceDetailsResult></GetServiceDetailsResult>
    </GetServiceDetailsResponse>
  </soap:Body>
</soap:Envelope>`)

	_, err := ParseServiceDetails(body)
	if err == nil {
		t.Fatal("expected an error for an empty service details result")
	}
	if code := raildata.ErrorCode(err); code != raildata.CodeParseError {
		t.Errorf("expected code %s, got %s", raildata.CodeParseError, code)
	}
}
