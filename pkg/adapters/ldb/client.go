// Package ldb talks to the National Rail Live Departure Board web service,
// a SOAP style XML request/response endpoint, and converts its responses
// into domain objects.
package ldb

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/raildeck/raildeck/pkg/raildata"
)

const (
	soapNamespace  = "http://schemas.xmlsoap.org/soap/envelope/"
	tokenNamespace = "http://thalesgroup.com/RTTI/2013-11-28/Token/types"
	ldbNamespace   = "http://thalesgroup.com/RTTI/2017-10-01/ldb/"

	// The gateway rejects row limits above this, so clamp rather than error.
	maxNumRows     = 150
	defaultNumRows = 10

	defaultTimeout = 10 * time.Second
)

type Client struct {
	Endpoint    string
	AccessToken string

	httpClient *http.Client
}

func NewClient(endpoint string, accessToken string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		Endpoint:    endpoint,
		AccessToken: accessToken,

		httpClient: &http.Client{Timeout: timeout},
	}
}

type soapEnvelope struct {
	XMLName xml.Name `xml:"soap:Envelope"`
	SoapNS  string   `xml:"xmlns:soap,attr"`
	TokenNS string   `xml:"xmlns:typ,attr"`
	LdbNS   string   `xml:"xmlns:ldb,attr"`

	Header soapHeader
	Body   soapBody
}

type soapHeader struct {
	XMLName     xml.Name `xml:"soap:Header"`
	AccessToken accessToken
}

type accessToken struct {
	XMLName    xml.Name `xml:"typ:AccessToken"`
	TokenValue string   `xml:"typ:TokenValue"`
}

type soapBody struct {
	XMLName xml.Name `xml:"soap:Body"`
	Content any
}

type boardRequestBody struct {
	XMLName xml.Name `xml:"ldb:GetDepBoardWithDetailsRequest"`

	NumRows    int    `xml:"ldb:numRows"`
	CRS        string `xml:"ldb:crs"`
	FilterCrs  string `xml:"ldb:filterCrs,omitempty"`
	FilterType string `xml:"ldb:filterType,omitempty"`
	TimeOffset int    `xml:"ldb:timeOffset"`
	TimeWindow int    `xml:"ldb:timeWindow"`
}

type serviceDetailsRequestBody struct {
	XMLName xml.Name `xml:"ldb:GetServiceDetailsRequest"`

	ServiceID string `xml:"ldb:serviceID"`
}

func (c *Client) buildEnvelope(content any) soapEnvelope {
	return soapEnvelope{
		SoapNS:  soapNamespace,
		TokenNS: tokenNamespace,
		LdbNS:   ldbNamespace,

		Header: soapHeader{
			AccessToken: accessToken{TokenValue: c.AccessToken},
		},
		Body: soapBody{Content: content},
	}
}

func (c *Client) call(ctx context.Context, action string, content any) ([]byte, error) {
	envelope := c.buildEnvelope(content)

	requestBody, err := xml.Marshal(envelope)
	if err != nil {
		return nil, raildata.NewError(raildata.CodeParseError, "failed to encode request envelope", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return nil, raildata.NewError(raildata.CodeTransportError, "failed to build gateway request", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", fmt.Sprintf("%s%s", ldbNamespace, action))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, raildata.NewError(raildata.CodeTransportError, "gateway request failed", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, raildata.NewError(raildata.CodeTransportError, "failed to read gateway response", err)
	}

	// Fault envelopes can come back with any status code, so always check
	// for one before looking at the status.
	if faultString := extractFault(responseBody); faultString != "" {
		return nil, raildata.NewError(raildata.CodeProtocolFault, faultString, nil)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, raildata.NewError(raildata.CodeTransportError, fmt.Sprintf("gateway returned status %d", resp.StatusCode), nil)
	}

	return responseBody, nil
}

// GetDepartureBoard runs a station board query against the gateway.
func (c *Client) GetDepartureBoard(ctx context.Context, query raildata.StationBoardRequest) (*StationBoard, error) {
	numRows := query.NumRows
	if numRows <= 0 {
		numRows = defaultNumRows
	}
	if numRows > maxNumRows {
		numRows = maxNumRows
	}

	requestContent := boardRequestBody{
		NumRows:    numRows,
		CRS:        query.CRS,
		TimeOffset: query.TimeOffset,
		TimeWindow: query.TimeWindow,
	}
	if query.FilterCRS != "" {
		requestContent.FilterCrs = query.FilterCRS
		requestContent.FilterType = string(query.FilterDirection)
	}

	responseBody, err := c.call(ctx, "GetDepBoardWithDetails", requestContent)
	if err != nil {
		return nil, err
	}

	return ParseStationBoard(responseBody)
}

// GetServiceDetails fetches the full record for one service.
func (c *Client) GetServiceDetails(ctx context.Context, serviceID string) (*raildata.ServiceDetails, error) {
	responseBody, err := c.call(ctx, "GetServiceDetails", serviceDetailsRequestBody{ServiceID: serviceID})
	if err != nil {
		return nil, err
	}

	return ParseServiceDetails(responseBody)
}
