package movements

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/raildeck/raildeck/pkg/raildata"
)

// FeedEvent is one raw train movement report from the push feed.
type FeedEvent struct {
	Header struct {
		MsgType           string `json:"msg_type"`
		MsgQueueTimestamp string `json:"msg_queue_timestamp"`
	} `json:"header"`

	Body json.RawMessage `json:"body"`
}

type feedEventBody struct {
	LocationStanox  string `json:"loc_stanox"`
	ActualTimestamp string `json:"actual_timestamp"`
}

// DecodeEvents parses a feed message, tolerating both a single event object
// and an array of events per message.
func DecodeEvents(payload []byte) ([]FeedEvent, error) {
	var events []FeedEvent
	if err := json.Unmarshal(payload, &events); err == nil {
		return events, nil
	}

	var single FeedEvent
	if err := json.Unmarshal(payload, &single); err != nil {
		return nil, raildata.NewError(raildata.CodeParseError, "feed message is neither an event nor an event array", err)
	}

	return []FeedEvent{single}, nil
}

// LocationStanox extracts the provider internal location identifier from
// the event body.
func (e *FeedEvent) LocationStanox() string {
	var body feedEventBody
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}

	return body.LocationStanox
}

// Timestamp derives the event instant, preferring the in body actual
// timestamp (epoch milliseconds) over the queue timestamp.
func (e *FeedEvent) Timestamp() time.Time {
	var body feedEventBody
	if err := json.Unmarshal(e.Body, &body); err == nil && body.ActualTimestamp != "" {
		if millis, err := strconv.ParseInt(body.ActualTimestamp, 10, 64); err == nil {
			return time.UnixMilli(millis)
		}
	}

	if e.Header.MsgQueueTimestamp != "" {
		if millis, err := strconv.ParseInt(e.Header.MsgQueueTimestamp, 10, 64); err == nil {
			return time.UnixMilli(millis)
		}
	}

	return time.Now()
}
