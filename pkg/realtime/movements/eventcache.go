package movements

import (
	"sync"

	"github.com/raildeck/raildeck/pkg/raildata"
)

const DefaultCacheCapacity = 50

// StationEventCache holds a bounded, most-recent-first sequence of movement
// events per station. The broker's consume loop is the only writer; request
// driven callers read concurrently.
type StationEventCache struct {
	capacity int

	mutex  sync.RWMutex
	events map[string][]raildata.MovementEvent
}

func NewStationEventCache(capacity int) *StationEventCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}

	return &StationEventCache{
		capacity: capacity,

		events: map[string][]raildata.MovementEvent{},
	}
}

// Append inserts an event at the head of its station's sequence, evicting
// the oldest entry on overflow.
func (c *StationEventCache) Append(event raildata.MovementEvent) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	stationEvents := append([]raildata.MovementEvent{event}, c.events[event.CRS]...)
	if len(stationEvents) > c.capacity {
		stationEvents = stationEvents[:c.capacity]
	}

	c.events[event.CRS] = stationEvents
}

// Recent returns a copy of the cached events for a station, most recent
// first.
func (c *StationEventCache) Recent(crs string) []raildata.MovementEvent {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	stationEvents := c.events[crs]

	copied := make([]raildata.MovementEvent, len(stationEvents))
	copy(copied, stationEvents)

	return copied
}

// Stations returns how many stations currently have cached events.
func (c *StationEventCache) Stations() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.events)
}
