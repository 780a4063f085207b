// Package aggregator composes data source manager calls into the two
// externally consumed operations, station board and service detail, merging
// enhancement data and memoising results under a short TTL.
package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/raildeck/raildeck/pkg/adapters"
	"github.com/raildeck/raildeck/pkg/raildata"
	"github.com/raildeck/raildeck/pkg/sourcemanager"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

const DefaultCacheTTL = 30 * time.Second

type Aggregator struct {
	Manager *sourcemanager.Manager

	cache resultCache
}

// NewAggregator builds an aggregator. When redisClient is nil results are
// memoised in process instead.
func NewAggregator(manager *sourcemanager.Manager, redisClient *redis.Client, cacheTTL time.Duration) *Aggregator {
	if cacheTTL == 0 {
		cacheTTL = DefaultCacheTTL
	}

	var cache resultCache
	if redisClient != nil {
		cache = newRedisResultCache(redisClient, cacheTTL)
	} else {
		cache = newMemoryResultCache(cacheTTL)
	}

	return &Aggregator{
		Manager: manager,

		cache: cache,
	}
}

// boardEnhancement carries the optional enrichment fields for a station
// board.
type boardEnhancement struct {
	Station     *raildata.StationInfo
	Disruptions []raildata.Disruption
}

// GetStationBoard returns the aggregated, optionally enhanced board for a
// station.
func (a *Aggregator) GetStationBoard(ctx context.Context, req raildata.StationBoardRequest) (*raildata.EnhancedStationBoard, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cacheKey := req.CacheKey()
	if cached, ok := a.cache.Get(ctx, cacheKey); ok {
		var board raildata.EnhancedStationBoard
		if err := json.Unmarshal([]byte(cached), &board); err == nil {
			return &board, nil
		}
	}

	primaryOp := func(ctx context.Context, adapter adapters.Adapter) (*raildata.EnhancedStationBoard, error) {
		return adapter.GetStationBoard(ctx, req)
	}

	enhancementOp := func(ctx context.Context, adapter adapters.Adapter) (*boardEnhancement, error) {
		return fetchBoardEnhancement(ctx, adapter, req.CRS)
	}

	combine := func(board *raildata.EnhancedStationBoard, enhancement *boardEnhancement) *raildata.EnhancedStationBoard {
		attached := false

		if enhancement.Station != nil {
			board.StationInfo = enhancement.Station
			attached = true
		}

		disruptions := filterDisruptions(enhancement.Disruptions, req.CRS)
		if len(disruptions) > 0 {
			board.Disruptions = disruptions
			attached = true
		}

		if attached {
			board.DataSource = raildata.DataSourceCombined
		}

		return board
	}

	board, err := sourcemanager.ExecuteWithEnhancement(ctx, a.Manager, adapters.CapabilityDepartureBoard, primaryOp, enhancementOp, combine)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(board.Departures, func(a raildata.Departure, b raildata.Departure) int {
		return a.ScheduledTime.Compare(b.ScheduledTime)
	})

	board.DataQuality = dataQuality(board.Departures)
	board.EnhancementAvailable = a.Manager.EnhancementAvailable()

	a.storeCached(ctx, cacheKey, board)

	return board, nil
}

// GetServiceDetails returns the aggregated, optionally tracked record for a
// single service.
func (a *Aggregator) GetServiceDetails(ctx context.Context, serviceID string) (*raildata.ServiceDetails, error) {
	cacheKey := fmt.Sprintf("service:%s", serviceID)
	if cached, ok := a.cache.Get(ctx, cacheKey); ok {
		var details raildata.ServiceDetails
		if err := json.Unmarshal([]byte(cached), &details); err == nil {
			return &details, nil
		}
	}

	primaryOp := func(ctx context.Context, adapter adapters.Adapter) (*raildata.ServiceDetails, error) {
		return adapter.GetServiceDetails(ctx, serviceID)
	}

	enhancementOp := func(ctx context.Context, adapter adapters.Adapter) (*raildata.TrackingInfo, error) {
		return adapter.GetServiceTracking(ctx, serviceID)
	}

	combine := func(details *raildata.ServiceDetails, tracking *raildata.TrackingInfo) *raildata.ServiceDetails {
		details.Tracking = tracking
		details.DataSource = raildata.DataSourceCombined

		return details
	}

	details, err := sourcemanager.ExecuteWithEnhancement(ctx, a.Manager, adapters.CapabilityServiceDetails, primaryOp, enhancementOp, combine)
	if err != nil {
		return nil, err
	}

	details.EnhancementAvailable = a.Manager.EnhancementAvailable()

	a.storeCached(ctx, cacheKey, details)

	return details, nil
}

func (a *Aggregator) storeCached(ctx context.Context, key string, value any) {
	encoded, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to encode aggregation result for cache")
		return
	}

	a.cache.Set(ctx, key, string(encoded))
}

// fetchBoardEnhancement gathers station info and disruptions from the
// enhancement adapter. A partial result is still worth attaching; only the
// failure of both halves is reported as an error.
func fetchBoardEnhancement(ctx context.Context, adapter adapters.Adapter, crs string) (*boardEnhancement, error) {
	enhancement := &boardEnhancement{}

	station, stationErr := adapter.GetStationInfo(ctx, crs)
	if stationErr == nil {
		enhancement.Station = station
	}

	disruptions, disruptionsErr := adapter.GetDisruptions(ctx)
	if disruptionsErr == nil {
		enhancement.Disruptions = disruptions
	}

	if stationErr != nil && disruptionsErr != nil {
		return nil, stationErr
	}

	return enhancement, nil
}

// filterDisruptions keeps disruptions on routes touching the requested
// station.
func filterDisruptions(disruptions []raildata.Disruption, crs string) []raildata.Disruption {
	var filtered []raildata.Disruption

	for _, disruption := range disruptions {
		if slices.Contains(disruption.AffectedStations, crs) {
			filtered = append(filtered, disruption)
		}
	}

	return filtered
}

// dataQuality is the fraction of departures carrying the complete
// (scheduled, estimated, platform) tuple.
func dataQuality(departures []raildata.Departure) float64 {
	if len(departures) == 0 {
		return 1
	}

	complete := 0
	for _, departure := range departures {
		if departure.Complete() {
			complete += 1
		}
	}

	return float64(complete) / float64(len(departures))
}
