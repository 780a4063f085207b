// Package stanox resolves provider internal STANOX location identifiers to
// the public CRS station codes exposed to end users.
package stanox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/raildeck/raildeck/pkg/raildata"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	tableTTL = 1 * time.Hour

	// missTTL bounds how long a failed remote resolution is remembered.
	// Identifiers do get registered with the lookup service over time, so a
	// miss is only cached briefly rather than forever.
	missTTL = 10 * time.Minute
)

// Resolver maps location identifiers to station codes. Resolution order is
// the built-in table, then an optional on disk override file merged over
// it, then an on demand remote lookup de-duplicated with single flight.
type Resolver struct {
	// LookupEndpoint is the remote resolution service. When empty, misses
	// short circuit to a no-op instead of erroring.
	LookupEndpoint string

	// OverridePath is the optional override file. Learned mappings are
	// written back to it by the persister.
	OverridePath string

	httpClient *http.Client

	tableMutex sync.RWMutex
	table      raildata.CacheEntry[map[string]string]
	misses     map[string]time.Time

	flight  singleflight.Group
	pending chan mapping
}

type mapping struct {
	STANOX string
	CRS    string
}

func NewResolver(lookupEndpoint string, overridePath string) *Resolver {
	resolver := &Resolver{
		LookupEndpoint: lookupEndpoint,
		OverridePath:   overridePath,

		httpClient: &http.Client{Timeout: 5 * time.Second},

		misses:  map[string]time.Time{},
		pending: make(chan mapping, 256),
	}

	resolver.tableMutex.Lock()
	resolver.table = raildata.NewCacheEntry(resolver.loadTable(), tableTTL)
	resolver.tableMutex.Unlock()

	return resolver
}

// loadTable merges the override file (when present) over the built-in
// table.
func (r *Resolver) loadTable() map[string]string {
	table := builtinTable()

	if r.OverridePath == "" {
		return table
	}

	overrideBytes, err := os.ReadFile(r.OverridePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", r.OverridePath).Msg("Failed to read STANOX override file")
		}
		return table
	}

	var overrides map[string]string
	if err := json.Unmarshal(overrideBytes, &overrides); err != nil {
		log.Warn().Err(err).Str("path", r.OverridePath).Msg("Failed to parse STANOX override file")
		return table
	}

	for stanox, crs := range overrides {
		table[stanox] = crs
	}

	return table
}

func (r *Resolver) lookupLocal(stanox string) (string, bool) {
	r.tableMutex.RLock()
	expired := r.table.Expired()
	if !expired {
		crs, ok := r.table.Value[stanox]
		r.tableMutex.RUnlock()
		return crs, ok
	}
	r.tableMutex.RUnlock()

	// Bulk table expired; reload it, picking up any override file rewrite.
	r.tableMutex.Lock()
	if r.table.Expired() {
		r.table = raildata.NewCacheEntry(r.loadTable(), tableTTL)
	}
	crs, ok := r.table.Value[stanox]
	r.tableMutex.Unlock()

	return crs, ok
}

// Resolve maps a STANOX to a CRS code. It returns ("", nil) when the
// identifier is unknown and no lookup service is configured.
func (r *Resolver) Resolve(ctx context.Context, stanox string) (string, error) {
	if crs, ok := r.lookupLocal(stanox); ok {
		return crs, nil
	}

	if r.LookupEndpoint == "" {
		return "", nil
	}

	// A recently failed lookup is not retried; movement feeds can emit the
	// same unregistered identifier hundreds of times a minute.
	if r.recentMiss(stanox) {
		return "", nil
	}

	// Concurrent lookups for the same identifier collapse into one
	// in-flight request.
	result, err, _ := r.flight.Do(stanox, func() (any, error) {
		return r.remoteLookup(ctx, stanox)
	})
	if err != nil {
		return "", err
	}

	crs := result.(string)
	if crs == "" {
		r.rememberMiss(stanox)
		return "", nil
	}

	r.learn(stanox, crs)

	return crs, nil
}

func (r *Resolver) remoteLookup(ctx context.Context, stanox string) (string, error) {
	var crs string

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/stanox/%s", r.LookupEndpoint, stanox), nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := r.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("lookup service returned status %d", resp.StatusCode)
		}

		var lookupResponse struct {
			CRS string `json:"crs"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&lookupResponse); err != nil {
			return backoff.Permanent(err)
		}

		crs = lookupResponse.CRS
		return nil
	}

	retryPolicy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2)
	if err := backoff.Retry(operation, backoff.WithContext(retryPolicy, ctx)); err != nil {
		return "", raildata.NewError(raildata.CodeTransportError, "STANOX remote lookup failed", err)
	}

	return crs, nil
}

func (r *Resolver) recentMiss(stanox string) bool {
	r.tableMutex.RLock()
	defer r.tableMutex.RUnlock()

	expiry, ok := r.misses[stanox]
	return ok && time.Now().Before(expiry)
}

func (r *Resolver) rememberMiss(stanox string) {
	r.tableMutex.Lock()
	r.misses[stanox] = time.Now().Add(missTTL)
	r.tableMutex.Unlock()
}

// learn records a successful remote resolution in the in memory table and
// queues it for the debounced override file rewrite. It never blocks the
// caller.
func (r *Resolver) learn(stanox string, crs string) {
	r.tableMutex.Lock()
	r.table.Value[stanox] = crs
	delete(r.misses, stanox)
	r.tableMutex.Unlock()

	select {
	case r.pending <- mapping{STANOX: stanox, CRS: crs}:
	default:
		log.Warn().Str("stanox", stanox).Msg("STANOX persistence queue full, dropping learned mapping")
	}
}
