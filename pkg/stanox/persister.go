package stanox

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultDebounce = 5 * time.Second

// RunPersister consumes learned mappings and rewrites the override file
// once the stream of new resolutions has gone quiet for the debounce
// interval. It is the single writer of the override file, so repeated
// restarts do not repeat the same remote lookups.
func (r *Resolver) RunPersister(ctx context.Context, debounce time.Duration) {
	if r.OverridePath == "" {
		return
	}
	if debounce == 0 {
		debounce = defaultDebounce
	}

	staged := map[string]string{}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case learned := <-r.pending:
			staged[learned.STANOX] = learned.CRS

			// Coalesce bursts of resolutions into one file rewrite.
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)
		case <-timer.C:
			r.flush(staged)
			staged = map[string]string{}
		case <-ctx.Done():
			if len(staged) > 0 {
				r.flush(staged)
			}
			return
		}
	}
}

func (r *Resolver) flush(staged map[string]string) {
	if len(staged) == 0 {
		return
	}

	overrides := map[string]string{}

	if existingBytes, err := os.ReadFile(r.OverridePath); err == nil {
		if err := json.Unmarshal(existingBytes, &overrides); err != nil {
			log.Warn().Err(err).Str("path", r.OverridePath).Msg("Existing STANOX override file is unreadable, rewriting it")
			overrides = map[string]string{}
		}
	}

	for stanox, crs := range staged {
		overrides[stanox] = crs
	}

	overrideBytes, err := json.MarshalIndent(overrides, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode STANOX overrides")
		return
	}

	if err := os.WriteFile(r.OverridePath, overrideBytes, 0644); err != nil {
		log.Error().Err(err).Str("path", r.OverridePath).Msg("Failed to write STANOX override file")
		return
	}

	log.Info().Int("count", len(staged)).Str("path", r.OverridePath).Msg("Persisted learned STANOX mappings")
}
