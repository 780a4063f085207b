package sourcemanager

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/raildeck/raildeck/pkg/adapters"
	"github.com/raildeck/raildeck/pkg/raildata"
	"github.com/rs/zerolog/log"
)

// Execute runs primaryOp against the configured primary adapter, retrying
// once against the best available fallback adapter that supports capability
// when the primary call fails. When both fail the ORIGINAL primary error is
// surfaced, not the fallback's, so callers can diagnose the primary's
// specific failure.
func Execute[P any](ctx context.Context, m *Manager, capability adapters.Capability, primaryOp func(context.Context, adapters.Adapter) (P, error)) (P, error) {
	var empty P

	primary := m.Adapter(m.config.PrimarySource)
	if primary == nil {
		return empty, raildata.ErrNoPrimarySource
	}

	start := time.Now()
	result, err := primaryOp(ctx, primary)
	if err == nil {
		m.markHealthy(primary.Name(), time.Since(start))
		return result, nil
	}

	// Asking an adapter for a capability it lacks is a programming error,
	// never a reason to try another source, and says nothing about whether
	// the source is down.
	if errors.Is(err, raildata.ErrCapabilityUnsupported) {
		return empty, err
	}

	m.markUnhealthy(primary.Name())

	if !m.config.FallbackEnabled {
		return empty, err
	}

	fallback := m.fallbackFor(primary.Name(), capability)
	if fallback == nil {
		return empty, err
	}

	log.Warn().
		Err(err).
		Str("primary", primary.Name()).
		Str("fallback", fallback.Name()).
		Msg("Primary data source failed, trying fallback")

	start = time.Now()
	fallbackResult, fallbackErr := primaryOp(ctx, fallback)
	if fallbackErr != nil {
		if !errors.Is(fallbackErr, raildata.ErrCapabilityUnsupported) {
			m.markUnhealthy(fallback.Name())
		}
		return empty, err
	}

	m.markHealthy(fallback.Name(), time.Since(start))
	return fallbackResult, nil
}

// ExecuteWithEnhancement runs Execute and then, if enhancement is enabled
// and an enhancement source is available, invokes enhancementOp
// concurrently under a soft deadline. Enhancement failures are swallowed
// and logged; the operation never fails solely because enhancement failed.
// combine only runs when the enhancement call produced a non-nil value.
func ExecuteWithEnhancement[P any, E any](
	ctx context.Context,
	m *Manager,
	capability adapters.Capability,
	primaryOp func(context.Context, adapters.Adapter) (P, error),
	enhancementOp func(context.Context, adapters.Adapter) (E, error),
	combine func(P, E) P,
) (P, error) {
	result, err := Execute(ctx, m, capability, primaryOp)
	if err != nil {
		return result, err
	}

	if enhancementOp == nil || combine == nil || !m.config.EnhancementEnabled {
		return result, nil
	}

	enhancer := m.enhancementAdapter()
	if enhancer == nil {
		return result, nil
	}

	type enhancementResult struct {
		value E
		err   error
	}

	resultChannel := make(chan enhancementResult, 1)

	// The goroutine is abandoned, not cancelled, if it outlives the soft
	// deadline. Detach from the request context so an outer cancellation
	// does not produce a spurious error log afterwards.
	enhancementCtx := context.WithoutCancel(ctx)
	go func() {
		value, enhancementErr := enhancementOp(enhancementCtx, enhancer)
		resultChannel <- enhancementResult{value: value, err: enhancementErr}
	}()

	select {
	case enhancement := <-resultChannel:
		if enhancement.err != nil {
			log.Warn().Err(enhancement.err).Str("adapter", enhancer.Name()).Msg("Enhancement call failed")
			return result, nil
		}

		if isNil(enhancement.value) {
			return result, nil
		}

		return combine(result, enhancement.value), nil
	case <-time.After(m.config.EnhancementTimeout):
		log.Warn().Str("adapter", enhancer.Name()).Msg("Enhancement call exceeded soft deadline, returning primary result")
		return result, nil
	}
}

func isNil(value any) bool {
	if value == nil {
		return true
	}

	reflected := reflect.ValueOf(value)
	switch reflected.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return reflected.IsNil()
	default:
		return false
	}
}
