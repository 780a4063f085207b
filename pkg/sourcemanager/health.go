package sourcemanager

import (
	"context"

	"github.com/raildeck/raildeck/pkg/raildata"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/exp/slices"
)

// AdapterStatus pairs an adapter's traffic derived health record with the
// result of an on demand connectivity probe.
type AdapterStatus struct {
	Health    raildata.DataSourceHealth `groups:"basic"`
	Reachable bool                      `groups:"basic"`
}

// CheckHealth concurrently probes every registered adapter. It is best
// effort and used only for status reporting; it never mutates the health
// records that drive fallback eligibility.
func (m *Manager) CheckHealth(ctx context.Context) []AdapterStatus {
	resultsPool := pool.NewWithResults[AdapterStatus]()

	for name, adapter := range m.adapters {
		resultsPool.Go(func() AdapterStatus {
			reachable := adapter.IsHealthy(ctx)

			m.healthMutex.RLock()
			record := *m.health[name]
			m.healthMutex.RUnlock()

			return AdapterStatus{
				Health:    record,
				Reachable: reachable,
			}
		})
	}

	statuses := resultsPool.Wait()

	slices.SortFunc(statuses, func(a AdapterStatus, b AdapterStatus) int {
		if a.Health.AdapterName < b.Health.AdapterName {
			return -1
		} else if a.Health.AdapterName > b.Health.AdapterName {
			return 1
		}
		return 0
	})

	return statuses
}
