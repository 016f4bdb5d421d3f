package aggregation

import (
	"context"
	"fmt"
	"log/slog"

	v1 "github.com/aevon-lab/servicestate/internal/api/v1"
	"github.com/aevon-lab/servicestate/internal/core/update"
	"github.com/aevon-lab/servicestate/internal/metrics"
	"github.com/aevon-lab/servicestate/internal/publish"
)

// MaintenancePassThrough republishes service maintenance changes. It keeps no
// state: identical consecutive events are all published.
type MaintenancePassThrough struct {
	names     *ClusterNames
	publisher publish.Publisher
	metrics   metrics.Recorder
}

func NewMaintenancePassThrough(names *ClusterNames, pub publish.Publisher, rec metrics.Recorder) *MaintenancePassThrough {
	if names == nil {
		panic("aggregation: cluster names must not be nil")
	}
	if pub == nil {
		panic("aggregation: publisher must not be nil")
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &MaintenancePassThrough{names: names, publisher: pub, metrics: rec}
}

// ProcessMaintenanceEvent publishes a MaintenanceChanged notification and reports
// whether it did. Cluster-wide events (no service) are ignored. An unknown
// cluster yields an error wrapping storage.ErrClusterNotFound; the event is
// not retried.
func (m *MaintenancePassThrough) ProcessMaintenanceEvent(ctx context.Context, evt v1.MaintenanceEvent) (bool, error) {
	if evt.Service == nil {
		m.metrics.IncMaintenance(false)
		return false, nil
	}

	clusterName, err := m.names.Resolve(ctx, evt.ClusterID)
	if err != nil {
		slog.Warn("[Maintenance] Dropping event, cluster lookup failed",
			"cluster_id", evt.ClusterID,
			"service", evt.Service.Name,
			"error", err)
		return false, fmt.Errorf("maintenance event for %q: %w", evt.Service.Name, err)
	}

	n := update.MaintenanceChanged{
		ClusterName:      clusterName,
		ServiceName:      evt.Service.Name,
		MaintenanceState: evt.MaintenanceState,
	}
	if err := m.publisher.Publish(ctx, n); err != nil {
		return false, fmt.Errorf("publish maintenance change for %s/%s: %w", clusterName, evt.Service.Name, err)
	}

	m.metrics.IncMaintenance(true)
	slog.Debug("[Maintenance] Published maintenance change",
		"cluster", clusterName,
		"service", evt.Service.Name,
		"maintenance_state", evt.MaintenanceState,
		"implied", evt.MaintenanceState.Implied())
	return true, nil
}
