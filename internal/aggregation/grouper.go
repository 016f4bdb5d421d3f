package aggregation

import v1 "github.com/aevon-lab/servicestate/internal/api/v1"

// Group collapses a batch into the set of services to re-evaluate per cluster.
// Duplicate (cluster, service) pairs across notices collapse to one entry.
func Group(notices []v1.ComponentUpdateNotice) map[int64]map[string]struct{} {
	groups := make(map[int64]map[string]struct{})
	for _, n := range notices {
		services, ok := groups[n.ClusterID]
		if !ok {
			services = make(map[string]struct{})
			groups[n.ClusterID] = services
		}
		services[n.ServiceName] = struct{}{}
	}
	return groups
}
