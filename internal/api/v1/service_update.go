package v1

import "github.com/aevon-lab/servicestate/internal/core/state"

// ServiceUpdate is the outbound wire payload consumed by UI subscribers.
// Exactly one of MaintenanceState and State is set.
type ServiceUpdate struct {
	ClusterName      string                  `json:"clusterName"`
	MaintenanceState *state.MaintenanceState `json:"maintenanceState,omitempty"`
	ServiceName      string                  `json:"serviceName"`
	State            *state.ServiceState     `json:"state,omitempty"`
}
