package v1

import (
	"fmt"
	"time"

	"github.com/aevon-lab/servicestate/internal/core/state"
)

// ComponentCategory classifies a host component within its service.
type ComponentCategory string

const (
	CategoryMaster ComponentCategory = "MASTER"
	CategorySlave  ComponentCategory = "SLAVE"
	CategoryClient ComponentCategory = "CLIENT"
)

func (c ComponentCategory) Valid() bool {
	return c == CategoryMaster || c == CategorySlave || c == CategoryClient
}

// ComponentUpdateNotice is one raw status report for a component on a host.
// Batches are unordered and may carry several notices for the same (cluster, service).
type ComponentUpdateNotice struct {
	ClusterID     int64              `json:"cluster_id"`
	ServiceName   string             `json:"service_name"`
	HostID        int64              `json:"host_id"`
	ComponentName string             `json:"component_name"`
	Category      ComponentCategory  `json:"category"`
	State         state.ServiceState `json:"state"`
	// ReportedAt is when the agent observed the state. Zero means receive time.
	ReportedAt time.Time `json:"reported_at,omitzero"`
}

// Validate rejects notices that cannot be attributed to a (cluster, service) pair.
func (n *ComponentUpdateNotice) Validate() error {
	if n.ClusterID <= 0 {
		return fmt.Errorf("cluster_id is required")
	}
	if n.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if n.ComponentName == "" {
		return fmt.Errorf("component_name is required")
	}
	if n.HostID <= 0 {
		return fmt.Errorf("host_id is required")
	}
	if n.Category == "" {
		n.Category = CategorySlave
	}
	if !n.Category.Valid() {
		return fmt.Errorf("invalid category %q", n.Category)
	}
	if n.State == "" {
		return fmt.Errorf("state is required")
	}
	return nil
}

// ComponentUpdateBatch is the inbound envelope for a heartbeat cycle's worth of notices.
type ComponentUpdateBatch struct {
	Updates []ComponentUpdateNotice `json:"updates"`
}

// Validate checks every notice and reports the index of the first bad one.
// An empty batch is valid.
func (b *ComponentUpdateBatch) Validate() error {
	for i := range b.Updates {
		if err := b.Updates[i].Validate(); err != nil {
			return fmt.Errorf("updates[%d]: %w", i, err)
		}
	}
	return nil
}

// ServiceRef names a service inside a maintenance event.
type ServiceRef struct {
	Name string `json:"name"`
}

// MaintenanceEvent reports a maintenance-mode change. A nil Service means the
// change applies to the whole cluster.
type MaintenanceEvent struct {
	ClusterID        int64                  `json:"cluster_id"`
	Service          *ServiceRef            `json:"service,omitempty"`
	MaintenanceState state.MaintenanceState `json:"maintenance_state"`
}

func (e *MaintenanceEvent) Validate() error {
	if e.ClusterID <= 0 {
		return fmt.Errorf("cluster_id is required")
	}
	if e.Service != nil && e.Service.Name == "" {
		return fmt.Errorf("service.name must not be empty")
	}
	if !e.MaintenanceState.Valid() {
		return fmt.Errorf("maintenance_state is required")
	}
	return nil
}
