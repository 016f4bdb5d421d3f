// Package update defines the notifications republished downstream.
//
// A Notification is either StateChanged or MaintenanceChanged. The interface is
// sealed so a payload carrying both or neither variant cannot be built.
package update

import (
	v1 "github.com/aevon-lab/servicestate/internal/api/v1"
	"github.com/aevon-lab/servicestate/internal/core/state"
)

type Kind string

const (
	KindStateChanged       Kind = "state_changed"
	KindMaintenanceChanged Kind = "maintenance_changed"
)

type Notification interface {
	Kind() Kind
	Cluster() string
	Service() string
	// Wire encodes the notification in the shape existing subscribers consume.
	Wire() v1.ServiceUpdate

	sealed()
}

// StateChanged reports a new calculated state for a service.
type StateChanged struct {
	ClusterName string
	ServiceName string
	State       state.ServiceState
}

func (StateChanged) Kind() Kind        { return KindStateChanged }
func (n StateChanged) Cluster() string { return n.ClusterName }
func (n StateChanged) Service() string { return n.ServiceName }
func (StateChanged) sealed()           {}

func (n StateChanged) Wire() v1.ServiceUpdate {
	st := n.State
	return v1.ServiceUpdate{ClusterName: n.ClusterName, ServiceName: n.ServiceName, State: &st}
}

// MaintenanceChanged reports a maintenance-mode change for a service.
type MaintenanceChanged struct {
	ClusterName      string
	ServiceName      string
	MaintenanceState state.MaintenanceState
}

func (MaintenanceChanged) Kind() Kind        { return KindMaintenanceChanged }
func (n MaintenanceChanged) Cluster() string { return n.ClusterName }
func (n MaintenanceChanged) Service() string { return n.ServiceName }
func (MaintenanceChanged) sealed()           {}

func (n MaintenanceChanged) Wire() v1.ServiceUpdate {
	m := n.MaintenanceState
	return v1.ServiceUpdate{ClusterName: n.ClusterName, ServiceName: n.ServiceName, MaintenanceState: &m}
}
