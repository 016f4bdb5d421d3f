package state

import (
	"encoding/json"
	"fmt"
)

// ServiceState is the operational state of a service or of a single host component.
// The zero value is Unknown.
type ServiceState string

const (
	Unknown       ServiceState = "UNKNOWN"
	Init          ServiceState = "INIT"
	Installing    ServiceState = "INSTALLING"
	InstallFailed ServiceState = "INSTALL_FAILED"
	Installed     ServiceState = "INSTALLED"
	Starting      ServiceState = "STARTING"
	Started       ServiceState = "STARTED"
	Stopping      ServiceState = "STOPPING"
	Uninstalling  ServiceState = "UNINSTALLING"
	Uninstalled   ServiceState = "UNINSTALLED"
	WipingOut     ServiceState = "WIPING_OUT"
	Upgrading     ServiceState = "UPGRADING"
	Disabled      ServiceState = "DISABLED"
)

var serviceStates = map[ServiceState]struct{}{
	Unknown: {}, Init: {}, Installing: {}, InstallFailed: {}, Installed: {},
	Starting: {}, Started: {}, Stopping: {}, Uninstalling: {}, Uninstalled: {},
	WipingOut: {}, Upgrading: {}, Disabled: {},
}

// ParseServiceState returns the ServiceState named by s. Matching is exact.
func ParseServiceState(s string) (ServiceState, error) {
	st := ServiceState(s)
	if _, ok := serviceStates[st]; !ok {
		return Unknown, fmt.Errorf("unknown service state %q", s)
	}
	return st, nil
}

func (s ServiceState) String() string {
	if s == "" {
		return string(Unknown)
	}
	return string(s)
}

func (s ServiceState) Valid() bool {
	_, ok := serviceStates[s]
	return ok
}

func (s *ServiceState) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseServiceState(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MaintenanceState describes administrative suppression of alerting for a service.
// It is orthogonal to ServiceState.
type MaintenanceState string

const (
	MaintenanceOff                       MaintenanceState = "OFF"
	MaintenanceOn                        MaintenanceState = "ON"
	MaintenanceImpliedFromService        MaintenanceState = "IMPLIED_FROM_SERVICE"
	MaintenanceImpliedFromHost           MaintenanceState = "IMPLIED_FROM_HOST"
	MaintenanceImpliedFromServiceAndHost MaintenanceState = "IMPLIED_FROM_SERVICE_AND_HOST"
)

// ParseMaintenanceState returns the MaintenanceState named by s.
func ParseMaintenanceState(s string) (MaintenanceState, error) {
	m := MaintenanceState(s)
	if !m.Valid() {
		return MaintenanceOff, fmt.Errorf("unknown maintenance state %q", s)
	}
	return m, nil
}

func (m MaintenanceState) Valid() bool {
	switch m {
	case MaintenanceOff, MaintenanceOn, MaintenanceImpliedFromService,
		MaintenanceImpliedFromHost, MaintenanceImpliedFromServiceAndHost:
		return true
	}
	return false
}

// Implied reports whether maintenance is inherited from a service or host rather than set directly.
func (m MaintenanceState) Implied() bool {
	switch m {
	case MaintenanceImpliedFromService, MaintenanceImpliedFromHost, MaintenanceImpliedFromServiceAndHost:
		return true
	}
	return false
}

func (m *MaintenanceState) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseMaintenanceState(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
