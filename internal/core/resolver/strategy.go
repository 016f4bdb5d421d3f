// Package resolver maps service names to the strategy that calculates their state.
package resolver

import (
	"context"
	"fmt"

	v1 "github.com/aevon-lab/servicestate/internal/api/v1"
	"github.com/aevon-lab/servicestate/internal/core/state"
	"github.com/aevon-lab/servicestate/internal/core/storage"
)

// StateStrategy computes the aggregate state of one service. Implementations may
// read live cluster state and be slow; callers must not hold locks across the call.
type StateStrategy interface {
	ComputeState(ctx context.Context, clusterName, serviceName string) (state.ServiceState, error)
}

// Family folds a service's component states into one ServiceState.
// To add a family: implement Family and add an entry to Families.
type Family interface {
	Calculate(components []storage.ComponentState) state.ServiceState
}

const (
	FamilyDefault    = "default"
	FamilyHAMaster   = "ha_master"
	FamilyClientOnly = "client_only"
)

// Families is the registry of component-based calculation families.
var Families = map[string]Family{
	FamilyDefault:    defaultFamily{},
	FamilyHAMaster:   haMasterFamily{},
	FamilyClientOnly: clientOnlyFamily{},
}

// ValidFamily reports whether name is a registered family.
func ValidFamily(name string) bool {
	_, ok := Families[name]
	return ok
}

// componentStrategy reads the service's components from the store and applies a Family.
type componentStrategy struct {
	store  storage.ComponentStore
	family Family
}

func (s componentStrategy) ComputeState(ctx context.Context, clusterName, serviceName string) (state.ServiceState, error) {
	components, err := s.store.ListServiceComponents(ctx, clusterName, serviceName)
	if err != nil {
		return state.Unknown, fmt.Errorf("load components of %s/%s: %w", clusterName, serviceName, err)
	}
	return s.family.Calculate(components), nil
}

func byCategory(components []storage.ComponentState, cat v1.ComponentCategory) []storage.ComponentState {
	var out []storage.ComponentState
	for _, c := range components {
		if c.Category == cat {
			out = append(out, c)
		}
	}
	return out
}

// allOrFirst returns want when every component is in want, otherwise the state of
// the first component that is not. Components arrive in (component, host) order.
func allOrFirst(components []storage.ComponentState, want state.ServiceState) state.ServiceState {
	for _, c := range components {
		if c.State != want {
			return c.State
		}
	}
	return want
}

// defaultFamily judges a service by its masters, or by its slaves when it has none.
type defaultFamily struct{}

func (defaultFamily) Calculate(components []storage.ComponentState) state.ServiceState {
	relevant := byCategory(components, v1.CategoryMaster)
	if len(relevant) == 0 {
		relevant = byCategory(components, v1.CategorySlave)
	}
	if len(relevant) == 0 {
		return state.Unknown
	}
	return allOrFirst(relevant, state.Started)
}

// haMasterFamily treats each master component as satisfied when any of its
// instances is started, so a standby master does not mark the service down.
type haMasterFamily struct{}

func (haMasterFamily) Calculate(components []storage.ComponentState) state.ServiceState {
	masters := byCategory(components, v1.CategoryMaster)
	if len(masters) == 0 {
		return defaultFamily{}.Calculate(components)
	}

	var (
		order     []string
		instances = make(map[string][]storage.ComponentState)
	)
	for _, m := range masters {
		if _, seen := instances[m.ComponentName]; !seen {
			order = append(order, m.ComponentName)
		}
		instances[m.ComponentName] = append(instances[m.ComponentName], m)
	}

	for _, name := range order {
		group := instances[name]
		started := false
		for _, inst := range group {
			if inst.State == state.Started {
				started = true
				break
			}
		}
		if !started {
			return group[0].State
		}
	}
	return state.Started
}

// clientOnlyFamily covers services with nothing to run: installed is the healthy state.
type clientOnlyFamily struct{}

func (clientOnlyFamily) Calculate(components []storage.ComponentState) state.ServiceState {
	if len(components) == 0 {
		return state.Unknown
	}
	return allOrFirst(components, state.Installed)
}
