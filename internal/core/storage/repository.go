package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	v1 "github.com/aevon-lab/servicestate/internal/api/v1"
	"github.com/aevon-lab/servicestate/internal/core/state"
)

// ErrClusterNotFound is returned when a cluster ID has no registry entry,
// typically because the cluster was deleted after the event was emitted.
var ErrClusterNotFound = errors.New("cluster not found")

// SaveError reports the clusters whose component states could not be written.
// Clusters absent from the map were saved (or skipped because they no longer exist).
type SaveError struct {
	Clusters map[int64]error
}

// ClusterIDs returns the failed cluster IDs in ascending order.
func (e *SaveError) ClusterIDs() []int64 {
	ids := make([]int64, 0, len(e.Clusters))
	for id := range e.Clusters {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (e *SaveError) Error() string {
	parts := make([]string, 0, len(e.Clusters))
	for _, id := range e.ClusterIDs() {
		parts = append(parts, fmt.Sprintf("cluster %d: %v", id, e.Clusters[id]))
	}
	return "save component states: " + strings.Join(parts, "; ")
}

func (e *SaveError) Unwrap() []error {
	errs := make([]error, 0, len(e.Clusters))
	for _, id := range e.ClusterIDs() {
		errs = append(errs, e.Clusters[id])
	}
	return errs
}

// ClusterRegistry resolves cluster IDs to display names. It is read-only here.
type ClusterRegistry interface {
	// ResolveName returns ErrClusterNotFound (possibly wrapped) for unknown IDs.
	ResolveName(ctx context.Context, clusterID int64) (string, error)
}

// ComponentState is the last reported state of one host component.
type ComponentState struct {
	ClusterID     int64
	ServiceName   string
	ComponentName string
	HostID        int64
	Category      v1.ComponentCategory
	State         state.ServiceState
	UpdatedAt     time.Time
}

// ComponentStore persists host component states reported by agents and serves
// them to the state strategies.
type ComponentStore interface {
	// SaveComponentStates upserts one row per (cluster, service, component, host).
	// Each cluster's notices are written atomically and independently of other
	// clusters. Notices for clusters missing from the registry are dropped.
	// When some clusters fail the returned error is a *SaveError.
	SaveComponentStates(ctx context.Context, notices []v1.ComponentUpdateNotice) error

	// ListServiceComponents returns the components of a service ordered by
	// component name, then host ID.
	ListServiceComponents(ctx context.Context, clusterName, serviceName string) ([]ComponentState, error)
}
