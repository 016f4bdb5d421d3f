package aggregation

import (
	"context"
	"strconv"
	"time"

	"github.com/aevon-lab/servicestate/internal/core/storage"
	"golang.org/x/sync/singleflight"
)

const defaultLookupTimeout = 10 * time.Second

// ClusterNames resolves cluster display names, collapsing concurrent lookups of
// the same cluster into one registry call. Results are not cached: a renamed or
// deleted cluster is seen on the next batch.
type ClusterNames struct {
	registry storage.ClusterRegistry
	group    singleflight.Group
	timeout  time.Duration
}

func NewClusterNames(registry storage.ClusterRegistry) *ClusterNames {
	if registry == nil {
		panic("aggregation: cluster registry must not be nil")
	}
	return &ClusterNames{registry: registry, timeout: defaultLookupTimeout}
}

// Resolve returns the display name or the registry's error, which wraps
// storage.ErrClusterNotFound for deleted clusters.
//
// The shared lookup is detached from the caller that started it, so one
// caller's cancellation only ends its own wait.
func (c *ClusterNames) Resolve(ctx context.Context, clusterID int64) (string, error) {
	ch := c.group.DoChan(strconv.FormatInt(clusterID, 10), func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.registry.ResolveName(lookupCtx, clusterID)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}
