package aggregation

import (
	"errors"
	"fmt"
	"sort"
)

// Stage names the step at which evaluating a pair failed.
type Stage string

const (
	StageClusterLookup Stage = "cluster_lookup"
	StageCompute       Stage = "compute_state"
	StagePublish       Stage = "publish"
)

// PairError reports a failed evaluation of one (cluster, service) pair.
// Sibling pairs in the same batch are unaffected.
type PairError struct {
	ClusterID   int64
	ClusterName string
	ServiceName string
	Stage       Stage
	Err         error
}

func (e *PairError) Error() string {
	return fmt.Sprintf("cluster %d service %q: %s: %v", e.ClusterID, e.ServiceName, e.Stage, e.Err)
}

func (e *PairError) Unwrap() error {
	return e.Err
}

// Result summarizes one component update batch.
type Result struct {
	BatchID         string       `json:"batch_id"`
	Clusters        int          `json:"clusters"`
	Evaluated       int          `json:"evaluated"`
	Published       int          `json:"published"`
	Unchanged       int          `json:"unchanged"`
	SkippedClusters []int64      `json:"skipped_clusters,omitempty"`
	Failures        []*PairError `json:"-"`
}

// Err joins every pair failure, or returns nil.
func (r *Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

func (r *Result) merge(o clusterOutcome) {
	r.Evaluated += o.evaluated
	r.Published += o.published
	r.Unchanged += o.unchanged
	if o.skipped {
		r.SkippedClusters = append(r.SkippedClusters, o.clusterID)
	}
	r.Failures = append(r.Failures, o.failures...)
}

func (r *Result) sort() {
	sort.Slice(r.SkippedClusters, func(i, j int) bool { return r.SkippedClusters[i] < r.SkippedClusters[j] })
	sort.Slice(r.Failures, func(i, j int) bool {
		a, b := r.Failures[i], r.Failures[j]
		if a.ClusterID != b.ClusterID {
			return a.ClusterID < b.ClusterID
		}
		return a.ServiceName < b.ServiceName
	})
}

// clusterOutcome is what one cluster's worker contributes to a Result.
type clusterOutcome struct {
	clusterID int64
	evaluated int
	published int
	unchanged int
	skipped   bool
	failures  []*PairError
}
