package aggregation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	v1 "github.com/aevon-lab/servicestate/internal/api/v1"
	"github.com/aevon-lab/servicestate/internal/core/resolver"
	"github.com/aevon-lab/servicestate/internal/core/statecache"
	"github.com/aevon-lab/servicestate/internal/core/storage"
	"github.com/aevon-lab/servicestate/internal/core/update"
	"github.com/aevon-lab/servicestate/internal/metrics"
	"github.com/aevon-lab/servicestate/internal/publish"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const defaultWorkerCount = 8

// Resolver returns the state strategy for a service and the family it was assigned.
type Resolver interface {
	ForService(serviceName string) resolver.StateStrategy
	FamilyOf(serviceName string) string
}

// Options tunes the engine.
type Options struct {
	// WorkerCount bounds how many clusters of one batch are evaluated concurrently.
	WorkerCount int
}

func (o Options) normalized() Options {
	n := o
	if n.WorkerCount <= 0 {
		n.WorkerCount = defaultWorkerCount
	}
	return n
}

// Engine turns component update batches into StateChanged notifications,
// publishing only when a service's calculated state differs from the last
// published one. Safe for concurrent use.
type Engine struct {
	names     *ClusterNames
	resolver  Resolver
	cache     *statecache.Cache
	publisher publish.Publisher
	metrics   metrics.Recorder
	opts      Options
}

func NewEngine(
	names *ClusterNames,
	res Resolver,
	cache *statecache.Cache,
	pub publish.Publisher,
	rec metrics.Recorder,
	opts Options,
) *Engine {
	if names == nil {
		panic("aggregation: cluster names must not be nil")
	}
	if res == nil {
		panic("aggregation: resolver must not be nil")
	}
	if cache == nil {
		panic("aggregation: cache must not be nil")
	}
	if pub == nil {
		panic("aggregation: publisher must not be nil")
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Engine{
		names:     names,
		resolver:  res,
		cache:     cache,
		publisher: pub,
		metrics:   rec,
		opts:      opts.normalized(),
	}
}

// ProcessComponentUpdates re-evaluates every (cluster, service) pair named in the
// batch once. Clusters that no longer exist are skipped. A failure on one pair is
// recorded in the Result and never stops the others; the returned error joins
// all pair failures.
func (e *Engine) ProcessComponentUpdates(ctx context.Context, notices []v1.ComponentUpdateNotice) (*Result, error) {
	start := time.Now()
	groups := Group(notices)
	result := &Result{BatchID: uuid.NewString(), Clusters: len(groups)}

	if len(groups) == 0 {
		return result, nil
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(e.opts.WorkerCount)

	for clusterID, services := range groups {
		g.Go(func() error {
			outcome := e.evaluateCluster(ctx, clusterID, services)
			mu.Lock()
			result.merge(outcome)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers report through result, never through the group

	result.sort()
	e.metrics.ObserveBatch(len(notices), time.Since(start))
	if result.Published > 0 {
		e.metrics.SetCachedEntries(e.cache.Len())
	}

	slog.Info("[Engine] Batch evaluated",
		"batch_id", result.BatchID,
		"notices", len(notices),
		"clusters", result.Clusters,
		"evaluated", result.Evaluated,
		"published", result.Published,
		"unchanged", result.Unchanged,
		"skipped_clusters", len(result.SkippedClusters),
		"failures", len(result.Failures),
		"duration", time.Since(start),
	)

	return result, result.Err()
}

func (e *Engine) evaluateCluster(ctx context.Context, clusterID int64, services map[string]struct{}) clusterOutcome {
	out := clusterOutcome{clusterID: clusterID}

	clusterName, err := e.names.Resolve(ctx, clusterID)
	if errors.Is(err, storage.ErrClusterNotFound) {
		slog.Warn("[Engine] Cluster no longer exists, skipping its services",
			"cluster_id", clusterID,
			"services", len(services))
		e.metrics.IncClusterSkipped()
		out.skipped = true
		return out
	}
	if err != nil {
		slog.Error("[Engine] Cluster lookup failed", "cluster_id", clusterID, "error", err)
		for svc := range services {
			out.failures = append(out.failures, &PairError{ClusterID: clusterID, ServiceName: svc, Stage: StageClusterLookup, Err: err})
			e.metrics.IncEvaluation(metrics.OutcomeResolveFailed)
		}
		return out
	}

	for svc := range services {
		out.evaluated++
		changed, perr := e.evaluateService(ctx, clusterID, clusterName, svc)
		switch {
		case perr != nil:
			out.failures = append(out.failures, perr)
		case changed:
			out.published++
		default:
			out.unchanged++
		}
	}
	return out
}

func (e *Engine) evaluateService(ctx context.Context, clusterID int64, clusterName, serviceName string) (bool, *PairError) {
	next, err := e.resolver.ForService(serviceName).ComputeState(ctx, clusterName, serviceName)
	if err != nil {
		slog.Error("[Engine] State computation failed",
			"cluster_id", clusterID,
			"cluster", clusterName,
			"service", serviceName,
			"family", e.resolver.FamilyOf(serviceName),
			"error", err)
		e.metrics.IncEvaluation(metrics.OutcomeResolveFailed)
		return false, &PairError{ClusterID: clusterID, ClusterName: clusterName, ServiceName: serviceName, Stage: StageCompute, Err: err}
	}

	notification := update.StateChanged{ClusterName: clusterName, ServiceName: serviceName, State: next}
	changed, err := e.cache.Transition(clusterID, serviceName, next, func() error {
		return e.publisher.Publish(ctx, notification)
	})
	if err != nil {
		slog.Error("[Engine] Publish failed, state left unpublished",
			"cluster", clusterName,
			"service", serviceName,
			"state", next,
			"error", err)
		e.metrics.IncEvaluation(metrics.OutcomePublishFailed)
		return false, &PairError{ClusterID: clusterID, ClusterName: clusterName, ServiceName: serviceName, Stage: StagePublish, Err: err}
	}

	if changed {
		slog.Debug("[Engine] Service state changed", "cluster", clusterName, "service", serviceName, "state", next)
		e.metrics.IncEvaluation(metrics.OutcomePublished)
	} else {
		e.metrics.IncEvaluation(metrics.OutcomeUnchanged)
	}
	return changed, nil
}
