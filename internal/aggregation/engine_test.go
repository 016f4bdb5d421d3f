package aggregation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	v1 "github.com/aevon-lab/servicestate/internal/api/v1"
	"github.com/aevon-lab/servicestate/internal/core/resolver"
	"github.com/aevon-lab/servicestate/internal/core/state"
	"github.com/aevon-lab/servicestate/internal/core/statecache"
	"github.com/aevon-lab/servicestate/internal/core/storage"
	"github.com/aevon-lab/servicestate/internal/core/update"
	"github.com/aevon-lab/servicestate/internal/metrics"
	publishmocks "github.com/aevon-lab/servicestate/internal/mocks/publish"
	resolvermocks "github.com/aevon-lab/servicestate/internal/mocks/resolver"
	storagemocks "github.com/aevon-lab/servicestate/internal/mocks/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// staticResolver hands out a fixed strategy per service name.
type staticResolver map[string]resolver.StateStrategy

func (r staticResolver) ForService(name string) resolver.StateStrategy {
	s, ok := r[name]
	if !ok {
		panic(fmt.Sprintf("no strategy registered for %q", name))
	}
	return s
}

func (r staticResolver) FamilyOf(string) string { return resolver.FamilyDefault }

// recordingPublisher collects every notification it receives.
type recordingPublisher struct {
	mu   sync.Mutex
	sent []update.Notification
	fail error
}

func (p *recordingPublisher) Publish(_ context.Context, n update.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.sent = append(p.sent, n)
	return nil
}

func (p *recordingPublisher) notifications() []update.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]update.Notification(nil), p.sent...)
}

// countingRecorder counts evaluation outcomes.
type countingRecorder struct {
	metrics.NoopRecorder
	mu       sync.Mutex
	outcomes map[metrics.Outcome]int
	skipped  int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{outcomes: make(map[metrics.Outcome]int)}
}

func (r *countingRecorder) IncEvaluation(o metrics.Outcome) {
	r.mu.Lock()
	r.outcomes[o]++
	r.mu.Unlock()
}

func (r *countingRecorder) IncClusterSkipped() {
	r.mu.Lock()
	r.skipped++
	r.mu.Unlock()
}

func notice(clusterID int64, service string, hostID int64, s state.ServiceState) v1.ComponentUpdateNotice {
	return v1.ComponentUpdateNotice{
		ClusterID:     clusterID,
		ServiceName:   service,
		HostID:        hostID,
		ComponentName: service + "_COMPONENT",
		Category:      v1.CategoryMaster,
		State:         s,
	}
}

func registryFor(t *testing.T, names map[int64]string) *storagemocks.ClusterRegistry {
	registry := storagemocks.NewClusterRegistry(t)
	registry.EXPECT().ResolveName(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, id int64) (string, error) {
			if name, ok := names[id]; ok {
				return name, nil
			}
			return "", fmt.Errorf("cluster %d: %w", id, storage.ErrClusterNotFound)
		}).Maybe()
	return registry
}

func TestGroup(t *testing.T) {
	groups := Group([]v1.ComponentUpdateNotice{
		notice(1, "HDFS", 1, state.Started),
		notice(1, "HDFS", 2, state.Started),
		notice(1, "YARN", 1, state.Started),
		notice(2, "HDFS", 1, state.Installed),
	})

	assert.Equal(t, map[int64]map[string]struct{}{
		1: {"HDFS": {}, "YARN": {}},
		2: {"HDFS": {}},
	}, groups)
	assert.Empty(t, Group(nil))
}

func TestEngine_StartedThenUnchangedThenStopped(t *testing.T) {
	hdfs := resolvermocks.NewStateStrategy(t)
	hdfs.EXPECT().ComputeState(mock.Anything, "c1name", "HDFS").Return(state.Started, nil).Twice()
	// INSTALLED is the stopped state of a service.
	hdfs.EXPECT().ComputeState(mock.Anything, "c1name", "HDFS").Return(state.Installed, nil).Once()

	pub := &recordingPublisher{}
	engine := NewEngine(
		NewClusterNames(registryFor(t, map[int64]string{1: "c1name"})),
		staticResolver{"HDFS": hdfs},
		statecache.New(), pub, nil, Options{},
	)
	batch := []v1.ComponentUpdateNotice{notice(1, "HDFS", 1, state.Started)}

	res, err := engine.ProcessComponentUpdates(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Published)
	assert.NotEmpty(t, res.BatchID)

	res, err = engine.ProcessComponentUpdates(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Published)
	assert.Equal(t, 1, res.Unchanged)

	_, err = engine.ProcessComponentUpdates(context.Background(), batch)
	require.NoError(t, err)

	assert.Equal(t, []update.Notification{
		update.StateChanged{ClusterName: "c1name", ServiceName: "HDFS", State: state.Started},
		update.StateChanged{ClusterName: "c1name", ServiceName: "HDFS", State: state.Installed},
	}, pub.notifications())
}

func TestEngine_ResolvesEachPairOnce(t *testing.T) {
	hdfs := resolvermocks.NewStateStrategy(t)
	hdfs.EXPECT().ComputeState(mock.Anything, "c1name", "HDFS").Return(state.Started, nil).Once()
	yarn := resolvermocks.NewStateStrategy(t)
	yarn.EXPECT().ComputeState(mock.Anything, "c1name", "YARN").Return(state.Starting, nil).Once()

	pub := publishmocks.NewPublisher(t)
	pub.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Times(2)

	engine := NewEngine(
		NewClusterNames(registryFor(t, map[int64]string{1: "c1name"})),
		staticResolver{"HDFS": hdfs, "YARN": yarn},
		statecache.New(), pub, nil, Options{},
	)

	res, err := engine.ProcessComponentUpdates(context.Background(), []v1.ComponentUpdateNotice{
		notice(1, "HDFS", 1, state.Started),
		notice(1, "HDFS", 2, state.Started),
		notice(1, "YARN", 1, state.Starting),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Clusters)
	assert.Equal(t, 2, res.Evaluated)
	assert.Equal(t, 2, res.Published)
}

func TestEngine_ClustersAreIndependent(t *testing.T) {
	hdfs := resolvermocks.NewStateStrategy(t)
	hdfs.EXPECT().ComputeState(mock.Anything, "alpha", "HDFS").Return(state.Started, nil)
	hdfs.EXPECT().ComputeState(mock.Anything, "beta", "HDFS").Return(state.Started, nil)

	cache := statecache.New()
	pub := &recordingPublisher{}
	engine := NewEngine(
		NewClusterNames(registryFor(t, map[int64]string{1: "alpha", 2: "beta"})),
		staticResolver{"HDFS": hdfs},
		cache, pub, nil, Options{},
	)

	_, err := engine.ProcessComponentUpdates(context.Background(), []v1.ComponentUpdateNotice{notice(1, "HDFS", 1, state.Started)})
	require.NoError(t, err)

	res, err := engine.ProcessComponentUpdates(context.Background(), []v1.ComponentUpdateNotice{notice(2, "HDFS", 1, state.Started)})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Published, "cluster 2 must not be masked by cluster 1's cached state")
	assert.Len(t, pub.notifications(), 2)

	s, ok := cache.Get(2, "HDFS")
	require.True(t, ok)
	assert.Equal(t, state.Started, s)
}

func TestEngine_FailedPairDoesNotStopSiblings(t *testing.T) {
	computeErr := errors.New("component store unavailable")

	hdfs := resolvermocks.NewStateStrategy(t)
	hdfs.EXPECT().ComputeState(mock.Anything, "c1name", "HDFS").Return(state.Started, nil).Once()
	yarn := resolvermocks.NewStateStrategy(t)
	yarn.EXPECT().ComputeState(mock.Anything, "c1name", "YARN").Return("", computeErr).Once()

	rec := newCountingRecorder()
	pub := &recordingPublisher{}
	engine := NewEngine(
		NewClusterNames(registryFor(t, map[int64]string{1: "c1name"})),
		staticResolver{"HDFS": hdfs, "YARN": yarn},
		statecache.New(), pub, rec, Options{},
	)

	res, err := engine.ProcessComponentUpdates(context.Background(), []v1.ComponentUpdateNotice{
		notice(1, "YARN", 1, state.Started),
		notice(1, "HDFS", 1, state.Started),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, computeErr)

	var pairErr *PairError
	require.ErrorAs(t, err, &pairErr)
	assert.Equal(t, "YARN", pairErr.ServiceName)
	assert.Equal(t, StageCompute, pairErr.Stage)

	assert.Equal(t, 1, res.Published)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, []update.Notification{
		update.StateChanged{ClusterName: "c1name", ServiceName: "HDFS", State: state.Started},
	}, pub.notifications())
	assert.Equal(t, 1, rec.outcomes[metrics.OutcomeResolveFailed])
	assert.Equal(t, 1, rec.outcomes[metrics.OutcomePublished])
}

func TestEngine_SkipsDeletedCluster(t *testing.T) {
	hdfs := resolvermocks.NewStateStrategy(t)
	hdfs.EXPECT().ComputeState(mock.Anything, "live", "HDFS").Return(state.Started, nil).Once()

	rec := newCountingRecorder()
	pub := &recordingPublisher{}
	engine := NewEngine(
		NewClusterNames(registryFor(t, map[int64]string{1: "live"})),
		staticResolver{"HDFS": hdfs},
		statecache.New(), pub, rec, Options{},
	)

	res, err := engine.ProcessComponentUpdates(context.Background(), []v1.ComponentUpdateNotice{
		notice(9, "HDFS", 1, state.Started),
		notice(1, "HDFS", 1, state.Started),
		notice(7, "YARN", 1, state.Started),
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 9}, res.SkippedClusters)
	assert.Equal(t, 1, res.Published)
	assert.Equal(t, 2, rec.skipped)
}

func TestEngine_RegistryFailureIsReportedPerService(t *testing.T) {
	registry := storagemocks.NewClusterRegistry(t)
	registry.EXPECT().ResolveName(mock.Anything, int64(1)).Return("", errors.New("connection refused"))

	engine := NewEngine(
		NewClusterNames(registry),
		staticResolver{},
		statecache.New(), &recordingPublisher{}, nil, Options{},
	)

	res, err := engine.ProcessComponentUpdates(context.Background(), []v1.ComponentUpdateNotice{
		notice(1, "HDFS", 1, state.Started),
		notice(1, "YARN", 1, state.Started),
	})
	require.Error(t, err)
	require.Len(t, res.Failures, 2)
	assert.Equal(t, StageClusterLookup, res.Failures[0].Stage)
	assert.Equal(t, "HDFS", res.Failures[0].ServiceName)
	assert.Equal(t, "YARN", res.Failures[1].ServiceName)
	assert.Empty(t, res.SkippedClusters)
}

func TestEngine_PublishFailureIsRetriedByNextBatch(t *testing.T) {
	hdfs := resolvermocks.NewStateStrategy(t)
	hdfs.EXPECT().ComputeState(mock.Anything, "c1name", "HDFS").Return(state.Started, nil).Twice()

	cache := statecache.New()
	pub := &recordingPublisher{fail: errors.New("bus down")}
	engine := NewEngine(
		NewClusterNames(registryFor(t, map[int64]string{1: "c1name"})),
		staticResolver{"HDFS": hdfs},
		cache, pub, nil, Options{},
	)
	batch := []v1.ComponentUpdateNotice{notice(1, "HDFS", 1, state.Started)}

	res, err := engine.ProcessComponentUpdates(context.Background(), batch)
	require.Error(t, err)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, StagePublish, res.Failures[0].Stage)
	_, cached := cache.Get(1, "HDFS")
	assert.False(t, cached)

	pub.mu.Lock()
	pub.fail = nil
	pub.mu.Unlock()

	res, err = engine.ProcessComponentUpdates(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Published)
	assert.Len(t, pub.notifications(), 1)
}

func TestEngine_ConcurrentIdenticalBatchesPublishOnce(t *testing.T) {
	hdfs := resolvermocks.NewStateStrategy(t)
	hdfs.EXPECT().ComputeState(mock.Anything, "c1name", "HDFS").Return(state.Started, nil)

	pub := &recordingPublisher{}
	engine := NewEngine(
		NewClusterNames(registryFor(t, map[int64]string{1: "c1name"})),
		staticResolver{"HDFS": hdfs},
		statecache.New(), pub, nil, Options{WorkerCount: 2},
	)
	batch := []v1.ComponentUpdateNotice{notice(1, "HDFS", 1, state.Started)}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = engine.ProcessComponentUpdates(context.Background(), batch)
		}()
	}
	wg.Wait()

	assert.Len(t, pub.notifications(), 1)
}

func TestEngine_EmptyBatch(t *testing.T) {
	engine := NewEngine(
		NewClusterNames(storagemocks.NewClusterRegistry(t)),
		staticResolver{},
		statecache.New(), publishmocks.NewPublisher(t), nil, Options{},
	)

	res, err := engine.ProcessComponentUpdates(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Clusters)
}

func TestNewEngine_PanicsOnMissingDependencies(t *testing.T) {
	names := NewClusterNames(storagemocks.NewClusterRegistry(t))
	assert.Panics(t, func() { NewEngine(nil, staticResolver{}, statecache.New(), &recordingPublisher{}, nil, Options{}) })
	assert.Panics(t, func() { NewEngine(names, nil, statecache.New(), &recordingPublisher{}, nil, Options{}) })
	assert.Panics(t, func() { NewEngine(names, staticResolver{}, nil, &recordingPublisher{}, nil, Options{}) })
	assert.Panics(t, func() { NewEngine(names, staticResolver{}, statecache.New(), nil, nil, Options{}) })
}
