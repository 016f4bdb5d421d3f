// Package statecache holds the last published ServiceState per (cluster, service).
//
// The key space is sharded by cluster ID. A shard lock only guards entry lookup
// and creation; each entry carries its own mutex so compare, publish and store
// for one key are serialized without blocking other keys.
package statecache

import (
	"sync"
	"sync/atomic"

	"github.com/aevon-lab/servicestate/internal/core/partition"
	"github.com/aevon-lab/servicestate/internal/core/state"
)

type entry struct {
	mu      sync.Mutex
	state   state.ServiceState
	set     bool
	evicted bool // detached from its shard; callers must look the key up again
}

type shard struct {
	mu       sync.RWMutex
	clusters map[int64]map[string]*entry
}

// Cache is safe for concurrent use. Entries live for the life of the process
// unless evicted explicitly.
type Cache struct {
	shards [partition.Count]*shard
	size   atomic.Int64 // entries with set == true
}

func New() *Cache {
	c := &Cache{}
	for i := range c.shards {
		c.shards[i] = &shard{clusters: make(map[int64]map[string]*entry)}
	}
	return c
}

func (c *Cache) shardFor(clusterID int64) *shard {
	return c.shards[partition.ForCluster(clusterID)]
}

func (s *shard) lookup(clusterID int64, service string) *entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clusters[clusterID][service]
}

func (s *shard) getOrCreate(clusterID int64, service string) *entry {
	if e := s.lookup(clusterID, service); e != nil {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	services, ok := s.clusters[clusterID]
	if !ok {
		services = make(map[string]*entry)
		s.clusters[clusterID] = services
	}
	e, ok := services[service]
	if !ok {
		e = &entry{}
		services[service] = e
	}
	return e
}

// Get returns the last published state, or false if the pair was never published.
func (c *Cache) Get(clusterID int64, service string) (state.ServiceState, bool) {
	e := c.shardFor(clusterID).lookup(clusterID, service)
	if e == nil {
		return state.Unknown, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.set {
		return state.Unknown, false
	}
	return e.state, true
}

// CompareAndSet stores next and returns true if no entry exists or the entry differs.
// It returns false and leaves the cache untouched otherwise.
func (c *Cache) CompareAndSet(clusterID int64, service string, next state.ServiceState) bool {
	changed, _ := c.Transition(clusterID, service, next, nil)
	return changed
}

// Transition is CompareAndSet with a publish step. When next differs from the
// cached state, publish is called while the entry is locked and next is stored
// only if publish returns nil. A publish error is returned and the entry keeps
// its previous value, so a later evaluation retries the transition.
//
// publish must not call back into the cache for the same key.
func (c *Cache) Transition(clusterID int64, service string, next state.ServiceState, publish func() error) (bool, error) {
	s := c.shardFor(clusterID)
	for {
		e := s.getOrCreate(clusterID, service)
		e.mu.Lock()
		if e.evicted {
			e.mu.Unlock()
			continue
		}
		changed, err := c.transitionLocked(e, next, publish)
		e.mu.Unlock()
		return changed, err
	}
}

func (c *Cache) transitionLocked(e *entry, next state.ServiceState, publish func() error) (bool, error) {
	if e.set && e.state == next {
		return false, nil
	}
	if publish != nil {
		if err := publish(); err != nil {
			return false, err
		}
	}
	if !e.set {
		c.size.Add(1)
	}
	e.state = next
	e.set = true
	return true, nil
}

// Snapshot copies every published entry.
func (c *Cache) Snapshot() map[int64]map[string]state.ServiceState {
	out := make(map[int64]map[string]state.ServiceState)
	for _, s := range c.shards {
		s.mu.RLock()
		for clusterID, services := range s.clusters {
			for name, e := range services {
				e.mu.Lock()
				st, ok := e.state, e.set
				e.mu.Unlock()
				if !ok {
					continue
				}
				if out[clusterID] == nil {
					out[clusterID] = make(map[string]state.ServiceState)
				}
				out[clusterID][name] = st
			}
		}
		s.mu.RUnlock()
	}
	return out
}

// ClusterSnapshot copies the published entries of one cluster.
func (c *Cache) ClusterSnapshot(clusterID int64) map[string]state.ServiceState {
	s := c.shardFor(clusterID)
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]state.ServiceState)
	for name, e := range s.clusters[clusterID] {
		e.mu.Lock()
		if e.set {
			out[name] = e.state
		}
		e.mu.Unlock()
	}
	return out
}

// EvictCluster drops every entry of a cluster and returns how many published
// entries were removed. The next evaluation of an evicted pair publishes again.
func (c *Cache) EvictCluster(clusterID int64) int {
	s := c.shardFor(clusterID)
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, e := range s.clusters[clusterID] {
		if c.detach(e) {
			n++
		}
	}
	delete(s.clusters, clusterID)
	return n
}

// EvictService drops one entry and reports whether it held a published state.
func (c *Cache) EvictService(clusterID int64, service string) bool {
	s := c.shardFor(clusterID)
	s.mu.Lock()
	defer s.mu.Unlock()

	services, ok := s.clusters[clusterID]
	if !ok {
		return false
	}
	e, ok := services[service]
	if !ok {
		return false
	}
	delete(services, service)
	if len(services) == 0 {
		delete(s.clusters, clusterID)
	}
	return c.detach(e)
}

// detach marks e evicted and reports whether it was published. It waits for an
// in-flight transition on e to finish. Callers hold the shard lock.
func (c *Cache) detach(e *entry) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.evicted = true
	if !e.set {
		return false
	}
	c.size.Add(-1)
	return true
}

// Len returns the number of published entries.
func (c *Cache) Len() int {
	return int(c.size.Load())
}
