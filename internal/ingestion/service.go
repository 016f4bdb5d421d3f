package ingestion

import (
	"context"

	"github.com/aevon-lab/servicestate/internal/aggregation"
	v1 "github.com/aevon-lab/servicestate/internal/api/v1"
	"github.com/aevon-lab/servicestate/internal/core/state"
	"github.com/aevon-lab/servicestate/internal/core/storage"
	"github.com/gin-gonic/gin"
)

// BatchProcessor evaluates component update batches.
type BatchProcessor interface {
	ProcessComponentUpdates(ctx context.Context, notices []v1.ComponentUpdateNotice) (*aggregation.Result, error)
}

// MaintenanceProcessor republishes maintenance events.
type MaintenanceProcessor interface {
	ProcessMaintenanceEvent(ctx context.Context, evt v1.MaintenanceEvent) (bool, error)
}

// StateView exposes the last published service states for queries and operator eviction.
type StateView interface {
	Snapshot() map[int64]map[string]state.ServiceState
	ClusterSnapshot(clusterID int64) map[string]state.ServiceState
	EvictCluster(clusterID int64) int
	EvictService(clusterID int64, service string) bool
}

type Service struct {
	store            storage.ComponentStore
	engine           BatchProcessor
	maintenance      MaintenanceProcessor
	states           StateView
	maxBodySizeBytes int
}

func NewService(
	store storage.ComponentStore,
	engine BatchProcessor,
	maintenance MaintenanceProcessor,
	states StateView,
	maxBodySizeMB int,
) *Service {
	if store == nil {
		panic("ingestion: store must not be nil")
	}
	if engine == nil {
		panic("ingestion: engine must not be nil")
	}
	if maintenance == nil {
		panic("ingestion: maintenance processor must not be nil")
	}
	if states == nil {
		panic("ingestion: state view must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		store:            store,
		engine:           engine,
		maintenance:      maintenance,
		states:           states,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
}

// RegisterRoutes registers the ingestion, query and eviction routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/component-updates", s.ComponentUpdatesHandler)
	r.POST("/v1/maintenance-events", s.MaintenanceHandler)

	r.GET("/v1/service-states", s.ListStatesHandler)
	r.DELETE("/v1/service-states/:cluster_id", s.EvictClusterHandler)
	r.DELETE("/v1/service-states/:cluster_id/:service", s.EvictServiceHandler)
}
