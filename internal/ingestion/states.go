package ingestion

import (
	"log/slog"
	"net/http"
	"strconv"

	httperr "github.com/aevon-lab/servicestate/internal/core/errors"
	"github.com/gin-gonic/gin"
)

// ListStatesHandler returns the last published state of every cached service,
// keyed by cluster ID. ?cluster_id= narrows the result to one cluster.
func (s *Service) ListStatesHandler(c *gin.Context) {
	if raw := c.Query("cluster_id"); raw != "" {
		clusterID, ierr := parseClusterID(raw)
		if ierr != nil {
			writeError(c, ierr)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"cluster_id": clusterID,
			"services":   s.states.ClusterSnapshot(clusterID),
		})
		return
	}

	snapshot := s.states.Snapshot()
	clusters := make(map[string]interface{}, len(snapshot))
	for id, services := range snapshot {
		clusters[strconv.FormatInt(id, 10)] = services
	}
	c.JSON(http.StatusOK, gin.H{"clusters": clusters})
}

// EvictClusterHandler forgets every cached state of a cluster, typically after
// the cluster was deleted. The next batch for it republishes from scratch.
func (s *Service) EvictClusterHandler(c *gin.Context) {
	clusterID, ierr := parseClusterID(c.Param("cluster_id"))
	if ierr != nil {
		writeError(c, ierr)
		return
	}

	evicted := s.states.EvictCluster(clusterID)
	slog.Info("[Ingestion] Evicted cluster from state cache", "cluster_id", clusterID, "entries", evicted)
	c.JSON(http.StatusOK, gin.H{"cluster_id": clusterID, "evicted": evicted})
}

// EvictServiceHandler forgets the cached state of one service.
func (s *Service) EvictServiceHandler(c *gin.Context) {
	clusterID, ierr := parseClusterID(c.Param("cluster_id"))
	if ierr != nil {
		writeError(c, ierr)
		return
	}
	service := c.Param("service")

	if !s.states.EvictService(clusterID, service) {
		writeError(c, &ingestionError{
			statusCode: http.StatusNotFound,
			errorType:  httperr.HttpNotFoundError,
			message:    "No cached state for service",
			details:    map[string]interface{}{"cluster_id": clusterID, "service": service},
		})
		return
	}

	slog.Info("[Ingestion] Evicted service from state cache", "cluster_id", clusterID, "service", service)
	c.JSON(http.StatusOK, gin.H{"cluster_id": clusterID, "service": service, "evicted": 1})
}

func parseClusterID(raw string) (int64, *ingestionError) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidParameterError,
			message:    "cluster_id must be a positive integer",
			details:    map[string]interface{}{"cluster_id": raw},
		}
	}
	return id, nil
}
