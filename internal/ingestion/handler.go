package ingestion

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	v1 "github.com/aevon-lab/servicestate/internal/api/v1"
	httperr "github.com/aevon-lab/servicestate/internal/core/errors"
	"github.com/aevon-lab/servicestate/internal/core/storage"
	"github.com/gin-gonic/gin"
)

const (
	msgReadBodyFailed    = "Failed to read request body"
	msgInvalidJSON       = "Invalid JSON body"
	msgPersistFailed     = "Failed to persist component states"
	msgClusterNotFound   = "Cluster not found"
	msgMaintenanceFailed = "Failed to publish maintenance change"

	// stagePersist marks failures reported before evaluation.
	stagePersist = "persist"
)

// ingestionError carries the structured HTTP error shape from a helper back to the orchestrator.
// Helpers return this instead of writing to gin.Context directly, keeping them decoupled from HTTP.
type ingestionError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *ingestionError) Error() string {
	return e.message
}

// ComponentUpdatesHandler persists a batch of component states and evaluates the
// affected services. Per-pair evaluation failures do not fail the request; they
// are reported in the response body.
func (s *Service) ComponentUpdatesHandler(c *gin.Context) {
	var batch v1.ComponentUpdateBatch
	if ierr := s.bindBody(c, &batch); ierr != nil {
		writeError(c, ierr)
		return
	}
	if err := batch.Validate(); err != nil {
		slog.Warn("[Ingestion] Component update batch rejected", "error", err)
		writeError(c, validationError(err))
		return
	}

	ctx := c.Request.Context()
	saved, persistFailures, ierr := s.persistComponentStates(ctx, batch.Updates)
	if ierr != nil {
		writeError(c, ierr)
		return
	}

	res, err := s.engine.ProcessComponentUpdates(ctx, saved)
	if res == nil {
		slog.Error("[Ingestion] Batch evaluation aborted", "error", err)
		writeError(c, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    "Failed to evaluate component updates",
		})
		return
	}
	body := gin.H{
		"status":           "accepted",
		"batch_id":         res.BatchID,
		"clusters":         res.Clusters,
		"evaluated":        res.Evaluated,
		"published":        res.Published,
		"unchanged":        res.Unchanged,
		"skipped_clusters": res.SkippedClusters,
	}
	if err != nil || persistFailures != nil {
		failures := make([]gin.H, 0, len(res.Failures))
		if persistFailures != nil {
			for _, id := range persistFailures.ClusterIDs() {
				failures = append(failures, gin.H{
					"cluster_id": id,
					"stage":      stagePersist,
					"error":      persistFailures.Clusters[id].Error(),
				})
			}
		}
		for _, f := range res.Failures {
			failures = append(failures, gin.H{
				"cluster_id": f.ClusterID,
				"service":    f.ServiceName,
				"stage":      f.Stage,
				"error":      f.Err.Error(),
			})
		}
		body["failures"] = failures
	}

	c.JSON(http.StatusAccepted, body)
}

// MaintenanceHandler republishes a maintenance-mode change.
func (s *Service) MaintenanceHandler(c *gin.Context) {
	var evt v1.MaintenanceEvent
	if ierr := s.bindBody(c, &evt); ierr != nil {
		writeError(c, ierr)
		return
	}
	if err := evt.Validate(); err != nil {
		slog.Warn("[Ingestion] Maintenance event rejected", "error", err)
		writeError(c, validationError(err))
		return
	}

	published, err := s.maintenance.ProcessMaintenanceEvent(c.Request.Context(), evt)
	if err != nil {
		if errors.Is(err, storage.ErrClusterNotFound) {
			writeError(c, &ingestionError{
				statusCode: http.StatusNotFound,
				errorType:  httperr.HttpClusterNotFoundError,
				message:    msgClusterNotFound,
				details:    map[string]interface{}{"cluster_id": evt.ClusterID},
			})
			return
		}
		slog.Error("[Ingestion] Maintenance publish failed", "cluster_id", evt.ClusterID, "error", err)
		writeError(c, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgMaintenanceFailed,
		})
		return
	}

	if !published {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "published"})
}

// bindBody reads at most maxBodySizeBytes and decodes the JSON into dst.
func (s *Service) bindBody(c *gin.Context, dst interface{}) *ingestionError {
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("[Ingestion] Failed to read request body", "error", err)
		return &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("[Ingestion] Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	if err := c.ShouldBindJSON(dst); err != nil {
		slog.Warn("[Ingestion] Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
			details:    map[string]interface{}{"reason": err.Error()},
		}
	}
	return nil
}

// persistComponentStates records the raw component states the strategies read from.
// It returns the notices of the clusters that were saved. When only some
// clusters fail their failures are returned and the rest of the batch goes on;
// when every cluster fails the batch is rejected.
func (s *Service) persistComponentStates(ctx context.Context, notices []v1.ComponentUpdateNotice) ([]v1.ComponentUpdateNotice, *storage.SaveError, *ingestionError) {
	if len(notices) == 0 {
		return notices, nil, nil
	}
	err := s.store.SaveComponentStates(ctx, notices)
	if err == nil {
		return notices, nil, nil
	}

	var saveErr *storage.SaveError
	if errors.As(err, &saveErr) {
		saved := make([]v1.ComponentUpdateNotice, 0, len(notices))
		for _, n := range notices {
			if _, failed := saveErr.Clusters[n.ClusterID]; !failed {
				saved = append(saved, n)
			}
		}
		if len(saved) > 0 {
			slog.Warn("[Ingestion] Component states partially persisted",
				"failed_clusters", saveErr.ClusterIDs(),
				"notices", len(notices),
				"saved", len(saved))
			return saved, saveErr, nil
		}
	}

	slog.Error("[Ingestion] Failed to persist component states", "error", err, "notices", len(notices))
	return nil, nil, &ingestionError{
		statusCode: http.StatusInternalServerError,
		errorType:  httperr.HttpInternalError,
		message:    msgPersistFailed,
	}
}

func validationError(err error) *ingestionError {
	return &ingestionError{
		statusCode: http.StatusBadRequest,
		errorType:  httperr.HttpValidationError,
		message:    err.Error(),
	}
}

// writeError serializes an ingestionError as the JSON HTTP response.
func writeError(c *gin.Context, err *ingestionError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
