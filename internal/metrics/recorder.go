package metrics

import "time"

// Outcome labels the result of evaluating one (cluster, service) pair.
type Outcome string

const (
	OutcomePublished     Outcome = "published"
	OutcomeUnchanged     Outcome = "unchanged"
	OutcomeResolveFailed Outcome = "resolve_failed"
	OutcomePublishFailed Outcome = "publish_failed"
)

// Recorder receives aggregation observability hooks.
type Recorder interface {
	IncEvaluation(outcome Outcome)
	IncClusterSkipped()
	IncMaintenance(published bool)
	ObserveBatch(notices int, d time.Duration)
	SetCachedEntries(n int)
}

// NoopRecorder is used when metrics are disabled.
type NoopRecorder struct{}

func (NoopRecorder) IncEvaluation(Outcome)           {}
func (NoopRecorder) IncClusterSkipped()              {}
func (NoopRecorder) IncMaintenance(bool)             {}
func (NoopRecorder) ObserveBatch(int, time.Duration) {}
func (NoopRecorder) SetCachedEntries(int)            {}
