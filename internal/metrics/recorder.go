package metrics

import "time"

// ResultLabel enumerates step result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
	ResultSkipped  ResultLabel = "skipped"
)

// BuildOutcomeLabel enumerates final build outcomes.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess  BuildOutcomeLabel = "success"
	BuildOutcomeWarning  BuildOutcomeLabel = "warning"
	BuildOutcomeFailed   BuildOutcomeLabel = "failed"
	BuildOutcomeCanceled BuildOutcomeLabel = "canceled"
)

// Recorder defines observability hooks for build, step and watch metrics.
type Recorder interface {
	ObserveStepDuration(step string, d time.Duration)
	ObserveBuildDuration(profile string, d time.Duration)
	IncStepResult(step string, result ResultLabel)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	AddFilesWritten(step string, n int)
	AddLintIssues(severity string, n int)
	IncWatchTrigger(step string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStepDuration(string, time.Duration)  {}
func (NoopRecorder) ObserveBuildDuration(string, time.Duration) {}
func (NoopRecorder) IncStepResult(string, ResultLabel)          {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)          {}
func (NoopRecorder) AddFilesWritten(string, int)                {}
func (NoopRecorder) AddLintIssues(string, int)                  {}
func (NoopRecorder) IncWatchTrigger(string)                     {}
