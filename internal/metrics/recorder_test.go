package metrics

import (
	"testing"
	"time"
)

// Compile-time checks.
var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStepDuration("clean", time.Millisecond)
	r.ObserveBuildDuration("prod", time.Second)
	r.IncStepResult("clean", ResultSkipped)
	r.IncBuildOutcome(BuildOutcomeCanceled)
	r.AddFilesWritten("clean", 0)
	r.AddLintIssues("error", 1)
	r.IncWatchTrigger("clean")
}
