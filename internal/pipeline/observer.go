package pipeline

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
)

// Observer receives callbacks around step execution and build lifecycle.
type Observer interface {
	OnStepStart(step StepName)
	OnStepComplete(step StepName, duration time.Duration, result StepResult)
	OnBuildComplete(report *BuildReport)
}

// NoopObserver is a no-op implementation.
type NoopObserver struct{}

func (NoopObserver) OnStepStart(StepName)                               {}
func (NoopObserver) OnStepComplete(StepName, time.Duration, StepResult) {}
func (NoopObserver) OnBuildComplete(*BuildReport)                       {}

// RecorderObserver adapts metrics.Recorder into an Observer.
type RecorderObserver struct{ Recorder metrics.Recorder }

func (r RecorderObserver) OnStepStart(StepName) {}

func (r RecorderObserver) OnStepComplete(step StepName, d time.Duration, _ StepResult) {
	if r.Recorder != nil {
		r.Recorder.ObserveStepDuration(string(step), d)
	}
}

func (r RecorderObserver) OnBuildComplete(report *BuildReport) {
	if r.Recorder != nil {
		r.Recorder.ObserveBuildDuration(string(report.Profile), report.End.Sub(report.Start))
		r.Recorder.IncBuildOutcome(metrics.BuildOutcomeLabel(report.Outcome))
	}
}

// LogObserver logs step progress through slog.
type LogObserver struct{}

func (LogObserver) OnStepStart(step StepName) {
	slog.Debug("Step started", logfields.Step(string(step)))
}

func (LogObserver) OnStepComplete(step StepName, d time.Duration, result StepResult) {
	level := slog.LevelInfo
	if result != StepResultSuccess {
		level = slog.LevelWarn
	}
	slog.Log(context.Background(), level, "Step finished",
		logfields.Step(string(step)), logfields.Result(string(result)), logfields.Duration(d))
}

func (LogObserver) OnBuildComplete(report *BuildReport) {
	slog.Info("Build finished", logfields.BuildID(report.BuildID), "summary", report.Summary())
}

// MultiObserver fans callbacks out to several observers.
type MultiObserver []Observer

func (m MultiObserver) OnStepStart(step StepName) {
	for _, o := range m {
		o.OnStepStart(step)
	}
}

func (m MultiObserver) OnStepComplete(step StepName, d time.Duration, result StepResult) {
	for _, o := range m {
		o.OnStepComplete(step, d, result)
	}
}

func (m MultiObserver) OnBuildComplete(report *BuildReport) {
	for _, o := range m {
		o.OnBuildComplete(report)
	}
}
