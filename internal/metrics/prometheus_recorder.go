package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "assetbuilder"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stepDuration  *prom.HistogramVec
	buildDuration *prom.HistogramVec
	stepResults   *prom.CounterVec
	buildOutcome  *prom.CounterVec
	filesWritten  *prom.CounterVec
	lintIssues    *prom.CounterVec
	watchTriggers *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stepDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of individual build steps",
			Buckets:   prom.DefBuckets,
		}, []string{"step"}),
		buildDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}, []string{"profile"}),
		stepResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "step_results_total",
			Help:      "Step result counts by outcome",
		}, []string{"step", "result"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		filesWritten: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "files_written_total",
			Help:      "Files written to the output tree per step",
		}, []string{"step"}),
		lintIssues: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "lint_issues_total",
			Help:      "Lint findings by severity",
		}, []string{"severity"}),
		watchTriggers: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "watch_triggers_total",
			Help:      "Steps re-run by the file watcher",
		}, []string{"step"}),
	}
	reg.MustRegister(pr.stepDuration, pr.buildDuration, pr.stepResults, pr.buildOutcome,
		pr.filesWritten, pr.lintIssues, pr.watchTriggers)
	return pr
}

func (p *PrometheusRecorder) ObserveStepDuration(step string, d time.Duration) {
	if p == nil || p.stepDuration == nil {
		return
	}
	p.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(profile string, d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.WithLabelValues(profile).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStepResult(step string, result ResultLabel) {
	if p == nil || p.stepResults == nil {
		return
	}
	p.stepResults.WithLabelValues(step, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddFilesWritten(step string, n int) {
	if p == nil || p.filesWritten == nil || n <= 0 {
		return
	}
	p.filesWritten.WithLabelValues(step).Add(float64(n))
}

func (p *PrometheusRecorder) AddLintIssues(severity string, n int) {
	if p == nil || p.lintIssues == nil || n <= 0 {
		return
	}
	p.lintIssues.WithLabelValues(severity).Add(float64(n))
}

func (p *PrometheusRecorder) IncWatchTrigger(step string) {
	if p == nil || p.watchTriggers == nil {
		return
	}
	p.watchTriggers.WithLabelValues(step).Inc()
}
