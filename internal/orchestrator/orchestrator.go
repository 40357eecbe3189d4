package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/dag"
	abErrors "git.home.luguber.info/inful/assetbuilder/internal/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
	"git.home.luguber.info/inful/assetbuilder/internal/pipeline"
	"git.home.luguber.info/inful/assetbuilder/internal/steps"
	"git.home.luguber.info/inful/assetbuilder/internal/styles"
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithObserver sets the observer notified around steps and builds.
func WithObserver(obs pipeline.Observer) Option {
	return func(o *Orchestrator) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithCompiler replaces the stylesheet compiler selected by configuration.
func WithCompiler(c styles.Compiler) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.compiler = c
		}
	}
}

// WithRevision sets the VCS revision injected into entry templates.
func WithRevision(rev string) Option {
	return func(o *Orchestrator) { o.revision = rev }
}

// Orchestrator runs build graphs for one project.
type Orchestrator struct {
	cfg        *config.Config
	projectDir string
	compiler   styles.Compiler
	recorder   metrics.Recorder
	observer   pipeline.Observer
	revision   string

	mu        sync.Mutex
	manifests pipeline.Manifests

	locksMu   sync.Mutex
	stepLocks map[pipeline.StepName]*sync.Mutex
}

// New creates an orchestrator for the project rooted at projectDir.
func New(cfg *config.Config, projectDir string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:        cfg,
		projectDir: projectDir,
		compiler:   styles.NewCompiler(cfg.Styles),
		recorder:   metrics.NoopRecorder{},
		observer:   pipeline.NoopObserver{},
		stepLocks:  make(map[pipeline.StepName]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewContext returns the build context of a new invocation.
func (o *Orchestrator) NewContext(profile config.Profile, env config.Environment) pipeline.BuildContext {
	return pipeline.BuildContext{
		Profile:    profile,
		Env:        env,
		BuildID:    uuid.NewString(),
		Revision:   o.revision,
		ProjectDir: o.projectDir,
		Config:     o.cfg,
	}
}

// Manifests returns a copy of the manifests of the latest dev bundling runs.
func (o *Orchestrator) Manifests() pipeline.Manifests {
	o.mu.Lock()
	defer o.mu.Unlock()
	return pipeline.Manifests{App: o.manifests.App.Clone(), Vendor: o.manifests.Vendor.Clone()}
}

func (o *Orchestrator) setManifest(step pipeline.StepName, m pipeline.Manifest) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if step == pipeline.StepBundleAppScripts {
		o.manifests.App = m
	} else {
		o.manifests.Vendor = m
	}
}

// Run executes the full graph of profile. The returned report is complete
// even when the build fails.
func (o *Orchestrator) Run(ctx context.Context, profile config.Profile, env config.Environment) (*pipeline.BuildReport, error) {
	bc := o.NewContext(profile, env)
	report := pipeline.NewBuildReport(bc)

	g, err := Graph(o.cfg, profile, func(step pipeline.StepName) dag.RunFunc {
		return o.node(bc, report, step)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Build started",
		logfields.BuildID(bc.BuildID),
		logfields.Profile(string(profile)),
		logfields.Env(string(env)),
		logfields.Count(g.Len()))

	runErr := g.Run(ctx, o.cfg.Pipeline.Concurrency)
	names := make([]pipeline.StepName, 0, g.Len())
	for _, n := range g.Names() {
		names = append(names, pipeline.StepName(n))
	}
	report.MarkSkipped(names, o.recorder)
	report.Abort(runErr)
	report.Finish()
	o.observer.OnBuildComplete(report)
	return report, runErr
}

// Rerun executes steps in order within the build context of an earlier
// Run, as the watch loop does after a change. A fatal step stops the
// sequence; warnings do not.
func (o *Orchestrator) Rerun(ctx context.Context, bc pipeline.BuildContext, stepNames []pipeline.StepName) (*pipeline.BuildReport, error) {
	report := pipeline.NewBuildReport(bc)
	var runErr error
	for _, step := range stepNames {
		o.recorder.IncWatchTrigger(string(step))
		if runErr = o.node(bc, report, step)(ctx); runErr != nil {
			break
		}
	}
	report.Finish()
	o.observer.OnBuildComplete(report)
	return report, runErr
}

// node wraps a step so that it is serialized with other runs of the same
// step, reported and classified. Warnings do not fail the node.
func (o *Orchestrator) node(bc pipeline.BuildContext, report *pipeline.BuildReport, step pipeline.StepName) dag.RunFunc {
	return func(ctx context.Context) error {
		lock := o.stepLock(step)
		lock.Lock()
		defer lock.Unlock()

		o.observer.OnStepStart(step)
		start := time.Now()
		stats, err := o.execute(ctx, bc, step)
		d := time.Since(start)

		out := pipeline.ClassifyStepResult(step, err)
		report.RecordStep(out, d, stats, o.recorder)
		o.observer.OnStepComplete(step, d, out.Result)
		if out.Abort {
			return out.Error
		}
		return nil
	}
}

func (o *Orchestrator) stepLock(step pipeline.StepName) *sync.Mutex {
	o.locksMu.Lock()
	defer o.locksMu.Unlock()
	l, ok := o.stepLocks[step]
	if !ok {
		l = &sync.Mutex{}
		o.stepLocks[step] = l
	}
	return l
}

func (o *Orchestrator) execute(ctx context.Context, bc pipeline.BuildContext, step pipeline.StepName) (pipeline.StepStats, error) {
	switch step {
	case pipeline.StepLint:
		result, err := steps.Lint(ctx, bc)
		if result != nil {
			o.recorder.AddLintIssues("error", result.ErrorCount())
			o.recorder.AddLintIssues("warning", result.WarningCount())
		}
		return pipeline.StepStats{}, err
	case pipeline.StepClean:
		return steps.Clean(ctx, bc)
	case pipeline.StepBundleVendorScripts, pipeline.StepBundleAppScripts:
		bundle := steps.BundleVendorScripts
		if step == pipeline.StepBundleAppScripts {
			bundle = steps.BundleAppScripts
		}
		m, stats, err := bundle(ctx, bc)
		if err == nil {
			o.setManifest(step, m)
		}
		return stats, err
	case pipeline.StepCopySourceMaps:
		return steps.CopySourceMaps(ctx, bc)
	case pipeline.StepRenderEntryTemplates:
		return steps.RenderEntryTemplates(ctx, bc, o.Manifests())
	case pipeline.StepRenderPartialTemplates:
		return steps.RenderPartialTemplates(ctx, bc)
	case pipeline.StepBundleVendorStyles:
		return steps.BundleVendorStyles(ctx, bc)
	case pipeline.StepCompileStyles:
		return steps.CompileStyles(ctx, bc, o.compiler)
	case pipeline.StepGenerateIconSprite:
		return steps.GenerateIconSprite(ctx, bc)
	case pipeline.StepCopyFilters:
		return steps.CopyFilters(ctx, bc)
	case pipeline.StepCopyFonts:
		return steps.CopyFonts(ctx, bc)
	case pipeline.StepCopyDocs:
		return steps.CopyDocs(ctx, bc)
	case pipeline.StepCopyImages:
		return steps.CopyImages(ctx, bc)
	default:
		return pipeline.StepStats{}, abErrors.InternalError(fmt.Sprintf("unknown step %q", step), nil)
	}
}
