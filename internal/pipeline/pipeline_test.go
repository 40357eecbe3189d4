package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
)

func TestClassifyStepResult(t *testing.T) {
	ok := ClassifyStepResult(StepLint, nil)
	assert.Equal(t, StepResultSuccess, ok.Result)
	assert.False(t, ok.Abort)

	warn := ClassifyStepResult(StepLint, NewWarnStepError(StepLint, errors.New("2 issues")))
	assert.Equal(t, StepResultWarning, warn.Result)
	assert.False(t, warn.Abort)

	raw := ClassifyStepResult(StepCopyFonts, errors.New("permission denied"))
	assert.Equal(t, StepResultFatal, raw.Result)
	assert.True(t, raw.Abort)
	assert.Equal(t, StepCopyFonts, raw.Error.Step)

	canceled := ClassifyStepResult(StepCompileStyles, fmt.Errorf("sass: %w", context.Canceled))
	assert.Equal(t, StepResultCanceled, canceled.Result)
	assert.True(t, canceled.Abort)
}

func TestBuildReportOutcome(t *testing.T) {
	bc := BuildContext{Profile: config.ProfileProd, Env: config.EnvQA, BuildID: "b1"}

	r := NewBuildReport(bc)
	r.RecordStep(ClassifyStepResult(StepClean, nil), time.Millisecond, StepStats{}, metrics.NoopRecorder{})
	r.Finish()
	assert.Equal(t, OutcomeSuccess, r.Outcome)

	r = NewBuildReport(bc)
	r.RecordStep(ClassifyStepResult(StepLint, NewWarnStepError(StepLint, errors.New("w"))), 0, StepStats{}, nil)
	r.Finish()
	assert.Equal(t, OutcomeWarning, r.Outcome)

	r = NewBuildReport(bc)
	r.RecordStep(ClassifyStepResult(StepCopyDocs, errors.New("boom")), 0, StepStats{FilesWritten: 2}, nil)
	r.MarkSkipped([]StepName{StepCopyDocs, StepCopyFonts}, nil)
	r.Finish()
	assert.Equal(t, OutcomeFailed, r.Outcome)
	res, _ := r.Result(StepCopyFonts)
	assert.Equal(t, StepResultSkipped, res)
	res, _ = r.Result(StepCopyDocs)
	assert.Equal(t, StepResultFatal, res)
	assert.Equal(t, 2, r.TotalFiles())
	assert.Contains(t, r.Summary(), "outcome=failed")

	r = NewBuildReport(bc)
	r.RecordStep(ClassifyStepResult(StepCopyDocs, context.Canceled), 0, StepStats{}, nil)
	r.Finish()
	assert.Equal(t, OutcomeCanceled, r.Outcome)
}

func TestBuildReportAbort(t *testing.T) {
	bc := BuildContext{Profile: config.ProfileDev, Env: config.EnvDev}

	r := NewBuildReport(bc)
	r.Abort(context.Canceled)
	r.Finish()
	assert.Equal(t, OutcomeCanceled, r.Outcome)

	r = NewBuildReport(bc)
	out := ClassifyStepResult(StepCopyFonts, errors.New("disk full"))
	r.RecordStep(out, 0, StepStats{}, nil)
	r.Abort(out.Error)
	r.Finish()
	require.Len(t, r.Errors, 1)
	assert.Equal(t, OutcomeFailed, r.Outcome)
}

func TestBuildContextPaths(t *testing.T) {
	cfg := config.Default()
	bc := BuildContext{Profile: config.ProfileDev, Env: config.EnvDev, ProjectDir: "/p", Config: cfg}
	assert.False(t, bc.Minify())
	assert.Equal(t, filepath.FromSlash("/p/dist/dev/app.js"), bc.OutPath("app.js"))
	assert.Equal(t, filepath.FromSlash("/p/dist/dev/assets/css/svg-sprite.css"), bc.AssetsPath(bc.Output().IconStylesheet))

	bc.Profile = config.ProfileProd
	assert.True(t, bc.Minify())
	assert.Equal(t, "app.min.js", bc.Output().AppScript)
}

func TestManifestClone(t *testing.T) {
	m := Manifest{Paths: []string{"a.js"}}
	c := m.Clone()
	c.Paths[0] = "b.js"
	assert.Equal(t, "a.js", m.Paths[0])
	assert.Equal(t, 1, m.Len())
}

type countingObserver struct{ starts, completes, builds int }

func (c *countingObserver) OnStepStart(StepName)                               { c.starts++ }
func (c *countingObserver) OnStepComplete(StepName, time.Duration, StepResult) { c.completes++ }
func (c *countingObserver) OnBuildComplete(*BuildReport)                       { c.builds++ }

func TestMultiObserver(t *testing.T) {
	a, b := &countingObserver{}, &countingObserver{}
	m := MultiObserver{a, b, NoopObserver{}, LogObserver{}, RecorderObserver{Recorder: metrics.NoopRecorder{}}}
	m.OnStepStart(StepLint)
	m.OnStepComplete(StepLint, time.Millisecond, StepResultSuccess)
	r := NewBuildReport(BuildContext{Profile: config.ProfileDev})
	r.Finish()
	m.OnBuildComplete(r)
	require.Equal(t, 1, a.starts)
	assert.Equal(t, 1, b.completes)
	assert.Equal(t, 1, b.builds)
}
