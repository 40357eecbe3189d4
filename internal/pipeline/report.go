package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// BuildReport captures what happened during one build. It is safe for
// concurrent use by steps running in parallel.
type BuildReport struct {
	mu sync.Mutex

	BuildID       string
	Profile       config.Profile
	Env           config.Environment
	Start         time.Time
	End           time.Time
	Errors        []error
	Warnings      []error
	StepDurations map[StepName]time.Duration
	StepResults   map[StepName]StepResult
	FilesWritten  map[StepName]int
	Outcome       BuildOutcome
}

// NewBuildReport starts a report for the given build context.
func NewBuildReport(bc BuildContext) *BuildReport {
	return &BuildReport{
		BuildID:       bc.BuildID,
		Profile:       bc.Profile,
		Env:           bc.Env,
		Start:         time.Now(),
		StepDurations: make(map[StepName]time.Duration),
		StepResults:   make(map[StepName]StepResult),
		FilesWritten:  make(map[StepName]int),
	}
}

// RecordStep stores the outcome of a step and emits metrics when recorder is non-nil.
func (r *BuildReport) RecordStep(out StepOutcome, d time.Duration, stats StepStats, recorder metrics.Recorder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.StepDurations[out.Step] = d
	r.StepResults[out.Step] = out.Result
	r.FilesWritten[out.Step] += stats.FilesWritten
	if out.Error != nil {
		if out.Error.Kind == StepErrorWarning {
			r.Warnings = append(r.Warnings, out.Error)
		} else {
			r.Errors = append(r.Errors, out.Error)
		}
	}

	if recorder != nil {
		recorder.IncStepResult(string(out.Step), metrics.ResultLabel(out.Result))
		recorder.AddFilesWritten(string(out.Step), stats.FilesWritten)
	}
}

// MarkSkipped records steps that never ran.
func (r *BuildReport) MarkSkipped(steps []StepName, recorder metrics.Recorder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range steps {
		if _, ran := r.StepResults[s]; ran {
			continue
		}
		r.StepResults[s] = StepResultSkipped
		if recorder != nil {
			recorder.IncStepResult(string(s), metrics.ResultSkipped)
		}
	}
}

// Abort records an error that ended the build outside any step, such as
// cancellation before the remaining steps started. Errors already recorded
// for a step are not duplicated.
func (r *BuildReport) Abort(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.Errors {
		if errors.Is(err, e) {
			return
		}
	}
	out := ClassifyStepResult("", err)
	r.Errors = append(r.Errors, out.Error)
}

// Result returns the recorded result of a step.
func (r *BuildReport) Result(step StepName) (StepResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.StepResults[step]
	return res, ok
}

// Finish sets the end time and derives the outcome.
func (r *BuildReport) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.End = time.Now()
	r.deriveOutcome()
}

func (r *BuildReport) deriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			var se *StepError
			if errors.As(e, &se) && se.Kind == StepErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// TotalFiles returns the number of files written by all steps.
func (r *BuildReport) TotalFiles() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.FilesWritten {
		n += c
	}
	return n
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	files := 0
	for _, c := range r.FilesWritten {
		files += c
	}
	return fmt.Sprintf("profile=%s env=%s steps=%d files=%d duration=%s errors=%d warnings=%d outcome=%s",
		r.Profile, r.Env, len(r.StepDurations), files, r.End.Sub(r.Start).Truncate(time.Millisecond),
		len(r.Errors), len(r.Warnings), r.Outcome)
}

// Steps returns the recorded step names sorted alphabetically.
func (r *BuildReport) Steps() []StepName {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]StepName, 0, len(r.StepResults))
	for s := range r.StepResults {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
