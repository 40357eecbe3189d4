package pipeline

import (
	"context"
	"errors"
)

// StepOutcome is the normalized result of step execution.
type StepOutcome struct {
	Step   StepName
	Error  *StepError
	Result StepResult
	Abort  bool
}

func resultFromKind(k StepErrorKind) StepResult {
	switch k {
	case StepErrorWarning:
		return StepResultWarning
	case StepErrorCanceled:
		return StepResultCanceled
	default:
		return StepResultFatal
	}
}

// ClassifyStepResult converts a raw error returned by a step into an outcome.
// Errors that are not StepErrors are fatal unless they stem from context
// cancellation.
func ClassifyStepResult(step StepName, err error) StepOutcome {
	if err == nil {
		return StepOutcome{Step: step, Result: StepResultSuccess}
	}

	var se *StepError
	if !errors.As(err, &se) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			se = NewCanceledStepError(step, err)
		} else {
			se = NewFatalStepError(step, err)
		}
	}

	return StepOutcome{
		Step:   step,
		Error:  se,
		Result: resultFromKind(se.Kind),
		Abort:  se.Kind == StepErrorFatal || se.Kind == StepErrorCanceled,
	}
}
