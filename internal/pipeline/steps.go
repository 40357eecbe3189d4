package pipeline

import (
	"fmt"
)

// StepName identifies a build step.
type StepName string

// Canonical step names.
const (
	StepLint                   StepName = "lint"
	StepClean                  StepName = "clean"
	StepBundleVendorScripts    StepName = "bundle-vendor-scripts"
	StepCopySourceMaps         StepName = "copy-source-maps"
	StepBundleAppScripts       StepName = "bundle-app-scripts"
	StepRenderEntryTemplates   StepName = "render-entry-templates"
	StepRenderPartialTemplates StepName = "render-partial-templates"
	StepBundleVendorStyles     StepName = "bundle-vendor-styles"
	StepCompileStyles          StepName = "compile-styles"
	StepGenerateIconSprite     StepName = "generate-icon-sprite"
	StepCopyFilters            StepName = "copy-filters"
	StepCopyFonts              StepName = "copy-fonts"
	StepCopyDocs               StepName = "copy-docs"
	StepCopyImages             StepName = "copy-images"
)

// AllSteps lists every step in catalog order.
func AllSteps() []StepName {
	return []StepName{
		StepLint, StepClean, StepBundleVendorScripts, StepCopySourceMaps,
		StepBundleAppScripts, StepRenderEntryTemplates, StepRenderPartialTemplates,
		StepBundleVendorStyles, StepCompileStyles, StepGenerateIconSprite,
		StepCopyFilters, StepCopyFonts, StepCopyDocs, StepCopyImages,
	}
}

// StepErrorKind classifies the outcome of a step.
type StepErrorKind string

const (
	StepErrorFatal    StepErrorKind = "fatal"    // Build must abort.
	StepErrorWarning  StepErrorKind = "warning"  // Non-fatal; record and continue.
	StepErrorCanceled StepErrorKind = "canceled" // Context cancellation.
)

// StepError is a structured error carrying the step and underlying cause.
type StepError struct {
	Kind StepErrorKind
	Step StepName
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("%s step %s: %v", e.Kind, e.Step, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }

func NewFatalStepError(step StepName, err error) *StepError {
	return &StepError{Kind: StepErrorFatal, Step: step, Err: err}
}

func NewWarnStepError(step StepName, err error) *StepError {
	return &StepError{Kind: StepErrorWarning, Step: step, Err: err}
}

func NewCanceledStepError(step StepName, err error) *StepError {
	return &StepError{Kind: StepErrorCanceled, Step: step, Err: err}
}

// StepResult captures the high-level outcome of a step.
type StepResult string

const (
	StepResultSuccess  StepResult = "success"
	StepResultWarning  StepResult = "warning"
	StepResultFatal    StepResult = "fatal"
	StepResultCanceled StepResult = "canceled"
	StepResultSkipped  StepResult = "skipped"
)

// StepStats is what a step reports about its work.
type StepStats struct {
	FilesWritten int
}
