package steps

import (
	"context"
	"fmt"
	"log/slog"

	abErrors "git.home.luguber.info/inful/assetbuilder/internal/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/fsutil"
	"git.home.luguber.info/inful/assetbuilder/internal/lint"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/pipeline"
)

// LintFiles returns the application scripts subject to linting.
func LintFiles(bc pipeline.BuildContext) ([]string, error) {
	matches, err := expand(bc, bc.Config.Src.Scripts)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, m := range matches {
		if fsutil.MatchesAny(bc.Config.Lint.Exclude, m.Path) {
			continue
		}
		files = append(files, m.Path)
	}
	return files, nil
}

// Lint checks application scripts. Any issue yields a warning step error;
// with lint.blocking set, error-level issues are fatal instead.
func Lint(ctx context.Context, bc pipeline.BuildContext) (*lint.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files, err := LintFiles(bc)
	if err != nil {
		return nil, err
	}
	result, err := lint.NewLinter().LintFiles(bc.ProjectDir, files)
	if err != nil {
		return nil, abErrors.FileSystemError("read", bc.ProjectDir, err)
	}

	for _, issue := range result.Issues {
		slog.Warn(issue.Message,
			logfields.Step(string(pipeline.StepLint)),
			logfields.File(fmt.Sprintf("%s:%d:%d", issue.FilePath, issue.Line, issue.Column)),
			slog.String("rule", issue.Rule),
			slog.String("severity", issue.Severity.String()))
	}

	if bc.Config.Lint.Blocking && result.HasErrors() {
		return result, pipeline.NewFatalStepError(pipeline.StepLint, abErrors.LintFailed(result.ErrorCount()))
	}
	if len(result.Issues) > 0 {
		return result, pipeline.NewWarnStepError(pipeline.StepLint,
			fmt.Errorf("%d error(s), %d warning(s) in %d file(s)", result.ErrorCount(), result.WarningCount(), result.FilesTotal))
	}
	return result, nil
}
