package commands

import (
	"context"
	"errors"
	"os"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	abErrors "git.home.luguber.info/inful/assetbuilder/internal/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/lint"
	"git.home.luguber.info/inful/assetbuilder/internal/pipeline"
	"git.home.luguber.info/inful/assetbuilder/internal/steps"
)

// LintCmd implements the 'lint' command.
type LintCmd struct {
	Format string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
}

// Run lints the configured application scripts. Lint errors fail the
// command regardless of lint.blocking.
func (l *LintCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	bc := pipeline.BuildContext{
		Profile:    config.ProfileDev,
		Env:        config.EnvDev,
		ProjectDir: root.projectDir(),
		Config:     cfg,
	}

	result, err := steps.Lint(context.Background(), bc)
	var se *pipeline.StepError
	if err != nil && !errors.As(err, &se) {
		return err
	}
	if result == nil {
		return err
	}

	if ferr := lint.NewFormatter(l.Format).Format(os.Stdout, result, cfg.Src.Path); ferr != nil {
		return ferr
	}
	if result.HasErrors() {
		return abErrors.LintFailed(result.ErrorCount())
	}
	return nil
}
