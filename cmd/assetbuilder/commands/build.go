package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Env string `short:"e" help:"Environment label injected into entry pages (DEV, QA, STAGING, PROD)" default:"PROD"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	env, err := config.ParseEnvironment(b.Env)
	if err != nil {
		return err
	}
	return runProdBuild(root, env)
}

// QACmd implements the 'qa' command.
type QACmd struct{}

func (QACmd) Run(_ *Global, root *CLI) error { return runProdBuild(root, config.EnvQA) }

// StagingCmd implements the 'staging' command.
type StagingCmd struct{}

func (StagingCmd) Run(_ *Global, root *CLI) error { return runProdBuild(root, config.EnvStaging) }

// ProdCmd implements the 'prod' command.
type ProdCmd struct{}

func (ProdCmd) Run(_ *Global, root *CLI) error { return runProdBuild(root, config.EnvProd) }

func runProdBuild(root *CLI, env config.Environment) error {
	rt, err := newRuntime(root)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := signalContext()
	defer cancel()

	report, err := rt.orch.Run(ctx, config.ProfileProd, env)
	if err != nil {
		return err
	}
	fmt.Printf("Build %s complete: %d files in %s\n", report.BuildID, report.TotalFiles(), rt.cfg.Output(config.ProfileProd).Dir)
	return ctxErr(ctx)
}

func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("interrupted: %w", err)
	}
	return nil
}
