package steps

import (
	"context"

	abErrors "git.home.luguber.info/inful/assetbuilder/internal/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/pipeline"
	"git.home.luguber.info/inful/assetbuilder/internal/workspace"
)

// Clean removes the output root (dist.path) including every profile
// directory below it.
func Clean(ctx context.Context, bc pipeline.BuildContext) (pipeline.StepStats, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.StepStats{}, err
	}
	mgr := workspace.NewManager(bc.ProjectDir, bc.Config.Dist.Path)
	if err := mgr.Clean(); err != nil {
		return pipeline.StepStats{}, abErrors.FileSystemError("remove", mgr.OutputRoot(), err)
	}
	return pipeline.StepStats{}, nil
}
