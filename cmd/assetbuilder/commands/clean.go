package commands

import (
	"context"

	"git.home.luguber.info/inful/assetbuilder/internal/pipeline"
	"git.home.luguber.info/inful/assetbuilder/internal/steps"
)

// CleanCmd implements the 'clean' command.
type CleanCmd struct{}

func (CleanCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	_, err = steps.Clean(context.Background(), pipeline.BuildContext{ProjectDir: root.projectDir(), Config: cfg})
	return err
}
