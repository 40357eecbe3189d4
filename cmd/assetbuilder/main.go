package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/assetbuilder/cmd/assetbuilder/commands"
	abErrors "git.home.luguber.info/inful/assetbuilder/internal/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("assetbuilder"),
		kong.Description("Front-end asset build orchestrator: lint, bundle, render, compile and sprite a single page application."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	if err := parser.Run(&commands.Global{}, cli); err != nil {
		abErrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
