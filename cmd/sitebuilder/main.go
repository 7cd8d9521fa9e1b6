package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/sandroweb/html-template-project/cmd/sitebuilder/commands"
	ferrors "github.com/sandroweb/html-template-project/internal/foundation/errors"
	"github.com/sandroweb/html-template-project/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("sitebuilder"),
		kong.Description("Build a static site from templated sources."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	if err := parser.Run(&commands.Global{Logger: slog.Default()}); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
