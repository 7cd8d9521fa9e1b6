package commands

import (
	"github.com/sandroweb/html-template-project/internal/config"
	"github.com/sandroweb/html-template-project/internal/tasks"
)

// DeployCmd runs the development pipeline.
type DeployCmd struct {
	BasePath string `arg:"" optional:"" name:"basePath" help:"Base path substituted for {{{CDN_BASEPATH}}} instead of paths.basePathLocal"`
}

func (d *DeployCmd) Run(g *Global, root *CLI) error {
	return runPlan(g, root, tasks.Compose(config.ModeDevelopment, d.BasePath))
}

// ProductionCmd runs the production pipeline.
type ProductionCmd struct {
	BasePath string `arg:"" optional:"" name:"basePath" help:"Base path substituted for {{{CDN_BASEPATH}}} instead of paths.basePathLocal"`
}

func (p *ProductionCmd) Run(g *Global, root *CLI) error {
	return runPlan(g, root, tasks.Compose(config.ModeProduction, p.BasePath))
}

// ApplyTemplatesCmd renders the configured pages without the rest of the
// pipeline.
type ApplyTemplatesCmd struct {
	Mode string `name:"mode" default:"development" help:"Build mode (development|production)"`
}

func (a *ApplyTemplatesCmd) Run(g *Global, root *CLI) error {
	mode, err := config.ParseBuildMode(a.Mode)
	if err != nil {
		return err
	}
	return runPlan(g, root, tasks.Single(mode, tasks.RenderTemplates))
}

// PromoteCmd copies an existing output tree into the project root.
type PromoteCmd struct{}

func (p *PromoteCmd) Run(g *Global, root *CLI) error {
	return runPlan(g, root, tasks.Single(config.ModeProduction, tasks.PromoteToRoot))
}
