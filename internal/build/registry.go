package build

import (
	"context"
	"fmt"

	"github.com/sandroweb/html-template-project/internal/assets"
	"github.com/sandroweb/html-template-project/internal/logfields"
	"github.com/sandroweb/html-template-project/internal/tasks"
	"github.com/sandroweb/html-template-project/internal/templates"
)

// copyGroupKeys maps each copy task to its assets.CopyGroups entry.
var copyGroupKeys = map[tasks.Name]string{
	tasks.CopyStyles:      "styles",
	tasks.CopyScripts:     "scripts",
	tasks.CopyFonts:       "fonts",
	tasks.CopyImages:      "images",
	tasks.CopyOtherAssets: "other",
	tasks.CopyHTML:        "html",
}

func envFor(run *tasks.Run) assets.Env {
	return assets.Env{Fs: run.Fs, Config: run.Config, Logger: run.Logger}
}

// counted adapts a transformer that reports written files.
func counted(fn func(context.Context, assets.Env) (int, error)) tasks.Func {
	return func(ctx context.Context, run *tasks.Run) error {
		n, err := fn(ctx, envFor(run))
		run.Report.AddFiles(n)
		return err
	}
}

func (s *Service) registry() tasks.Registry {
	reg := tasks.Registry{
		tasks.ClearOutput: func(ctx context.Context, run *tasks.Run) error {
			return assets.Clean(ctx, envFor(run))
		},
		tasks.GenerateSprites:         counted(assets.GenerateSprites),
		tasks.CompileScripts:          counted(assets.CompileScripts),
		tasks.CompileStyles:           counted(assets.CompileStyles),
		tasks.CopyStaticAssets:        copyAll,
		tasks.RenderTemplates:         s.renderTemplates,
		tasks.GlobalTokenSubstitution: substituteGlobals,
		tasks.OptimizeImages:          optimizeImages,
		tasks.PromoteToRoot:           counted(assets.Promote),
	}
	for name := range copyGroupKeys {
		reg[name] = copyGroup(name)
	}
	return reg
}

func copyGroup(name tasks.Name) tasks.Func {
	return func(ctx context.Context, run *tasks.Run) error {
		env := envFor(run)
		g, ok := assets.CopyGroups(env)[copyGroupKeys[name]]
		if !ok {
			return fmt.Errorf("no copy group for task %s", name)
		}
		n, err := assets.Copy(ctx, env, g)
		run.Report.AddFiles(n)
		return err
	}
}

// copyAll runs every copy group in order.
func copyAll(ctx context.Context, run *tasks.Run) error {
	for _, name := range tasks.CopyGroups {
		if err := copyGroup(name)(ctx, run); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) renderTemplates(ctx context.Context, run *tasks.Run) error {
	r := templates.NewRenderer(run.Fs, run.Config,
		templates.Vars{BasePath: run.BasePath, CacheBust: run.CacheBust},
		templates.WithLogger(run.Logger))

	rep, err := r.RenderAll(ctx)
	run.Report.PagesRendered += len(rep.Rendered)
	run.Report.PagesFailed += len(rep.Failed)
	run.Report.AddFiles(len(rep.Rendered))
	s.recorder.AddPagesRendered(true, len(rep.Rendered))
	s.recorder.AddPagesRendered(false, len(rep.Failed))
	if err != nil {
		return err
	}
	if rep.HasFailures() {
		for _, f := range rep.Failed {
			run.Report.AddWarning(fmt.Sprintf("page %s: %v", f.Page, f.Err))
		}
		return tasks.NewWarningError(tasks.RenderTemplates, rep.Err())
	}
	return nil
}

func substituteGlobals(ctx context.Context, run *tasks.Run) error {
	n, err := assets.SubstituteGlobals(ctx, envFor(run), assets.Globals{
		BasePath:  run.BasePath,
		CacheBust: run.CacheBust,
		Title:     run.Config.Title,
	})
	run.Report.AddFiles(n)
	return err
}

func optimizeImages(ctx context.Context, run *tasks.Run) error {
	if !run.Config.Options.OptimizeImages {
		run.Logger.Debug("Image optimization disabled for mode", logfields.Task(string(tasks.OptimizeImages)))
		return nil
	}
	n, err := assets.OptimizeImages(ctx, envFor(run))
	run.Report.AddFiles(n)
	return err
}
