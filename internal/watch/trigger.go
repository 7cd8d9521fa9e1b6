// Package watch rebuilds the parts of a site affected by source changes.
//
// A file listener publishes every relevant change on the event bus. The
// debouncer collects changes until the quiet window closes (or the max delay
// expires), maps the paths to the smallest set of tasks through a Trigger
// and hands one incremental plan to the build queue.
package watch

import (
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/sandroweb/html-template-project/internal/config"
	"github.com/sandroweb/html-template-project/internal/tasks"
)

type rule struct {
	patterns []string
	tasks    []tasks.Name
}

// Trigger maps changed paths to the tasks that rebuild them.
type Trigger struct {
	rules []rule
}

// NewTrigger builds the path mapping of cfg. configFile is the project
// configuration path; changes to it recompile scripts.
func NewTrigger(cfg *config.ProjectConfig, configFile string) *Trigger {
	src := slashClean(cfg.SourceDir())
	assets := path.Join(src, "assets")

	var sprites []string
	for _, s := range cfg.Sprites {
		sprites = append(sprites, slashClean(s.Src))
	}

	scripts := []string{path.Join(assets, "scripts/**/*.js")}
	if configFile != "" {
		scripts = append(scripts, slashClean(configFile))
	}

	return &Trigger{rules: []rule{
		{sprites, []tasks.Name{tasks.GenerateSprites, tasks.CompileStyles, tasks.GlobalTokenSubstitution}},
		{scripts, []tasks.Name{tasks.CompileScripts, tasks.CopyScripts, tasks.GlobalTokenSubstitution}},
		{[]string{path.Join(assets, "css/**/*.{css,styl}")}, []tasks.Name{tasks.CompileStyles, tasks.CopyStyles, tasks.GlobalTokenSubstitution}},
		{[]string{path.Join(assets, "fonts/**")}, []tasks.Name{tasks.CopyFonts}},
		{[]string{path.Join(assets, "images/**")}, []tasks.Name{tasks.CopyImages}},
		{[]string{path.Join(src, "site/**")}, []tasks.Name{tasks.CopyHTML, tasks.RenderTemplates, tasks.GlobalTokenSubstitution}},
	}}
}

// OnChange returns the tasks affected by a change to p, in canonical order.
// p is relative to the project root. The result never contains
// clear-output and is empty for paths nothing depends on.
func (t *Trigger) OnChange(p string) []tasks.Name {
	return t.OnChanges([]string{p})
}

// OnChanges returns the union of the tasks affected by paths.
func (t *Trigger) OnChanges(paths []string) []tasks.Name {
	var names []tasks.Name
	for _, p := range paths {
		p = slashClean(p)
		for _, r := range t.rules {
			if matchAny(r.patterns, p) {
				names = append(names, r.tasks...)
			}
		}
	}
	if len(names) == 0 {
		return nil
	}
	return tasks.Canonical(names)
}

func matchAny(patterns []string, p string) bool {
	return slices.ContainsFunc(patterns, func(pattern string) bool {
		ok, _ := doublestar.Match(pattern, p)
		return ok
	})
}

func slashClean(p string) string {
	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean(p)), "./")
}
