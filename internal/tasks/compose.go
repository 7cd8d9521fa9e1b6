package tasks

import (
	"slices"

	"github.com/sandroweb/html-template-project/internal/config"
)

// Descriptor is one entry of a composed plan.
type Descriptor struct {
	Name     Name
	Position int
}

// Plan is an ordered task list for one run.
type Plan struct {
	Mode config.BuildMode
	// BasePathOverride replaces the configured local base path for token
	// substitution only. Empty means no override.
	BasePathOverride string
	// Incremental plans never clear the output tree.
	Incremental bool
	Tasks       []Descriptor
}

var backbone = []Name{
	ClearOutput,
	GenerateSprites,
	CompileScripts,
	CompileStyles,
	CopyStaticAssets,
	RenderTemplates,
	GlobalTokenSubstitution,
}

var productionTail = []Name{OptimizeImages, PromoteToRoot}

// Compose returns the full-build plan for mode. Every call returns a freshly
// allocated task list.
func Compose(mode config.BuildMode, basePathOverride string) Plan {
	names := slices.Clone(backbone)
	if mode.IsProduction() {
		names = append(names, productionTail...)
	}
	return Plan{
		Mode:             mode,
		BasePathOverride: basePathOverride,
		Tasks:            describe(names),
	}
}

// Incremental returns a plan running only names, deduplicated and ordered
// canonically. clear-output and unknown names are dropped.
func Incremental(mode config.BuildMode, names []Name) Plan {
	return Plan{
		Mode:        mode,
		Incremental: true,
		Tasks:       describe(Canonical(names)),
	}
}

// Canonical deduplicates names and sorts them into the canonical order,
// dropping clear-output and unknown names.
func Canonical(names []Name) []Name {
	subset := make([]Name, 0, len(names))
	for _, n := range names {
		if n == ClearOutput || !Known(n) || slices.Contains(subset, n) {
			continue
		}
		subset = append(subset, n)
	}
	slices.SortFunc(subset, func(a, b Name) int { return rank(a) - rank(b) })
	return subset
}

// Single returns a plan with one task, used by commands that run a task on
// its own.
func Single(mode config.BuildMode, name Name) Plan {
	return Plan{Mode: mode, Incremental: true, Tasks: describe([]Name{name})}
}

func describe(names []Name) []Descriptor {
	out := make([]Descriptor, len(names))
	for i, n := range names {
		out[i] = Descriptor{Name: n, Position: i}
	}
	return out
}

// Names returns the task names in order.
func (p Plan) Names() []Name {
	out := make([]Name, len(p.Tasks))
	for i, d := range p.Tasks {
		out[i] = d.Name
	}
	return out
}

// Contains reports whether the plan runs n.
func (p Plan) Contains(n Name) bool {
	return slices.ContainsFunc(p.Tasks, func(d Descriptor) bool { return d.Name == n })
}

// Empty reports whether the plan has no tasks.
func (p Plan) Empty() bool { return len(p.Tasks) == 0 }

// BasePath resolves the base path substituted for the base-path token.
func (p Plan) BasePath(cfg *config.ProjectConfig) string {
	if p.BasePathOverride != "" {
		return p.BasePathOverride
	}
	return cfg.Paths.BasePathLocal
}

// Merge returns the union of two incremental plans in canonical order. A
// full plan absorbs anything merged into it.
func (p Plan) Merge(other Plan) Plan {
	if !p.Incremental {
		return p
	}
	if !other.Incremental {
		return other
	}
	return Incremental(p.Mode, append(p.Names(), other.Names()...))
}
