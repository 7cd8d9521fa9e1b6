package tasks

import "slices"

// Name identifies a build task.
type Name string

const (
	ClearOutput             Name = "clear-output"
	GenerateSprites         Name = "generate-sprites"
	CompileScripts          Name = "compile-scripts"
	CompileStyles           Name = "compile-styles"
	CopyStaticAssets        Name = "copy-static-assets"
	CopyStyles              Name = "copy-styles"
	CopyScripts             Name = "copy-scripts"
	CopyFonts               Name = "copy-fonts"
	CopyImages              Name = "copy-images"
	CopyOtherAssets         Name = "copy-other-assets"
	CopyHTML                Name = "copy-html"
	RenderTemplates         Name = "render-templates"
	GlobalTokenSubstitution Name = "global-token-substitution"
	OptimizeImages          Name = "optimize-images"
	PromoteToRoot           Name = "promote-to-root"
)

// canonicalOrder is the single total order every plan respects. The copy
// subtasks sit where copy-static-assets does; a plan holds either the
// aggregate or some of its parts.
var canonicalOrder = []Name{
	ClearOutput,
	GenerateSprites,
	CompileScripts,
	CompileStyles,
	CopyStaticAssets,
	CopyStyles,
	CopyScripts,
	CopyFonts,
	CopyImages,
	CopyOtherAssets,
	CopyHTML,
	RenderTemplates,
	GlobalTokenSubstitution,
	OptimizeImages,
	PromoteToRoot,
}

// CopyGroups are the parts run by copy-static-assets, in order.
var CopyGroups = []Name{CopyStyles, CopyScripts, CopyFonts, CopyImages, CopyOtherAssets, CopyHTML}

func rank(n Name) int {
	return slices.Index(canonicalOrder, n)
}

// Known reports whether n is a task name.
func Known(n Name) bool { return rank(n) >= 0 }

// All returns every task name in canonical order.
func All() []Name { return slices.Clone(canonicalOrder) }

func (n Name) String() string { return string(n) }
