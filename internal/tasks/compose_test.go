package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sandroweb/html-template-project/internal/config"
)

func TestComposeDevelopment(t *testing.T) {
	plan := Compose(config.ModeDevelopment, "")
	assert.Equal(t, []Name{
		ClearOutput,
		GenerateSprites,
		CompileScripts,
		CompileStyles,
		CopyStaticAssets,
		RenderTemplates,
		GlobalTokenSubstitution,
	}, plan.Names())
	assert.False(t, plan.Contains(OptimizeImages))
	assert.False(t, plan.Incremental)
	for i, d := range plan.Tasks {
		assert.Equal(t, i, d.Position)
	}
}

func TestComposeProduction(t *testing.T) {
	plan := Compose(config.ModeProduction, "")
	names := plan.Names()
	assert.Equal(t, []Name{OptimizeImages, PromoteToRoot}, names[len(names)-2:])
	assert.Equal(t, GlobalTokenSubstitution, names[len(names)-3])
	assert.True(t, plan.Contains(OptimizeImages))
}

func TestComposeReturnsFreshLists(t *testing.T) {
	a := Compose(config.ModeDevelopment, "")
	a.Tasks[0].Name = PromoteToRoot
	b := Compose(config.ModeDevelopment, "")
	assert.Equal(t, ClearOutput, b.Tasks[0].Name)
}

func TestComposeIsDeterministic(t *testing.T) {
	for _, mode := range []config.BuildMode{config.ModeDevelopment, config.ModeProduction} {
		assert.Equal(t, Compose(mode, "x"), Compose(mode, "x"))
	}
}

func TestBasePathResolution(t *testing.T) {
	cfg := &config.ProjectConfig{Paths: config.PathsConfig{BasePathLocal: "http://localhost:8888/"}}

	assert.Equal(t, "http://localhost:8888/", Compose(config.ModeDevelopment, "").BasePath(cfg))
	assert.Equal(t, "http://example.test", Compose(config.ModeProduction, "http://example.test").BasePath(cfg))
	assert.Equal(t, "http://localhost:8888/", cfg.Paths.BasePathLocal)
}

func TestIncremental(t *testing.T) {
	plan := Incremental(config.ModeDevelopment, []Name{
		GlobalTokenSubstitution,
		CopyStyles,
		ClearOutput,
		CompileStyles,
		"bogus",
		CopyStyles,
	})
	assert.True(t, plan.Incremental)
	assert.Equal(t, []Name{CompileStyles, CopyStyles, GlobalTokenSubstitution}, plan.Names())
	assert.False(t, plan.Contains(ClearOutput))
}

func TestPlanMerge(t *testing.T) {
	styles := Incremental(config.ModeDevelopment, []Name{CompileStyles, CopyStyles, GlobalTokenSubstitution})
	html := Incremental(config.ModeDevelopment, []Name{CopyHTML, RenderTemplates, GlobalTokenSubstitution})

	merged := styles.Merge(html)
	assert.Equal(t, []Name{CompileStyles, CopyStyles, CopyHTML, RenderTemplates, GlobalTokenSubstitution}, merged.Names())

	full := Compose(config.ModeDevelopment, "")
	assert.Equal(t, full, styles.Merge(full))
	assert.Equal(t, full, full.Merge(styles))
}
