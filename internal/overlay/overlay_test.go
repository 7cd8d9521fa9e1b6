package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sandroweb/html-template-project/internal/config"
)

func TestApply(t *testing.T) {
	base := &config.ProjectConfig{
		Title: "Acme",
		Paths: config.PathsConfig{BasePathLocal: "http://localhost/"},
		Pages: []config.PageTemplate{{File: "index.html", Replace: []config.ReplaceRule{{Find: "a", Replace: "b"}}}},
	}

	prod := Apply(base, config.ModeProduction)
	assert.Equal(t, config.TransformOptions{
		Mode:           config.ModeProduction,
		Compress:       true,
		SourceMap:      true,
		DropConsole:    true,
		OptimizeImages: true,
		CleanHTML:      true,
	}, prod.Options)

	dev := Apply(base, config.ModeDevelopment)
	assert.Equal(t, config.TransformOptions{Mode: config.ModeDevelopment, Beautify: true}, dev.Options)

	// The base snapshot is untouched and the copies are independent.
	assert.Equal(t, config.TransformOptions{}, base.Options)
	prod.Pages[0].Replace[0].Replace = "changed"
	assert.Equal(t, "b", base.Pages[0].Replace[0].Replace)
	assert.Equal(t, "b", dev.Pages[0].Replace[0].Replace)
}

func TestApplyIsDeterministic(t *testing.T) {
	base := &config.ProjectConfig{Title: "Acme"}
	assert.Equal(t, Apply(base, config.ModeProduction), Apply(base, config.ModeProduction))
}
