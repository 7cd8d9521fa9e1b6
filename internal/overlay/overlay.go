// Package overlay derives mode-specific configuration snapshots.
package overlay

import "github.com/sandroweb/html-template-project/internal/config"

// Apply returns a copy of cfg with the transform options of mode filled in.
// cfg itself is never modified, so repeated calls with either mode always
// start from the same loaded values.
func Apply(cfg *config.ProjectConfig, mode config.BuildMode) *config.ProjectConfig {
	out := cfg.Clone()
	out.Options = Options(mode)
	return out
}

// Options returns the transform options for mode.
func Options(mode config.BuildMode) config.TransformOptions {
	prod := mode.IsProduction()
	return config.TransformOptions{
		Mode:           mode,
		Beautify:       !prod,
		Compress:       prod,
		SourceMap:      prod,
		DropConsole:    prod,
		OptimizeImages: prod,
		CleanHTML:      prod,
	}
}
