package config

import (
	"path/filepath"
	"slices"
)

// ProjectConfig is the immutable per-run snapshot of all build parameters.
// It is loaded once; mode-specific variants are derived copies (see Clone).
type ProjectConfig struct {
	Title     string         `yaml:"title"`
	Paths     PathsConfig    `yaml:"paths"`
	Sprites   []SpriteConfig `yaml:"sprites,omitempty"`
	Scripts   ScriptsConfig  `yaml:"scripts,omitempty"`
	Styles    StylesConfig   `yaml:"styles,omitempty"`
	Images    ImagesConfig   `yaml:"images,omitempty"`
	Pages     []PageTemplate `yaml:"pages"`
	Fragments []Fragment     `yaml:"fragments,omitempty"`
	Watch     WatchConfig    `yaml:"watch,omitempty"`
	Server    ServerConfig   `yaml:"server,omitempty"`

	// Options holds the transformer switches derived from a BuildMode. It is
	// never read from the file; overlay.Apply fills it in.
	Options TransformOptions `yaml:"-"`

	// SourceFile is the path the snapshot was loaded from.
	SourceFile string `yaml:"-"`
}

// PathsConfig holds base URLs and the project directory layout.
type PathsConfig struct {
	BasePathLocal     string `yaml:"basePathLocal"`
	BaseURLProduction string `yaml:"baseUrlProduction,omitempty"`
	Source            string `yaml:"source,omitempty"` // default "sources"
	Output            string `yaml:"output,omitempty"` // default "deploy"
	Root              string `yaml:"root,omitempty"`   // promote-to-root target, default "."
}

// SpriteConfig describes one sprite sheet.
type SpriteConfig struct {
	Name    string `yaml:"name"`
	Src     string `yaml:"src"`               // glob of source PNGs, project relative
	Dest    string `yaml:"dest"`              // sheet path, output relative
	DestCSS string `yaml:"destCss"`           // stylesheet path, project relative
	ImgPath string `yaml:"imgPath,omitempty"` // URL used in the stylesheet
	Padding int    `yaml:"padding,omitempty"`
}

// FileGroup maps a list of sources onto one output file.
type FileGroup struct {
	Dest string   `yaml:"dest"` // output relative
	Src  []string `yaml:"src"`  // project relative paths or globs
}

// ScriptsConfig lists script bundles.
type ScriptsConfig struct {
	Files []FileGroup `yaml:"files,omitempty"`
}

// StylesConfig lists stylesheet bundles.
type StylesConfig struct {
	Files []FileGroup `yaml:"files,omitempty"`
}

// ImagesConfig tunes the image optimizer.
type ImagesConfig struct {
	JPEGQuality int `yaml:"jpegQuality,omitempty"`
}

// WatchConfig tunes the incremental trigger.
type WatchConfig struct {
	Debounce string `yaml:"debounce,omitempty"`
	MaxDelay string `yaml:"maxDelay,omitempty"`
}

// ServerConfig configures the preview server used by watch.
type ServerConfig struct {
	Port int `yaml:"port,omitempty"`
}

// TransformOptions is the mode-derived options record handed to transformers.
type TransformOptions struct {
	Mode           BuildMode
	Beautify       bool
	Compress       bool
	SourceMap      bool
	DropConsole    bool
	OptimizeImages bool
	CleanHTML      bool
}

// SourceDir returns the project source root.
func (c *ProjectConfig) SourceDir() string { return c.Paths.Source }

// SiteDir returns the directory holding HTML entry points and fragments.
func (c *ProjectConfig) SiteDir() string { return filepath.Join(c.Paths.Source, "site") }

// AssetsDir returns the source assets directory.
func (c *ProjectConfig) AssetsDir() string { return filepath.Join(c.Paths.Source, "assets") }

// OutputDir returns the output root.
func (c *ProjectConfig) OutputDir() string { return c.Paths.Output }

// Clone returns a deep copy. Overlays are built on clones so that the loaded
// snapshot is never modified.
func (c *ProjectConfig) Clone() *ProjectConfig {
	if c == nil {
		return nil
	}
	out := *c
	out.Sprites = slices.Clone(c.Sprites)
	out.Scripts.Files = cloneGroups(c.Scripts.Files)
	out.Styles.Files = cloneGroups(c.Styles.Files)
	out.Fragments = slices.Clone(c.Fragments)
	if c.Pages != nil {
		out.Pages = make([]PageTemplate, len(c.Pages))
		for i, p := range c.Pages {
			p.Replace = slices.Clone(p.Replace)
			out.Pages[i] = p
		}
	}
	return &out
}

func cloneGroups(in []FileGroup) []FileGroup {
	if in == nil {
		return nil
	}
	out := make([]FileGroup, len(in))
	for i, g := range in {
		out[i] = FileGroup{Dest: g.Dest, Src: slices.Clone(g.Src)}
	}
	return out
}

// ScriptSources returns every configured script source pattern.
func (c *ProjectConfig) ScriptSources() []string {
	var out []string
	for _, g := range c.Scripts.Files {
		out = append(out, g.Src...)
	}
	return out
}

// StyleSources returns every configured stylesheet source pattern.
func (c *ProjectConfig) StyleSources() []string {
	var out []string
	for _, g := range c.Styles.Files {
		out = append(out, g.Src...)
	}
	return out
}

// TemplatedPages returns the page files that are rendered rather than copied.
func (c *ProjectConfig) TemplatedPages() []string {
	out := make([]string, 0, len(c.Pages))
	for _, p := range c.Pages {
		out = append(out, p.File)
	}
	return out
}
